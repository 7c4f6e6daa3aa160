package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/docsite/internal/config"
)

var (
	configInitPath  string
	configInitForce bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the docsite configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a sample configuration file",
	Long: `Init writes a commented sample configuration holding the default values.

Without --path the sample is printed to stdout. An existing file is left
alone unless --force is given.

Example:
  docsite config init --path docsite.yaml
  docsite config init > ~/docsite.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().StringVar(&configInitPath, "path", "",
		"file to write (default: stdout)")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false,
		"overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	sample := config.GenerateSampleConfig()
	if configInitPath == "" {
		fmt.Print(sample)
		return nil
	}

	if !configInitForce {
		if _, err := os.Stat(configInitPath); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", configInitPath)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to stat %s: %w", configInitPath, err)
		}
	}

	if dir := filepath.Dir(configInitPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(configInitPath, []byte(sample), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", configInitPath, err)
	}

	fmt.Printf("Wrote sample config to %s\n", configInitPath)
	return nil
}
