package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/docsite/internal/validator"
)

var (
	validateKind      string
	validateSchemaDir string
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a snapshot file against its schema",
	Long: `Validate checks that a security or metrics snapshot file conforms to the
schema in the schema directory.

Returns exit 0 if valid, exit 2 if invalid with details on stderr.

Example:
  docsite validate site_src/security.json
  docsite validate site_src/metrics.json --kind metrics`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateKind, "kind", "security",
		"snapshot kind: security or metrics")
	validateCmd.Flags().StringVar(&validateSchemaDir, "schema-dir", "",
		"directory holding the schemas (default from config)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		fmt.Fprintf(os.Stderr, "INVALID: %v\n", err)
		return &ValidationError{Message: fmt.Sprintf("failed to parse %s: %v", filePath, err)}
	}

	v := validator.New(stringOr(validateSchemaDir, cfg.SchemaDir))
	switch validateKind {
	case "security":
		err = v.ValidateSecurity(tree)
	case "metrics":
		err = v.ValidateMetrics(tree)
	default:
		return fmt.Errorf("unknown kind %q (must be security or metrics)", validateKind)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "INVALID: %v\n", err)
		return err
	}

	fmt.Printf("VALID: %s snapshot conforms to schema\n", validateKind)
	return nil
}
