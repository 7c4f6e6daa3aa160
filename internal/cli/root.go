package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ppiankov/docsite/internal/config"
	"github.com/ppiankov/docsite/internal/policy"
	"github.com/ppiankov/docsite/internal/validator"
)

const (
	ExitOK           = 0 // Success
	ExitPolicyFail   = 1 // Policy limits exceeded
	ExitInvalidInput = 2 // Schema validation or parse error
	ExitRuntimeError = 3 // I/O, permissions, or runtime error
)

var (
	// Global config instance
	cfg *config.Config

	// Global logger, replaced once flags are parsed
	logger = zerolog.Nop()

	// Set at build time through SetVersion
	appVersion = "dev"

	// Global flags
	configFile string
	verbose    bool
	debug      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "docsite",
	Short: "docsite - security and metrics snapshots for a project documentation site",
	Long: `docsite collects open security alert counts from the GitHub REST API and
build metrics from a Go source tree, validates them against the bundled
schemas and writes JSON and Markdown pages for the documentation site.

It provides:
- Paginated, rate-limit aware alert collection with a wall-clock deadline
- Schema gate before anything is published
- Metric history with trend analysis
- Policy checks with exit codes for CI

Quick start:
  docsite security --repo org/name
  docsite metrics --root .
  docsite history append --kind security
  docsite history show
  docsite check`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Override config with flags if provided
		if verbose {
			cfg.Verbose = true
		}
		if debug {
			cfg.Debug = true
		}

		logger = newLogger(os.Stderr, isTerminal(os.Stderr), cfg.Verbose, cfg.Debug)
		return nil
	},
}

// Execute runs the root command and exits with the mapped code
func Execute() {
	err := rootCmd.ExecuteContext(context.Background())
	os.Exit(HandleError(err))
}

// SetVersion records the build version shown by the version command
func SetVersion(v string) {
	if v != "" {
		appVersion = v
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default: ./docsite.yaml or ~/docsite.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"debug mode (very verbose)")

	rootCmd.AddCommand(securityCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("docsite %s\n", appVersion)
	},
}

// HandleError determines the appropriate exit code for an error
func HandleError(err error) int {
	if err == nil {
		return ExitOK
	}

	var schemaErr *validator.ValidationError
	var inputErr *ValidationError
	var thresholdErr *ThresholdExceededError
	switch {
	case errors.As(err, &schemaErr), errors.As(err, &inputErr):
		return ExitInvalidInput
	case errors.As(err, &thresholdErr):
		return ExitPolicyFail
	default:
		return ExitRuntimeError
	}
}

// ValidationError represents an input that could not be parsed
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ThresholdExceededError represents a policy failure
type ThresholdExceededError struct {
	Violations []policy.Violation
}

func (e *ThresholdExceededError) Error() string {
	return fmt.Sprintf("policy check failed: %d violation(s)", len(e.Violations))
}

// newLogger builds the console logger. Warnings only by default; --verbose
// adds progress, --debug adds per-request detail.
func newLogger(w io.Writer, color, verbose, debug bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.InfoLevel
	}
	if debug {
		level = zerolog.DebugLevel
	}

	out := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !color,
		TimeFormat: time.TimeOnly,
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// commandContext returns the command context, or Background when the
// command runs outside cobra (tests).
func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

// logVerbose prints a message if verbose mode is enabled
func logVerbose(format string, args ...interface{}) {
	logger.Info().Msgf(format, args...)
}

// logDebug prints a message if debug mode is enabled
func logDebug(format string, args ...interface{}) {
	logger.Debug().Msgf(format, args...)
}

// logError prints an error message
func logError(format string, args ...interface{}) {
	logger.Error().Msgf(format, args...)
}
