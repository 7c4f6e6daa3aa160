package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/docsite/internal/ghapi"
	"github.com/ppiankov/docsite/internal/reporter"
	"github.com/ppiankov/docsite/internal/security"
	"github.com/ppiankov/docsite/internal/token"
	"github.com/ppiankov/docsite/internal/validator"
)

var (
	// Security command flags
	securityRepo       string
	securityTokenEnv   string
	securityOutputDir  string
	securityAPIBase    string
	securitySchemaDir  string
	securityMaxRetries int
	securityDeadline   time.Duration
	securityDryRun     bool
)

// securityCmd collects the open-alert snapshot
var securityCmd = &cobra.Command{
	Use:   "security",
	Short: "Collect open security alert counts and write the security page",
	Long: `Collect open Dependabot, code scanning and secret scanning alerts for a
repository, validate the snapshot against security.schema.json and write
security.json and security.md into the output directory.

Network trouble never fails the command: each category keeps whatever was
collected before the failure, the retry ceiling or the deadline.
A snapshot that fails the schema is not written and exits with code 2.

Example:
  docsite security --repo org/name
  GITHUB_REPOSITORY=org/name GITHUB_TOKEN=... docsite security
  docsite security --repo org/name --dry-run`,
	RunE: runSecurity,
}

func init() {
	securityCmd.Flags().StringVar(&securityRepo, "repo", "",
		"repository as owner/name (default from config or GITHUB_REPOSITORY)")
	securityCmd.Flags().StringVar(&securityTokenEnv, "token-env", "",
		"comma separated environment variables probed for the token (default GITHUB_TOKEN,TOKEN)")
	securityCmd.Flags().StringVar(&securityOutputDir, "output-dir", "",
		"directory for security.json and security.md (default from config)")
	securityCmd.Flags().StringVar(&securityAPIBase, "api-base", "",
		"repositories API root (default https://api.github.com/repos)")
	securityCmd.Flags().StringVar(&securitySchemaDir, "schema-dir", "",
		"directory holding security.schema.json (default from config)")
	securityCmd.Flags().IntVar(&securityMaxRetries, "max-retries", -1,
		"rate-limited answers tolerated per category (default from config)")
	securityCmd.Flags().DurationVar(&securityDeadline, "deadline", 0,
		"wall-clock budget per category (default from config)")
	securityCmd.Flags().BoolVar(&securityDryRun, "dry-run", false,
		"print the snapshot JSON instead of writing files")
}

func runSecurity(cmd *cobra.Command, args []string) error {
	repo := stringOr(securityRepo, cfg.Repo)
	tokenEnv := stringOr(securityTokenEnv, cfg.TokenEnv)
	outputDir := stringOr(securityOutputDir, cfg.OutputDir)
	apiBase := stringOr(securityAPIBase, cfg.APIBase)
	schemaDir := stringOr(securitySchemaDir, cfg.SchemaDir)

	opts := ghapi.DefaultOptions()
	opts.MaxRetries = cfg.MaxRetries
	if securityMaxRetries >= 0 {
		opts.MaxRetries = securityMaxRetries
	}
	opts.Deadline = cfg.Deadline
	if securityDeadline > 0 {
		opts.Deadline = securityDeadline
	}
	opts.InitialBackoff = cfg.InitialBackoff
	opts.MaxBackoff = cfg.MaxBackoff
	opts.Logger = logger

	tok, found := token.NewResolver(token.ParseSources(tokenEnv), nil).Resolve()
	if !found && repo != "" {
		logVerbose("No token in %s, requesting anonymously", tokenEnv)
	}

	logDebug("Collecting %q from %s (max retries %d, deadline %s)", repo, apiBase, opts.MaxRetries, opts.Deadline)

	client := ghapi.NewClient(cfg.FetchTimeout, logger)
	builder := security.NewBuilder(ghapi.NewPaginator(client, opts), security.Options{
		APIBase: apiBase,
		Token:   tok,
		Logger:  logger,
	})
	snap := builder.Build(commandContext(cmd), repo)

	tree, err := snap.Tree()
	if err != nil {
		return err
	}
	if err := validator.New(schemaDir).ValidateSecurity(tree); err != nil {
		fmt.Fprintln(os.Stderr, "SCHEMA_ERROR: security snapshot invalid")
		logError("%v", err)
		return err
	}

	if securityDryRun {
		return reporter.NewJSONReporter(os.Stdout, true).Generate(snap)
	}

	if err := reporter.WriteSecurity(outputDir, snap); err != nil {
		logError("Failed to write security artifacts: %v", err)
		return err
	}

	logVerbose("Wrote %s and %s",
		filepath.Join(outputDir, reporter.SecurityJSONFile),
		filepath.Join(outputDir, reporter.SecurityMDFile))
	return nil
}

// stringOr returns flag when set, otherwise the configured fallback.
func stringOr(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}
