package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/docsite/internal/metrics"
	"github.com/ppiankov/docsite/internal/reporter"
	"github.com/ppiankov/docsite/internal/runner"
	"github.com/ppiankov/docsite/internal/validator"
)

var (
	// Metrics command flags
	metricsRoot      string
	metricsOutputDir string
	metricsList      string
	metricsThreshold int
	metricsDryRun    bool

	// metricsRunner executes gocyclo; replaced in tests
	metricsRunner metrics.ToolRunner = runner.New(nil, nil)
)

// metricsCmd collects build metrics for a Go source tree
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Measure the source tree and write the metrics page",
	Long: `Measure coverage, test functions, Go files, lines of code and cyclomatic
complexity of a Go source tree, validate the result against
metrics.schema.json and write metrics.json and metrics.md.

Complexity metrics need gocyclo on PATH; without it they are skipped.

Example:
  docsite metrics
  docsite metrics --root ./src --metrics tests,files,loc
  METRICS=coverage docsite metrics --dry-run`,
	RunE: runMetrics,
}

func init() {
	metricsCmd.Flags().StringVar(&metricsRoot, "root", "",
		"source tree to measure (default from config)")
	metricsCmd.Flags().StringVar(&metricsOutputDir, "output-dir", "",
		"directory for metrics.json and metrics.md (default from config)")
	metricsCmd.Flags().StringVar(&metricsList, "metrics", "",
		"comma separated metrics: coverage,tests,files,loc,avg_complexity,high_complexity")
	metricsCmd.Flags().IntVar(&metricsThreshold, "high-complexity-threshold", -1,
		"complexity score above which a function counts as complex (default from config)")
	metricsCmd.Flags().BoolVar(&metricsDryRun, "dry-run", false,
		"print the snapshot JSON instead of writing files")
}

func runMetrics(cmd *cobra.Command, args []string) error {
	root := stringOr(metricsRoot, cfg.Root)
	outputDir := stringOr(metricsOutputDir, cfg.OutputDir)
	selected := metrics.ParseSelection(stringOr(metricsList, cfg.Metrics))
	threshold := cfg.HighComplexityThreshold
	if metricsThreshold >= 0 {
		threshold = metricsThreshold
	}

	logVerbose("Measuring %s", root)

	collector := metrics.NewCollector(metrics.Options{
		OutputDir:   outputDir,
		Threshold:   threshold,
		Runner:      metricsRunner,
		ToolTimeout: cfg.ToolTimeout,
		Logger:      logger,
	})
	snap := collector.Collect(commandContext(cmd), root, selected)

	tree, err := snap.Tree()
	if err != nil {
		return err
	}
	if err := validator.New(cfg.SchemaDir).ValidateMetrics(tree); err != nil {
		fmt.Fprintln(os.Stderr, "SCHEMA_ERROR: metrics snapshot invalid")
		logError("%v", err)
		return err
	}

	if metricsDryRun {
		return reporter.NewJSONReporter(os.Stdout, true).Generate(snap)
	}

	if err := reporter.WriteMetrics(outputDir, snap, threshold); err != nil {
		logError("Failed to write metrics artifacts: %v", err)
		return err
	}

	logVerbose("Wrote %s and %s",
		filepath.Join(outputDir, reporter.MetricsJSONFile),
		filepath.Join(outputDir, reporter.MetricsMDFile))
	return nil
}
