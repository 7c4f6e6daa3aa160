package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/docsite/internal/aggregator"
	"github.com/ppiankov/docsite/internal/metrics"
	"github.com/ppiankov/docsite/internal/reporter"
	"github.com/ppiankov/docsite/internal/security"
	"github.com/ppiankov/docsite/internal/storage"
	"github.com/ppiankov/docsite/internal/tui"
)

const (
	kindSecurity = "security"
	kindMetrics  = "metrics"
)

var (
	// History command flags
	historyKind     string
	historySnapshot string
	historyDir      string
	historyFormat   string

	// historyNow stamps appended points; replaced in tests
	historyNow = time.Now

	// historyStore opens the store of one history directory
	historyStore = func(dir string) storage.Storage { return storage.NewLocal(dir) }
)

var historyKinds = []string{kindSecurity, kindMetrics}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Record and inspect metric history",
}

var historyAppendCmd = &cobra.Command{
	Use:   "append",
	Short: "Append the current snapshot to the history series",
	Long: `Flatten a security or metrics snapshot into named values and append one
point to each series under <dir>/data. Each kind keeps its own directory,
<history-dir>/security or <history-dir>/metrics, unless --dir names one.
A missing snapshot file records nothing and is not an error.

Example:
  docsite history append --kind security
  docsite history append --kind metrics --snapshot site_src/metrics.json --dir history`,
	RunE: runHistoryAppend,
}

var historyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show trends of the recorded series",
	Long: `Show the latest value, the change against the previous run and the trend
direction of every recorded series. Without --dir the security and metrics
histories are shown together; --kind narrows that to one. Opens an
interactive table when stdout is a terminal.

Example:
  docsite history show
  docsite history show --kind metrics
  docsite history show --format json`,
	RunE: runHistoryShow,
}

func init() {
	historyAppendCmd.Flags().StringVar(&historyKind, "kind", "",
		"snapshot kind: security or metrics")
	historyAppendCmd.Flags().StringVar(&historySnapshot, "snapshot", "",
		"snapshot file (default <output-dir>/<kind>.json)")
	historyAppendCmd.Flags().StringVar(&historyDir, "dir", "",
		"history directory (default <history-dir>/<kind>)")
	_ = historyAppendCmd.MarkFlagRequired("kind")

	historyShowCmd.Flags().StringVar(&historyKind, "kind", "",
		"show only one kind: security or metrics (default both)")
	historyShowCmd.Flags().StringVar(&historyDir, "dir", "",
		"single history directory to show (default <history-dir>/<kind>)")
	historyShowCmd.Flags().StringVarP(&historyFormat, "format", "f", "text",
		"output format when not interactive: text or json")

	historyCmd.AddCommand(historyAppendCmd)
	historyCmd.AddCommand(historyShowCmd)
}

func runHistoryAppend(cmd *cobra.Command, args []string) error {
	if err := checkKind(historyKind); err != nil {
		return err
	}

	path := historySnapshot
	if path == "" {
		path = filepath.Join(cfg.OutputDir, historyKind+".json")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf("No snapshot at %s, nothing recorded.\n", path)
		return nil
	}

	values, err := flattenSnapshot(historyKind, path)
	if err != nil {
		logError("Failed to load snapshot: %v", err)
		return err
	}
	if len(values) == 0 {
		fmt.Printf("Snapshot %s holds no values, nothing recorded.\n", path)
		return nil
	}

	dir := stringOr(historyDir, filepath.Join(cfg.HistoryDir, historyKind))
	summary, err := historyStore(dir).Append(historyNow().UTC(), values)
	if err != nil {
		logError("Failed to append history: %v", err)
		return err
	}

	fmt.Printf("Recorded %d metric(s) to %s (run %s)\n", len(summary.Metrics), dir, summary.RunID)
	return nil
}

func checkKind(kind string) error {
	if kind != kindSecurity && kind != kindMetrics {
		return fmt.Errorf("unknown kind %q (must be security or metrics)", kind)
	}
	return nil
}

func flattenSnapshot(kind, path string) (map[string]float64, error) {
	if kind == kindSecurity {
		snap, err := security.LoadSnapshot(path)
		if err != nil {
			return nil, err
		}
		return snap.Flatten(), nil
	}
	snap, err := metrics.LoadSnapshot(path)
	if err != nil {
		return nil, err
	}
	return snap.Flatten(), nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	history, err := loadHistory()
	if err != nil {
		logError("Failed to load history: %v", err)
		return err
	}

	summary := aggregator.NewTrendAnalyzer().CalculateTrends(history)

	switch {
	case historyFormat == "json":
		return reporter.NewJSONReporter(os.Stdout, true).Generate(summary)
	case historyFormat != "text":
		return fmt.Errorf("unknown format %q (must be text or json)", historyFormat)
	case isTerminal(os.Stdout) && len(summary.Metrics) > 0:
		return tui.Run(history, summary)
	default:
		return reporter.NewTextReporter(os.Stdout).Generate(summary)
	}
}

// loadHistory reads the explicit --dir, or merges the per-kind directories
// under the configured history dir.
func loadHistory() (*storage.History, error) {
	if historyDir != "" {
		logVerbose("Loading history from: %s", historyDir)
		return historyStore(historyDir).LoadHistory()
	}

	kinds := historyKinds
	if historyKind != "" {
		if err := checkKind(historyKind); err != nil {
			return nil, err
		}
		kinds = []string{historyKind}
	}

	histories := make([]*storage.History, 0, len(kinds))
	for _, kind := range kinds {
		dir := filepath.Join(cfg.HistoryDir, kind)
		logVerbose("Loading history from: %s", dir)
		h, err := historyStore(dir).LoadHistory()
		if err != nil {
			return nil, fmt.Errorf("%s history: %w", kind, err)
		}
		histories = append(histories, h)
	}
	return storage.Merge(histories...), nil
}
