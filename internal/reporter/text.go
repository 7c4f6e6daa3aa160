package reporter

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/ppiankov/docsite/internal/aggregator"
)

// TextReporter generates human-readable trend reports
type TextReporter struct {
	writer io.Writer
}

// NewTextReporter creates a new text reporter
func NewTextReporter(writer io.Writer) *TextReporter {
	return &TextReporter{
		writer: writer,
	}
}

// Generate prints one line per metric trend
func (r *TextReporter) Generate(summary *aggregator.TrendSummary) error {
	r.printf("Metric History (%s, %d run(s))\n", summary.TimeRange, summary.RunsAnalyzed)
	r.printf("--------------------------------------------------\n")

	if len(summary.Metrics) == 0 {
		r.printf("  No history recorded yet.\n")
		return nil
	}

	width := 0
	for _, m := range summary.Metrics {
		if len(m.Name) > width {
			width = len(m.Name)
		}
	}

	for _, m := range summary.Metrics {
		r.printf("  %-*s  %10s", width, m.Name, formatValue(m.Current))
		if m.Points > 1 {
			r.printf("  %s %s (%+.1f%%) %s", aggregator.GetTrendIndicator(m.Change),
				formatValue(m.Previous), m.ChangePercent, m.Direction)
		}
		r.printf("\n")
	}

	if degrading := summary.Degrading(); len(degrading) > 0 {
		r.printf("\n%d metric(s) degrading since the previous run\n", len(degrading))
	}

	latest := time.Time{}
	for _, m := range summary.Metrics {
		if m.LatestAt.After(latest) {
			latest = m.LatestAt
		}
	}
	if !latest.IsZero() {
		r.printf("Last recorded: %s\n", formatTimestamp(latest))
	}
	return nil
}

// printf is a helper to write formatted output
func (r *TextReporter) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.writer, format, args...)
}

// formatValue prints whole numbers without a fraction.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatTimestamp formats a timestamp for display
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}
