package tui

import (
	"fmt"
	"strings"

	"github.com/ppiankov/docsite/internal/aggregator"
	"github.com/ppiankov/docsite/internal/storage"
)

// headerHeight is the number of terminal lines the header occupies.
const headerHeight = 5

// renderHeader produces the header string from the trend summary and the
// last recorded run.
func renderHeader(summary *aggregator.TrendSummary, last *storage.Summary, width int) string {
	var b strings.Builder

	// Line 1: title and range
	b.WriteString(fmt.Sprintf("docsite history  Runs: %d  Range: %s", summary.RunsAnalyzed, summary.TimeRange))
	b.WriteString("\n")

	// Line 2: direction breakdown
	counts := map[string]int{}
	for _, m := range summary.Metrics {
		counts[m.Direction]++
	}
	parts := make([]string, 0, len(directionChoices))
	for _, d := range directionChoices {
		label := fmt.Sprintf("%s:%d", d, counts[d])
		parts = append(parts, directionStyle(d).Render(label))
	}
	b.WriteString(strings.Join(parts, "  "))
	b.WriteString("\n")

	// Line 3: last run
	if last != nil {
		b.WriteString(fmt.Sprintf("Last run: %s", last.GeneratedAt.UTC().Format("2006-01-02 15:04:05")))
		if last.RunID != "" {
			b.WriteString(fmt.Sprintf("  (%s)", last.RunID))
		}
	}

	return styleHeader.Width(width).Render(b.String())
}

// renderSparkline converts a value slice to a unicode sparkline string.
func renderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	bars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	var b strings.Builder
	for _, v := range values {
		if max == min {
			b.WriteRune(bars[len(bars)/2])
		} else {
			normalized := (v - min) / (max - min)
			idx := int(normalized * float64(len(bars)-1))
			b.WriteRune(bars[idx])
		}
	}

	b.WriteString(fmt.Sprintf(" [%s→%s]", formatValue(values[0]), formatValue(values[len(values)-1])))
	return b.String()
}
