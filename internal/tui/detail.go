package tui

import (
	"fmt"
	"strings"

	"github.com/ppiankov/docsite/internal/aggregator"
)

// detailHeight is the fixed number of lines for the detail panel.
const detailHeight = 5

// maxSparklinePoints bounds the sparkline to the most recent points.
const maxSparklinePoints = 60

// renderDetail produces the detail view for a selected metric.
func renderDetail(tr *aggregator.MetricTrend, width int) string {
	if tr == nil {
		return styleDetailPanel.Width(width).Render("No metric selected")
	}

	var b strings.Builder

	dirStyled := directionStyle(tr.Direction).Render(strings.ToUpper(tr.Direction))
	b.WriteString(fmt.Sprintf("%s  %s\n", dirStyled, tr.Name))

	points := tr.Sparkline
	if len(points) > maxSparklinePoints {
		points = points[len(points)-maxSparklinePoints:]
	}
	b.WriteString(fmt.Sprintf("History: %s\n", renderSparkline(points)))

	parts := make([]string, 0, 3)
	if tr.Points > 1 {
		parts = append(parts, fmt.Sprintf("Change: %+.1f%%", tr.ChangePercent))
	}
	if !tr.LatestAt.IsZero() {
		parts = append(parts, fmt.Sprintf("Latest: %s", tr.LatestAt.Format("2006-01-02")))
	}
	if !tr.ComparedWith.IsZero() {
		parts = append(parts, fmt.Sprintf("Previous: %s", tr.ComparedWith.Format("2006-01-02")))
	}
	if len(parts) > 0 {
		b.WriteString(strings.Join(parts, "  "))
	}

	return styleDetailPanel.Width(width).Render(b.String())
}
