package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/ppiankov/docsite/internal/aggregator"
)

var tableColumns = []table.Column{
	{Title: "Metric", Width: 28},
	{Title: "Current", Width: 10},
	{Title: "Previous", Width: 10},
	{Title: "Change", Width: 10},
	{Title: "Direction", Width: 10},
	{Title: "Points", Width: 6},
}

// buildRows converts metric trends to table rows.
func buildRows(trends []aggregator.MetricTrend) []table.Row {
	rows := make([]table.Row, 0, len(trends))
	for _, tr := range trends {
		change := "-"
		previous := "-"
		if tr.Points > 1 {
			previous = formatValue(tr.Previous)
			change = fmt.Sprintf("%s %s", aggregator.GetTrendIndicator(tr.Change), formatValue(tr.Change))
		}
		rows = append(rows, table.Row{
			truncate(tr.Name, tableColumns[0].Width),
			formatValue(tr.Current),
			previous,
			change,
			tr.Direction,
			strconv.Itoa(tr.Points),
		})
	}
	return rows
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	const ellipsis = "..."
	if maxLen <= len(ellipsis) {
		return s[:maxLen]
	}
	return s[:maxLen-len(ellipsis)] + ellipsis
}

// newTable creates a bubbles table with standard columns and styling.
func newTable(rows []table.Row, height int) table.Model {
	t := table.New(
		table.WithColumns(tableColumns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorBorder).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(colorAccent).
		Bold(false)
	t.SetStyles(s)

	return t
}
