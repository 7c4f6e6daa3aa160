package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ppiankov/docsite/internal/aggregator"
)

// Direction colors
var (
	colorImproving = lipgloss.Color("#22863a")
	colorDegrading = lipgloss.Color("#d73a49")
	colorStable    = lipgloss.Color("#888888")
	colorMuted     = lipgloss.Color("#888888")
	colorAccent    = lipgloss.Color("#6f42c1")
	colorBorder    = lipgloss.Color("#444444")
)

// Panel styles
var (
	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)

	styleDetailPanel = lipgloss.NewStyle().
				Padding(0, 1).
				BorderStyle(lipgloss.NormalBorder()).
				BorderTop(true).
				BorderForeground(colorBorder)

	styleFooter = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	styleSearchPrompt = lipgloss.NewStyle().
				Foreground(colorAccent).Bold(true)
)

// directionStyle returns the lipgloss style for a trend direction.
func directionStyle(direction string) lipgloss.Style {
	switch direction {
	case aggregator.DirectionImproving:
		return lipgloss.NewStyle().Foreground(colorImproving).Bold(true)
	case aggregator.DirectionDegrading:
		return lipgloss.NewStyle().Foreground(colorDegrading).Bold(true)
	case aggregator.DirectionStable:
		return lipgloss.NewStyle().Foreground(colorStable)
	default:
		return lipgloss.NewStyle()
	}
}
