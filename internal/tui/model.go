// Package tui is the interactive metric history viewer.
package tui

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ppiankov/docsite/internal/aggregator"
	"github.com/ppiankov/docsite/internal/storage"
)

// mode represents the current UI interaction mode.
type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeFilterDirection
)

const defaultTableHeight = 15

// Model is the top-level Bubble Tea model for the history viewer.
type Model struct {
	// Data (immutable after init)
	summary   *aggregator.TrendSummary
	lastRun   *storage.Summary
	allTrends []aggregator.MetricTrend

	// UI state
	table           table.Model
	searchInput     textinput.Model
	filteredTrends  []aggregator.MetricTrend
	filters         filterState
	sortBy          sortField
	mode            mode
	directionCursor int
	width           int
	height          int
	statusMsg       string
	// clipboard is captured here for testing; the escape sequence goes to out
	clipboard string
	out       io.Writer
}

// New creates a new TUI model from the analyzed history.
func New(history *storage.History, summary *aggregator.TrendSummary) Model {
	if summary == nil {
		summary = aggregator.NewTrendAnalyzer().CalculateTrends(history)
	}
	var lastRun *storage.Summary
	if history != nil {
		lastRun = history.Summary
	}

	trends := make([]aggregator.MetricTrend, len(summary.Metrics))
	copy(trends, summary.Metrics)

	sortTrends(trends, sortByDirection)
	t := newTable(buildRows(trends), defaultTableHeight)

	ti := textinput.New()
	ti.Placeholder = "search..."
	ti.CharLimit = 64

	return Model{
		summary:        summary,
		lastRun:        lastRun,
		allTrends:      trends,
		filteredTrends: trends,
		table:          t,
		searchInput:    ti,
		sortBy:         sortByDirection,
		mode:           modeNormal,
		width:          80,
		height:         24,
		out:            os.Stdout,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width)
		tableH := msg.Height - headerHeight - detailHeight - 3
		if tableH < 3 {
			tableH = 3
		}
		m.table.SetHeight(tableH)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	switch m.mode {
	case modeSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	default:
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeSearch:
		return m.handleSearchKey(msg)
	case modeFilterDirection:
		return m.handleFilterDirectionKey(msg)
	default:
		return m.handleNormalKey(msg)
	}
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Search):
		m.mode = modeSearch
		m.searchInput.Focus()
		return m, textinput.Blink
	case key.Matches(msg, keys.FilterDirection):
		m.mode = modeFilterDirection
		m.directionCursor = 0
		return m, nil
	case key.Matches(msg, keys.Sort):
		m.sortBy = (m.sortBy + 1) % sortField(sortFieldCount)
		m.rebuildTable()
		m.statusMsg = fmt.Sprintf("Sort: %s", sortFieldName(m.sortBy))
		return m, nil
	case key.Matches(msg, keys.Copy):
		m.copySelectedTrend()
		return m, nil
	case key.Matches(msg, keys.ClearFilter):
		m.filters = filterState{}
		m.statusMsg = ""
		m.rebuildTable()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filters.SearchText = m.searchInput.Value()
		m.mode = modeNormal
		m.searchInput.Blur()
		m.rebuildTable()
		return m, nil
	case "esc":
		m.mode = modeNormal
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) handleFilterDirectionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.directionCursor > 0 {
			m.directionCursor--
		}
	case "down", "j":
		if m.directionCursor < len(directionChoices) {
			m.directionCursor++
		}
	case "enter":
		if m.directionCursor == 0 {
			m.filters.Direction = ""
		} else if m.directionCursor <= len(directionChoices) {
			m.filters.Direction = directionChoices[m.directionCursor-1]
		}
		m.mode = modeNormal
		m.rebuildTable()
		if m.filters.Direction != "" {
			m.statusMsg = fmt.Sprintf("Filter: %s", m.filters.Direction)
		} else {
			m.statusMsg = ""
		}
	case "esc":
		m.mode = modeNormal
	}
	return m, nil
}

func (m *Model) rebuildTable() {
	filtered := applyFilters(m.allTrends, m.filters)
	sortTrends(filtered, m.sortBy)
	m.filteredTrends = filtered
	m.table.SetRows(buildRows(filtered))
}

func (m *Model) selectedTrend() *aggregator.MetricTrend {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.filteredTrends) {
		return nil
	}
	return &m.filteredTrends[cursor]
}

// copySelectedTrend writes the selected metric to clipboard via OSC 52.
func (m *Model) copySelectedTrend() {
	tr := m.selectedTrend()
	if tr == nil {
		m.statusMsg = "Nothing to copy"
		return
	}
	text := fmt.Sprintf("%s: %s (%s)", tr.Name, formatValue(tr.Current), tr.Direction)
	if tr.Points > 1 {
		text += fmt.Sprintf(" was %s", formatValue(tr.Previous))
	}
	m.clipboard = text
	m.statusMsg = "Copied!"
	if m.out != nil {
		// OSC 52 clipboard escape: works in most modern terminals
		fmt.Fprintf(m.out, "\033]52;c;%s\a", base64.StdEncoding.EncodeToString([]byte(text)))
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(renderHeader(m.summary, m.lastRun, m.width))
	b.WriteString("\n")

	// Search bar overlay
	if m.mode == modeSearch {
		b.WriteString(styleSearchPrompt.Render("/ "))
		b.WriteString(m.searchInput.View())
		b.WriteString("\n")
	}

	// Direction filter overlay
	if m.mode == modeFilterDirection {
		b.WriteString(m.renderDirectionFilter())
		b.WriteString("\n")
	}

	// Table
	b.WriteString(m.table.View())
	b.WriteString("\n")

	// Detail panel
	b.WriteString(renderDetail(m.selectedTrend(), m.width))
	b.WriteString("\n")

	// Footer
	b.WriteString(m.renderFooter())

	return b.String()
}

func (m *Model) renderDirectionFilter() string {
	var b strings.Builder
	b.WriteString("Filter by direction:\n")

	options := append([]string{"All"}, directionChoices...)
	for i, opt := range options {
		cursor := "  "
		if i == m.directionCursor {
			cursor = "> "
		}
		b.WriteString(fmt.Sprintf("%s%s\n", cursor, opt))
	}
	return b.String()
}

func (m *Model) renderFooter() string {
	left := "q:quit  /:search  f:direction  s:sort  c:copy  esc:clear"
	right := fmt.Sprintf("%d/%d metrics", len(m.filteredTrends), len(m.allTrends))

	if m.statusMsg != "" {
		right = m.statusMsg + "  " + right
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return styleFooter.Render(left + strings.Repeat(" ", gap) + right)
}

// Run starts the Bubble Tea program. Called from the history show command.
func Run(history *storage.History, summary *aggregator.TrendSummary) error {
	m := New(history, summary)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
