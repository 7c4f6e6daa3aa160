// Package aggregator derives trends from recorded metric history.
package aggregator

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ppiankov/docsite/internal/storage"
)

// Trend directions.
const (
	DirectionImproving = "improving"
	DirectionDegrading = "degrading"
	DirectionStable    = "stable"
)

// MetricTrend compares the last two points of one series.
type MetricTrend struct {
	Name          string    `json:"name"`
	Current       float64   `json:"current"`
	Previous      float64   `json:"previous"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	Direction     string    `json:"direction"`
	Points        int       `json:"points"`
	Sparkline     []float64 `json:"sparkline"`
	LatestAt      time.Time `json:"latest_at"`
	ComparedWith  time.Time `json:"compared_with,omitempty"`
}

// TrendSummary holds the trend of every series in a history.
type TrendSummary struct {
	RunsAnalyzed int           `json:"runs_analyzed"`
	TimeRange    string        `json:"time_range"`
	Metrics      []MetricTrend `json:"metrics"`
}

// TrendAnalyzer analyzes trends across recorded runs
type TrendAnalyzer struct{}

// NewTrendAnalyzer creates a new trend analyzer
func NewTrendAnalyzer() *TrendAnalyzer {
	return &TrendAnalyzer{}
}

// HigherIsBetter reports whether growth of the named metric is an
// improvement. Percentages improve upwards; counts improve downwards.
func HigherIsBetter(name string) bool {
	return strings.HasSuffix(name, "_percent")
}

// CalculateTrend compares the latest point of a series with the one before.
// Returns nil for an empty series; a single point is stable.
func (t *TrendAnalyzer) CalculateTrend(name string, series storage.Series) *MetricTrend {
	if len(series) == 0 {
		return nil
	}

	latest := series[len(series)-1]
	trend := &MetricTrend{
		Name:      name,
		Current:   latest.Value,
		Previous:  latest.Value,
		Direction: DirectionStable,
		Points:    len(series),
		Sparkline: series.Values(),
		LatestAt:  latest.Time,
	}
	if len(series) < 2 {
		return trend
	}

	previous := series[len(series)-2]
	trend.Previous = previous.Value
	trend.ComparedWith = previous.Time
	trend.Change = latest.Value - previous.Value

	if previous.Value != 0 {
		trend.ChangePercent = trend.Change / math.Abs(previous.Value) * 100.0
	} else if latest.Value != 0 {
		// Metric appeared
		trend.ChangePercent = 100.0
	}

	switch {
	case trend.Change == 0:
		trend.Direction = DirectionStable
	case (trend.Change > 0) == HigherIsBetter(name):
		trend.Direction = DirectionImproving
	default:
		trend.Direction = DirectionDegrading
	}

	return trend
}

// CalculateTrends analyzes every series of a history, ordered by name.
func (t *TrendAnalyzer) CalculateTrends(h *storage.History) *TrendSummary {
	summary := &TrendSummary{Metrics: []MetricTrend{}}
	if h == nil {
		summary.TimeRange = "No runs"
		return summary
	}

	var earliest, latest time.Time
	for _, name := range h.Names() {
		series := h.Series[name]
		trend := t.CalculateTrend(name, series)
		if trend == nil {
			continue
		}
		summary.Metrics = append(summary.Metrics, *trend)

		if len(series) > summary.RunsAnalyzed {
			summary.RunsAnalyzed = len(series)
		}
		first := series[0].Time
		if earliest.IsZero() || first.Before(earliest) {
			earliest = first
		}
		if trend.LatestAt.After(latest) {
			latest = trend.LatestAt
		}
	}

	switch summary.RunsAnalyzed {
	case 0:
		summary.TimeRange = "No runs"
	case 1:
		summary.TimeRange = "Single run"
	default:
		days := int(latest.Sub(earliest).Hours() / 24)
		summary.TimeRange = fmt.Sprintf("Last %d days", days)
	}

	return summary
}

// Degrading returns the trends that got worse since the previous run.
func (s *TrendSummary) Degrading() []MetricTrend {
	var out []MetricTrend
	for _, m := range s.Metrics {
		if m.Direction == DirectionDegrading {
			out = append(out, m)
		}
	}
	return out
}

// GetTrendIndicator returns a visual indicator for the sign of a change
func GetTrendIndicator(change float64) string {
	switch {
	case change < 0:
		return "↓"
	case change > 0:
		return "↑"
	default:
		return "→"
	}
}
