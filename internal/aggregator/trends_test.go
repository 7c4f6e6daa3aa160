package aggregator

import (
	"math"
	"testing"
	"time"

	"github.com/ppiankov/docsite/internal/storage"
)

func seriesOf(start time.Time, values ...float64) storage.Series {
	s := make(storage.Series, len(values))
	for i, v := range values {
		s[i] = storage.Point{Time: start.Add(time.Duration(i) * 24 * time.Hour), Value: v}
	}
	return s
}

func TestTrendAnalyzerCalculateTrend(t *testing.T) {
	analyzer := NewTrendAnalyzer()
	ts := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		metric        string
		values        []float64
		wantNil       bool
		direction     string
		change        float64
		changePercent float64
	}{
		{name: "empty", metric: "total_vulns", wantNil: true},
		{name: "single point", metric: "total_vulns", values: []float64{3}, direction: "stable"},
		{name: "fewer vulns", metric: "total_vulns", values: []float64{5, 3}, direction: "improving", change: -2, changePercent: -40},
		{name: "more vulns", metric: "total_vulns", values: []float64{4, 6}, direction: "degrading", change: 2, changePercent: 50},
		{name: "stable", metric: "code_scanning_open", values: []float64{9, 4, 4}, direction: "stable"},
		{name: "coverage up", metric: "coverage_percent", values: []float64{80, 88}, direction: "improving", change: 8, changePercent: 10},
		{name: "coverage down", metric: "coverage_percent", values: []float64{80, 60}, direction: "degrading", change: -20, changePercent: -25},
		{name: "appeared", metric: "severity_high", values: []float64{0, 2}, direction: "degrading", change: 2, changePercent: 100},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			trend := analyzer.CalculateTrend(tt.metric, seriesOf(ts, tt.values...))
			if tt.wantNil {
				if trend != nil {
					t.Fatalf("expected nil trend, got %+v", trend)
				}
				return
			}
			if trend == nil {
				t.Fatal("expected trend, got nil")
			}
			if trend.Direction != tt.direction {
				t.Errorf("direction = %s, want %s", trend.Direction, tt.direction)
			}
			if trend.Change != tt.change {
				t.Errorf("change = %v, want %v", trend.Change, tt.change)
			}
			if math.Abs(trend.ChangePercent-tt.changePercent) > 0.01 {
				t.Errorf("change percent = %v, want %v", trend.ChangePercent, tt.changePercent)
			}
			if trend.Points != len(tt.values) || len(trend.Sparkline) != len(tt.values) {
				t.Errorf("points = %d, sparkline = %v", trend.Points, trend.Sparkline)
			}
			if trend.Current != tt.values[len(tt.values)-1] {
				t.Errorf("current = %v", trend.Current)
			}
		})
	}
}

func TestCalculateTrendComparedWith(t *testing.T) {
	ts := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	trend := NewTrendAnalyzer().CalculateTrend("loc", seriesOf(ts, 10, 20, 30))

	if !trend.ComparedWith.Equal(ts.Add(24 * time.Hour)) {
		t.Errorf("compared with = %v", trend.ComparedWith)
	}
	if !trend.LatestAt.Equal(ts.Add(48 * time.Hour)) {
		t.Errorf("latest at = %v", trend.LatestAt)
	}
}

func TestCalculateTrends(t *testing.T) {
	ts := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	h := &storage.History{Series: map[string]storage.Series{
		"total_vulns":      seriesOf(ts, 5, 4, 6),
		"coverage_percent": seriesOf(ts.Add(24*time.Hour), 70, 75),
		"empty":            {},
	}}

	summary := NewTrendAnalyzer().CalculateTrends(h)

	if summary.RunsAnalyzed != 3 {
		t.Errorf("runs analyzed = %d, want 3", summary.RunsAnalyzed)
	}
	if summary.TimeRange != "Last 2 days" {
		t.Errorf("time range = %q", summary.TimeRange)
	}
	if len(summary.Metrics) != 2 {
		t.Fatalf("expected 2 trends, got %d", len(summary.Metrics))
	}
	if summary.Metrics[0].Name != "coverage_percent" || summary.Metrics[1].Name != "total_vulns" {
		t.Errorf("trends not sorted by name: %+v", summary.Metrics)
	}

	degrading := summary.Degrading()
	if len(degrading) != 1 || degrading[0].Name != "total_vulns" {
		t.Errorf("degrading = %+v", degrading)
	}
}

func TestCalculateTrendsEmpty(t *testing.T) {
	analyzer := NewTrendAnalyzer()

	for _, h := range []*storage.History{nil, {Series: map[string]storage.Series{}}} {
		summary := analyzer.CalculateTrends(h)
		if summary.RunsAnalyzed != 0 || summary.TimeRange != "No runs" || len(summary.Metrics) != 0 {
			t.Errorf("unexpected summary for empty history: %+v", summary)
		}
	}
}

func TestCalculateTrendsSingleRun(t *testing.T) {
	h := &storage.History{Series: map[string]storage.Series{
		"loc": seriesOf(time.Now(), 100),
	}}
	summary := NewTrendAnalyzer().CalculateTrends(h)
	if summary.TimeRange != "Single run" {
		t.Errorf("time range = %q", summary.TimeRange)
	}
}

func TestHigherIsBetter(t *testing.T) {
	if !HigherIsBetter("coverage_percent") || !HigherIsBetter("zig_coverage_percent") {
		t.Error("percentages should improve upwards")
	}
	if HigherIsBetter("total_vulns") || HigherIsBetter("loc") {
		t.Error("counts should improve downwards")
	}
}

func TestGetTrendIndicator(t *testing.T) {
	tests := map[float64]string{-1: "↓", 2.5: "↑", 0: "→"}
	for change, want := range tests {
		if got := GetTrendIndicator(change); got != want {
			t.Errorf("GetTrendIndicator(%v) = %q, want %q", change, got, want)
		}
	}
}
