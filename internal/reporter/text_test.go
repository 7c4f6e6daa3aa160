package reporter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/docsite/internal/aggregator"
)

func TestTextReporterGenerate(t *testing.T) {
	latest := time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC)
	summary := &aggregator.TrendSummary{
		RunsAnalyzed: 2,
		TimeRange:    "Last 1 days",
		Metrics: []aggregator.MetricTrend{
			{Name: "coverage_percent", Current: 88.5, Previous: 80, Change: 8.5, ChangePercent: 10.625, Direction: "improving", Points: 2, LatestAt: latest},
			{Name: "total_vulns", Current: 6, Previous: 4, Change: 2, ChangePercent: 50, Direction: "degrading", Points: 2, LatestAt: latest},
			{Name: "loc", Current: 120, Previous: 120, Direction: "stable", Points: 1, LatestAt: latest},
		},
	}

	var buf bytes.Buffer
	if err := NewTextReporter(&buf).Generate(summary); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Metric History (Last 1 days, 2 run(s))",
		"↑ 80 (+10.6%) improving",
		"↑ 4 (+50.0%) degrading",
		"1 metric(s) degrading",
		"Last recorded: 2026-02-15 10:00:00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "loc") && strings.Contains(line, "stable") {
			t.Errorf("single point metrics should not show a comparison: %q", line)
		}
	}
}

func TestTextReporterGenerateEmpty(t *testing.T) {
	var buf bytes.Buffer
	summary := aggregator.NewTrendAnalyzer().CalculateTrends(nil)
	if err := NewTextReporter(&buf).Generate(summary); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "No history recorded yet.") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}
