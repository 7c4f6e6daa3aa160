package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/docsite/internal/metrics"
	"github.com/ppiankov/docsite/internal/reporter"
	"github.com/ppiankov/docsite/internal/runner"
)

// fakeTools answers every run with fixed gocyclo output.
type fakeTools struct {
	output string
}

func (f fakeTools) Run(_ context.Context, configs []runner.RunConfig) []runner.RunResult {
	results := make([]runner.RunResult, len(configs))
	for i, c := range configs {
		results[i] = runner.RunResult{Tool: c.Tool, Binary: c.Binary, Output: []byte(f.output), Success: true}
	}
	return results
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func resetMetricsFlags(t *testing.T, tools metrics.ToolRunner) {
	t.Helper()
	oldRunner := metricsRunner
	reset := func() {
		metricsRoot = ""
		metricsOutputDir = ""
		metricsList = ""
		metricsThreshold = -1
		metricsDryRun = false
	}
	reset()
	metricsRunner = tools
	t.Cleanup(func() {
		reset()
		metricsRunner = oldRunner
	})
}

var sampleTree = map[string]string{
	"main.go":          "package main\n\nfunc main() {\n}\n",
	"pkg/util.go":      "package pkg\n\n\nfunc Util() int {\n\treturn 1\n}\n",
	"pkg/util_test.go": "package pkg\n\nfunc TestUtil(t *testing.T) {}\nfunc TestOther(t *testing.T) {}\nfunc helper() {}\n",
	"vendor/dep/x.go":  "package dep\n",
	".coverage_percent": "87.5\n",
}

func TestRunMetricsWritesArtifacts(t *testing.T) {
	c := testConfig(t)
	c.Root = writeTree(t, sampleTree)
	resetMetricsFlags(t, fakeTools{output: "12 pkg Util pkg/util.go:4:1\n3 main main main.go:3:1\n"})

	if err := runMetrics(nil, nil); err != nil {
		t.Fatalf("runMetrics: %v", err)
	}

	snap, err := metrics.LoadSnapshot(filepath.Join(c.OutputDir, reporter.MetricsJSONFile))
	if err != nil {
		t.Fatalf("load metrics.json: %v", err)
	}
	checks := []struct {
		name string
		got  *int
		want int
	}{
		{"go_files", snap.GoFiles, 3},
		{"test_functions", snap.TestFunctions, 2},
		{"loc", snap.LOC, 7},
		{"high_complexity_functions", snap.HighComplexityFunctions, 1},
	}
	for _, ck := range checks {
		if ck.got == nil || *ck.got != ck.want {
			t.Errorf("%s = %v, want %d", ck.name, ck.got, ck.want)
		}
	}
	if snap.CoveragePercent == nil || *snap.CoveragePercent != 87.5 {
		t.Errorf("coverage_percent = %v, want 87.5", snap.CoveragePercent)
	}
	if snap.AvgCyclomaticComplexity == nil || *snap.AvgCyclomaticComplexity != 7.5 {
		t.Errorf("avg_cyclomatic_complexity = %v, want 7.5", snap.AvgCyclomaticComplexity)
	}

	md, err := os.ReadFile(filepath.Join(c.OutputDir, reporter.MetricsMDFile))
	if err != nil {
		t.Fatalf("read metrics.md: %v", err)
	}
	if !strings.HasPrefix(string(md), "# Project Metrics") {
		t.Errorf("unexpected metrics.md:\n%s", md)
	}
}

func TestRunMetricsSelection(t *testing.T) {
	c := testConfig(t)
	c.Root = writeTree(t, sampleTree)
	resetMetricsFlags(t, nil)
	metricsList = "files"
	metricsDryRun = true

	var err error
	output := captureStdout(t, func() {
		err = runMetrics(nil, nil)
	})
	if err != nil {
		t.Fatalf("runMetrics: %v", err)
	}
	if output != "{\n  \"go_files\": 3\n}\n" {
		t.Errorf("unexpected dry run output %q", output)
	}
	if _, statErr := os.Stat(filepath.Join(c.OutputDir, reporter.MetricsJSONFile)); !os.IsNotExist(statErr) {
		t.Error("dry run must not write metrics.json")
	}
}

func TestRunMetricsWithoutComplexityTool(t *testing.T) {
	c := testConfig(t)
	c.Root = writeTree(t, sampleTree)
	resetMetricsFlags(t, nil)

	if err := runMetrics(nil, nil); err != nil {
		t.Fatalf("runMetrics: %v", err)
	}
	snap, err := metrics.LoadSnapshot(filepath.Join(c.OutputDir, reporter.MetricsJSONFile))
	if err != nil {
		t.Fatal(err)
	}
	if snap.AvgCyclomaticComplexity != nil || snap.HighComplexityFunctions != nil {
		t.Error("complexity metrics should be skipped without a tool runner")
	}
}

func TestRunMetricsThresholdFlag(t *testing.T) {
	c := testConfig(t)
	c.Root = writeTree(t, sampleTree)
	resetMetricsFlags(t, fakeTools{output: "12 pkg Util pkg/util.go:4:1\n3 main main main.go:3:1\n"})
	metricsThreshold = 2

	if err := runMetrics(nil, nil); err != nil {
		t.Fatalf("runMetrics: %v", err)
	}
	snap, err := metrics.LoadSnapshot(filepath.Join(c.OutputDir, reporter.MetricsJSONFile))
	if err != nil {
		t.Fatal(err)
	}
	if snap.HighComplexityFunctions == nil || *snap.HighComplexityFunctions != 2 {
		t.Errorf("high_complexity_functions = %v, want 2", snap.HighComplexityFunctions)
	}
}

func TestRunMetricsSchemaGate(t *testing.T) {
	c := testConfig(t)
	c.Root = writeTree(t, sampleTree)
	c.SchemaDir = t.TempDir()
	if err := os.WriteFile(filepath.Join(c.SchemaDir, "metrics.schema.json"), []byte(`{"required": ["coverage_percent"]}`), 0644); err != nil {
		t.Fatal(err)
	}
	resetMetricsFlags(t, nil)
	metricsList = "files"

	var err error
	stderr := captureStderr(t, func() {
		err = runMetrics(nil, nil)
	})
	if code := HandleError(err); code != ExitInvalidInput {
		t.Fatalf("expected exit %d, got %d", ExitInvalidInput, code)
	}
	if !strings.Contains(stderr, "SCHEMA_ERROR: metrics snapshot invalid") {
		t.Errorf("expected schema error on stderr, got %q", stderr)
	}
	if _, statErr := os.Stat(filepath.Join(c.OutputDir, reporter.MetricsJSONFile)); !os.IsNotExist(statErr) {
		t.Error("metrics.json must not be written when validation fails")
	}
}
