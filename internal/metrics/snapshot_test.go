package metrics

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseSelection(t *testing.T) {
	sel := ParseSelection(" coverage, ,loc,,tests ")
	for _, m := range []string{MetricCoverage, MetricLOC, MetricTests} {
		if !sel.Has(m) {
			t.Errorf("expected %s selected", m)
		}
	}
	if sel.Has(MetricFiles) {
		t.Errorf("did not expect %s selected", MetricFiles)
	}
	if len(sel) != 3 {
		t.Errorf("expected 3 selected metrics, got %d", len(sel))
	}
}

func TestSnapshotJSONOmitsUnset(t *testing.T) {
	data, err := json.Marshal(Snapshot{CoveragePercent: floatPtr(88.5), LOC: intPtr(0)})
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"coverage_percent":88.5,"loc":0}`; string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}

	data, err = json.Marshal(Snapshot{})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{}` {
		t.Errorf("got %s, want {}", data)
	}
}

func TestSnapshotTree(t *testing.T) {
	tree, err := Snapshot{GoFiles: intPtr(3), AvgCyclomaticComplexity: floatPtr(2.25)}.Tree()
	if err != nil {
		t.Fatal(err)
	}

	root, ok := tree.(map[string]any)
	if !ok {
		t.Fatalf("tree is %T, want object", tree)
	}
	if root["go_files"] != json.Number("3") {
		t.Errorf("go_files = %#v", root["go_files"])
	}
	if root["avg_cyclomatic_complexity"] != json.Number("2.25") {
		t.Errorf("avg_cyclomatic_complexity = %#v", root["avg_cyclomatic_complexity"])
	}
}

func TestLoadSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metrics.json")
	if err := os.WriteFile(path, []byte(`{"go_files":2,"coverage_percent":70}`), 0o644); err != nil {
		t.Fatal(err)
	}

	snap, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	want := map[string]float64{"go_files": 2, "coverage_percent": 70}
	if got := snap.Flatten(); !reflect.DeepEqual(got, want) {
		t.Errorf("Flatten() = %v, want %v", got, want)
	}

	if _, err := LoadSnapshot(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	if err := os.WriteFile(path, []byte(`{`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected error for malformed file")
	}
}
