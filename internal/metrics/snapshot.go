// Package metrics gathers repository code metrics: coverage, test counts,
// source size and cyclomatic complexity.
package metrics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Selectable metric names.
const (
	MetricCoverage       = "coverage"
	MetricTests          = "tests"
	MetricFiles          = "files"
	MetricLOC            = "loc"
	MetricAvgComplexity  = "avg_complexity"
	MetricHighComplexity = "high_complexity"
)

// AllMetrics lists every selectable metric.
var AllMetrics = []string{
	MetricCoverage,
	MetricTests,
	MetricFiles,
	MetricLOC,
	MetricAvgComplexity,
	MetricHighComplexity,
}

// DefaultHighComplexityThreshold is the score above which a function counts
// as highly complex.
const DefaultHighComplexityThreshold = 10

// Selection is the set of metrics to collect.
type Selection map[string]bool

// ParseSelection parses a comma separated metric list. Blank entries are
// dropped; unknown names are kept and simply never match a collector.
func ParseSelection(list string) Selection {
	sel := Selection{}
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			sel[name] = true
		}
	}
	return sel
}

// Has reports whether name was selected.
func (s Selection) Has(name string) bool {
	return s[name]
}

// Snapshot holds the collected values. Unset fields were not selected or
// could not be measured and are omitted from the JSON document.
type Snapshot struct {
	CoveragePercent         *float64 `json:"coverage_percent,omitempty"`
	ZigCoveragePercent      *float64 `json:"zig_coverage_percent,omitempty"`
	GoFiles                 *int     `json:"go_files,omitempty"`
	TestFunctions           *int     `json:"test_functions,omitempty"`
	LOC                     *int     `json:"loc,omitempty"`
	AvgCyclomaticComplexity *float64 `json:"avg_cyclomatic_complexity,omitempty"`
	HighComplexityFunctions *int     `json:"high_complexity_functions,omitempty"`
}

// Tree converts the snapshot to the generic JSON value tree the schema
// validator works on.
func (s Snapshot) Tree() (any, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal metrics: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("decode metrics: %w", err)
	}
	return tree, nil
}

// Flatten returns every present value keyed by its JSON name.
func (s Snapshot) Flatten() map[string]float64 {
	flat := make(map[string]float64)
	putFloat := func(key string, v *float64) {
		if v != nil {
			flat[key] = *v
		}
	}
	putInt := func(key string, v *int) {
		if v != nil {
			flat[key] = float64(*v)
		}
	}
	putFloat("coverage_percent", s.CoveragePercent)
	putFloat("zig_coverage_percent", s.ZigCoveragePercent)
	putInt("go_files", s.GoFiles)
	putInt("test_functions", s.TestFunctions)
	putInt("loc", s.LOC)
	putFloat("avg_cyclomatic_complexity", s.AvgCyclomaticComplexity)
	putInt("high_complexity_functions", s.HighComplexityFunctions)
	return flat
}

// LoadSnapshot reads a metrics file written by the artifact writer.
func LoadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read metrics: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("parse metrics: %w", err)
	}
	return s, nil
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
