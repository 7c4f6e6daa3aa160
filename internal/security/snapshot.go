// Package security builds the open-alert snapshot of a repository.
package security

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Severity levels, in reporting order.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// Levels lists the known severity levels from most to least severe.
var Levels = []string{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// IsLevel reports whether s is a known severity level.
func IsLevel(s string) bool {
	for _, l := range Levels {
		if s == l {
			return true
		}
	}
	return false
}

// SeverityCounts maps a severity level to the number of open alerts.
type SeverityCounts map[string]int

// MarshalJSON writes the known levels first, in severity order.
func (c SeverityCounts) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("{}"), nil
	}

	keys := make([]string, 0, len(c))
	for _, l := range Levels {
		if _, ok := c[l]; ok {
			keys = append(keys, l)
		}
	}
	var extra []string
	for k := range c {
		if !IsLevel(k) {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	keys = append(keys, extra...)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		fmt.Fprintf(&buf, ":%d", c[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Total sums every level.
func (c SeverityCounts) Total() int {
	total := 0
	for _, v := range c {
		total += v
	}
	return total
}

// Snapshot is the aggregated open-alert record for one point in time.
// An empty repository produces empty records.
type Snapshot struct {
	Severity       SeverityCounts `json:"severity"`
	CodeScanning   map[string]int `json:"code_scanning"`
	SecretScanning map[string]int `json:"secret_scanning"`
}

// EmptySnapshot is the result for a run without a repository.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Severity:       SeverityCounts{},
		CodeScanning:   map[string]int{},
		SecretScanning: map[string]int{},
	}
}

// CodeScanningOpen returns the open code scanning alert count.
func (s Snapshot) CodeScanningOpen() int {
	return s.CodeScanning["open"]
}

// SecretScanningOpen returns the open secret scanning alert count.
func (s Snapshot) SecretScanningOpen() int {
	return s.SecretScanning["open"]
}

// Tree converts the snapshot to the generic JSON value tree the schema
// validator works on.
func (s Snapshot) Tree() (any, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return tree, nil
}

// Flatten turns the snapshot into the per-metric values recorded in the
// history series.
func (s Snapshot) Flatten() map[string]float64 {
	flat := make(map[string]float64)
	for level, v := range s.Severity {
		flat["severity_"+level] = float64(v)
	}
	flat["total_vulns"] = float64(s.Severity.Total())
	if len(s.CodeScanning) > 0 {
		flat["code_scanning_open"] = float64(s.CodeScanningOpen())
	}
	if len(s.SecretScanning) > 0 {
		flat["secret_scanning_open"] = float64(s.SecretScanningOpen())
	}
	return flat
}

// LoadSnapshot reads a snapshot file written by the artifact writer.
func LoadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("parse snapshot: %w", err)
	}
	if s.Severity == nil {
		s.Severity = SeverityCounts{}
	}
	if s.CodeScanning == nil {
		s.CodeScanning = map[string]int{}
	}
	if s.SecretScanning == nil {
		s.SecretScanning = map[string]int{}
	}
	return s, nil
}
