// Package storage keeps the per-metric history series of snapshot values.
package storage

import "time"

// Point is one recorded value of a metric.
type Point struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Series is the time ordered list of points of one metric.
type Series []Point

// Values returns the recorded values in order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// MetricRef names a series and the file holding it.
type MetricRef struct {
	Name string `json:"name"`
	File string `json:"file"`
}

// Summary describes the last append.
type Summary struct {
	GeneratedAt time.Time   `json:"generated_at"`
	RunID       string      `json:"run_id"`
	Metrics     []MetricRef `json:"metrics"`
}

// History is every series found in a history directory.
type History struct {
	Summary *Summary
	Series  map[string]Series
}

// Names returns the metric names in sorted order.
func (h *History) Names() []string {
	return sortedKeys(h.Series)
}

// Merge combines several histories into one. Series of the same name are
// taken from the later argument and the newest summary wins.
func Merge(histories ...*History) *History {
	merged := &History{Series: map[string]Series{}}
	for _, h := range histories {
		if h == nil {
			continue
		}
		for name, series := range h.Series {
			merged.Series[name] = series
		}
		if h.Summary != nil && (merged.Summary == nil || h.Summary.GeneratedAt.After(merged.Summary.GeneratedAt)) {
			merged.Summary = h.Summary
		}
	}
	return merged
}

// Storage defines the interface for persisting metric history
type Storage interface {
	// Append records one value per metric at ts and rewrites the summary
	Append(ts time.Time, values map[string]float64) (*Summary, error)

	// LoadSeries loads the series of a single metric
	LoadSeries(name string) (Series, error)

	// LoadSummary loads the summary of the last append
	LoadSummary() (*Summary, error)

	// LoadHistory loads every series in the store
	LoadHistory() (*History, error)
}
