package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	dataDirName     = "data"
	summaryFileName = "summary.json"
	seriesExt       = ".json"
)

// LocalStorage implements Storage using the local filesystem:
// <baseDir>/data/<metric>.json and <baseDir>/summary.json.
type LocalStorage struct {
	baseDir string
	newID   func() string
}

var _ Storage = (*LocalStorage)(nil)

// NewLocal creates a new local storage rooted at baseDir
func NewLocal(baseDir string) *LocalStorage {
	return &LocalStorage{
		baseDir: baseDir,
		newID:   func() string { return uuid.New().String() },
	}
}

// Append adds one point per metric. A series file that cannot be read or
// parsed starts over empty.
func (s *LocalStorage) Append(ts time.Time, values map[string]float64) (*Summary, error) {
	if err := s.EnsureDirectoryExists(); err != nil {
		return nil, err
	}

	summary := &Summary{
		GeneratedAt: ts,
		RunID:       s.newID(),
		Metrics:     make([]MetricRef, 0, len(values)),
	}

	for _, name := range sortedKeys(values) {
		series, err := s.LoadSeries(name)
		if err != nil {
			series = Series{}
		}
		series = append(series, Point{Time: ts, Value: values[name]})

		if err := writeJSON(s.seriesPath(name), series); err != nil {
			return nil, fmt.Errorf("failed to write series %s: %w", name, err)
		}
		summary.Metrics = append(summary.Metrics, MetricRef{Name: name, File: name + seriesExt})
	}

	if err := writeJSON(filepath.Join(s.baseDir, summaryFileName), summary); err != nil {
		return nil, fmt.Errorf("failed to write summary: %w", err)
	}

	return summary, nil
}

// LoadSeries loads the series of one metric. A missing series is empty.
func (s *LocalStorage) LoadSeries(name string) (Series, error) {
	data, err := os.ReadFile(s.seriesPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return Series{}, nil
		}
		return nil, fmt.Errorf("failed to read series: %w", err)
	}

	var series Series
	if err := json.Unmarshal(data, &series); err != nil {
		return nil, fmt.Errorf("failed to unmarshal series %s: %w", name, err)
	}
	return series, nil
}

// LoadSummary loads summary.json.
func (s *LocalStorage) LoadSummary() (*Summary, error) {
	path := filepath.Join(s.baseDir, summaryFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("summary not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var summary Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}
	return &summary, nil
}

// LoadHistory loads every readable series in the data directory. The
// summary is attached when present.
func (s *LocalStorage) LoadHistory() (*History, error) {
	names, err := s.ListMetrics()
	if err != nil {
		return nil, err
	}

	h := &History{Series: make(map[string]Series, len(names))}
	if summary, err := s.LoadSummary(); err == nil {
		h.Summary = summary
	}

	for _, name := range names {
		series, err := s.LoadSeries(name)
		if err != nil {
			continue
		}
		h.Series[name] = series
	}
	return h, nil
}

// ListMetrics returns the names of all stored series, sorted.
func (s *LocalStorage) ListMetrics() ([]string, error) {
	dataDir := filepath.Join(s.baseDir, dataDirName)

	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		return []string{}, nil
	}

	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), seriesExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), seriesExt))
	}
	sort.Strings(names)
	return names, nil
}

// EnsureDirectoryExists creates the data directory if needed
func (s *LocalStorage) EnsureDirectoryExists() error {
	if err := os.MkdirAll(filepath.Join(s.baseDir, dataDirName), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

func (s *LocalStorage) seriesPath(name string) string {
	return filepath.Join(s.baseDir, dataDirName, name+seriesExt)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
