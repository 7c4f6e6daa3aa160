// Package reporter renders snapshots and trends as JSON, Markdown and text,
// and writes the published artifact files.
package reporter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/docsite/internal/metrics"
	"github.com/ppiankov/docsite/internal/security"
)

// Artifact file names.
const (
	SecurityJSONFile = "security.json"
	SecurityMDFile   = "security.md"
	MetricsJSONFile  = "metrics.json"
	MetricsMDFile    = "metrics.md"
)

// WriteSecurity writes security.json and security.md into dir. Both files
// are fully replaced.
func WriteSecurity(dir string, snap security.Snapshot) error {
	data, err := marshalJSON(snap, true)
	if err != nil {
		return fmt.Errorf("failed to marshal security snapshot: %w", err)
	}
	return writeArtifacts(dir, map[string][]byte{
		SecurityJSONFile: data,
		SecurityMDFile:   []byte(SecurityMarkdown(snap)),
	})
}

// WriteMetrics writes metrics.json and metrics.md into dir.
func WriteMetrics(dir string, snap metrics.Snapshot, threshold int) error {
	data, err := marshalJSON(snap, true)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics snapshot: %w", err)
	}
	return writeArtifacts(dir, map[string][]byte{
		MetricsJSONFile: data,
		MetricsMDFile:   []byte(MetricsMarkdown(snap, threshold)),
	})
}

func writeArtifacts(dir string, files map[string][]byte) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for name, data := range files {
		if err := writeFileAtomic(filepath.Join(dir, name), data); err != nil {
			return err
		}
	}
	return nil
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place, so readers never see a partial file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
