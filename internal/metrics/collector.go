package metrics

import (
	"bufio"
	"bytes"
	"context"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"github.com/ppiankov/docsite/internal/runner"
)

const (
	coverageFile    = ".coverage_percent"
	zigCoverageHTML = "zig_coverage/index.html"
	gocycloBinary   = "gocyclo"
)

var (
	testFuncPattern    = regexp.MustCompile(`^func\s+Test[^(]+\(`)
	zigCoveragePattern = regexp.MustCompile(`(?is)Total[^%]{0,200}?([0-9]+(?:\.[0-9]+)?)%`)
)

// ToolRunner executes external analysis tools.
type ToolRunner interface {
	Run(ctx context.Context, configs []runner.RunConfig) []runner.RunResult
}

// Options configure a Collector.
type Options struct {
	// OutputDir is where generated site sources live; zig coverage reports
	// are read from it.
	OutputDir string
	// Threshold is the complexity score above which a function is counted.
	Threshold   int
	Runner      ToolRunner
	ToolTimeout time.Duration
	Logger      zerolog.Logger
}

// Collector measures a source tree.
type Collector struct {
	outputDir   string
	threshold   int
	runner      ToolRunner
	toolTimeout time.Duration
	logger      zerolog.Logger
}

// NewCollector creates a Collector. A nil Runner disables complexity metrics.
func NewCollector(opts Options) *Collector {
	return &Collector{
		outputDir:   opts.OutputDir,
		threshold:   opts.Threshold,
		runner:      opts.Runner,
		toolTimeout: opts.ToolTimeout,
		logger:      opts.Logger,
	}
}

// Collect gathers the selected metrics under root. Unreadable inputs and
// missing tools leave the affected values unset.
func (c *Collector) Collect(ctx context.Context, root string, selected Selection) Snapshot {
	var snap Snapshot

	if selected.Has(MetricCoverage) {
		snap.CoveragePercent = c.readCoverage(root)
		snap.ZigCoveragePercent = c.readZigCoverage()
	}

	files := c.goFiles(root)

	if selected.Has(MetricFiles) {
		snap.GoFiles = intPtr(len(files))
	}
	if selected.Has(MetricTests) {
		snap.TestFunctions = intPtr(countTestFunctions(root, files))
	}
	if selected.Has(MetricLOC) {
		snap.LOC = intPtr(countLines(root, files))
	}
	if selected.Has(MetricAvgComplexity) || selected.Has(MetricHighComplexity) {
		c.complexity(ctx, root, files, selected, &snap)
	}

	return snap
}

func (c *Collector) readCoverage(root string) *float64 {
	data, err := os.ReadFile(filepath.Join(root, coverageFile))
	if err != nil {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		c.logger.Warn().Str("file", coverageFile).Err(err).Msg("ignoring unparseable coverage value")
		return nil
	}
	return floatPtr(v)
}

func (c *Collector) readZigCoverage() *float64 {
	if c.outputDir == "" {
		return nil
	}
	data, err := os.ReadFile(filepath.Join(c.outputDir, zigCoverageHTML))
	if err != nil {
		return nil
	}
	m := zigCoveragePattern.FindSubmatch(data)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(string(m[1]), 64)
	if err != nil {
		return nil
	}
	return floatPtr(v)
}

// goFiles returns the slash separated paths of Go sources under root,
// relative to root, skipping vendored code.
func (c *Collector) goFiles(root string) []string {
	matches, err := doublestar.Glob(os.DirFS(root), "**/*.go")
	if err != nil {
		c.logger.Warn().Str("root", root).Err(err).Msg("failed to list Go files")
		return nil
	}
	files := make([]string, 0, len(matches))
	for _, m := range matches {
		if vendored, _ := doublestar.Match("**/vendor/**", m); vendored {
			continue
		}
		if info, err := fs.Stat(os.DirFS(root), m); err != nil || info.IsDir() {
			continue
		}
		files = append(files, m)
	}
	return files
}

func isTestFile(name string) bool {
	return strings.HasSuffix(name, "_test.go")
}

func countTestFunctions(root string, files []string) int {
	count := 0
	for _, f := range files {
		if !isTestFile(f) {
			continue
		}
		_ = scanLines(filepath.Join(root, filepath.FromSlash(f)), func(line string) {
			if testFuncPattern.MatchString(line) {
				count++
			}
		})
	}
	return count
}

// countLines counts non-blank lines of non-test sources.
func countLines(root string, files []string) int {
	count := 0
	for _, f := range files {
		if isTestFile(f) {
			continue
		}
		_ = scanLines(filepath.Join(root, filepath.FromSlash(f)), func(line string) {
			if strings.TrimSpace(line) != "" {
				count++
			}
		})
	}
	return count
}

func scanLines(path string, fn func(line string)) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	for sc.Scan() {
		fn(sc.Text())
	}
	return sc.Err()
}

func (c *Collector) complexity(ctx context.Context, root string, files []string, selected Selection, snap *Snapshot) {
	if c.runner == nil || len(files) == 0 {
		return
	}

	args := make([]string, len(files))
	for i, f := range files {
		args[i] = filepath.Join(root, filepath.FromSlash(f))
	}
	results := c.runner.Run(ctx, []runner.RunConfig{{
		Tool:    "complexity",
		Binary:  gocycloBinary,
		Args:    args,
		Timeout: c.toolTimeout,
	}})
	for _, r := range results {
		if !r.Success {
			c.logger.Info().Str("tool", r.Binary).Str("error", r.Error).Msg("complexity metrics skipped")
		}
	}
	ok := runner.Successful(results)
	if len(ok) == 0 {
		return
	}

	out := strings.TrimSpace(string(ok[0].Output))
	if out == "" {
		return
	}
	scores := ParseComplexity(out)

	if len(scores) > 0 && selected.Has(MetricAvgComplexity) {
		sum := 0.0
		for _, s := range scores {
			sum += s
		}
		snap.AvgCyclomaticComplexity = floatPtr(math.Round(sum/float64(len(scores))*100) / 100)
	}
	if selected.Has(MetricHighComplexity) {
		high := 0
		for _, s := range scores {
			if s > float64(c.threshold) {
				high++
			}
		}
		snap.HighComplexityFunctions = intPtr(high)
	}
}

// ParseComplexity extracts the leading score of every gocyclo output line.
// Lines without a numeric first field are skipped.
func ParseComplexity(out string) []float64 {
	var scores []float64
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		v, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			continue
		}
		scores = append(scores, v)
	}
	return scores
}
