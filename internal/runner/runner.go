// Package runner executes external analysis tools and captures their output.
package runner

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

// DefaultTimeout is the per-tool execution timeout.
const DefaultTimeout = 2 * time.Minute

// ExecFunc is the signature for running a command and capturing stdout.
// It receives the context, binary path, and args. Returns stdout bytes and error.
type ExecFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// LookPathFunc matches the signature of exec.LookPath.
type LookPathFunc func(file string) (string, error)

// RunConfig describes a single tool invocation.
type RunConfig struct {
	Tool    string
	Binary  string
	Args    []string
	Timeout time.Duration
}

// RunResult is the outcome of a single tool invocation.
type RunResult struct {
	Tool     string
	Binary   string
	Output   []byte
	Duration time.Duration
	Success  bool
	Error    string
}

// Runner executes analysis tools found on PATH.
type Runner struct {
	execFn   ExecFunc
	lookPath LookPathFunc
}

// New creates a Runner with the given exec and lookup functions.
// Nil functions fall back to CommandOutput and exec.LookPath.
func New(execFn ExecFunc, lookPath LookPathFunc) *Runner {
	if execFn == nil {
		execFn = CommandOutput
	}
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	return &Runner{
		execFn:   execFn,
		lookPath: lookPath,
	}
}

// CommandOutput runs name and returns its stdout. Stderr is discarded.
func CommandOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Available resolves binary on PATH.
func (r *Runner) Available(binary string) (string, bool) {
	path, err := r.lookPath(binary)
	if err != nil {
		return "", false
	}
	return path, true
}

// Run executes each tool sequentially.
// Partial success: returns all results even if some tools fail.
func (r *Runner) Run(ctx context.Context, configs []RunConfig) []RunResult {
	results := make([]RunResult, 0, len(configs))
	for _, cfg := range configs {
		results = append(results, r.runOne(ctx, cfg))
	}
	return results
}

// runOne executes a single tool.
func (r *Runner) runOne(ctx context.Context, cfg RunConfig) RunResult {
	path, ok := r.Available(cfg.Binary)
	if !ok {
		return RunResult{
			Tool:    cfg.Tool,
			Binary:  cfg.Binary,
			Success: false,
			Error:   fmt.Sprintf("%s not found in PATH", cfg.Binary),
		}
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	toolCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	stdout, err := r.execFn(toolCtx, path, cfg.Args...)
	duration := time.Since(start)

	if err != nil {
		return RunResult{
			Tool:     cfg.Tool,
			Binary:   path,
			Duration: duration,
			Success:  false,
			Error:    err.Error(),
		}
	}

	return RunResult{
		Tool:     cfg.Tool,
		Binary:   path,
		Output:   stdout,
		Duration: duration,
		Success:  true,
	}
}

// Successful returns the results that produced output.
func Successful(results []RunResult) []RunResult {
	var ok []RunResult
	for _, r := range results {
		if r.Success {
			ok = append(ok, r)
		}
	}
	return ok
}
