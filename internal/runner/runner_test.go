package runner

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

// mockExec returns a function that produces canned output per binary.
func mockExec(outputs map[string][]byte, errs map[string]error) ExecFunc {
	return func(ctx context.Context, name string, args ...string) ([]byte, error) {
		if err, ok := errs[name]; ok {
			return nil, err
		}
		if out, ok := outputs[name]; ok {
			// Respect context cancellation
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
				return out, nil
			}
		}
		return nil, errors.New("unknown binary: " + name)
	}
}

// mockLookPath resolves every binary in the set to /usr/local/bin/<name>.
func mockLookPath(installed ...string) LookPathFunc {
	return func(file string) (string, error) {
		for _, b := range installed {
			if b == file {
				return "/usr/local/bin/" + file, nil
			}
		}
		return "", errors.New("executable file not found in $PATH")
	}
}

func TestRun_Success(t *testing.T) {
	output := []byte("3 main main main.go:2:1\n")
	var gotArgs []string
	exec := func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotArgs = args
		return mockExec(map[string][]byte{"/usr/local/bin/gocyclo": output}, nil)(ctx, name, args...)
	}

	r := New(exec, mockLookPath("gocyclo"))
	results := r.Run(context.Background(), []RunConfig{
		{Tool: "complexity", Binary: "gocyclo", Args: []string{"main.go"}},
	})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	res := results[0]
	if !res.Success {
		t.Fatalf("expected success, got error: %s", res.Error)
	}
	if res.Binary != "/usr/local/bin/gocyclo" {
		t.Errorf("expected resolved binary path, got %s", res.Binary)
	}
	if string(res.Output) != string(output) {
		t.Errorf("output mismatch: got %s", string(res.Output))
	}
	if !reflect.DeepEqual(gotArgs, []string{"main.go"}) {
		t.Errorf("args not passed through: %v", gotArgs)
	}
}

func TestRun_BinaryError(t *testing.T) {
	exec := mockExec(
		nil,
		map[string]error{"/usr/local/bin/gocyclo": errors.New("exit status 1")},
	)

	r := New(exec, mockLookPath("gocyclo"))
	results := r.Run(context.Background(), []RunConfig{{Tool: "complexity", Binary: "gocyclo"}})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Success {
		t.Fatal("expected failure")
	}
	if results[0].Error == "" {
		t.Fatal("expected error message")
	}
}

func TestRun_Timeout(t *testing.T) {
	// Exec function that blocks until context is cancelled
	exec := func(ctx context.Context, name string, args ...string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	r := New(exec, mockLookPath("gocyclo"))
	results := r.Run(context.Background(), []RunConfig{
		{Tool: "complexity", Binary: "gocyclo", Timeout: 50 * time.Millisecond},
	})
	if results[0].Success {
		t.Fatal("expected timeout failure")
	}
	if results[0].Duration < 50*time.Millisecond {
		t.Errorf("expected duration >= 50ms, got %v", results[0].Duration)
	}
}

func TestRun_PartialSuccess(t *testing.T) {
	exec := mockExec(
		map[string][]byte{
			"/usr/local/bin/gocyclo":  []byte("1 a b c.go:1:1\n"),
			"/usr/local/bin/gocognit": []byte("2 a b c.go:1:1\n"),
		},
		map[string]error{
			"/usr/local/bin/staticcheck": errors.New("exit status 2"),
		},
	)

	r := New(exec, mockLookPath("gocyclo", "gocognit", "staticcheck"))
	results := r.Run(context.Background(), []RunConfig{
		{Tool: "cyclomatic", Binary: "gocyclo"},
		{Tool: "lint", Binary: "staticcheck"},
		{Tool: "cognitive", Binary: "gocognit"},
	})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	ok := Successful(results)
	if len(ok) != 2 {
		t.Errorf("expected 2 successes, got %d", len(ok))
	}
}

func TestRun_MissingBinary(t *testing.T) {
	called := false
	exec := func(ctx context.Context, name string, args ...string) ([]byte, error) {
		called = true
		return nil, nil
	}

	r := New(exec, mockLookPath())
	results := r.Run(context.Background(), []RunConfig{{Tool: "complexity", Binary: "gocyclo"}})
	if results[0].Success {
		t.Fatal("expected failure for missing binary")
	}
	if called {
		t.Error("exec must not run when the binary is not on PATH")
	}
}

func TestAvailable(t *testing.T) {
	r := New(nil, mockLookPath("gocyclo"))

	if path, ok := r.Available("gocyclo"); !ok || path != "/usr/local/bin/gocyclo" {
		t.Errorf("Available(gocyclo) = %q, %v", path, ok)
	}
	if _, ok := r.Available("nope"); ok {
		t.Error("Available(nope) should be false")
	}
}

func TestSuccessful_Empty(t *testing.T) {
	if ok := Successful(nil); len(ok) != 0 {
		t.Errorf("expected 0 results, got %d", len(ok))
	}
}

func TestSuccessful_MixedResults(t *testing.T) {
	results := []RunResult{
		{Success: true, Tool: "a"},
		{Success: false, Error: "failed"},
		{Success: true, Tool: "b"},
	}

	ok := Successful(results)
	if len(ok) != 2 || ok[0].Tool != "a" || ok[1].Tool != "b" {
		t.Errorf("unexpected successful results: %+v", ok)
	}
}
