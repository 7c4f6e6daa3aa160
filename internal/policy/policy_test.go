package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/docsite/internal/security"
)

func intPtr(v int) *int { return &v }

func baseSnapshot() security.Snapshot {
	return security.Snapshot{
		Severity:       security.SeverityCounts{"critical": 1, "high": 2, "medium": 0, "low": 1},
		CodeScanning:   map[string]int{"open": 3},
		SecretScanning: map[string]int{"open": 0},
	}
}

func TestEvaluateNilPolicy(t *testing.T) {
	var p *Policy
	result := p.Evaluate(baseSnapshot())
	if !result.Pass {
		t.Error("nil policy should pass")
	}
}

func TestEvaluateEmptyRules(t *testing.T) {
	p := &Policy{}
	if result := p.Evaluate(baseSnapshot()); !result.Pass {
		t.Errorf("policy without rules should pass, got %v", result.Violations)
	}
}

func TestEvaluateRules(t *testing.T) {
	tests := []struct {
		name     string
		rules    Rules
		wantRule string
	}{
		{"max_critical pass", Rules{MaxCritical: intPtr(1)}, ""},
		{"max_critical fail", Rules{MaxCritical: intPtr(0)}, "max_critical"},
		{"max_high pass", Rules{MaxHigh: intPtr(2)}, ""},
		{"max_high fail", Rules{MaxHigh: intPtr(1)}, "max_high"},
		{"max_total_vulns pass", Rules{MaxTotalVulns: intPtr(4)}, ""},
		{"max_total_vulns fail", Rules{MaxTotalVulns: intPtr(3)}, "max_total_vulns"},
		{"max_code_scanning fail", Rules{MaxCodeScanning: intPtr(2)}, "max_code_scanning"},
		{"max_secret_scanning zero pass", Rules{MaxSecretScanning: intPtr(0)}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := (&Policy{Rules: tt.rules}).Evaluate(baseSnapshot())
			if tt.wantRule == "" {
				if !result.Pass {
					t.Errorf("expected pass, got violations: %v", result.Violations)
				}
				return
			}
			if result.Pass {
				t.Fatal("expected failure")
			}
			if len(result.Violations) != 1 || result.Violations[0].Rule != tt.wantRule {
				t.Errorf("expected %s violation, got %v", tt.wantRule, result.Violations)
			}
		})
	}
}

func TestEvaluateMultipleViolations(t *testing.T) {
	p := &Policy{Rules: Rules{
		MaxCritical:     intPtr(0),
		MaxHigh:         intPtr(0),
		MaxCodeScanning: intPtr(0),
	}}
	result := p.Evaluate(baseSnapshot())
	if result.Pass {
		t.Fatal("expected failure")
	}
	if len(result.Violations) != 3 {
		t.Errorf("expected 3 violations, got %d: %v", len(result.Violations), result.Violations)
	}
	if result.Violations[0].Message != "critical vulnerabilities 1 exceeds limit 0" {
		t.Errorf("unexpected message: %s", result.Violations[0].Message)
	}
}

func TestEvaluateEmptySnapshot(t *testing.T) {
	p := &Policy{Rules: Rules{MaxCritical: intPtr(0), MaxTotalVulns: intPtr(0), MaxSecretScanning: intPtr(0)}}
	if result := p.Evaluate(security.EmptySnapshot()); !result.Pass {
		t.Errorf("empty snapshot should pass, got %v", result.Violations)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".docsite-policy.yaml")
	content := `version: "1"
rules:
  max_critical: 0
  max_high: 5
  max_secret_scanning: 0
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Version != "1" {
		t.Errorf("version = %q", p.Version)
	}
	if p.Rules.MaxCritical == nil || *p.Rules.MaxCritical != 0 {
		t.Error("expected max_critical=0")
	}
	if p.Rules.MaxHigh == nil || *p.Rules.MaxHigh != 5 {
		t.Error("expected max_high=5")
	}
	if p.Rules.MaxTotalVulns != nil {
		t.Error("max_total_vulns should be unset")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	p, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Error("missing file should yield a nil policy")
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("rules: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFindPolicyFileFromParent(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(root, ".docsite-policy.yml")
	if err := os.WriteFile(want, []byte("rules: {}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if got := findPolicyFileFrom(nested); got != want {
		t.Errorf("findPolicyFileFrom = %q, want %q", got, want)
	}
}

func TestFindPolicyFileNone(t *testing.T) {
	// Temp dirs normally have no policy above them; only assert no panic and
	// that a found file really exists.
	if got := findPolicyFileFrom(t.TempDir()); got != "" {
		if _, err := os.Stat(got); err != nil {
			t.Errorf("returned path does not exist: %s", got)
		}
	}
}
