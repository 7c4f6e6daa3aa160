// Package policy enforces alert count limits on a security snapshot.
package policy

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/docsite/internal/security"
)

// Policy file names searched by FindPolicyFile.
var policyFileNames = []string{".docsite-policy.yaml", ".docsite-policy.yml"}

// Policy defines enforcement rules for a security snapshot.
type Policy struct {
	Version string `yaml:"version"`
	Rules   Rules  `yaml:"rules"`
}

// Rules contains all configurable policy rules. Unset rules are not enforced.
type Rules struct {
	MaxCritical       *int `yaml:"max_critical,omitempty"`
	MaxHigh           *int `yaml:"max_high,omitempty"`
	MaxTotalVulns     *int `yaml:"max_total_vulns,omitempty"`
	MaxCodeScanning   *int `yaml:"max_code_scanning,omitempty"`
	MaxSecretScanning *int `yaml:"max_secret_scanning,omitempty"`
}

// Violation is a single policy failure.
type Violation struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Result holds the outcome of a policy check.
type Result struct {
	Pass       bool        `json:"pass"`
	Violations []Violation `json:"violations"`
}

// LoadFromFile reads a policy file. A missing file yields a nil policy.
func LoadFromFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read policy: %w", err)
	}

	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}

	return &p, nil
}

// FindPolicyFile searches for a policy file in the current directory
// and parent directories up to the filesystem root.
func FindPolicyFile() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	return findPolicyFileFrom(dir)
}

func findPolicyFileFrom(dir string) string {
	for {
		for _, name := range policyFileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// Evaluate checks a security snapshot against the policy rules.
func (p *Policy) Evaluate(snap security.Snapshot) *Result {
	if p == nil {
		return &Result{Pass: true}
	}

	checks := []struct {
		rule  string
		limit *int
		label string
		count int
	}{
		{"max_critical", p.Rules.MaxCritical, "critical vulnerabilities", snap.Severity[security.SeverityCritical]},
		{"max_high", p.Rules.MaxHigh, "high vulnerabilities", snap.Severity[security.SeverityHigh]},
		{"max_total_vulns", p.Rules.MaxTotalVulns, "total vulnerabilities", snap.Severity.Total()},
		{"max_code_scanning", p.Rules.MaxCodeScanning, "open code scanning alerts", snap.CodeScanningOpen()},
		{"max_secret_scanning", p.Rules.MaxSecretScanning, "open secret scanning alerts", snap.SecretScanningOpen()},
	}

	var violations []Violation
	for _, c := range checks {
		if c.limit == nil || c.count <= *c.limit {
			continue
		}
		violations = append(violations, Violation{
			Rule:    c.rule,
			Message: fmt.Sprintf("%s %d exceeds limit %d", c.label, c.count, *c.limit),
		})
	}

	return &Result{
		Pass:       len(violations) == 0,
		Violations: violations,
	}
}
