package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/docsite/internal/policy"
	"github.com/ppiankov/docsite/internal/reporter"
	"github.com/ppiankov/docsite/internal/security"
)

var checkPolicyPath string

var checkCmd = &cobra.Command{
	Use:   "check [security.json]",
	Short: "Enforce the security policy on a snapshot",
	Long: `Check a security snapshot against the limits in .docsite-policy.yaml.
The policy file is searched in the current directory and its parents
unless --policy is given.

Exit 1 when any limit is exceeded.

Example policy:
  version: "1"
  rules:
    max_critical: 0
    max_high: 3
    max_secret_scanning: 0

Example:
  docsite check
  docsite check site_src/security.json --policy ci/policy.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkPolicyPath, "policy", "",
		"policy file (default: nearest .docsite-policy.yaml)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	snapshotPath := filepath.Join(cfg.OutputDir, reporter.SecurityJSONFile)
	if len(args) > 0 {
		snapshotPath = args[0]
	}

	policyPath := checkPolicyPath
	if policyPath == "" {
		policyPath = policy.FindPolicyFile()
	}
	if policyPath == "" {
		fmt.Println("No policy file found, nothing to enforce.")
		return nil
	}

	p, err := policy.LoadFromFile(policyPath)
	if err != nil {
		return &ValidationError{Message: err.Error()}
	}
	if p == nil {
		return fmt.Errorf("policy file not found: %s", policyPath)
	}
	logVerbose("Using policy %s", policyPath)

	snap, err := security.LoadSnapshot(snapshotPath)
	if err != nil {
		logError("Failed to load snapshot: %v", err)
		return err
	}

	result := p.Evaluate(snap)
	if result.Pass {
		fmt.Println("PASS: snapshot within policy limits")
		return nil
	}

	for _, v := range result.Violations {
		fmt.Fprintf(os.Stderr, "FAIL [%s] %s\n", v.Rule, v.Message)
	}
	return &ThresholdExceededError{Violations: result.Violations}
}
