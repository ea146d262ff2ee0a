package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

// execRoot runs the root command with args and captured streams
func execRoot(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errw bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errw)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errw.String(), err
}

func TestFlagAliases(t *testing.T) {
	vals := &rootFlags{}
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	applyFlags(flags, vals)

	err := flags.Parse([]string{
		"--allowedTools", "Read,Grep",
		"--disallowedTools", "Bash",
		"--max-budget", "1.5",
	})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if vals.allowedTools != "Read,Grep" {
		t.Errorf("allowedTools = %q via camel-case alias", vals.allowedTools)
	}
	if vals.disallowedTools != "Bash" {
		t.Errorf("disallowedTools = %q via camel-case alias", vals.disallowedTools)
	}
	if vals.maxBudget != 1.5 {
		t.Errorf("maxBudget = %v, want 1.5", vals.maxBudget)
	}
}

func TestNormalizeFlagName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"allowedTools", "allowed-tools"},
		{"disallowedTools", "disallowed-tools"},
		{"continue", "continue-session"},
		{"model", "model"},
	}

	for _, tt := range tests {
		if got := string(normalizeFlagName(nil, tt.in)); got != tt.want {
			t.Errorf("normalizeFlagName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSessionFlagsMutuallyExclusive(t *testing.T) {
	_, _, err := execRoot(t, "--session", "5a2e01cf-7f56-4b56-a683-bd0d1be8cdc0", "--resume", "x", "prompt")
	if err == nil {
		t.Fatal("Execute() accepted --session together with --resume")
	}
	var xerr *exitError
	if errors.As(err, &xerr) {
		t.Error("mutual exclusion was not rejected at flag level")
	}
}

func TestPermissionFlagsMutuallyExclusive(t *testing.T) {
	_, _, err := execRoot(t, "--permission-mode", "plan", "--dangerously-skip-permissions", "prompt")
	if err == nil {
		t.Fatal("Execute() accepted both permission directives")
	}
}

func TestMissingPromptIsConfigError(t *testing.T) {
	_, stderr, err := execRoot(t)

	var xerr *exitError
	if !errors.As(err, &xerr) || xerr.code != 1 {
		t.Fatalf("Execute() error = %v, want exit code 1", err)
	}
	if !strings.Contains(stderr, "prompt is required") {
		t.Errorf("stderr = %q, missing prompt-required message", stderr)
	}
}

func TestPlanFileNotFound(t *testing.T) {
	_, stderr, err := execRoot(t, "--plan-file", "/no/such/plan.md")

	var xerr *exitError
	if !errors.As(err, &xerr) || xerr.code != 1 {
		t.Fatalf("Execute() error = %v, want exit code 1", err)
	}
	if !strings.Contains(stderr, "Plan file not found: /no/such/plan.md") {
		t.Errorf("stderr = %q, missing plan-file message", stderr)
	}
}

func TestInvalidSessionUUIDIsConfigError(t *testing.T) {
	_, stderr, err := execRoot(t, "--session", "not-a-uuid", "prompt")

	var xerr *exitError
	if !errors.As(err, &xerr) || xerr.code != 1 {
		t.Fatalf("Execute() error = %v, want exit code 1", err)
	}
	if !strings.Contains(stderr, "invalid session id") {
		t.Errorf("stderr = %q, missing session-id message", stderr)
	}
}

func TestVersionFlag(t *testing.T) {
	stdout, _, err := execRoot(t, "--version")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(stdout, version) {
		t.Errorf("stdout = %q, missing version %q", stdout, version)
	}
}
