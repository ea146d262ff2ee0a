package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// version is stamped at release build time via -ldflags
var version = "dev"

// exitError carries a process exit code through cobra's error return. The
// message, if any, has already been written to stderr by the time it is
// created.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

// Execute runs the CLI and returns the process exit code
func Execute() int {
	if err := newRootCmd().Execute(); err != nil {
		var xerr *exitError
		if errors.As(err, &xerr) {
			return xerr.code
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// rootFlags mirrors the launcher's flag surface before it is assembled
// into claude.Options
type rootFlags struct {
	session         string
	resume          string
	continueSession bool

	permissionMode  string
	skipPermissions bool

	allowedTools    string
	disallowedTools string

	model              string
	maxTurns           int
	maxBudget          float64
	outputFormat       string
	appendSystemPrompt string

	addDir    string
	mcpConfig string

	timeout  int
	output   string
	planFile string
}

func newRootCmd() *cobra.Command {
	vals := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "claude-exec [flags] [prompt]",
		Short: "Run Claude Code in non-interactive print mode",
		Long: `claude-exec runs the Claude Code CLI once in non-interactive (--print) mode.

Supports single-shot queries and multi-turn conversations via --session and
--resume. With --output FILE, results are written to a JSON task file instead
of stdout, enabling file-based async task delegation; the companion "wait"
command blocks until such a file reaches a terminal status.`,
		Example: `  # Single analysis query (read-only, safe)
  claude-exec "Analyze the architecture of src/"

  # Start a new multi-turn session
  claude-exec --session 5a2e01cf-7f56-4b56-a683-bd0d1be8cdc0 "Read main.go and suggest improvements"

  # Resume an existing session
  claude-exec --resume refactor-auth "Apply the changes you suggested"

  # Read-only analysis with JSON output
  claude-exec --permission-mode plan --output-format json "List all API endpoints"

  # Editing with an explicit tool allowlist
  claude-exec --allowed-tools "Read,Edit(src/**),Bash(npm test)" "Fix the token refresh bug"

  # Delegate asynchronously via a task file
  claude-exec --output /tmp/task.json "Refactor the database layer"
  claude-exec wait /tmp/task.json`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, vals, args)
		},
	}

	applyFlags(cmd.Flags(), vals)
	cmd.MarkFlagsMutuallyExclusive("session", "resume", "continue-session")
	cmd.MarkFlagsMutuallyExclusive("permission-mode", "dangerously-skip-permissions")

	cmd.AddCommand(newWaitCmd())

	return cmd
}

// applyFlags defines the launcher's flags on the given set
func applyFlags(flags *pflag.FlagSet, vals *rootFlags) {
	flags.SetNormalizeFunc(normalizeFlagName)

	flags.StringVar(&vals.session, "session", "", "Create a new session with this UUID")
	flags.StringVar(&vals.resume, "resume", "", "Resume an existing session by ID or name")
	flags.BoolVar(&vals.continueSession, "continue-session", false, "Continue the most recent session in the working directory")

	flags.StringVar(&vals.permissionMode, "permission-mode", "", "Permission mode (default, plan, acceptEdits, dontAsk, bypassPermissions)")
	flags.BoolVar(&vals.skipPermissions, "dangerously-skip-permissions", false, "Skip ALL permission checks (use only in isolated environments)")

	flags.StringVar(&vals.allowedTools, "allowed-tools", "", `Comma-separated tool allow rules, e.g. "Read,Edit(src/**),Bash(npm test)"`)
	flags.StringVar(&vals.disallowedTools, "disallowed-tools", "", `Comma-separated tool deny rules, e.g. "Bash,Write"`)

	flags.StringVar(&vals.model, "model", "", "Model alias (sonnet, opus, haiku) or full model ID")
	flags.IntVar(&vals.maxTurns, "max-turns", 0, "Max agentic turns before stopping")
	flags.Float64Var(&vals.maxBudget, "max-budget", 0, "Max budget in USD before stopping")
	flags.StringVar(&vals.outputFormat, "output-format", "", "Output format (text, json, stream-json)")
	flags.StringVar(&vals.appendSystemPrompt, "append-system-prompt", "", "Append additional instructions to the system prompt")

	flags.StringVar(&vals.addDir, "add-dir", "", `Comma-separated additional directories, e.g. "../other-project,/shared/libs"`)
	flags.StringVar(&vals.mcpConfig, "mcp-config", "", "Path to MCP server configuration JSON file")

	flags.IntVar(&vals.timeout, "timeout", defaultTimeoutSeconds, "Subprocess timeout in seconds")
	flags.StringVar(&vals.output, "output", "", "Write results to a JSON task file instead of stdout")
	flags.StringVar(&vals.planFile, "plan-file", "", "Read the prompt from a file instead of the command line")
}

// normalizeFlagName accepts the tool's own camel-case spellings as aliases
// for the canonical kebab-case flags
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "allowedTools":
		return "allowed-tools"
	case "disallowedTools":
		return "disallowed-tools"
	case "continue":
		return "continue-session"
	}
	return pflag.NormalizedName(name)
}
