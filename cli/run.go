package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/xiaoyuanzhu-com/claude-exec/claude"
	"github.com/xiaoyuanzhu-com/claude-exec/config"
	"github.com/xiaoyuanzhu-com/claude-exec/log"
	"github.com/xiaoyuanzhu-com/claude-exec/task"
)

// defaultTimeoutSeconds bounds the subprocess unless --timeout or the
// defaults file says otherwise
const defaultTimeoutSeconds = 600

// runRoot assembles options from flags, configuration and the defaults
// file, then dispatches to direct or task-file mode
func runRoot(cmd *cobra.Command, vals *rootFlags, args []string) error {
	out := cmd.OutOrStdout()
	errw := cmd.ErrOrStderr()

	cfg := config.Get()
	defaults, err := config.LoadDefaults()
	if err != nil {
		fmt.Fprintf(errw, "ERROR: %v\n", err)
		return &exitError{code: 1}
	}
	if cfg.LogLevel == "" && defaults.LogLevel != "" {
		log.SetLevel(defaults.LogLevel)
	}

	applyDefaults(cmd.Flags(), vals, defaults)

	bin := cfg.ClaudeBin
	if bin == "" {
		bin = defaults.ClaudeBin
	}

	prompt := ""
	if len(args) == 1 {
		prompt = args[0]
	}
	if vals.planFile != "" {
		data, err := os.ReadFile(vals.planFile)
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(errw, "ERROR: Plan file not found: %s\n", vals.planFile)
			return &exitError{code: 1}
		}
		if err != nil {
			fmt.Fprintf(errw, "ERROR: Cannot read plan file: %v\n", err)
			return &exitError{code: 1}
		}
		prompt = string(data)
	}

	opts := &claude.Options{
		Bin:                bin,
		Prompt:             prompt,
		SessionID:          vals.session,
		Resume:             vals.resume,
		ContinueSession:    vals.continueSession,
		PermissionMode:     vals.permissionMode,
		SkipPermissions:    vals.skipPermissions,
		AllowedTools:       vals.allowedTools,
		DisallowedTools:    vals.disallowedTools,
		Model:              vals.model,
		ThirdPartyModel:    cfg.ThirdPartyModel,
		MaxTurns:           vals.maxTurns,
		MaxBudgetUSD:       vals.maxBudget,
		OutputFormat:       vals.outputFormat,
		AppendSystemPrompt: vals.appendSystemPrompt,
		AddDirs:            splitDirs(vals.addDir),
		MCPConfig:          vals.mcpConfig,
		Timeout:            time.Duration(vals.timeout) * time.Second,
	}
	if err := opts.Validate(); err != nil {
		fmt.Fprintf(errw, "ERROR: %v\n", err)
		return &exitError{code: 1}
	}

	argv := claude.BuildArgs(opts)

	if vals.output != "" {
		return runTaskFile(out, errw, argv, opts, vals.output)
	}
	return runDirect(out, errw, argv, opts)
}

// applyDefaults fills flag values from the defaults file. Explicit flags
// always win; only flags the user did not set on the command line are filled.
func applyDefaults(flags *pflag.FlagSet, vals *rootFlags, defaults config.Defaults) {
	if !flags.Changed("model") && defaults.Model != "" {
		vals.model = defaults.Model
	}
	if !flags.Changed("permission-mode") && defaults.PermissionMode != "" {
		vals.permissionMode = defaults.PermissionMode
	}
	if !flags.Changed("allowed-tools") && defaults.AllowedTools != "" {
		vals.allowedTools = defaults.AllowedTools
	}
	if !flags.Changed("disallowed-tools") && defaults.DisallowedTools != "" {
		vals.disallowedTools = defaults.DisallowedTools
	}
	if !flags.Changed("timeout") && defaults.TimeoutSeconds > 0 {
		vals.timeout = defaults.TimeoutSeconds
	}
}

// splitDirs turns the comma-separated --add-dir value into a list
func splitDirs(dirs string) []string {
	if dirs == "" {
		return nil
	}
	var out []string
	for _, d := range strings.Split(dirs, ",") {
		if d = strings.TrimSpace(d); d != "" {
			out = append(out, d)
		}
	}
	return out
}

// runDirect executes the tool and relays its output verbatim
func runDirect(out, errw io.Writer, argv []string, opts *claude.Options) error {
	res := claude.Run(context.Background(), argv, opts.Timeout)

	switch {
	case res.TimedOut():
		fmt.Fprintf(errw, "ERROR: Claude Code did not respond within %ds. "+
			"Consider increasing --timeout for complex tasks.\n", int(opts.Timeout.Seconds()))
		return &exitError{code: 124}
	case res.NotFound():
		fmt.Fprintln(errw, "ERROR: 'claude' command not found. "+
			"Install Claude Code CLI: npm install -g @anthropic-ai/claude-code")
		return &exitError{code: 127}
	case res.Err != nil:
		fmt.Fprintf(errw, "ERROR: %v\n", res.Err)
		return &exitError{code: res.ExitCode}
	}

	if res.Stdout != "" {
		fmt.Fprint(out, res.Stdout)
	}
	if res.Stderr != "" {
		fmt.Fprint(errw, res.Stderr)
	}

	if res.ExitCode != 0 {
		return &exitError{code: res.ExitCode}
	}
	return nil
}

// runTaskFile executes the tool with results delivered through a JSON task
// file; stdout only emits the file path
func runTaskFile(out, errw io.Writer, argv []string, opts *claude.Options, outputPath string) error {
	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		fmt.Fprintf(errw, "ERROR: invalid output path %s: %v\n", outputPath, err)
		return &exitError{code: 1}
	}

	// Phase 1: announce the running task before the child starts
	rec := task.NewRunning(opts.Session())
	if err := task.WriteRecord(absPath, rec); err != nil {
		fmt.Fprintf(errw, "ERROR: failed to write task file: %v\n", err)
		return &exitError{code: 1}
	}
	log.Debug().Str("path", absPath).Msg("task record announced")

	// Phase 2: execute without forwarding output
	res := claude.Run(context.Background(), argv, opts.Timeout)

	// Phase 3: overwrite with the terminal record
	switch {
	case res.TimedOut():
		rec.Fail(task.StatusTimeout, res.ExitCode,
			fmt.Sprintf("Claude Code did not respond within %ds", int(opts.Timeout.Seconds())))
	case res.NotFound():
		rec.Fail(task.StatusError, res.ExitCode, "'claude' command not found")
	case res.Err != nil:
		rec.Fail(task.StatusError, res.ExitCode, res.Err.Error())
	default:
		rec.Finish(res.ExitCode, res.Stdout, res.Stderr)
	}

	if err := task.WriteRecord(absPath, rec); err != nil {
		fmt.Fprintf(errw, "ERROR: failed to finalize task file: %v\n", err)
		return &exitError{code: 1}
	}
	log.Debug().Str("path", absPath).Str("status", rec.Status).Msg("task record finalized")

	fmt.Fprintln(out, absPath)

	if res.ExitCode != 0 {
		return &exitError{code: res.ExitCode}
	}
	return nil
}
