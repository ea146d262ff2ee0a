package claude

import "strconv"

// BuildArgs maps options onto the external tool's argument grammar and
// returns the complete argument vector, binary first. Pure: no environment
// or filesystem access happens here.
func BuildArgs(opts *Options) []string {
	bin := opts.Bin
	if bin == "" {
		bin = DefaultBin
	}
	args := []string{bin, "-p"}

	// Session management: resume wins over an explicit new-session id
	if opts.Resume != "" {
		args = append(args, "--resume", opts.Resume)
	} else if opts.SessionID != "" {
		args = append(args, "--session-id", opts.SessionID)
	}
	if opts.ContinueSession {
		args = append(args, "--continue")
	}

	// Permission control: the skip flag wins if both are somehow set
	if opts.SkipPermissions {
		args = append(args, "--dangerously-skip-permissions")
	} else if opts.PermissionMode != "" {
		args = append(args, "--permission-mode", opts.PermissionMode)
	}

	// --allowedTools and --disallowedTools are variadic (<tools...>) in
	// the tool's grammar and greedily consume subsequent non-flag
	// arguments. The whole rule list goes through as one token so it can
	// never swallow the prompt.
	if opts.AllowedTools != "" {
		args = append(args, "--allowedTools", opts.AllowedTools)
	}
	if opts.DisallowedTools != "" {
		args = append(args, "--disallowedTools", opts.DisallowedTools)
	}

	// A configured third-party endpoint does its own model routing
	if opts.Model != "" && !opts.ThirdPartyModel {
		args = append(args, "--model", opts.Model)
	}

	// Execution limits
	if opts.MaxTurns > 0 {
		args = append(args, "--max-turns", strconv.Itoa(opts.MaxTurns))
	}
	if opts.MaxBudgetUSD > 0 {
		args = append(args, "--max-budget-usd", strconv.FormatFloat(opts.MaxBudgetUSD, 'f', -1, 64))
	}

	if opts.OutputFormat != "" {
		args = append(args, "--output-format", opts.OutputFormat)
	}

	if opts.AppendSystemPrompt != "" {
		args = append(args, "--append-system-prompt", opts.AppendSystemPrompt)
	}

	// --add-dir is variadic too; one pair per directory
	for _, dir := range opts.AddDirs {
		args = append(args, "--add-dir", dir)
	}

	if opts.MCPConfig != "" {
		args = append(args, "--mcp-config", opts.MCPConfig)
	}

	// End option parsing so the prompt stays positional even when it
	// starts with "-"
	args = append(args, "--", opts.Prompt)

	return args
}
