package claude

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultBin is the external tool binary resolved via PATH
	DefaultBin = "claude"

	// DefaultTimeout bounds the subprocess when no explicit timeout is set
	DefaultTimeout = 600 * time.Second
)

// permissionModes are the modes the external tool accepts
var permissionModes = map[string]bool{
	"default":           true,
	"plan":              true,
	"acceptEdits":       true,
	"dontAsk":           true,
	"bypassPermissions": true,
}

// outputFormats are the formats the external tool accepts
var outputFormats = map[string]bool{
	"text":        true,
	"json":        true,
	"stream-json": true,
}

// Options describes one invocation of the external tool. Assembled once
// from parsed flags and configuration, then validated before any
// subprocess is launched.
type Options struct {
	// Bin is the tool binary name or path; empty means DefaultBin
	Bin string

	// Prompt is the text sent to the tool, from the positional argument
	// or a plan file
	Prompt string

	// Session directives (mutually exclusive)
	SessionID       string // create a new session with this UUID
	Resume          string // resume an existing session by id or name
	ContinueSession bool   // continue the most recent session

	// Permission directives (mutually exclusive)
	PermissionMode  string
	SkipPermissions bool

	// Tool rule lists, passed through as single comma/space-separated
	// values
	AllowedTools    string
	DisallowedTools string

	// Model selection. ThirdPartyModel is resolved once at startup from
	// the endpoint environment variables and suppresses --model.
	Model           string
	ThirdPartyModel bool

	// Execution limits; zero means unset
	MaxTurns     int
	MaxBudgetUSD float64

	OutputFormat       string
	AppendSystemPrompt string

	// AddDirs are extra working directories the tool may access
	AddDirs []string

	// MCPConfig is a path to an MCP server configuration file
	MCPConfig string

	// Timeout bounds the subprocess; zero means DefaultTimeout
	Timeout time.Duration
}

// Validate checks the option invariants before execution
func (o *Options) Validate() error {
	if o.Prompt == "" {
		return errors.New("prompt is required (provide as argument or via --plan-file)")
	}

	directives := 0
	if o.SessionID != "" {
		directives++
	}
	if o.Resume != "" {
		directives++
	}
	if o.ContinueSession {
		directives++
	}
	if directives > 1 {
		return errors.New("--session, --resume and --continue-session are mutually exclusive")
	}

	if o.SkipPermissions && o.PermissionMode != "" {
		return errors.New("--permission-mode and --dangerously-skip-permissions are mutually exclusive")
	}
	if o.PermissionMode != "" && !permissionModes[o.PermissionMode] {
		return fmt.Errorf("invalid permission mode %q", o.PermissionMode)
	}

	if o.OutputFormat != "" && !outputFormats[o.OutputFormat] {
		return fmt.Errorf("invalid output format %q", o.OutputFormat)
	}

	// The tool rejects non-UUID session ids; fail fast here instead
	if o.SessionID != "" {
		if _, err := uuid.Parse(o.SessionID); err != nil {
			return fmt.Errorf("invalid session id %q: must be a UUID", o.SessionID)
		}
	}

	return nil
}

// Session returns the session identifier carried into task records: the
// resume target if set, else the new-session id, else empty.
func (o *Options) Session() string {
	if o.Resume != "" {
		return o.Resume
	}
	return o.SessionID
}
