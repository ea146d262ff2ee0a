package task

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Statuses a task record moves through. A record is announced as
// StatusRunning and overwritten exactly once with a terminal status.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusError     = "error"
	StatusTimeout   = "timeout"
)

// timeLayout is the UTC second-resolution stamp stored in records
const timeLayout = "2006-01-02T15:04:05Z"

// Record is the task file contents: the durable, pollable result of one
// tool invocation. Field names are part of the file format consumed by
// external pollers.
type Record struct {
	Status      string `json:"status"`
	StartedAt   string `json:"started_at"`
	CompletedAt string `json:"completed_at,omitempty"`
	PID         int    `json:"pid"`
	Output      string `json:"output,omitempty"`
	ExitCode    *int   `json:"exit_code,omitempty"`
	Error       string `json:"error,omitempty"`
	SessionID   string `json:"session_id,omitempty"`
}

// NewRunning returns the announce-phase record, written before the child
// starts so pollers can see work has begun. The pid is the launcher's own.
func NewRunning(sessionID string) *Record {
	return &Record{
		Status:    StatusRunning,
		StartedAt: now(),
		PID:       os.Getpid(),
		SessionID: sessionID,
	}
}

// Finish marks the record terminal with the child's captured output. Exit
// code 0 means completed; anything else is an error. Stderr lands in the
// error field only when non-empty.
func (r *Record) Finish(exitCode int, output, errOutput string) {
	if exitCode == 0 {
		r.Status = StatusCompleted
	} else {
		r.Status = StatusError
	}
	r.Output = output
	r.Error = errOutput
	r.ExitCode = &exitCode
	r.CompletedAt = now()
}

// Fail marks the record terminal without captured output, for failures
// where the child produced no result (timeout, missing binary, start
// errors).
func (r *Record) Fail(status string, exitCode int, msg string) {
	r.Status = status
	r.Error = msg
	r.ExitCode = &exitCode
	r.CompletedAt = now()
}

// IsTerminal reports whether the record reached a final status
func (r *Record) IsTerminal() bool {
	switch r.Status {
	case StatusCompleted, StatusError, StatusTimeout:
		return true
	}
	return false
}

// ReadRecord loads and parses the record at path
func ReadRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse task record %s: %w", path, err)
	}
	return &rec, nil
}

func now() string {
	return time.Now().UTC().Format(timeLayout)
}
