package task

import (
	"encoding/json"
	"os"
	"testing"
	"time"
)

func TestNewRunningRecord(t *testing.T) {
	rec := NewRunning("session-1")

	if rec.Status != StatusRunning {
		t.Errorf("Status = %q, want %q", rec.Status, StatusRunning)
	}
	if rec.PID != os.Getpid() {
		t.Errorf("PID = %d, want %d", rec.PID, os.Getpid())
	}
	if rec.SessionID != "session-1" {
		t.Errorf("SessionID = %q, want session-1", rec.SessionID)
	}
	if _, err := time.Parse(timeLayout, rec.StartedAt); err != nil {
		t.Errorf("StartedAt %q does not match layout: %v", rec.StartedAt, err)
	}
	if rec.IsTerminal() {
		t.Error("running record reported as terminal")
	}
}

func TestRunningRecordOmitsTerminalFields(t *testing.T) {
	data, err := json.Marshal(NewRunning(""))
	if err != nil {
		t.Fatal(err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"exit_code", "completed_at", "output", "error", "session_id"} {
		if _, ok := fields[key]; ok {
			t.Errorf("running record contains %q", key)
		}
	}
}

func TestFinishCompleted(t *testing.T) {
	rec := NewRunning("s")
	rec.Finish(0, "hello\n", "")

	if rec.Status != StatusCompleted {
		t.Errorf("Status = %q, want %q", rec.Status, StatusCompleted)
	}
	if rec.Output != "hello\n" {
		t.Errorf("Output = %q", rec.Output)
	}
	if rec.ExitCode == nil || *rec.ExitCode != 0 {
		t.Errorf("ExitCode = %v, want 0", rec.ExitCode)
	}
	if rec.CompletedAt == "" {
		t.Error("CompletedAt not set")
	}
	if !rec.IsTerminal() {
		t.Error("completed record not terminal")
	}

	// Exit code 0 must survive marshaling; an omitempty int would drop it
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatal(err)
	}
	if code, ok := fields["exit_code"]; !ok || code != float64(0) {
		t.Errorf("marshaled exit_code = %v, want 0", code)
	}
	if _, ok := fields["error"]; ok {
		t.Error("empty error field was marshaled")
	}
}

func TestFinishNonzeroIsError(t *testing.T) {
	rec := NewRunning("")
	rec.Finish(2, "partial", "boom\n")

	if rec.Status != StatusError {
		t.Errorf("Status = %q, want %q", rec.Status, StatusError)
	}
	if rec.Error != "boom\n" {
		t.Errorf("Error = %q", rec.Error)
	}
	if rec.ExitCode == nil || *rec.ExitCode != 2 {
		t.Errorf("ExitCode = %v, want 2", rec.ExitCode)
	}
}

func TestFailTimeout(t *testing.T) {
	rec := NewRunning("s")
	rec.Fail(StatusTimeout, 124, "Claude Code did not respond within 600s")

	if rec.Status != StatusTimeout {
		t.Errorf("Status = %q, want %q", rec.Status, StatusTimeout)
	}
	if rec.ExitCode == nil || *rec.ExitCode != 124 {
		t.Errorf("ExitCode = %v, want 124", rec.ExitCode)
	}
	if rec.Error == "" {
		t.Error("Error not set")
	}
	if rec.SessionID != "s" {
		t.Error("session id dropped on failure")
	}
	if rec.StartedAt == "" {
		t.Error("started_at dropped on failure")
	}
}

func TestRecordFieldNames(t *testing.T) {
	// The snake_case names are the file format external pollers consume
	rec := NewRunning("s")
	rec.Finish(0, "out", "err")

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"status", "started_at", "completed_at", "pid", "output", "exit_code", "error", "session_id"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("marshaled record missing %q", key)
		}
	}
	if len(fields) != 8 {
		t.Errorf("marshaled record has %d fields, want 8", len(fields))
	}
}

func TestIsTerminal(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{StatusRunning, false},
		{StatusCompleted, true},
		{StatusError, true},
		{StatusTimeout, true},
		{"", false},
		{"unknown", false},
	}

	for _, tt := range tests {
		rec := &Record{Status: tt.status}
		if got := rec.IsTerminal(); got != tt.want {
			t.Errorf("IsTerminal() with status %q = %v, want %v", tt.status, got, tt.want)
		}
	}
}
