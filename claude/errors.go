package claude

import "errors"

var (
	// ErrNotFound indicates the external tool binary could not be found
	ErrNotFound = errors.New("claude CLI not found")

	// ErrTimeout indicates the subprocess exceeded its deadline
	ErrTimeout = errors.New("claude CLI timed out")
)
