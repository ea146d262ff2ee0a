package claude

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/xiaoyuanzhu-com/claude-exec/log"
)

// gracePeriod is how long a timed-out child gets to exit after the
// interrupt before it is killed
const gracePeriod = 5 * time.Second

// Result holds one subprocess attempt's captured output and outcome
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration

	// Err is set only for failures outside the child's own exit status:
	// ErrTimeout, ErrNotFound, or a wrapped start failure
	Err error
}

// TimedOut reports whether the attempt hit its deadline
func (r *Result) TimedOut() bool {
	return errors.Is(r.Err, ErrTimeout)
}

// NotFound reports whether the tool binary could not be found
func (r *Result) NotFound() bool {
	return errors.Is(r.Err, ErrNotFound)
}

// Run executes argv once, synchronously, with the given timeout. Stdout
// and stderr are buffered in full; nothing is streamed. Exactly one
// attempt is made, with no retries. ExitCode is the child's own code, 124
// on timeout, 127 when the binary is missing, 1 for any other failure.
func Run(ctx context.Context, argv []string, timeout time.Duration) *Result {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = append(os.Environ(), "CLAUDE_CODE_ENTRYPOINT=claude-exec")

	// Interrupt first on deadline expiry so the tool can flush state,
	// then kill after the grace period
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = gracePeriod

	log.Debug().
		Strs("args", argv).
		Dur("timeout", timeout).
		Msg("starting claude")

	start := time.Now()
	if err := cmd.Start(); err != nil {
		res := &Result{Duration: time.Since(start)}
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			res.ExitCode = 127
			res.Err = fmt.Errorf("%w: %s", ErrNotFound, argv[0])
		} else {
			res.ExitCode = 1
			res.Err = fmt.Errorf("failed to start %s: %w", argv[0], err)
		}
		return res
	}

	log.Debug().Int("pid", cmd.Process.Pid).Msg("claude started")

	err := cmd.Wait()
	res := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	switch {
	case err == nil:
		res.ExitCode = 0
	case ctx.Err() == context.DeadlineExceeded:
		res.ExitCode = 124
		res.Err = fmt.Errorf("%w after %s", ErrTimeout, timeout)
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = 1
			res.Err = fmt.Errorf("failed to run %s: %w", argv[0], err)
		}
	}

	log.Debug().
		Int("exitCode", res.ExitCode).
		Dur("duration", res.Duration).
		Msg("claude finished")

	return res
}
