package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/xiaoyuanzhu-com/claude-exec/task"
)

func newWaitCmd() *cobra.Command {
	var timeout int

	cmd := &cobra.Command{
		Use:   "wait <task-file>",
		Short: "Block until a task file reaches a terminal status",
		Long: `wait blocks until the task file written by --output reaches a terminal
status, then relays the recorded result: output to stdout, error to stderr,
and the recorded exit code as its own.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWait(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0],
				time.Duration(timeout)*time.Second)
		},
	}

	cmd.Flags().IntVar(&timeout, "timeout", defaultTimeoutSeconds, "Seconds to wait before giving up (0 waits until interrupted)")

	return cmd
}

func runWait(out, errw io.Writer, path string, timeout time.Duration) error {
	rec, err := task.WaitTerminal(context.Background(), path, timeout)
	if errors.Is(err, task.ErrWaitTimeout) {
		fmt.Fprintf(errw, "ERROR: task did not reach a terminal status within %ds\n", int(timeout.Seconds()))
		return &exitError{code: 124}
	}
	if err != nil {
		fmt.Fprintf(errw, "ERROR: %v\n", err)
		return &exitError{code: 1}
	}

	if rec.Output != "" {
		fmt.Fprint(out, rec.Output)
	}
	if rec.Error != "" {
		fmt.Fprint(errw, rec.Error)
	}

	if rec.ExitCode != nil && *rec.ExitCode != 0 {
		return &exitError{code: *rec.ExitCode}
	}
	return nil
}
