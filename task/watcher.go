package task

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/xiaoyuanzhu-com/claude-exec/log"
)

// ErrWaitTimeout indicates the record did not reach a terminal status in time
var ErrWaitTimeout = errors.New("timed out waiting for task record")

const (
	// pollInterval is the fallback re-read cadence for filesystems with
	// unreliable rename notifications
	pollInterval = 500 * time.Millisecond

	// debounceDelay coalesces the event burst around a rename
	debounceDelay = 50 * time.Millisecond
)

// WaitTerminal blocks until the record at path reaches a terminal status,
// then returns it. The file may not exist yet; it is picked up when it
// appears. Unreadable or mid-replace states are retried, never fatal. A
// positive timeout bounds the wait; zero waits until the context ends.
func WaitTerminal(ctx context.Context, path string, timeout time.Duration) (*Record, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// The record may already be terminal
	if rec := readTerminal(abs); rec != nil {
		return rec, nil
	}

	// Watch the parent directory: the atomic writer replaces the file by
	// rename, which would drop a watch placed on the file itself
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return nil, err
	}

	// Re-check: the record may have turned terminal while the watch was
	// being set up
	if rec := readTerminal(abs); rec != nil {
		return rec, nil
	}

	poll := time.NewTicker(pollInterval)
	defer poll.Stop()

	debounce := time.NewTimer(0)
	<-debounce.C // drain initial timer
	defer debounce.Stop()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil, errors.New("watcher closed")
			}
			if event.Name != abs {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			debounce.Reset(debounceDelay)

		case <-debounce.C:
			if rec := readTerminal(abs); rec != nil {
				return rec, nil
			}

		case <-poll.C:
			if rec := readTerminal(abs); rec != nil {
				return rec, nil
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil, errors.New("watcher closed")
			}
			log.Warn().Err(err).Str("path", abs).Msg("fsnotify error")

		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, ErrWaitTimeout
			}
			return nil, ctx.Err()
		}
	}
}

// readTerminal returns the record at path if it parses and is terminal
func readTerminal(path string) *Record {
	rec, err := ReadRecord(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Debug().Err(err).Str("path", path).Msg("task record not readable yet")
		}
		return nil
	}
	if !rec.IsTerminal() {
		return nil
	}
	return rec
}
