// Package watchmode implements --watch: re-running Install whenever
// a Dir-sourced bundle's files change on disk. Watch itself only needs a
// non-empty path list; the policy of refusing a workspace that has any
// Git-sourced bundle at all is the CLI caller's responsibility.
package watchmode

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrNoLocalSources is returned when none of the watched sources are Dir
// sources, so there is nothing fsnotify can observe.
var ErrNoLocalSources = errors.New("watch mode requires at least one local (Dir) bundle source")

// Logger is the minimal logging interface watchmode needs; nil is valid
// and behaves as a no-op.
type Logger interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
}

// Options configures the watcher's debounce behavior.
type Options struct {
	// DebounceDuration coalesces bursts of fs events (e.g. an editor's
	// save-via-rename) into a single re-install. Defaults to 300ms.
	DebounceDuration time.Duration
	Logger           Logger
}

// Reinstall is called once per debounced batch of changes. Errors are
// logged (if a Logger is set) but do not stop the watch loop.
type Reinstall func(ctx context.Context) error

// Watch observes paths for changes and calls reinstall after each
// debounced batch, until ctx is cancelled. paths must be non-empty
// (callers should return ErrNoLocalSources before calling Watch if the
// workspace has no Dir sources).
func Watch(ctx context.Context, paths []string, opts Options, reinstall Reinstall) error {
	if len(paths) == 0 {
		return ErrNoLocalSources
	}
	if opts.DebounceDuration == 0 {
		opts.DebounceDuration = 300 * time.Millisecond
	}

	fswatch, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fswatch.Close()

	watched := 0
	for _, p := range paths {
		if err := addTree(fswatch, p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		watched++
	}
	logInfo(opts.Logger, "watching %d root path(s) for changes", watched)

	var timer *time.Timer
	var timerC <-chan time.Time
	resetDebounce := func() {
		if timer == nil {
			timer = time.NewTimer(opts.DebounceDuration)
		} else {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(opts.DebounceDuration)
		}
		timerC = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fswatch.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addTree(fswatch, ev.Name); err != nil {
						logWarn(opts.Logger, "watch new directory %s: %v", ev.Name, err)
					}
				}
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				resetDebounce()
			}

		case err, ok := <-fswatch.Errors:
			if !ok {
				return nil
			}
			logWarn(opts.Logger, "watch error: %v", err)

		case <-timerC:
			timerC = nil
			if err := reinstall(ctx); err != nil {
				logWarn(opts.Logger, "reinstall failed: %v", err)
			} else {
				logInfo(opts.Logger, "reinstalled after change")
			}
		}
	}
}

// addTree adds root and every subdirectory beneath it to fswatch.
// fsnotify watches only the directory it is told about, not its
// subtree, so a nested bundle layout (rules/**/*.md, skills/<name>/...)
// needs every intermediate directory registered individually.
func addTree(fswatch *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return fswatch.Add(path)
	})
}

func logInfo(l Logger, format string, args ...any) {
	if l != nil {
		l.Info(format, args...)
	}
}

func logWarn(l Logger, format string, args ...any) {
	if l != nil {
		l.Warn(format, args...)
	}
}
