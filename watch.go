package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/radovskyb/watcher"

	blogerr "github.com/thomas11/bookblog/internal/errors"
)

const watchInterval = 200 * time.Millisecond

// regenerateOnChange polls the posts directory and the configuration file and
// calls regen after each change until ctx is done. Changes arriving while a
// regeneration runs are coalesced into one event.
func regenerateOnChange(ctx context.Context, postsDir, confPath string, regen func() error) error {
	w := watcher.New()
	w.SetMaxEvents(1)
	w.IgnoreHiddenFiles(true)

	if err := w.AddRecursive(postsDir); err != nil {
		return blogerr.FileSystemError(err, "cannot watch %s", postsDir)
	}
	if err := w.Add(confPath); err != nil {
		return blogerr.FileSystemError(err, "cannot watch %s", confPath)
	}

	go func() {
		// Close is a no-op until Start is running.
		w.Wait()
		for {
			select {
			case ev := <-w.Event:
				slog.Info("Change detected, regenerating", "path", ev.Path, "op", ev.Op.String())
				if err := regen(); err != nil {
					slog.Log(ctx, regenFailureLevel(err), "Regeneration failed", "error", err)
				}
			case err := <-w.Error:
				slog.Warn("Watcher error", "error", err)
			case <-ctx.Done():
				w.Close()
				return
			case <-w.Closed:
				return
			}
		}
	}()

	slog.Info("Watching for changes", "posts", postsDir, "config", confPath)
	if err := w.Start(watchInterval); err != nil {
		return blogerr.Wrap(err, blogerr.CategoryInternal, blogerr.SeverityFatal, "watcher stopped")
	}
	return nil
}

// regenFailureLevel logs failures that stopped a run as errors and the rest as
// warnings.
func regenFailureLevel(err error) slog.Level {
	if blogerr.IsFatal(err) {
		return slog.LevelError
	}
	return slog.LevelWarn
}
