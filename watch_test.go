package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	blogerr "github.com/thomas11/bookblog/internal/errors"
)

func TestRegenerateOnChange(t *testing.T) {
	root := t.TempDir()
	postsDir := filepath.Join(root, "posts")
	confPath := filepath.Join(root, "blog_config.json")
	writeFile(t, filepath.Join(postsDir, "a.md"), "# A\n")
	writeFile(t, confPath, "{}")

	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- regenerateOnChange(ctx, postsDir, confPath, func() error {
			runs.Add(1)
			return nil
		})
	}()

	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(postsDir, "b.md"), []byte("# B "+time.Now().String()+"\n"), 0o644)
		return runs.Load() > 0
	}, 10*time.Second, 300*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestRegenerateOnChange_MissingDir(t *testing.T) {
	err := regenerateOnChange(context.Background(), filepath.Join(t.TempDir(), "nope"), "x", func() error { return nil })
	require.Error(t, err)
}

func TestRegenFailureLevel(t *testing.T) {
	require.Equal(t, slog.LevelError, regenFailureLevel(blogerr.ConfigError(nil, "bad")))
	require.Equal(t, slog.LevelError, regenFailureLevel(errors.New("unclassified")))
	require.Equal(t, slog.LevelWarn, regenFailureLevel(blogerr.ContentWarning(nil, "posts/a.md", "odd")))
}
