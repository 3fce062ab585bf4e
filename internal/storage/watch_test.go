package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestFileWatcherDebouncesChanges(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	path := filepath.Join(dir, schemasFileName)

	changes := make(chan struct{}, 10)
	watcher := NewFileWatcher(path, func() { changes <- struct{}{} })
	watcher.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))
	defer watcher.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))
	}

	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification")
	}

	select {
	case <-changes:
		t.Fatal("burst was not debounced")
	case <-time.After(200 * time.Millisecond):
	}

	watcher.Stop()
	cancel()
	time.Sleep(20 * time.Millisecond)
}
