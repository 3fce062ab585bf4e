package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	xlog "intervaltimer/internal/log"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const defaultWatchDebounce = 500 * time.Millisecond

// FileWatcher calls onChange after a file is written, created, renamed or
// removed. Bursts of events are debounced into one call.
type FileWatcher struct {
	path     string
	onChange func()
	debounce time.Duration
	logger   zerolog.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	timer   *time.Timer
}

// NewFileWatcher prepares a watcher for path.
func NewFileWatcher(path string, onChange func()) *FileWatcher {
	return &FileWatcher{
		path:     filepath.Clean(path),
		onChange: onChange,
		debounce: defaultWatchDebounce,
		logger:   xlog.WithComponent("watch"),
	}
}

// Start watches the parent directory so atomic replacements of the file are
// seen. It returns once the watcher is running; ctx ends it.
func (watcher *FileWatcher) Start(ctx context.Context) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(watcher.path)); err != nil {
		_ = fsWatcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(watcher.path), err)
	}

	watcher.mu.Lock()
	watcher.watcher = fsWatcher
	watcher.mu.Unlock()

	watcher.logger.Info().
		Str("event", "watch.started").
		Str("path", watcher.path).
		Msg("watching file for changes")

	go watcher.loop(ctx, fsWatcher)
	return nil
}

// Stop ends the watcher and cancels a pending notification.
func (watcher *FileWatcher) Stop() {
	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	if watcher.timer != nil {
		watcher.timer.Stop()
		watcher.timer = nil
	}
	if watcher.watcher != nil {
		_ = watcher.watcher.Close()
		watcher.watcher = nil
	}
}

func (watcher *FileWatcher) loop(ctx context.Context, fsWatcher *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			watcher.logger.Info().Str("event", "watch.stopped").Msg("file watcher stopped")
			watcher.Stop()
			return

		case event, ok := <-fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != watcher.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				watcher.logger.Debug().
					Str("event", "watch.file_changed").
					Str("op", event.Op.String()).
					Msg("file changed")
				watcher.schedule()
			}

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return
			}
			watcher.logger.Error().
				Err(err).
				Str("event", "watch.error").
				Msg("file watcher error")
		}
	}
}

func (watcher *FileWatcher) schedule() {
	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	if watcher.watcher == nil {
		return
	}
	if watcher.timer != nil {
		watcher.timer.Stop()
	}
	watcher.timer = time.AfterFunc(watcher.debounce, func() {
		if watcher.onChange != nil {
			watcher.onChange()
		}
	})
}
