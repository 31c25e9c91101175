package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/muurk/polfunbox/internal/logging"
)

// WatchDebounce collapses bursts of file events into one callback.
const WatchDebounce = 500 * time.Millisecond

// Watch calls onChange after path is written, created or replaced by
// another process. It watches the parent directory since atomic writes
// replace the file's inode. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, onChange func()) error {
	path = filepath.Clean(path)
	dir := filepath.Dir(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch config directory: %w", err)
	}
	logging.Debug("Watching store for changes", zap.String("path", path))

	var (
		mu       sync.Mutex
		debounce *time.Timer
		stopped  bool
	)
	defer func() {
		mu.Lock()
		stopped = true
		if debounce != nil {
			debounce.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logging.Debug("Store file changed", zap.String("op", event.Op.String()))

			mu.Lock()
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(WatchDebounce, func() {
				mu.Lock()
				skip := stopped
				mu.Unlock()
				if !skip {
					onChange()
				}
			})
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("Store watcher error", zap.Error(err))
		}
	}
}

// WatchStore reloads s whenever its file changes and then calls onReload.
func WatchStore(ctx context.Context, s *FileStore, onReload func()) error {
	return Watch(ctx, s.Path(), func() {
		if err := s.Reload(); err != nil {
			logging.Warn("Store reload failed", zap.Error(err))
			return
		}
		if onReload != nil {
			onReload()
		}
	})
}
