package settings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rebeliceyang/lazyexplorer/internal/models"
)

const watchDebounce = 100 * time.Millisecond

// Watch reloads the store whenever the connections file changes on
// disk and hands the new list to onChange. It returns once the watcher
// is running; the watch loop stops when ctx is done.
func (s *Store) Watch(ctx context.Context, onChange func([]models.ConnectionConfig)) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	// editors replace files, so watch the directory rather than the file
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go s.watchLoop(ctx, watcher, onChange)
	return nil
}

func (s *Store) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, onChange func([]models.ConnectionConfig)) {
	defer func() { _ = watcher.Close() }()

	var debounce *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			if _, err := os.Stat(s.path); err != nil {
				// removed; keep the last known list
				continue
			}
			if err := s.Load(); err != nil {
				s.logger.Warn("failed to reload saved connections", "path", s.path, "error", err)
				continue
			}
			s.logger.Debug("saved connections reloaded", "path", s.path)
			if onChange != nil {
				onChange(s.All())
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("settings watcher error", "error", err)
		}
	}
}
