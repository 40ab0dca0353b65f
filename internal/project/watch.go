package project

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// WatchDebounce is how long the settings file must stay quiet before a
// change is reported.
const WatchDebounce = 500 * time.Millisecond

// Watch reports external changes to the file at path by calling onChange
// from a background goroutine, debounced by WatchDebounce. The parent
// directory is watched so editors that replace the file are still seen.
// Watching stops when ctx is cancelled.
func Watch(ctx context.Context, path string, logger *log.Logger, onChange func()) error {
	if logger == nil {
		logger = log.Default()
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %q: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %q: %w", filepath.Dir(absPath), err)
	}

	go func() {
		defer watcher.Close()

		var (
			mu    sync.Mutex
			timer *time.Timer
		)
		defer func() {
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if name, _ := filepath.Abs(event.Name); name != absPath {
					continue
				}
				mu.Lock()
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(WatchDebounce, func() {
					if ctx.Err() != nil {
						return
					}
					logger.Debug("settings file changed", "path", absPath)
					onChange()
				})
				mu.Unlock()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("settings watcher error", "err", err)
			}
		}
	}()

	logger.Debug("watching settings file", "path", absPath)
	return nil
}
