package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Logger defines the logging interface needed by the config watcher.
type Logger interface {
	Infof(string, ...any)
	Errorf(string, ...any)
}

// reloadDelay coalesces the burst of events editors emit per save.
const reloadDelay = 250 * time.Millisecond

// WatchFile watches a single config file for changes and reloads it into the Store.
// The parent directory is watched so that editors replacing the file by
// rename are still seen. On error the old config is kept.
// Returns a stop function to cleanly shut down the watcher, or an error if setup fails.
func WatchFile(path string, store *Store, logger Logger) (stop func(), err error) {
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch file: %w", err)
	}

	done := make(chan struct{})

	go func() {
		defer watcher.Close()

		timer := time.NewTimer(reloadDelay)
		timer.Stop()
		defer timer.Stop()

		for {
			select {
			case <-done:
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != path {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					timer.Reset(reloadDelay)
				}
			case <-timer.C:
				logger.Infof("config file change detected: %s", path)
				cfg, err := Load(path)
				if err != nil {
					logger.Errorf("failed to reload config: %v", err)
					continue
				}
				store.Update(cfg)
				logger.Infof("config reloaded successfully")
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Errorf("config watcher error: %v", err)
			}
		}
	}()

	return func() { close(done) }, nil
}
