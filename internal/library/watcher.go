package library

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"bedtime-streamer/internal/logging"
	"bedtime-streamer/internal/metrics"
)

// Watch invalidates the cached listing whenever something changes under the
// library root. It blocks until ctx is done.
func (l *Library) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		metrics.LibraryWatcherErrors.Inc()
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logging.Error("failed to close file watcher: %v", err)
		}
	}()

	watchCount := l.addDirectoriesToWatcher(watcher, l.root)
	logging.Debug("Library watcher started, watching %d directories", watchCount)
	metrics.LibraryWatchedDirectories.Set(float64(watchCount))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			l.handleWatcherEvent(watcher, event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Error("Watcher error: %v", err)
			metrics.LibraryWatcherErrors.Inc()
		}
	}
}

// addDirectoriesToWatcher adds dir and every non-hidden directory below it.
func (l *Library) addDirectoriesToWatcher(watcher *fsnotify.Watcher, dir string) int {
	watchCount := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if isHidden(d.Name()) && path != dir {
			return filepath.SkipDir
		}
		if addErr := watcher.Add(path); addErr != nil {
			logging.Warn("failed to add path to watcher %s: %v", path, addErr)
			metrics.LibraryWatcherErrors.Inc()
		} else {
			watchCount++
		}
		return nil
	})
	if err != nil {
		logging.Error("failed to walk library for watcher: %v", err)
		metrics.LibraryWatcherErrors.Inc()
	}
	return watchCount
}

func (l *Library) handleWatcherEvent(watcher *fsnotify.Watcher, event fsnotify.Event) {
	if isHidden(filepath.Base(event.Name)) {
		return
	}

	metrics.LibraryWatcherEventsTotal.WithLabelValues(getEventType(event.Op)).Inc()

	if event.Op == fsnotify.Chmod {
		return
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			added := l.addDirectoriesToWatcher(watcher, event.Name)
			logging.Debug("Added %d new directories to watcher under %s", added, event.Name)
			metrics.LibraryWatchedDirectories.Add(float64(added))
		}
	}

	logging.Debug("Library changed (%s %s), invalidating listing", getEventType(event.Op), event.Name)
	l.Invalidate()
}

// getEventType returns a string representation of the fsnotify operation
func getEventType(op fsnotify.Op) string {
	switch {
	case op&fsnotify.Create != 0:
		return "create"
	case op&fsnotify.Write != 0:
		return "write"
	case op&fsnotify.Remove != 0:
		return "remove"
	case op&fsnotify.Rename != 0:
		return "rename"
	case op&fsnotify.Chmod != 0:
		return "chmod"
	default:
		return "unknown"
	}
}
