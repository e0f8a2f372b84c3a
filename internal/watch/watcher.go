package watch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"regrename/internal/log"

	"github.com/fsnotify/fsnotify"
)

// FileEvent represents a file that appeared under a watched tree
type FileEvent struct {
	Path      string
	Timestamp time.Time
}

// Watcher reports files created anywhere below its root directories.
// New subdirectories are watched as they appear.
type Watcher struct {
	directories []string

	events   chan FileEvent
	stopChan chan struct{}
	done     chan struct{}

	fsWatcher *fsnotify.Watcher

	mutex   sync.RWMutex
	running bool
}

// New creates a new directory watcher using fsnotify
func New() (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		events:    make(chan FileEvent, 64),
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
		fsWatcher: fsWatcher,
	}, nil
}

// AddRecursive watches root and every directory below it. Subdirectories
// that cannot be read or watched are skipped.
func (w *Watcher) AddRecursive(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("error accessing directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}

	if err := w.addDir(root); err != nil {
		return err
	}
	w.walkSubdirs(root, nil)
	return nil
}

// walkSubdirs adds every directory below root. When found is non-nil it is
// called for each regular file encountered.
func (w *Watcher) walkSubdirs(root string, found func(path string)) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.LogWithFields(log.F("path", path), log.F("error", err)).Debug("Skipping unreadable entry")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root {
				if err := w.addDir(path); err != nil {
					log.LogWithFields(log.F("directory", path), log.F("error", err)).Debug("Not watching directory")
				}
			}
			return nil
		}
		if found != nil && d.Type().IsRegular() {
			found(path)
		}
		return nil
	})
}

func (w *Watcher) addDir(dir string) error {
	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("failed to add directory %s to watcher: %w", dir, err)
	}

	w.mutex.Lock()
	w.directories = append(w.directories, dir)
	w.mutex.Unlock()
	log.LogWithFields(log.F("directory", dir)).Debug("Watching directory")
	return nil
}

// Events returns the channel that delivers created files. It is closed
// after Stop.
func (w *Watcher) Events() <-chan FileEvent {
	return w.events
}

// Start begins the event loop
func (w *Watcher) Start() error {
	w.mutex.Lock()
	if w.running {
		w.mutex.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mutex.Unlock()

	go w.loop()

	log.LogWithFields(log.F("directories", len(w.GetDirectories()))).Debug("Watcher started")
	return nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	defer close(w.events)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) {
				continue
			}

			info, err := os.Lstat(event.Name)
			if err != nil {
				// Gone again before we got to it.
				continue
			}

			if info.IsDir() {
				if err := w.addDir(event.Name); err != nil {
					log.LogWithFields(log.F("directory", event.Name), log.F("error", err)).Warn("Not watching new directory")
				}
				// Files may have landed before the watch was in place.
				var stopped bool
				w.walkSubdirs(event.Name, func(path string) {
					if !stopped && !w.emit(path) {
						stopped = true
					}
				})
				if stopped {
					return
				}
				continue
			}

			if !info.Mode().IsRegular() {
				continue
			}
			if !w.emit(event.Name) {
				return
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.LogWithFields(log.F("error", err)).Error("fsnotify watcher error")

		case <-w.stopChan:
			return
		}
	}
}

// emit delivers path, blocking until the consumer takes it. It returns
// false when the watcher is stopping.
func (w *Watcher) emit(path string) bool {
	select {
	case w.events <- FileEvent{Path: path, Timestamp: time.Now()}:
		return true
	case <-w.stopChan:
		return false
	}
}

// Stop halts the event loop and closes the Events channel
func (w *Watcher) Stop() {
	w.mutex.Lock()
	if !w.running {
		w.mutex.Unlock()
		w.fsWatcher.Close()
		return
	}
	w.running = false
	close(w.stopChan)
	w.mutex.Unlock()

	<-w.done

	if err := w.fsWatcher.Close(); err != nil {
		log.LogWithFields(log.F("error", err)).Error("Error closing fsnotify watcher")
	}
	log.Debugf("Watcher stopped")
}

// IsRunning returns whether the watcher is currently active
func (w *Watcher) IsRunning() bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.running
}

// GetDirectories returns the directories being watched
func (w *Watcher) GetDirectories() []string {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	dirsCopy := make([]string, len(w.directories))
	copy(dirsCopy, w.directories)
	return dirsCopy
}
