// Package watch reruns a callback when mapper documents change.
package watch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yobatis-go/yobatis/internal/debug"
	"github.com/yobatis-go/yobatis/internal/mapper"
)

// DefaultDebounce is how long the watcher waits for events to settle.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a directory tree for changes to files matching a pattern.
type Watcher struct {
	dir      string
	pattern  string
	callback func() error
	watcher  *fsnotify.Watcher
	done     chan bool
	stopOnce sync.Once

	// Debounce is the quiet period before the callback runs.
	Debounce time.Duration
}

// NewWatcher creates a watcher for the files under dir selected by pattern.
func NewWatcher(dir, pattern string, callback func() error) (*Watcher, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		dir:      absDir,
		pattern:  pattern,
		callback: callback,
		watcher:  watcher,
		done:     make(chan bool),
		Debounce: DefaultDebounce,
	}
	if _, err := w.addTree(absDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch directory: %w", err)
	}
	return w, nil
}

// addTree watches root and every directory below it. It reports whether
// the tree already holds a matching document.
func (w *Watcher) addTree(root string) (bool, error) {
	found := false
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		if mapper.Matches(w.dir, w.pattern, path) {
			found = true
		}
		return nil
	})
	return found, err
}

// Start runs the callback once, then again after every settled change.
func (w *Watcher) Start() error {
	if err := w.callback(); err != nil {
		return fmt.Errorf("initial callback failed: %w", err)
	}

	go w.loop()
	return nil
}

func (w *Watcher) loop() {
	debounceTimer := time.NewTimer(w.Debounce)
	debounceTimer.Stop()
	var debounceCh <-chan time.Time

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) && w.isDir(event.Name) {
				found, err := w.addTree(event.Name)
				if err != nil {
					debug.Warn("Failed to watch new directory", "path", event.Name, "error", err)
				}
				if !found {
					continue
				}
			} else if !w.relevant(event) {
				continue
			}
			debug.Debug("Mapper document changed", "path", event.Name, "op", event.Op.String())
			debounceTimer.Reset(w.Debounce)
			debounceCh = debounceTimer.C

		case <-debounceCh:
			if err := w.callback(); err != nil {
				debug.Error("Watch callback failed", "error", err)
			}
			debounceCh = nil

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			debug.Error("Watch error", "error", err)

		case <-w.done:
			debounceTimer.Stop()
			return
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	path, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return mapper.Matches(w.dir, w.pattern, path)
}

func (w *Watcher) isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Stop stops watching.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}
