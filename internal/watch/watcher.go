// Package watch turns local filesystem writes under the mirror root into
// push reconciliation work.
package watch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Event is one qualifying local write.
type Event struct {
	// Path is the absolute path of the file that was written.
	Path string
}

// Watcher monitors the mirror root recursively for file writes. fsnotify
// watches are per-directory, so every directory under the root is registered
// at start and newly created directories are added as they appear.
type Watcher struct {
	watcher *fsnotify.Watcher
	events  chan Event
	errors  chan error
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
	root    string
}

// NewWatcher creates a watcher. It must be started with Start before it
// emits events.
func NewWatcher() (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	return &Watcher{
		watcher: watcher,
		events:  make(chan Event, 100),
		errors:  make(chan error, 10),
		done:    make(chan struct{}),
	}, nil
}

// Start registers the mirror root and all its subdirectories and begins
// emitting events.
func (w *Watcher) Start(root string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher already running")
	}
	w.root = root

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if isHidden(d.Name()) && path != root {
			return fs.SkipDir
		}
		return w.watcher.Add(path)
	})
	if err != nil {
		return fmt.Errorf("failed to watch mirror root %s: %w", root, err)
	}

	w.running = true
	w.wg.Add(1)
	go w.processEvents()
	return nil
}

// Stop stops watching and releases the watch registration. It blocks until
// the event processing goroutine has exited.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	close(w.done)
	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	w.wg.Wait()

	close(w.events)
	close(w.errors)
	return nil
}

// Events returns the channel emitting write events. Closed on Stop.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel emitting watch errors. Closed on Stop.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// IsRunning reports whether the watcher is active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if fileEvent, ok := w.convertEvent(event); ok {
				select {
				case w.events <- fileEvent:
				case <-w.done:
					return
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			case <-w.done:
				return
			}
		}
	}
}

// convertEvent maps an fsnotify event to an Event. Newly created directories
// are added to the watch set as a side effect; hidden files, including the
// state database, never qualify.
func (w *Watcher) convertEvent(event fsnotify.Event) (Event, bool) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !isHidden(filepath.Base(event.Name)) {
				_ = w.watcher.Add(event.Name)
			}
			return Event{}, false
		}
	}

	if !event.Has(fsnotify.Write) {
		return Event{}, false
	}
	if isHidden(filepath.Base(event.Name)) {
		return Event{}, false
	}

	absPath, err := filepath.Abs(event.Name)
	if err != nil {
		return Event{}, false
	}
	return Event{Path: absPath}, true
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
