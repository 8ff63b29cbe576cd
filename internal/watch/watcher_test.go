package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/greghernandez/docsync/internal/push"
	"github.com/greghernandez/docsync/internal/utils"
)

func startWatcher(t *testing.T, root string) *Watcher {
	t.Helper()
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if err := w.Start(root); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		if w.IsRunning() {
			w.Stop()
		}
	})
	return w
}

func waitForEvent(t *testing.T, w *Watcher, wantSuffix string) Event {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case event := <-w.Events():
			if filepath.Base(event.Path) == wantSuffix {
				return event
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event on %s", wantSuffix)
		}
	}
}

func TestWatcher_EmitsWriteEvents(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root)

	path := filepath.Join(root, "Plan.odt")
	if err := os.WriteFile(path, []byte("v1"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	event := waitForEvent(t, w, "Plan.odt")
	if !filepath.IsAbs(event.Path) {
		t.Errorf("event path not absolute: %s", event.Path)
	}
}

func TestWatcher_WatchesSubdirectories(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "Work")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}

	w := startWatcher(t, root)

	if err := os.WriteFile(filepath.Join(sub, "Notes.odt"), []byte("v1"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	waitForEvent(t, w, "Notes.odt")
}

func TestWatcher_WatchesNewlyCreatedDirectories(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root)

	sub := filepath.Join(root, "New Folder")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}
	// give the watcher a moment to register the new directory
	time.Sleep(200 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(sub, "Doc.odt"), []byte("v1"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	waitForEvent(t, w, "Doc.odt")
}

func TestWatcher_IgnoresHiddenFiles(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root)

	if err := os.WriteFile(filepath.Join(root, utils.StateFileName), []byte("db"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "Visible.odt"), []byte("v1"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	event := waitForEvent(t, w, "Visible.odt")
	if filepath.Base(event.Path) != "Visible.odt" {
		t.Errorf("expected the state file event to be filtered, got %s", event.Path)
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root)

	if err := w.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Fatalf("second Stop() error = %v", err)
	}
}

// recordingPusher counts pushes and tracks concurrency.
type recordingPusher struct {
	mu       sync.Mutex
	paths    []string
	inFlight int
	maxSeen  int
	err      error
}

func (p *recordingPusher) Push(ctx context.Context, localPath string) error {
	p.mu.Lock()
	p.inFlight++
	if p.inFlight > p.maxSeen {
		p.maxSeen = p.inFlight
	}
	p.mu.Unlock()

	time.Sleep(10 * time.Millisecond)

	p.mu.Lock()
	p.inFlight--
	p.paths = append(p.paths, localPath)
	err := p.err
	p.mu.Unlock()
	return err
}

func TestRouter_DispatchesInOrder(t *testing.T) {
	events := make(chan Event, 10)
	errs := make(chan error)
	pusher := &recordingPusher{}
	router := NewRouter(events, errs, pusher, nil)

	events <- Event{Path: "/mirror/a.odt"}
	events <- Event{Path: "/mirror/b.odt"}
	events <- Event{Path: "/mirror/c.odt"}
	close(events)

	if err := router.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{"/mirror/a.odt", "/mirror/b.odt", "/mirror/c.odt"}
	if len(pusher.paths) != len(want) {
		t.Fatalf("pushed %d paths, want %d", len(pusher.paths), len(want))
	}
	for i, path := range want {
		if pusher.paths[i] != path {
			t.Errorf("push %d = %s, want %s", i, pusher.paths[i], path)
		}
	}
	if pusher.maxSeen > 1 {
		t.Errorf("pushes overlapped: max concurrency %d", pusher.maxSeen)
	}
}

func TestRouter_UntrackedIsNotAnError(t *testing.T) {
	events := make(chan Event, 1)
	pusher := &recordingPusher{err: push.ErrNotTracked}
	router := NewRouter(events, nil, pusher, nil)

	events <- Event{Path: "/mirror/stray.txt"}
	close(events)

	if err := router.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestRouter_AuthFailureStopsTheLoop(t *testing.T) {
	events := make(chan Event, 2)
	authErr := utils.NewAppError(utils.NewCLIError(utils.ErrCodeAuthExpired, "rejected").Build())
	pusher := &recordingPusher{err: authErr}
	router := NewRouter(events, nil, pusher, nil)

	events <- Event{Path: "/mirror/a.odt"}
	events <- Event{Path: "/mirror/b.odt"}
	close(events)

	err := router.Run(context.Background())
	if !utils.IsAuthError(err) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if len(pusher.paths) != 1 {
		t.Errorf("expected the loop to stop after the first push, pushed %d", len(pusher.paths))
	}
}

func TestRouter_OtherPushFailuresContinue(t *testing.T) {
	events := make(chan Event, 2)
	pusher := &recordingPusher{err: errors.New("disk on fire")}
	router := NewRouter(events, nil, pusher, nil)

	events <- Event{Path: "/mirror/a.odt"}
	events <- Event{Path: "/mirror/b.odt"}
	close(events)

	if err := router.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(pusher.paths) != 2 {
		t.Errorf("pushed %d paths, want 2", len(pusher.paths))
	}
}
