package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestWatcher(t *testing.T, debounce time.Duration) (*Watcher, string) {
	t.Helper()
	dir := t.TempDir()
	binary := filepath.Join(dir, "harte")
	if err := os.WriteFile(binary, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	w, err := New(binary, debounce, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(w.Stop)
	return w, binary
}

func notified(w *Watcher) bool {
	select {
	case <-w.C():
		return true
	default:
		return false
	}
}

func TestIgnoresOtherFiles(t *testing.T) {
	w, binary := newTestWatcher(t, 100*time.Millisecond)

	w.handleEvent(fsnotify.Event{
		Name: filepath.Join(filepath.Dir(binary), "harte.o"),
		Op:   fsnotify.Write,
	})
	w.settle(time.Now().Add(time.Hour))

	if notified(w) {
		t.Fatal("notified for an unrelated file")
	}
}

func TestIgnoresChmod(t *testing.T) {
	w, binary := newTestWatcher(t, 100*time.Millisecond)

	w.handleEvent(fsnotify.Event{Name: binary, Op: fsnotify.Chmod})
	w.settle(time.Now().Add(time.Hour))

	if notified(w) {
		t.Fatal("notified for a chmod")
	}
}

func TestDebounceHoldsUntilQuiet(t *testing.T) {
	w, binary := newTestWatcher(t, 100*time.Millisecond)

	w.handleEvent(fsnotify.Event{Name: binary, Op: fsnotify.Write})
	w.settle(time.Now())

	if notified(w) {
		t.Fatal("notified before the debounce window elapsed")
	}

	w.settle(time.Now().Add(200 * time.Millisecond))
	if !notified(w) {
		t.Fatal("no notification after the debounce window")
	}
}

func TestBurstCoalescesToOneNotification(t *testing.T) {
	w, binary := newTestWatcher(t, 100*time.Millisecond)

	for i := 0; i < 5; i++ {
		w.handleEvent(fsnotify.Event{Name: binary, Op: fsnotify.Write})
	}
	w.settle(time.Now().Add(time.Second))

	if !notified(w) {
		t.Fatal("no notification after a write burst")
	}
	if notified(w) {
		t.Fatal("burst produced more than one notification")
	}

	// Nothing further pending, so later ticks stay quiet.
	w.settle(time.Now().Add(time.Hour))
	if notified(w) {
		t.Fatal("notified with no pending change")
	}
}

func TestRenameCountsAsRebuild(t *testing.T) {
	w, binary := newTestWatcher(t, 100*time.Millisecond)

	w.handleEvent(fsnotify.Event{Name: binary, Op: fsnotify.Rename})
	w.settle(time.Now().Add(time.Second))

	if !notified(w) {
		t.Fatal("rename did not produce a notification")
	}
}

func TestStartStop(t *testing.T) {
	w, _ := newTestWatcher(t, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := w.Start(ctx); err != nil {
		t.Fatalf("second Start: %v", err)
	}

	w.Stop()
	w.Stop()
}

func TestStopBeforeStart(t *testing.T) {
	w, _ := newTestWatcher(t, 100*time.Millisecond)
	w.Stop()
}

func TestStartMissingDir(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no", "such", "harte")
	w, err := New(missing, 0, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Stop()

	if err := w.Start(context.Background()); err == nil {
		t.Fatal("Start succeeded for a missing directory")
	}
}

func TestRealRebuildNotifies(t *testing.T) {
	w, binary := newTestWatcher(t, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := os.WriteFile(binary, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	select {
	case <-w.C():
	case <-time.After(5 * time.Second):
		t.Fatal("no notification after rewriting the binary")
	}
}
