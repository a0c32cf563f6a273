// Package watch notices subject binary rebuilds so the harness can re-run
// without being re-invoked.
//
// The binary's directory is watched rather than the file itself: builds
// replace the file, and a watch on the old inode would go stale after the
// first rebuild. Rapid write bursts during linking are debounced into a
// single notification.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const (
	tickInterval    = 100 * time.Millisecond
	defaultDebounce = 500 * time.Millisecond
)

// Watcher coalesces filesystem events on the subject binary into rebuild
// notifications.
type Watcher struct {
	binary   string
	dir      string
	debounce time.Duration
	logger   *zap.Logger

	fw     *fsnotify.Watcher
	notify chan struct{}
	stopCh chan struct{}
	doneCh chan struct{}

	mu      sync.Mutex
	pending time.Time
	running bool
	stopped bool
}

// New creates a watcher for the given binary path. Debounce <= 0 selects
// the 500ms default.
func New(binaryPath string, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(binaryPath)
	if err != nil {
		fw.Close()
		return nil, err
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		binary:   abs,
		dir:      filepath.Dir(abs),
		debounce: debounce,
		logger:   logger,
		fw:       fw,
		notify:   make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// C delivers one signal per settled rebuild. Signals coalesce: a rebuild
// that lands while a previous signal is unread does not queue another.
func (w *Watcher) C() <-chan struct{} {
	return w.notify
}

// Start begins watching. Non-blocking; the event loop runs until Stop or
// the context ends.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	if err := w.fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.running = true
	w.logger.Info("watching for rebuilds", zap.String("binary", w.binary))

	go w.run(ctx)
	return nil
}

// Stop shuts the watcher down and waits for the event loop to exit. Safe
// to call more than once, and before Start.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}
	if err := w.fw.Close(); err != nil {
		w.logger.Warn("closing watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))
		case now := <-ticker.C:
			w.settle(now)
		}
	}
}

// handleEvent records a change to the binary for debouncing. Events for
// other files in the build directory are ignored, as are chmods.
func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != w.binary {
		return
	}
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return
	}
	w.logger.Debug("binary changed", zap.String("op", ev.Op.String()))

	w.mu.Lock()
	w.pending = time.Now()
	w.mu.Unlock()
}

// settle fires one notification once a pending change has been quiet for
// the debounce window.
func (w *Watcher) settle(now time.Time) {
	w.mu.Lock()
	fire := !w.pending.IsZero() && now.Sub(w.pending) >= w.debounce
	if fire {
		w.pending = time.Time{}
	}
	w.mu.Unlock()

	if !fire {
		return
	}
	select {
	case w.notify <- struct{}{}:
	default:
	}
}
