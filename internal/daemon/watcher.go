package daemon

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a documentation source tree and emits debounced rebuild
// triggers. Paths for which skip returns true (notably the build output
// directory) are ignored so generated files never retrigger a build.
type Watcher struct {
	watcher  *fsnotify.Watcher
	root     string
	skip     func(string) bool
	debounce time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	trigger chan struct{}
}

// NewWatcher creates a watcher rooted at dir.
func NewWatcher(dir string, debounce time.Duration, skip func(string) bool) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if skip == nil {
		skip = func(string) bool { return false }
	}
	w := &Watcher{
		watcher:  fsw,
		root:     dir,
		skip:     skip,
		debounce: debounce,
		trigger:  make(chan struct{}, 1),
	}
	if err := w.addRecursive(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Triggers returns the channel rebuild requests arrive on.
func (w *Watcher) Triggers() <-chan struct{} { return w.trigger }

// Start runs the event loop until the context is canceled.
func (w *Watcher) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				w.handleEvent(event)
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("File watcher error", "error", err)
			}
		}
	}()
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error { return w.watcher.Close() }

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if w.skip(event.Name) {
		return
	}
	// New directories must be watched before their contents change.
	if event.Op.Has(fsnotify.Create) {
		if st, err := os.Stat(event.Name); err == nil && st.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				slog.Warn("Failed to watch new directory", "dir", event.Name, "error", err)
			}
		}
	}
	w.scheduleTrigger()
}

func (w *Watcher) scheduleTrigger() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.trigger <- struct{}{}:
		default:
		}
	})
}

// withinDir reports whether path is inside dir.
func withinDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.skip(path) {
			return filepath.SkipDir
		}
		if path != dir && strings.HasPrefix(filepath.Base(path), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
