package audio

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports writes to watched sound files so the decoded copy can be
// dropped. Directories are watched since editors replace files on save.
type Watcher struct {
	mu      sync.Mutex
	logger  *slog.Logger
	onWrite func(path string)

	watcher *fsnotify.Watcher
	files   map[string]bool
	dirs    map[string]bool
	done    chan struct{}
}

// NewWatcher creates a watcher calling onWrite for changed files.
func NewWatcher(onWrite func(path string), logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		logger:  logger,
		onWrite: onWrite,
		files:   make(map[string]bool),
		dirs:    make(map[string]bool),
	}
}

// Start begins delivering events.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watcher != nil {
		return nil
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	w.watcher = fw
	w.done = make(chan struct{})

	for dir := range w.dirs {
		if err := fw.Add(dir); err != nil {
			w.logger.Debug("failed to watch sound directory", "dir", dir, "error", err)
		}
	}

	go w.loop(ctx, fw, w.done)
	return nil
}

// Watch adds a file. It may be called before or after Start.
func (w *Watcher) Watch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	path = filepath.Clean(path)
	w.files[path] = true

	dir := filepath.Dir(path)
	if w.dirs[dir] {
		return nil
	}
	w.dirs[dir] = true
	if w.watcher == nil {
		return nil
	}
	return w.watcher.Add(dir)
}

// Watched reports whether path is being watched.
func (w *Watcher) Watched(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.files[filepath.Clean(path)]
}

// Stop stops delivering events.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watcher == nil {
		return nil
	}
	close(w.done)
	err := w.watcher.Close()
	w.watcher = nil
	return err
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, done <-chan struct{}) {
	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			path := filepath.Clean(event.Name)
			if !w.Watched(path) {
				continue
			}
			w.logger.Debug("sound file changed", "path", path, "op", event.Op.String())
			if w.onWrite != nil {
				w.onWrite(path)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("sound watcher error", "error", err)

		case <-done:
			return
		case <-ctx.Done():
			return
		}
	}
}
