package theme

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

// Loader owns the display-wide CSS provider for popups.
type Loader struct {
	mu       sync.Mutex
	logger   *slog.Logger
	provider *gtk.CSSProvider
	dir      string
	theme    *Theme
	watcher  *Watcher
	onReload func(name string, err error)
}

// NewLoader creates a loader resolving user themes from dir.
// An empty dir uses Dir().
func NewLoader(dir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if dir == "" {
		dir = Dir()
	}
	return &Loader{
		logger:   logger,
		provider: gtk.NewCSSProvider(),
		dir:      dir,
	}
}

// SetReloadCallback is invoked on the GTK main loop after each hot reload.
func (l *Loader) SetReloadCallback(cb func(name string, err error)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onReload = cb
}

// Load resolves and installs a theme. Unknown names fall back to the
// default theme; the returned error still reports the miss.
func (l *Loader) Load(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadLocked(name)
}

func (l *Loader) loadLocked(name string) error {
	t, err := Resolve(name, l.dir)
	if err != nil {
		l.logger.Warn("theme unavailable, using default", "theme", name, "error", err)
		fallback, ferr := Resolve(DefaultThemeName, "")
		if ferr != nil {
			return errors.Join(err, ferr)
		}
		t = fallback
	}

	l.provider.LoadFromString(t.CSS)
	l.theme = t
	l.logger.Info("loaded theme", "name", t.Name, "bundled", t.Bundled, "path", t.Path)
	return err
}

// Apply installs the provider on display, or the default display when nil.
func (l *Loader) Apply(display *gdk.Display) {
	if display == nil {
		display = gdk.DisplayGetDefault()
	}
	if display == nil {
		l.logger.Warn("no display available, cannot apply theme")
		return
	}
	gtk.StyleContextAddProviderForDisplay(display, l.provider, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)
}

// Current returns the loaded theme.
func (l *Loader) Current() *Theme {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.theme
}

// Reload re-resolves the current theme.
func (l *Loader) Reload() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	name := DefaultThemeName
	if l.theme != nil {
		name = l.theme.Name
	}
	return l.loadLocked(name)
}

// Watch hot-reloads the theme when a stylesheet in the themes directory
// changes. Provider updates are marshalled onto the GTK main loop.
func (l *Loader) Watch(ctx context.Context) error {
	l.mu.Lock()
	if l.watcher != nil {
		l.mu.Unlock()
		return nil
	}
	w := NewWatcher(l.dir, func(string) {
		glib.IdleAdd(func() {
			err := l.Reload()
			l.mu.Lock()
			cb, name := l.onReload, l.theme.Name
			l.mu.Unlock()
			if cb != nil {
				cb(name, err)
			}
		})
	}, l.logger)
	l.watcher = w
	l.mu.Unlock()

	return w.Start(ctx)
}

// Close stops hot reload.
func (l *Loader) Close() error {
	l.mu.Lock()
	w := l.watcher
	l.watcher = nil
	l.mu.Unlock()

	if w == nil {
		return nil
	}
	return w.Stop()
}
