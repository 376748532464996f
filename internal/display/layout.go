package display

import (
	"log/slog"
	"unsafe"

	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"

	"github.com/jmylchreest/popkit/internal/config"
)

// fallbackMonitorWidth sizes percentage widths when no monitor is known.
const fallbackMonitorWidth = 1280

// LayoutManager picks the output popups appear on.
type LayoutManager struct {
	config  *config.DaemonConfig
	display *gdk.Display
	logger  *slog.Logger
}

// NewLayoutManager creates a new layout manager.
func NewLayoutManager(cfg *config.DaemonConfig, logger *slog.Logger) *LayoutManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &LayoutManager{
		config:  cfg,
		display: gdk.DisplayGetDefault(),
		logger:  logger,
	}
}

// SetConfig swaps the configuration used for monitor selection.
func (l *LayoutManager) SetConfig(cfg *config.DaemonConfig) {
	l.config = cfg
}

// Monitor returns the configured monitor.
//   - 0: let the compositor choose (returns nil)
//   - 1+: specific monitor (1-indexed), falling back to the first one
func (l *LayoutManager) Monitor() *gdk.Monitor {
	if l.display == nil {
		return nil
	}

	n := l.config.Display.Monitor
	if n <= 0 {
		return nil
	}

	monitors := l.display.Monitors()
	if monitors == nil {
		l.logger.Warn("no monitors list available")
		return nil
	}

	index := uint(n - 1)
	if index >= monitors.NItems() {
		l.logger.Warn("configured monitor not available, using first",
			"configured", n,
			"available", monitors.NItems(),
		)
		index = 0
	}
	return wrapMonitor(monitors.Item(index))
}

// MonitorWidth returns the logical width of monitor, or of the first
// monitor when nil.
func (l *LayoutManager) MonitorWidth(monitor *gdk.Monitor) int {
	if monitor == nil && l.display != nil {
		if monitors := l.display.Monitors(); monitors != nil && monitors.NItems() > 0 {
			monitor = wrapMonitor(monitors.Item(0))
		}
	}
	if monitor == nil {
		return fallbackMonitorWidth
	}
	if w := monitor.Geometry().Width(); w > 0 {
		return w
	}
	return fallbackMonitorWidth
}

// wrapMonitor wraps a glib.Object as a gdk.Monitor.
// gotk4 does not export its own wrapper; gdk.Monitor only embeds the object.
func wrapMonitor(obj *glib.Object) *gdk.Monitor {
	if obj == nil {
		return nil
	}
	type monitor struct {
		_ [0]func()
		*glib.Object
	}
	m := &monitor{Object: obj}
	return (*gdk.Monitor)(unsafe.Pointer(m))
}

// HandleMonitorChange refreshes the display after outputs change.
func (l *LayoutManager) HandleMonitorChange() {
	l.display = gdk.DisplayGetDefault()
	if l.display == nil {
		l.logger.Warn("no display available after monitor change")
		return
	}
	if monitors := l.display.Monitors(); monitors != nil {
		l.logger.Info("monitor configuration changed", "count", monitors.NItems())
	}
}
