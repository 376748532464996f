package display

import (
	"log/slog"
	"sync"
	"time"

	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/popkit/internal/config"
	"github.com/jmylchreest/popkit/internal/dbus"
	"github.com/jmylchreest/popkit/internal/display/placement"
	"github.com/jmylchreest/popkit/internal/model"
)

// tickInterval drives the countdown and the timer progress bar.
const tickInterval = 50 * time.Millisecond

// PopupState is the visible popup and its countdown.
type PopupState struct {
	DBusID    uint32
	Request   *model.Request
	Popup     *Popup
	Countdown *placement.Countdown // nil when the popup has no timer
	CreatedAt time.Time

	timer    glib.SourceHandle
	lastTick time.Time
}

// CloseCallback is called when a popup goes away on its own or by the user.
// gesture is dbus.ActionEsc or dbus.ActionBackdrop when the user dismissed
// a dialog that way, and empty otherwise.
type CloseCallback func(dbusID uint32, reason dbus.CloseReason, gesture string)

// ActionCallback is called when a button is pressed.
type ActionCallback func(dbusID uint32, actionKey string)

// Manager owns the single popup slot.
type Manager struct {
	app     *gtk.Application
	config  *config.DaemonConfig
	logger  *slog.Logger
	layout  *LayoutManager
	display *gdk.Display

	mu      sync.Mutex
	current *PopupState

	onClose  CloseCallback
	onAction ActionCallback
}

// NewManager creates a new display manager.
func NewManager(app *gtk.Application, cfg *config.DaemonConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultDaemonConfig()
	}
	return &Manager{
		app:    app,
		config: cfg,
		logger: logger,
	}
}

// Start binds the manager to the default display.
func (m *Manager) Start() error {
	m.display = gdk.DisplayGetDefault()
	if m.display == nil {
		return &DisplayError{Message: "no display available"}
	}
	m.layout = NewLayoutManager(m.config, m.logger)
	m.logger.Info("display manager started")
	return nil
}

// Stop closes the visible popup, reporting it closed.
func (m *Manager) Stop() {
	m.CloseAll(dbus.CloseReasonClosed)
	m.logger.Info("display manager stopped")
}

// SetCloseCallback sets the callback for popup close events.
func (m *Manager) SetCloseCallback(cb CloseCallback) {
	m.onClose = cb
}

// SetActionCallback sets the callback for button presses.
func (m *Manager) SetActionCallback(cb ActionCallback) {
	m.onAction = cb
}

// UpdateConfig applies a new configuration to later popups.
func (m *Manager) UpdateConfig(cfg *config.DaemonConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config = cfg
	if m.layout != nil {
		m.layout.SetConfig(cfg)
	}
}

// Layout returns the layout manager, nil before Start.
func (m *Manager) Layout() *LayoutManager {
	return m.layout
}

// Show displays req, replacing whatever is visible. A popup shown again
// under the same ID is swapped silently; a different one is reported
// closed with CloseReasonUndefined.
func (m *Manager) Show(req *model.Request, dbusID uint32) error {
	if m.display == nil || m.layout == nil {
		return &DisplayError{Message: "display manager not started"}
	}

	if prev := m.take(nil); prev != nil {
		m.teardown(prev)
		if prev.DBusID != dbusID {
			m.logger.Debug("popup replaced", "dbus_id", prev.DBusID, "by", dbusID)
			m.fireClose(prev.DBusID, dbus.CloseReasonUndefined, "")
		}
	}

	m.mu.Lock()
	cfg := m.config
	m.mu.Unlock()

	monitor := m.layout.Monitor()
	popup := NewPopup(m.app, req, cfg, m.layout.MonitorWidth(monitor), m.logger)
	state := &PopupState{
		DBusID:    dbusID,
		Request:   req,
		Popup:     popup,
		CreatedAt: time.Now(),
	}

	popup.OnAction(func(key string) {
		if m.take(state) == nil {
			return
		}
		m.teardown(state)
		if m.onAction != nil {
			m.onAction(state.DBusID, key)
		}
	})
	popup.OnDismiss(func(reason dbus.CloseReason, gesture string) {
		if m.take(state) == nil {
			return
		}
		m.teardown(state)
		m.fireClose(state.DBusID, reason, gesture)
	})
	popup.OnHover(func(hovering bool) {
		m.handleHover(state, hovering)
	})

	if req.Timer > 0 {
		state.Countdown = placement.NewCountdown(req.TimerDuration())
		state.lastTick = time.Now()
		state.timer = glib.TimeoutAdd(uint(tickInterval.Milliseconds()), func() bool {
			return m.tick(state)
		})
	}

	m.mu.Lock()
	m.current = state
	m.mu.Unlock()

	popup.Show(monitor)

	m.logger.Debug("showing popup",
		"dbus_id", dbusID,
		"request_id", req.ID,
		"mode", req.Mode,
		"width", popup.Width(),
		"timer_ms", req.Timer,
	)
	return nil
}

// tick advances the countdown. Returning false removes the timeout source.
func (m *Manager) tick(state *PopupState) bool {
	m.mu.Lock()
	live := m.current == state
	m.mu.Unlock()
	if !live {
		return false
	}

	now := time.Now()
	expired := state.Countdown.Advance(now.Sub(state.lastTick))
	state.lastTick = now
	state.Popup.SetProgress(state.Countdown.Fraction())
	if !expired {
		return true
	}

	state.timer = 0
	if m.take(state) != nil {
		m.teardown(state)
		m.fireClose(state.DBusID, dbus.CloseReasonExpired, "")
	}
	return false
}

func (m *Manager) handleHover(state *PopupState, hovering bool) {
	m.mu.Lock()
	pause := m.config.Behavior.PauseOnHover
	m.mu.Unlock()

	if !pause || state.Countdown == nil {
		return
	}
	if hovering {
		state.Countdown.Pause()
	} else {
		state.Countdown.Resume()
	}
}

// Close closes the popup with dbusID and reports reason.
// Reports whether that popup was visible.
func (m *Manager) Close(dbusID uint32, reason dbus.CloseReason) bool {
	state := m.takeID(dbusID)
	if state == nil {
		return false
	}
	m.teardown(state)
	m.fireClose(dbusID, reason, "")
	return true
}

// Remove closes the popup with dbusID without reporting it. Used when the
// close was requested over D-Bus and has already been signalled.
func (m *Manager) Remove(dbusID uint32) bool {
	state := m.takeID(dbusID)
	if state == nil {
		return false
	}
	m.teardown(state)
	return true
}

// CloseAll closes the visible popup, if any.
func (m *Manager) CloseAll(reason dbus.CloseReason) {
	if state := m.take(nil); state != nil {
		m.teardown(state)
		m.fireClose(state.DBusID, reason, "")
	}
}

// Current returns the visible popup's ID and request.
func (m *Manager) Current() (uint32, *model.Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return 0, nil, false
	}
	return m.current.DBusID, m.current.Request, true
}

// take empties the slot if it holds want, or whatever it holds when want
// is nil. Returns the removed state.
func (m *Manager) take(want *PopupState) *PopupState {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur := m.current
	if cur == nil || (want != nil && cur != want) {
		return nil
	}
	m.current = nil
	return cur
}

func (m *Manager) takeID(dbusID uint32) *PopupState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil || m.current.DBusID != dbusID {
		return nil
	}
	cur := m.current
	m.current = nil
	return cur
}

func (m *Manager) teardown(state *PopupState) {
	if state.timer != 0 {
		glib.SourceRemove(state.timer)
		state.timer = 0
	}
	state.Popup.Close()
}

func (m *Manager) fireClose(dbusID uint32, reason dbus.CloseReason, gesture string) {
	m.logger.Debug("popup closed", "dbus_id", dbusID, "reason", reason.String(), "gesture", gesture)
	if m.onClose != nil {
		m.onClose(dbusID, reason, gesture)
	}
}

// DisplayError represents a display-related error.
type DisplayError struct {
	Message string
	Cause   error
}

func (e *DisplayError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *DisplayError) Unwrap() error {
	return e.Cause
}
