package daemon

import (
	"log/slog"
	"sync"

	"github.com/jmylchreest/popkit/internal/alert"
	"github.com/jmylchreest/popkit/internal/dbus"
	"github.com/jmylchreest/popkit/internal/model"
)

// Server is the part of the notification server the router reports to.
type Server interface {
	Lookup(id uint32) (*dbus.DBusNotification, bool)
	CloseWithReason(id uint32, reason dbus.CloseReason) error
	InvokeAction(id uint32, actionKey string) error
}

// Display shows and withdraws popups. Calls arrive on the UI loop.
type Display interface {
	Show(req *model.Request, dbusID uint32) error
	Remove(dbusID uint32) bool
}

// Sounds plays popup sounds.
type Sounds interface {
	PlayForIcon(icon model.Icon) error
	PlayFile(path string) error
}

// Router moves notifications between the D-Bus server and the display.
type Router struct {
	server   Server
	display  Display
	schedule func(func())
	logger   *slog.Logger

	mu       sync.RWMutex
	policy   alert.Policy
	sounds   Sounds
	internal *ServerRenderer
	metrics  *Metrics
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithSounds enables sound playback.
func WithSounds(s Sounds) RouterOption {
	return func(r *Router) { r.sounds = s }
}

// WithPolicy sets the policy foreign notifications are styled with.
func WithPolicy(p alert.Policy) RouterOption {
	return func(r *Router) { r.policy = p }
}

// WithInternal resolves the daemon's own popups through renderer.
func WithInternal(renderer *ServerRenderer) RouterOption {
	return func(r *Router) { r.internal = renderer }
}

// WithMetrics records routed popups and their outcomes.
func WithMetrics(m *Metrics) RouterOption {
	return func(r *Router) { r.metrics = m }
}

// WithRouterLogger sets the logger.
func WithRouterLogger(logger *slog.Logger) RouterOption {
	return func(r *Router) { r.logger = logger }
}

// NewRouter creates a router. schedule runs a function on the UI loop
// (glib.IdleAdd in popkitd).
func NewRouter(server Server, display Display, schedule func(func()), opts ...RouterOption) *Router {
	r := &Router{
		server:   server,
		display:  display,
		schedule: schedule,
		policy:   alert.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// SetPolicy replaces the policy after a config reload.
func (r *Router) SetPolicy(p alert.Policy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policy = p
}

// SetSounds replaces the sound player. nil mutes.
func (r *Router) SetSounds(s Sounds) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sounds = s
}

// HandleNotify shows a notification received by the server.
func (r *Router) HandleNotify(n *dbus.DBusNotification, id uint32) {
	r.mu.RLock()
	policy, sounds := r.policy, r.sounds
	r.mu.RUnlock()

	req := n.ToRequest(policy)
	r.logger.Debug("routing notification",
		"dbus_id", id,
		"request_id", req.ID,
		"kind", req.Kind,
		"mode", req.Mode,
		"popkit", n.IsPopkit(),
	)
	r.metrics.popup(req, n.IsPopkit())

	if sounds != nil && !n.SuppressSound() {
		var err error
		if f := n.SoundFile(); f != "" {
			err = sounds.PlayFile(f)
		} else {
			err = sounds.PlayForIcon(req.Icon)
		}
		if err != nil {
			r.metrics.soundError()
			r.logger.Debug("failed to play sound", "dbus_id", id, "error", err)
		}
	}

	r.schedule(func() {
		if err := r.display.Show(req, id); err != nil {
			r.logger.Error("failed to show popup", "dbus_id", id, "error", err)
			r.metrics.showFailure()
			r.report(id, r.server.CloseWithReason(id, dbus.CloseReasonClosed))
			r.resolve(id, model.Dismissed(model.DismissReasonClose))
		}
	})
}

// HandleCloseRequest withdraws a popup after a CloseNotification call. The
// server has already emitted the signal.
func (r *Router) HandleCloseRequest(id uint32) {
	r.resolve(id, dbus.CloseReasonClosed.Outcome())
	r.schedule(func() {
		r.display.Remove(id)
	})
}

// PopupClosed reports a popup that expired, was replaced or was dismissed.
func (r *Router) PopupClosed(id uint32, reason dbus.CloseReason, gesture string) {
	n, ok := r.server.Lookup(id)
	if gesture != "" && ok && n.IsPopkit() {
		r.report(id, r.server.InvokeAction(id, gesture))
		r.resolve(id, dbus.ActionOutcome(gesture))
		return
	}
	r.report(id, r.server.CloseWithReason(id, reason))
	r.resolve(id, reason.Outcome())
}

// PopupAction reports a button press.
func (r *Router) PopupAction(id uint32, button string) {
	key := button
	if n, ok := r.server.Lookup(id); ok && !n.IsPopkit() {
		key = n.ForeignActionKey(button)
	}
	r.report(id, r.server.InvokeAction(id, key))
	r.resolve(id, dbus.ActionOutcome(button))
}

func (r *Router) resolve(id uint32, outcome model.Outcome) {
	r.metrics.outcome(outcome)

	r.mu.RLock()
	internal := r.internal
	r.mu.RUnlock()
	if internal != nil {
		internal.Resolve(id, outcome)
	}
}

func (r *Router) report(id uint32, err error) {
	if err != nil {
		r.logger.Warn("failed to signal popup result", "dbus_id", id, "error", err)
	}
}
