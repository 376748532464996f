package dbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/popkit/internal/model"
)

// Client presents popups through any org.freedesktop.Notifications server.
// It implements alert.Renderer and keeps at most one popup on screen,
// replacing the current one in place via replaces_id.
type Client struct {
	conn    *dbus.Conn
	obj     dbus.BusObject
	appName string
	logger  *slog.Logger

	mu        sync.Mutex
	currentID uint32
	pending   map[uint32]*model.Deferred

	signals chan *dbus.Signal
	done    chan struct{}
	closed  bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAppName sets the app_name sent with every notification.
func WithAppName(name string) ClientOption {
	return func(c *Client) { c.appName = name }
}

// WithClientLogger sets the logger. A nil logger uses slog.Default().
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// NewClient connects to the session bus and subscribes to notification signals.
func NewClient(opts ...ClientOption) (*Client, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	c := newClient(conn.Object(DBusBusName, DBusPath), opts...)
	c.conn = conn

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(DBusPath),
		dbus.WithMatchInterface(DBusInterface),
	); err != nil {
		return nil, fmt.Errorf("failed to subscribe to notification signals: %w", err)
	}

	conn.Signal(c.signals)
	go c.listen()

	c.logger.Debug("D-Bus client connected", "app_name", c.appName)
	return c, nil
}

func newClient(obj dbus.BusObject, opts ...ClientOption) *Client {
	c := &Client{
		obj:     obj,
		appName: "popkit",
		pending: make(map[uint32]*model.Deferred),
		signals: make(chan *dbus.Signal, 16),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Present sends req as a notification, replacing the current one.
func (c *Client) Present(ctx context.Context, req *model.Request) (*model.Deferred, error) {
	n := FromRequest(c.appName, req)

	c.mu.Lock()
	prevID := c.currentID
	c.mu.Unlock()
	n.ReplacesID = prevID

	var id uint32
	if err := c.obj.CallWithContext(ctx, DBusInterface+".Notify", 0, n.args()...).Store(&id); err != nil {
		return nil, fmt.Errorf("notify failed: %w", err)
	}

	d := model.NewDeferred(req.ID)

	c.mu.Lock()
	if prev, ok := c.pending[prevID]; ok && prevID != 0 {
		prev.Resolve(model.Dismissed(model.DismissReasonReplaced))
		delete(c.pending, prevID)
	}
	c.pending[id] = d
	c.currentID = id
	c.mu.Unlock()

	// Servers that ignore replaces_id leave the old popup up.
	if prevID != 0 && prevID != id {
		if err := c.closeNotification(ctx, prevID); err != nil {
			c.logger.Debug("failed to close replaced notification", "dbus_id", prevID, "error", err)
		}
	}

	c.logger.Debug("notification sent", "request_id", req.ID, "dbus_id", id, "replaces_id", prevID)
	return d, nil
}

// Dismiss closes the current notification. Without one of its own, the
// client asks popkitd for the popup on screen so a popup raised by another
// process can be closed. It is a no-op when nothing is shown or the server
// cannot tell.
func (c *Client) Dismiss(ctx context.Context) error {
	c.mu.Lock()
	id := c.currentID
	d := c.pending[id]
	delete(c.pending, id)
	c.currentID = 0
	c.mu.Unlock()

	if id == 0 {
		serverID, err := c.serverCurrent(ctx)
		if err != nil {
			c.logger.Debug("no popup to close", "error", err)
			return nil
		}
		if serverID == 0 {
			return nil
		}
		id = serverID
	}
	if d != nil {
		d.Resolve(model.Dismissed(model.DismissReasonClose))
	}
	return c.closeNotification(ctx, id)
}

// serverCurrent asks popkitd which popup is on screen. Servers without the
// extension return an unknown-method error.
func (c *Client) serverCurrent(ctx context.Context) (uint32, error) {
	var id uint32
	if err := c.obj.CallWithContext(ctx, DBusInterface+"."+MethodCurrentPopup, 0).Store(&id); err != nil {
		return 0, fmt.Errorf("get current popup: %w", err)
	}
	return id, nil
}

// CurrentID returns the server's ID for the popup on screen, or 0.
func (c *Client) CurrentID() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentID
}

// CloseID closes a notification by server ID, including one sent by
// another process.
func (c *Client) CloseID(ctx context.Context, id uint32) error {
	c.mu.Lock()
	d := c.pending[id]
	delete(c.pending, id)
	if c.currentID == id {
		c.currentID = 0
	}
	c.mu.Unlock()

	if d != nil {
		d.Resolve(model.Dismissed(model.DismissReasonClose))
	}
	return c.closeNotification(ctx, id)
}

func (c *Client) closeNotification(ctx context.Context, id uint32) error {
	if err := c.obj.CallWithContext(ctx, DBusInterface+".CloseNotification", 0, id).Err; err != nil {
		return fmt.Errorf("close notification %d: %w", id, err)
	}
	return nil
}

// ServerInformation queries the notification server.
func (c *Client) ServerInformation(ctx context.Context) (ServerInfo, error) {
	var info ServerInfo
	call := c.obj.CallWithContext(ctx, DBusInterface+".GetServerInformation", 0)
	if err := call.Store(&info.Name, &info.Vendor, &info.Version, &info.SpecVersion); err != nil {
		return ServerInfo{}, fmt.Errorf("get server information: %w", err)
	}
	return info, nil
}

// Capabilities returns the capabilities the server advertises.
func (c *Client) Capabilities(ctx context.Context) ([]string, error) {
	var caps []string
	if err := c.obj.CallWithContext(ctx, DBusInterface+".GetCapabilities", 0).Store(&caps); err != nil {
		return nil, fmt.Errorf("get capabilities: %w", err)
	}
	return caps, nil
}

// Close unsubscribes from signals. Pending results resolve as dismissed.
// The shared session bus connection is left open.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	for id, d := range c.pending {
		d.Resolve(model.Dismissed(model.DismissReasonClose))
		delete(c.pending, id)
	}
	c.currentID = 0
	c.mu.Unlock()

	close(c.done)

	if c.conn != nil {
		c.conn.RemoveSignal(c.signals)
		return c.conn.RemoveMatchSignal(
			dbus.WithMatchObjectPath(DBusPath),
			dbus.WithMatchInterface(DBusInterface),
		)
	}
	return nil
}

func (c *Client) listen() {
	for {
		select {
		case <-c.done:
			return
		case sig, ok := <-c.signals:
			if !ok {
				return
			}
			c.handleSignal(sig)
		}
	}
}

// handleSignal resolves the pending result a signal refers to.
func (c *Client) handleSignal(sig *dbus.Signal) {
	if sig == nil || len(sig.Body) < 2 {
		return
	}
	id, ok := sig.Body[0].(uint32)
	if !ok {
		return
	}

	var outcome model.Outcome
	switch sig.Name {
	case DBusInterface + ".ActionInvoked":
		key, _ := sig.Body[1].(string)
		outcome = ActionOutcome(key)
	case DBusInterface + ".NotificationClosed":
		reason, _ := sig.Body[1].(uint32)
		outcome = CloseReason(reason).Outcome()
	default:
		return
	}

	c.mu.Lock()
	d, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
		if c.currentID == id {
			c.currentID = 0
		}
	}
	c.mu.Unlock()

	if !ok {
		return
	}

	c.logger.Debug("notification resolved", "dbus_id", id, "choice", outcome.Choice, "reason", outcome.Reason)
	d.Resolve(outcome)
}
