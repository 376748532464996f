package dbus

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

const (
	// DBusInterface is the notification interface name.
	DBusInterface = "org.freedesktop.Notifications"
	// DBusPath is the notification object path.
	DBusPath = "/org/freedesktop/Notifications"
	// DBusBusName is the bus name to claim.
	DBusBusName = "org.freedesktop.Notifications"
)

// ErrNotConnected is returned when a signal is emitted before Start.
var ErrNotConnected = errors.New("not connected to D-Bus")

// NotificationHandler is called when a new notification is received.
type NotificationHandler func(notification *DBusNotification, id uint32)

// CloseHandler is called when CloseNotification is requested.
type CloseHandler func(id uint32)

// emitter sends signals. *dbus.Conn satisfies it.
type emitter interface {
	Emit(path dbus.ObjectPath, name string, values ...any) error
}

// NotificationServer is the popkitd side of org.freedesktop.Notifications.
type NotificationServer struct {
	conn   *dbus.Conn
	emit   emitter
	logger *slog.Logger

	nextID atomic.Uint32

	notifyHandler NotificationHandler
	closeHandler  CloseHandler

	mu         sync.RWMutex
	active     map[uint32]*DBusNotification
	current    uint32
	serverInfo ServerInfo
	running    bool
}

// NewNotificationServer creates a new NotificationServer.
func NewNotificationServer(logger *slog.Logger) *NotificationServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationServer{
		logger:     logger,
		active:     make(map[uint32]*DBusNotification),
		serverInfo: DefaultServerInfo(),
	}
}

// SetNotifyHandler sets the handler called when a notification is received.
func (s *NotificationServer) SetNotifyHandler(handler NotificationHandler) {
	s.notifyHandler = handler
}

// SetCloseHandler sets the handler called when CloseNotification is requested.
func (s *NotificationServer) SetCloseHandler(handler CloseHandler) {
	s.closeHandler = handler
}

// SetServerInfo sets the server information returned by GetServerInformation.
func (s *NotificationServer) SetServerInfo(info ServerInfo) {
	s.serverInfo = info
}

// Start connects to the session bus, exports the notification service and
// claims the bus name. It fails if another server owns the name.
func (s *NotificationServer) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.mu.Unlock()

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	if err := conn.Export(s, DBusPath, DBusInterface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: DBusPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    DBusInterface,
				Methods: notificationMethods(),
				Signals: notificationSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), DBusPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(DBusBusName, dbus.NameFlagDoNotQueue|dbus.NameFlagReplaceExisting)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", DBusBusName)
	}

	s.mu.Lock()
	s.conn = conn
	s.emit = conn
	s.running = true
	s.mu.Unlock()

	s.logger.Info("D-Bus notification server started", "interface", DBusInterface, "path", DBusPath)
	return nil
}

// Stop releases the bus name. The shared session connection stays open.
func (s *NotificationServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if s.conn != nil {
		if _, err := s.conn.ReleaseName(DBusBusName); err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
	}

	s.logger.Info("D-Bus notification server stopped")
	return nil
}

// GetCapabilities implements the GetCapabilities() -> as method. The list
// includes CapabilityPopkit so clients can detect popkitd.
func (s *NotificationServer) GetCapabilities() ([]string, *dbus.Error) {
	s.logger.Debug("GetCapabilities called")
	return ServerCapabilities, nil
}

// GetServerInformation implements GetServerInformation() -> (ssss).
func (s *NotificationServer) GetServerInformation() (string, string, string, string, *dbus.Error) {
	s.logger.Debug("GetServerInformation called")
	return s.serverInfo.Name, s.serverInfo.Vendor, s.serverInfo.Version, s.serverInfo.SpecVersion, nil
}

// Notify implements Notify(susssasa{sv}i) -> u. A replaces_id that is no
// longer active gets a fresh ID.
func (s *NotificationServer) Notify(
	appName string,
	replacesID uint32,
	appIcon string,
	summary string,
	body string,
	actions []string,
	hints map[string]dbus.Variant,
	expireTimeout int32,
) (uint32, *dbus.Error) {
	n := &DBusNotification{
		AppName:       appName,
		ReplacesID:    replacesID,
		AppIcon:       appIcon,
		Summary:       summary,
		Body:          body,
		Actions:       actions,
		Hints:         hints,
		ExpireTimeout: expireTimeout,
	}

	id := replacesID
	if id == 0 || !s.IsActive(id) {
		id = s.nextID.Add(1)
	}

	s.logger.Debug("Notify called",
		"app_name", appName,
		"replaces_id", replacesID,
		"summary", summary,
		"dbus_id", id,
	)

	s.track(id, n)
	return id, nil
}

// NotifyInternal shows a notification raised inside the daemon without a
// bus round trip. Returns the notification ID.
func (s *NotificationServer) NotifyInternal(n *DBusNotification) uint32 {
	id := n.ReplacesID
	if id == 0 || !s.IsActive(id) {
		id = s.nextID.Add(1)
	}

	s.logger.Debug("NotifyInternal called", "summary", n.Summary, "dbus_id", id)

	s.track(id, n)
	return id
}

func (s *NotificationServer) track(id uint32, n *DBusNotification) {
	s.mu.Lock()
	s.active[id] = n
	s.current = id
	s.mu.Unlock()

	if s.notifyHandler != nil {
		s.notifyHandler(n, id)
	}
}

// CloseNotification closes a notification by ID.
// D-Bus method: CloseNotification(u) -> nothing
func (s *NotificationServer) CloseNotification(id uint32) *dbus.Error {
	s.logger.Debug("CloseNotification called", "dbus_id", id)

	if !s.MarkClosed(id) {
		return nil
	}

	if s.closeHandler != nil {
		s.closeHandler(id)
	}

	if err := s.EmitNotificationClosed(id, CloseReasonClosed); err != nil {
		s.logger.Warn("failed to emit NotificationClosed signal", "dbus_id", id, "error", err)
	}
	return nil
}

// MarkClosed removes a notification from active tracking.
// Reports whether it was active.
func (s *NotificationServer) MarkClosed(id uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.active[id]
	delete(s.active, id)
	if s.current == id {
		s.current = 0
	}
	return ok
}

// GetCurrentPopup implements the popkit extension GetCurrentPopup() -> u.
// It returns the most recently shown notification that is still active,
// which lets a new process close a popup raised by another.
func (s *NotificationServer) GetCurrentPopup() (uint32, *dbus.Error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, nil
}

// IsActive reports whether id is on screen.
func (s *NotificationServer) IsActive(id uint32) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.active[id]
	return ok
}

// Lookup returns the active notification with the given ID.
func (s *NotificationServer) Lookup(id uint32) (*DBusNotification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.active[id]
	return n, ok
}

// Introspection data for the Notifications interface.

func notificationMethods() []introspect.Method {
	return []introspect.Method{
		{Name: "GetCapabilities", Args: outArgs("capabilities", "as")},
		{Name: "GetServerInformation", Args: outArgs(
			"name", "s", "vendor", "s", "version", "s", "spec_version", "s")},
		{Name: "Notify", Args: append(inArgs(
			"app_name", "s", "replaces_id", "u", "app_icon", "s", "summary", "s",
			"body", "s", "actions", "as", "hints", "a{sv}", "expire_timeout", "i",
		), outArgs("id", "u")...)},
		{Name: "CloseNotification", Args: inArgs("id", "u")},
		{Name: MethodCurrentPopup, Args: outArgs("id", "u")},
	}
}

func notificationSignals() []introspect.Signal {
	return []introspect.Signal{
		{Name: "NotificationClosed", Args: introspectArgs("", "id", "u", "reason", "u")},
		{Name: "ActionInvoked", Args: introspectArgs("", "id", "u", "action_key", "s")},
	}
}

func inArgs(pairs ...string) []introspect.Arg  { return introspectArgs("in", pairs...) }
func outArgs(pairs ...string) []introspect.Arg { return introspectArgs("out", pairs...) }

// introspectArgs builds args from name, type pairs.
func introspectArgs(direction string, pairs ...string) []introspect.Arg {
	list := make([]introspect.Arg, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		list = append(list, introspect.Arg{Name: pairs[i], Type: pairs[i+1], Direction: direction})
	}
	return list
}
