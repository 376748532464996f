package dbus

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
)

// errMalformedNotify is returned for Notify calls whose body does not match
// the susssasa{sv}i signature.
var errMalformedNotify = errors.New("malformed Notify call")

// WatchHandler is called for every Notify call observed on the bus.
type WatchHandler func(notification *DBusNotification)

// Monitor passively observes Notify calls without claiming the bus name,
// so it can run next to whatever notification server is active.
type Monitor struct {
	conn   *dbus.Conn
	logger *slog.Logger

	onNotify WatchHandler
	messages chan *dbus.Message
}

// NewMonitor creates a new notification monitor.
func NewMonitor(handler WatchHandler, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		logger:   logger,
		onNotify: handler,
		messages: make(chan *dbus.Message, 100),
	}
}

// Start begins monitoring the session bus. It uses a private connection
// because a monitoring connection cannot be used for anything else.
func (m *Monitor) Start() error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	m.conn = conn

	rules := []string{
		"type='method_call',interface='" + DBusInterface + "',member='Notify'",
	}

	err = conn.BusObject().Call("org.freedesktop.DBus.Monitoring.BecomeMonitor", 0, rules, uint32(0)).Err
	if err != nil {
		// Older buses lack BecomeMonitor; fall back to eavesdropping
		m.logger.Warn("BecomeMonitor not available, trying AddMatch", "error", err)
		matchRule := rules[0] + ",eavesdrop='true'"
		if err := conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, matchRule).Err; err != nil {
			return fmt.Errorf("failed to add match rule (eavesdrop may require permissions): %w", err)
		}
	}

	conn.Eavesdrop(m.messages)
	go m.processMessages()

	m.logger.Info("watching notification traffic")
	return nil
}

func (m *Monitor) processMessages() {
	for msg := range m.messages {
		if !isNotifyCall(msg) {
			continue
		}

		n, err := notificationFromMessage(msg)
		if err != nil {
			m.logger.Warn("skipping notification", "error", err)
			continue
		}

		m.logger.Debug("captured notification", "app_name", n.AppName, "summary", n.Summary)
		if m.onNotify != nil {
			m.onNotify(n)
		}
	}
}

func isNotifyCall(msg *dbus.Message) bool {
	if msg == nil || msg.Type != dbus.TypeMethodCall {
		return false
	}
	iface, ok := msg.Headers[dbus.FieldInterface]
	if !ok || iface.Value() != DBusInterface {
		return false
	}
	member, ok := msg.Headers[dbus.FieldMember]
	return ok && member.Value() == "Notify"
}

// notificationFromMessage parses the body of a Notify method call.
func notificationFromMessage(msg *dbus.Message) (*DBusNotification, error) {
	if len(msg.Body) < 8 {
		return nil, fmt.Errorf("%w: %d arguments", errMalformedNotify, len(msg.Body))
	}

	n := &DBusNotification{}
	var ok bool
	if n.AppName, ok = msg.Body[0].(string); !ok {
		return nil, fmt.Errorf("%w: app_name", errMalformedNotify)
	}
	if n.ReplacesID, ok = msg.Body[1].(uint32); !ok {
		return nil, fmt.Errorf("%w: replaces_id", errMalformedNotify)
	}
	if n.AppIcon, ok = msg.Body[2].(string); !ok {
		return nil, fmt.Errorf("%w: app_icon", errMalformedNotify)
	}
	if n.Summary, ok = msg.Body[3].(string); !ok {
		return nil, fmt.Errorf("%w: summary", errMalformedNotify)
	}
	if n.Body, ok = msg.Body[4].(string); !ok {
		return nil, fmt.Errorf("%w: body", errMalformedNotify)
	}
	if actions, ok := msg.Body[5].([]string); ok {
		n.Actions = actions
	}
	if hints, ok := msg.Body[6].(map[string]dbus.Variant); ok {
		n.Hints = hints
	}
	if timeout, ok := msg.Body[7].(int32); ok {
		n.ExpireTimeout = timeout
	}
	return n, nil
}

// Stop stops the monitor and closes its private connection.
func (m *Monitor) Stop() error {
	if m.conn != nil {
		return m.conn.Close()
	}
	return nil
}
