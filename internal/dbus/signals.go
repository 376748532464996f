package dbus

import (
	"fmt"
)

// EmitNotificationClosed emits the NotificationClosed signal.
func (s *NotificationServer) EmitNotificationClosed(id uint32, reason CloseReason) error {
	s.mu.RLock()
	e := s.emit
	s.mu.RUnlock()
	if e == nil {
		return ErrNotConnected
	}

	if err := e.Emit(DBusPath, DBusInterface+".NotificationClosed", id, uint32(reason)); err != nil {
		return fmt.Errorf("failed to emit NotificationClosed signal: %w", err)
	}

	s.logger.Debug("emitted NotificationClosed signal", "dbus_id", id, "reason", reason.String())
	return nil
}

// EmitActionInvoked emits the ActionInvoked signal.
func (s *NotificationServer) EmitActionInvoked(id uint32, actionKey string) error {
	s.mu.RLock()
	e := s.emit
	s.mu.RUnlock()
	if e == nil {
		return ErrNotConnected
	}

	if err := e.Emit(DBusPath, DBusInterface+".ActionInvoked", id, actionKey); err != nil {
		return fmt.Errorf("failed to emit ActionInvoked signal: %w", err)
	}

	s.logger.Debug("emitted ActionInvoked signal", "dbus_id", id, "action_key", actionKey)
	return nil
}

// CloseWithReason forgets a notification and emits NotificationClosed.
// Notifications that are no longer active are ignored.
func (s *NotificationServer) CloseWithReason(id uint32, reason CloseReason) error {
	if !s.MarkClosed(id) {
		return nil
	}
	return s.EmitNotificationClosed(id, reason)
}

// InvokeAction emits ActionInvoked and, unless the notification is
// resident, closes it as dismissed.
func (s *NotificationServer) InvokeAction(id uint32, actionKey string) error {
	n, ok := s.Lookup(id)
	if !ok {
		return nil
	}

	if err := s.EmitActionInvoked(id, actionKey); err != nil {
		return err
	}

	if !n.Resident() {
		return s.CloseWithReason(id, CloseReasonDismissed)
	}
	return nil
}
