package daemon

import (
	"context"
	"sync"

	godbus "github.com/godbus/dbus/v5"

	"github.com/jmylchreest/popkit/internal/dbus"
	"github.com/jmylchreest/popkit/internal/model"
)

// InternalServer is the part of the notification server that accepts
// notifications raised inside popkitd.
type InternalServer interface {
	NotifyInternal(n *dbus.DBusNotification) uint32
	CloseNotification(id uint32) *godbus.Error
}

// ServerRenderer presents requests through the in-process server, so the
// daemon's own notices take the same path as bus clients.
type ServerRenderer struct {
	server  InternalServer
	appName string

	mu        sync.Mutex
	pending   map[uint32]*model.Deferred
	currentID uint32
}

// NewServerRenderer creates a renderer sending as appName.
func NewServerRenderer(server InternalServer, appName string) *ServerRenderer {
	return &ServerRenderer{
		server:  server,
		appName: appName,
		pending: make(map[uint32]*model.Deferred),
	}
}

// Present raises req, replacing the renderer's previous popup.
func (r *ServerRenderer) Present(_ context.Context, req *model.Request) (*model.Deferred, error) {
	n := dbus.FromRequest(r.appName, req)

	r.mu.Lock()
	n.ReplacesID = r.currentID
	prev := r.pending[r.currentID]
	delete(r.pending, r.currentID)
	r.mu.Unlock()

	if prev != nil {
		prev.Resolve(model.Dismissed(model.DismissReasonReplaced))
	}

	d := model.NewDeferred(req.ID)
	id := r.server.NotifyInternal(n)

	r.mu.Lock()
	r.pending[id] = d
	r.currentID = id
	r.mu.Unlock()

	return d, nil
}

// Dismiss closes the renderer's current popup.
func (r *ServerRenderer) Dismiss(_ context.Context) error {
	r.mu.Lock()
	id := r.currentID
	d := r.pending[id]
	delete(r.pending, id)
	r.currentID = 0
	r.mu.Unlock()

	if d == nil {
		return nil
	}
	d.Resolve(model.Dismissed(model.DismissReasonClose))
	if err := r.server.CloseNotification(id); err != nil {
		return err
	}
	return nil
}

// Resolve settles the popup with id. Reports whether it belonged to this
// renderer.
func (r *ServerRenderer) Resolve(id uint32, outcome model.Outcome) bool {
	r.mu.Lock()
	d, ok := r.pending[id]
	delete(r.pending, id)
	if r.currentID == id {
		r.currentID = 0
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	d.Resolve(outcome)
	return true
}

// Pending returns the number of unresolved popups.
func (r *ServerRenderer) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
