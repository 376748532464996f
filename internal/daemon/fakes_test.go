package daemon

import (
	"errors"
	"io"
	"log/slog"
	"sync"

	godbus "github.com/godbus/dbus/v5"

	"github.com/jmylchreest/popkit/internal/dbus"
	"github.com/jmylchreest/popkit/internal/model"
)

type closed struct {
	id     uint32
	reason dbus.CloseReason
}

type invoked struct {
	id  uint32
	key string
}

// fakeServer stands in for dbus.NotificationServer. NotifyInternal hands
// notifications to onNotify the way the real server calls its handler.
type fakeServer struct {
	mu       sync.Mutex
	nextID   uint32
	active   map[uint32]*dbus.DBusNotification
	closes   []closed
	actions  []invoked
	onNotify func(n *dbus.DBusNotification, id uint32)
	onClose  func(id uint32)
}

func newFakeServer() *fakeServer {
	return &fakeServer{active: make(map[uint32]*dbus.DBusNotification)}
}

func (s *fakeServer) add(n *dbus.DBusNotification) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.active[s.nextID] = n
	return s.nextID
}

func (s *fakeServer) Lookup(id uint32) (*dbus.DBusNotification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.active[id]
	return n, ok
}

func (s *fakeServer) CloseWithReason(id uint32, reason dbus.CloseReason) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, id)
	s.closes = append(s.closes, closed{id: id, reason: reason})
	return nil
}

func (s *fakeServer) InvokeAction(id uint32, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.active[id]; !ok {
		return errors.New("not active")
	}
	delete(s.active, id)
	s.actions = append(s.actions, invoked{id: id, key: key})
	return nil
}

func (s *fakeServer) NotifyInternal(n *dbus.DBusNotification) uint32 {
	s.mu.Lock()
	id := n.ReplacesID
	if _, ok := s.active[id]; id == 0 || !ok {
		s.nextID++
		id = s.nextID
	}
	s.active[id] = n
	handler := s.onNotify
	s.mu.Unlock()

	if handler != nil {
		handler(n, id)
	}
	return id
}

func (s *fakeServer) CloseNotification(id uint32) *godbus.Error {
	s.mu.Lock()
	_, ok := s.active[id]
	delete(s.active, id)
	handler := s.onClose
	s.mu.Unlock()

	if ok && handler != nil {
		handler(id)
	}
	return nil
}

type shown struct {
	req *model.Request
	id  uint32
}

type fakeDisplay struct {
	mu      sync.Mutex
	shown   []shown
	removed []uint32
	err     error
}

func (d *fakeDisplay) Show(req *model.Request, id uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.shown = append(d.shown, shown{req: req, id: id})
	return nil
}

func (d *fakeDisplay) Remove(id uint32) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.removed = append(d.removed, id)
	return true
}

type fakeSounds struct {
	icons []model.Icon
	files []string
}

func (s *fakeSounds) PlayForIcon(icon model.Icon) error {
	s.icons = append(s.icons, icon)
	return nil
}

func (s *fakeSounds) PlayFile(path string) error {
	s.files = append(s.files, path)
	return nil
}

// queue collects scheduled functions until run is called, like the GTK
// main loop does with idle callbacks.
type queue struct {
	mu    sync.Mutex
	funcs []func()
}

func (q *queue) schedule(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.funcs = append(q.funcs, fn)
}

func (q *queue) run() {
	q.mu.Lock()
	funcs := q.funcs
	q.funcs = nil
	q.mu.Unlock()
	for _, fn := range funcs {
		fn()
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
