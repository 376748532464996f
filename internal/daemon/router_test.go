package daemon

import (
	"errors"
	"testing"

	godbus "github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/popkit/internal/alert"
	"github.com/jmylchreest/popkit/internal/dbus"
	"github.com/jmylchreest/popkit/internal/model"
)

func newTestRouter(t *testing.T, opts ...RouterOption) (*Router, *fakeServer, *fakeDisplay, *queue) {
	t.Helper()
	server := newFakeServer()
	display := &fakeDisplay{}
	q := &queue{}
	opts = append([]RouterOption{WithRouterLogger(discardLogger())}, opts...)
	return NewRouter(server, display, q.schedule, opts...), server, display, q
}

func foreign(summary string, actions ...string) *dbus.DBusNotification {
	return &dbus.DBusNotification{
		AppName:       "other",
		Summary:       summary,
		Actions:       actions,
		Hints:         map[string]godbus.Variant{},
		ExpireTimeout: 5000,
	}
}

func TestRouter_HandleNotifySchedulesShow(t *testing.T) {
	r, server, display, q := newTestRouter(t)

	n := dbus.FromRequest("popkit", alert.DefaultPolicy().SuccessRequest("saved"))
	id := server.add(n)
	r.HandleNotify(n, id)

	assert.Empty(t, display.shown, "show must wait for the UI loop")
	q.run()

	require.Len(t, display.shown, 1)
	assert.Equal(t, id, display.shown[0].id)
	assert.Equal(t, model.KindSuccess, display.shown[0].req.Kind)
	assert.Equal(t, "saved", display.shown[0].req.Text)
}

func TestRouter_HandleNotifyPlaysSound(t *testing.T) {
	sounds := &fakeSounds{}
	r, server, _, _ := newTestRouter(t, WithSounds(sounds))

	n := dbus.FromRequest("popkit", alert.DefaultPolicy().ErrorRequest("boom"))
	r.HandleNotify(n, server.add(n))

	withFile := foreign("mail")
	withFile.Hints["sound-file"] = godbus.MakeVariant("/tmp/mail.wav")
	r.HandleNotify(withFile, server.add(withFile))

	muted := foreign("quiet")
	muted.Hints["suppress-sound"] = godbus.MakeVariant(true)
	r.HandleNotify(muted, server.add(muted))

	assert.Equal(t, []model.Icon{model.IconError}, sounds.icons)
	assert.Equal(t, []string{"/tmp/mail.wav"}, sounds.files)
}

func TestRouter_HandleNotifyShowFailure(t *testing.T) {
	r, server, display, q := newTestRouter(t)
	display.err = errors.New("no display")

	n := foreign("hello")
	id := server.add(n)
	r.HandleNotify(n, id)
	q.run()

	require.Len(t, server.closes, 1)
	assert.Equal(t, closed{id: id, reason: dbus.CloseReasonClosed}, server.closes[0])
}

func TestRouter_HandleCloseRequest(t *testing.T) {
	r, _, display, q := newTestRouter(t)

	r.HandleCloseRequest(7)
	assert.Empty(t, display.removed)
	q.run()
	assert.Equal(t, []uint32{7}, display.removed)
}

func TestRouter_PopupClosed(t *testing.T) {
	tests := []struct {
		name        string
		n           *dbus.DBusNotification
		reason      dbus.CloseReason
		gesture     string
		wantClose   *dbus.CloseReason
		wantInvoked string
	}{
		{
			name:      "expired toast",
			n:         dbus.FromRequest("popkit", alert.DefaultPolicy().InfoRequest("x")),
			reason:    dbus.CloseReasonExpired,
			wantClose: ptr(dbus.CloseReasonExpired),
		},
		{
			name:        "popkit esc becomes action",
			n:           dbus.FromRequest("popkit", alert.DefaultPolicy().CustomRequest("t", "x", "")),
			reason:      dbus.CloseReasonDismissed,
			gesture:     dbus.ActionEsc,
			wantInvoked: dbus.ActionEsc,
		},
		{
			name:      "foreign esc is a plain dismissal",
			n:         foreign("other", "ok", "OK"),
			reason:    dbus.CloseReasonDismissed,
			gesture:   dbus.ActionEsc,
			wantClose: ptr(dbus.CloseReasonDismissed),
		},
		{
			name:      "replaced",
			n:         foreign("other"),
			reason:    dbus.CloseReasonUndefined,
			wantClose: ptr(dbus.CloseReasonUndefined),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, server, _, _ := newTestRouter(t)
			id := server.add(tt.n)

			r.PopupClosed(id, tt.reason, tt.gesture)

			if tt.wantClose != nil {
				require.Len(t, server.closes, 1)
				assert.Equal(t, closed{id: id, reason: *tt.wantClose}, server.closes[0])
				assert.Empty(t, server.actions)
			}
			if tt.wantInvoked != "" {
				require.Len(t, server.actions, 1)
				assert.Equal(t, invoked{id: id, key: tt.wantInvoked}, server.actions[0])
				assert.Empty(t, server.closes)
			}
		})
	}
}

func TestRouter_PopupActionForeignKeys(t *testing.T) {
	r, server, _, _ := newTestRouter(t)

	n := foreign("update", "install", "Install", "later", "Later")
	id := server.add(n)
	r.PopupAction(id, dbus.ActionCancel)

	require.Len(t, server.actions, 1)
	assert.Equal(t, "later", server.actions[0].key)
}

func TestRouter_PopupActionPopkit(t *testing.T) {
	r, server, _, _ := newTestRouter(t)

	n := dbus.FromRequest("popkit", alert.DefaultPolicy().ConfirmRequest("Delete?", "sure"))
	id := server.add(n)
	r.PopupAction(id, dbus.ActionConfirm)

	require.Len(t, server.actions, 1)
	assert.Equal(t, dbus.ActionConfirm, server.actions[0].key)
}

func TestRouter_ResolvesInternalPopups(t *testing.T) {
	server := newFakeServer()
	display := &fakeDisplay{}
	q := &queue{}
	renderer := NewServerRenderer(server, "popkitd")
	r := NewRouter(server, display, q.schedule, WithInternal(renderer), WithRouterLogger(discardLogger()))
	server.onNotify = r.HandleNotify

	facade := alert.New(renderer, alert.WithLogger(discardLogger()))
	d, err := facade.ShowConfirm(t.Context(), "Reload?", "theme changed")
	require.NoError(t, err)
	q.run()
	require.Len(t, display.shown, 1)

	r.PopupAction(display.shown[0].id, dbus.ActionConfirm)

	outcome, ok := d.Outcome()
	require.True(t, ok)
	assert.Equal(t, model.Confirmed(), outcome)
	assert.Zero(t, renderer.Pending())
}

func TestRouter_SetPolicy(t *testing.T) {
	r, server, display, q := newTestRouter(t)

	p := alert.DefaultPolicy()
	p.ToastTimer = 1234
	r.SetPolicy(p)

	n := foreign("hello")
	n.ExpireTimeout = -1
	r.HandleNotify(n, server.add(n))
	q.run()

	require.Len(t, display.shown, 1)
	assert.Equal(t, 1234, display.shown[0].req.Timer)
}

func ptr[T any](v T) *T {
	return &v
}
