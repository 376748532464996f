package daemon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/popkit/internal/alert"
	"github.com/jmylchreest/popkit/internal/dbus"
	"github.com/jmylchreest/popkit/internal/model"
)

func TestServerRenderer_PresentTracksNotification(t *testing.T) {
	server := newFakeServer()
	var got []*dbus.DBusNotification
	server.onNotify = func(n *dbus.DBusNotification, _ uint32) { got = append(got, n) }

	r := NewServerRenderer(server, "popkitd")
	d, err := r.Present(t.Context(), alert.DefaultPolicy().InfoRequest("hello"))
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "popkitd", got[0].AppName)
	assert.Equal(t, "hello", got[0].Body)
	assert.True(t, got[0].IsPopkit())
	assert.Equal(t, 1, r.Pending())

	select {
	case <-d.Done():
		t.Fatal("deferred resolved before the popup closed")
	default:
	}
}

func TestServerRenderer_PresentReplacesPrevious(t *testing.T) {
	server := newFakeServer()
	var ids []uint32
	var replaces []uint32
	server.onNotify = func(n *dbus.DBusNotification, id uint32) {
		ids = append(ids, id)
		replaces = append(replaces, n.ReplacesID)
	}

	r := NewServerRenderer(server, "popkitd")
	first, err := r.Present(t.Context(), alert.DefaultPolicy().InfoRequest("one"))
	require.NoError(t, err)
	second, err := r.Present(t.Context(), alert.DefaultPolicy().InfoRequest("two"))
	require.NoError(t, err)

	outcome, ok := first.Outcome()
	require.True(t, ok)
	assert.Equal(t, model.Dismissed(model.DismissReasonReplaced), outcome)

	_, ok = second.Outcome()
	assert.False(t, ok)

	require.Len(t, ids, 2)
	assert.Equal(t, uint32(0), replaces[0])
	assert.Equal(t, ids[0], replaces[1])
	assert.Equal(t, ids[0], ids[1], "the server reuses an active id")
	assert.Equal(t, 1, r.Pending())
}

func TestServerRenderer_Resolve(t *testing.T) {
	server := newFakeServer()
	var id uint32
	server.onNotify = func(_ *dbus.DBusNotification, got uint32) { id = got }

	r := NewServerRenderer(server, "popkitd")
	d, err := r.Present(t.Context(), alert.DefaultPolicy().CustomRequest("t", "x", model.IconSuccess))
	require.NoError(t, err)

	assert.False(t, r.Resolve(id+100, model.Confirmed()), "unknown ids are not ours")
	assert.True(t, r.Resolve(id, model.Confirmed()))
	assert.False(t, r.Resolve(id, model.Cancelled()), "resolves once")

	outcome, ok := d.Outcome()
	require.True(t, ok)
	assert.Equal(t, model.Confirmed(), outcome)
}

func TestServerRenderer_Dismiss(t *testing.T) {
	server := newFakeServer()
	var closedIDs []uint32
	server.onClose = func(id uint32) { closedIDs = append(closedIDs, id) }

	r := NewServerRenderer(server, "popkitd")
	require.NoError(t, r.Dismiss(t.Context()), "nothing displayed")
	assert.Empty(t, closedIDs)

	d, err := r.Present(t.Context(), alert.DefaultPolicy().LoadingRequest(""))
	require.NoError(t, err)
	require.NoError(t, r.Dismiss(t.Context()))

	outcome, ok := d.Outcome()
	require.True(t, ok)
	assert.Equal(t, model.Dismissed(model.DismissReasonClose), outcome)
	assert.Len(t, closedIDs, 1)
	assert.Zero(t, r.Pending())
}
