package model

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest(t *testing.T) {
	before := time.Now()
	req := NewRequest(KindSuccess)

	_, err := ulid.Parse(req.ID)
	require.NoError(t, err)
	assert.Equal(t, KindSuccess, req.Kind)
	assert.False(t, req.CreatedAt.Before(before))
}

func TestNewRequest_UniqueIDs(t *testing.T) {
	a := NewRequest(KindInfo)
	b := NewRequest(KindInfo)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestKind_IsToast(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected bool
	}{
		{KindSuccess, true},
		{KindError, true},
		{KindWarning, true},
		{KindInfo, true},
		{KindConfirmation, false},
		{KindCustom, false},
		{KindLoading, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.kind.IsToast())
		})
	}
}

func TestIcon_FreedesktopName(t *testing.T) {
	tests := []struct {
		icon     Icon
		expected string
	}{
		{IconSuccess, "emblem-ok-symbolic"},
		{IconError, "dialog-error"},
		{IconWarning, "dialog-warning"},
		{IconInfo, "dialog-information"},
		{IconQuestion, "dialog-question"},
		{Icon("mail-unread"), "mail-unread"},
	}

	for _, tt := range tests {
		t.Run(string(tt.icon), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.icon.FreedesktopName())
			assert.Equal(t, tt.icon, IconFromFreedesktopName(tt.expected))
		})
	}
}

func TestIconFromFreedesktopName_EmptyIsInfo(t *testing.T) {
	assert.Equal(t, IconInfo, IconFromFreedesktopName(""))
}

func TestRequest_TimerDuration(t *testing.T) {
	req := &Request{Timer: 3000}
	assert.Equal(t, 3*time.Second, req.TimerDuration())

	req.Timer = 0
	assert.Equal(t, time.Duration(0), req.TimerDuration())
}

func TestRequest_Modes(t *testing.T) {
	toast := &Request{Mode: ModeToast}
	modal := &Request{Mode: ModeModal}
	loading := &Request{Mode: ModeLoading}

	assert.False(t, toast.Interactive())
	assert.True(t, modal.Interactive())
	assert.False(t, loading.Interactive())

	assert.True(t, toast.Dismissible())
	assert.True(t, modal.Dismissible())
	assert.False(t, loading.Dismissible())
}

func TestRequest_Clone(t *testing.T) {
	req := &Request{Title: "Success", CustomClass: CustomClass{Popup: "swal2-large"}}
	clone := req.Clone()
	clone.Title = "Changed"
	clone.CustomClass.Popup = "other"

	assert.Equal(t, "Success", req.Title)
	assert.Equal(t, "swal2-large", req.CustomClass.Popup)
}
