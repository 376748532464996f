// Package model defines the core data structures for popkit.
package model

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Kind identifies which facade operation produced a request.
type Kind string

const (
	KindSuccess      Kind = "success"
	KindError        Kind = "error"
	KindWarning      Kind = "warning"
	KindInfo         Kind = "info"
	KindConfirmation Kind = "confirmation"
	KindCustom       Kind = "custom"
	KindLoading      Kind = "loading"
)

// Kinds lists every request kind in facade order.
var Kinds = []Kind{
	KindSuccess,
	KindError,
	KindWarning,
	KindInfo,
	KindConfirmation,
	KindCustom,
	KindLoading,
}

// IsToast reports whether the kind is one of the four timed toast variants.
func (k Kind) IsToast() bool {
	switch k {
	case KindSuccess, KindError, KindWarning, KindInfo:
		return true
	default:
		return false
	}
}

// Icon is the icon shown next to the title.
// Values outside the known set are caller supplied and carried through as-is.
type Icon string

const (
	IconSuccess  Icon = "success"
	IconError    Icon = "error"
	IconWarning  Icon = "warning"
	IconInfo     Icon = "info"
	IconQuestion Icon = "question"
)

// FreedesktopName maps the icon to a freedesktop icon-theme name.
func (i Icon) FreedesktopName() string {
	switch i {
	case IconSuccess:
		return "emblem-ok-symbolic"
	case IconError:
		return "dialog-error"
	case IconWarning:
		return "dialog-warning"
	case IconInfo:
		return "dialog-information"
	case IconQuestion:
		return "dialog-question"
	default:
		return string(i)
	}
}

// IconFromFreedesktopName is the inverse of FreedesktopName.
func IconFromFreedesktopName(name string) Icon {
	switch name {
	case "emblem-ok-symbolic":
		return IconSuccess
	case "dialog-error":
		return IconError
	case "dialog-warning":
		return IconWarning
	case "dialog-information", "":
		return IconInfo
	case "dialog-question":
		return IconQuestion
	default:
		return Icon(name)
	}
}

// Mode is the interaction mode of a popup.
type Mode string

const (
	// ModeToast auto-dismisses after the timer and never blocks.
	ModeToast Mode = "toast"
	// ModeModal stays until the user confirms, cancels or dismisses it.
	ModeModal Mode = "modal"
	// ModeLoading cannot be dismissed by the user; only CloseAlert removes it.
	ModeLoading Mode = "loading"
)

// Position is where a popup is placed on screen.
type Position string

const (
	PositionCenter      Position = "center"
	PositionTop         Position = "top"
	PositionTopStart    Position = "top-start"
	PositionTopEnd      Position = "top-end"
	PositionBottom      Position = "bottom"
	PositionBottomStart Position = "bottom-start"
	PositionBottomEnd   Position = "bottom-end"
)

// ValidPositions returns all valid position values.
func ValidPositions() []Position {
	return []Position{
		PositionCenter,
		PositionTop,
		PositionTopStart,
		PositionTopEnd,
		PositionBottom,
		PositionBottomStart,
		PositionBottomEnd,
	}
}

// CustomClass holds the style classes applied to the popup.
type CustomClass struct {
	Popup string `json:"popup" yaml:"popup"`
}

// Request is the configuration record handed to a rendering backend.
// It is built per call and never retained by the facade.
type Request struct {
	ID        string    `json:"id" yaml:"id"`
	Kind      Kind      `json:"kind" yaml:"kind"`
	Mode      Mode      `json:"mode" yaml:"mode"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`

	Title string `json:"title" yaml:"title"`
	Text  string `json:"text,omitempty" yaml:"text,omitempty"`
	Icon  Icon   `json:"icon,omitempty" yaml:"icon,omitempty"`

	Toast            bool     `json:"toast" yaml:"toast"`
	Position         Position `json:"position,omitempty" yaml:"position,omitempty"`
	Timer            int      `json:"timer,omitempty" yaml:"timer,omitempty"` // milliseconds, 0 = no auto-dismiss
	TimerProgressBar bool     `json:"timerProgressBar" yaml:"timerProgressBar"`

	ShowConfirmButton  bool   `json:"showConfirmButton" yaml:"showConfirmButton"`
	ShowCancelButton   bool   `json:"showCancelButton" yaml:"showCancelButton"`
	ConfirmButtonText  string `json:"confirmButtonText,omitempty" yaml:"confirmButtonText,omitempty"`
	CancelButtonText   string `json:"cancelButtonText,omitempty" yaml:"cancelButtonText,omitempty"`
	ConfirmButtonColor string `json:"confirmButtonColor,omitempty" yaml:"confirmButtonColor,omitempty"`
	CancelButtonColor  string `json:"cancelButtonColor,omitempty" yaml:"cancelButtonColor,omitempty"`

	AllowOutsideClick bool `json:"allowOutsideClick" yaml:"allowOutsideClick"`
	ShowLoading       bool `json:"showLoading" yaml:"showLoading"`

	Width       string      `json:"width" yaml:"width"`
	CustomClass CustomClass `json:"customClass" yaml:"customClass"`
}

// NewRequest creates a request of the given kind with a fresh ULID.
func NewRequest(kind Kind) *Request {
	now := time.Now()
	return &Request{
		ID:        ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		Kind:      kind,
		CreatedAt: now,
	}
}

// TimerDuration returns the auto-dismiss timer as a time.Duration.
func (r *Request) TimerDuration() time.Duration {
	return time.Duration(r.Timer) * time.Millisecond
}

// Interactive reports whether the caller can expect a user decision.
func (r *Request) Interactive() bool {
	return r.Mode == ModeModal
}

// Dismissible reports whether the user may close the popup themselves.
func (r *Request) Dismissible() bool {
	return r.Mode != ModeLoading
}

// Clone returns a copy of the request.
func (r *Request) Clone() *Request {
	clone := *r
	return &clone
}
