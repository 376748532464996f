// Package desktop renders popups as native desktop notifications through
// beeep. It has no way to collect an answer, so confirmations are refused.
package desktop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gen2brain/beeep"

	"github.com/jmylchreest/popkit/internal/model"
)

// ErrInteractionUnsupported is returned for records that need an answer
// the desktop backend cannot collect.
var ErrInteractionUnsupported = errors.New("desktop backend cannot ask for confirmation")

// Notifier is the subset of beeep the renderer uses.
type Notifier interface {
	Notify(title, message, icon string) error
	Alert(title, message, icon string) error
}

type beeepNotifier struct{}

func (beeepNotifier) Notify(title, message, icon string) error {
	return beeep.Notify(title, message, icon)
}

func (beeepNotifier) Alert(title, message, icon string) error {
	return beeep.Alert(title, message, icon)
}

// Renderer sends records as desktop notifications.
type Renderer struct {
	notifier Notifier
	logger   *slog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithNotifier replaces beeep, mainly for tests.
func WithNotifier(n Notifier) Option {
	return func(r *Renderer) { r.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) { r.logger = logger }
}

// New creates a renderer. appName is shown as the notification source.
func New(appName string, opts ...Option) *Renderer {
	if appName != "" {
		beeep.AppName = appName
	}
	r := &Renderer{notifier: beeepNotifier{}}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Present sends req. Toasts resolve as timed out and alerts as closed,
// since the notification server reports neither back.
func (r *Renderer) Present(_ context.Context, req *model.Request) (*model.Deferred, error) {
	if req.ShowCancelButton {
		return nil, ErrInteractionUnsupported
	}

	icon := ""
	if req.Icon != "" {
		icon = req.Icon.FreedesktopName()
	}

	var err error
	switch req.Mode {
	case model.ModeModal:
		err = r.notifier.Alert(req.Title, req.Text, icon)
	default:
		err = r.notifier.Notify(req.Title, req.Text, icon)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to send desktop notification: %w", err)
	}

	r.logger.Debug("desktop notification sent", "request_id", req.ID, "mode", req.Mode)

	if req.Mode == model.ModeToast {
		return model.Resolved(req.ID, model.Dismissed(model.DismissReasonTimer)), nil
	}
	return model.Resolved(req.ID, model.Dismissed(model.DismissReasonClose)), nil
}

// Dismiss is a no-op: beeep cannot withdraw a notification.
func (r *Renderer) Dismiss(context.Context) error {
	return nil
}
