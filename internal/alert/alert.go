package alert

import (
	"context"
	"log/slog"

	"github.com/jmylchreest/popkit/internal/model"
)

// Renderer is a popup-rendering backend.
//
// Present shows req, replacing whatever is on screen, and returns a Deferred
// that resolves when the popup goes away. Dismiss removes the current popup
// and must not fail when nothing is displayed.
type Renderer interface {
	Present(ctx context.Context, req *model.Request) (*model.Deferred, error)
	Dismiss(ctx context.Context) error
}

// Facade raises notifications through a Renderer.
type Facade struct {
	renderer Renderer
	policy   Policy
	logger   *slog.Logger
}

// Option configures a Facade.
type Option func(*Facade)

// WithPolicy replaces the default presentation policy.
func WithPolicy(p Policy) Option {
	return func(f *Facade) { f.policy = p }
}

// WithLogger sets the logger. A nil logger uses slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Facade) { f.logger = logger }
}

// New creates a Facade that presents through r.
func New(r Renderer, opts ...Option) *Facade {
	f := &Facade{
		renderer: r,
		policy:   DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// Policy returns the presentation policy in use.
func (f *Facade) Policy() Policy {
	return f.policy
}

// ShowSuccess shows a success toast.
func (f *Facade) ShowSuccess(ctx context.Context, message string) error {
	return f.fire(ctx, f.policy.SuccessRequest(message))
}

// ShowError shows an error toast.
func (f *Facade) ShowError(ctx context.Context, message string) error {
	return f.fire(ctx, f.policy.ErrorRequest(message))
}

// ShowWarning shows a warning toast.
func (f *Facade) ShowWarning(ctx context.Context, message string) error {
	return f.fire(ctx, f.policy.WarningRequest(message))
}

// ShowInfo shows an info toast.
func (f *Facade) ShowInfo(ctx context.Context, message string) error {
	return f.fire(ctx, f.policy.InfoRequest(message))
}

// ShowConfirm shows a two-button confirmation. The returned Deferred
// resolves to the user's choice; labels default to "Yes" and "No".
func (f *Facade) ShowConfirm(ctx context.Context, title, text string, opts ...ConfirmOption) (*model.Deferred, error) {
	return f.present(ctx, f.policy.ConfirmRequest(title, text, opts...))
}

// ShowCustomAlert shows a modal with the given icon, "info" when empty.
// The returned Deferred resolves when the popup is dismissed.
func (f *Facade) ShowCustomAlert(ctx context.Context, title, text string, icon model.Icon) (*model.Deferred, error) {
	return f.present(ctx, f.policy.CustomRequest(title, text, icon))
}

// ShowLoading shows a non-dismissible loading indicator. The caller removes
// it later with CloseAlert.
func (f *Facade) ShowLoading(ctx context.Context, title string) error {
	return f.fire(ctx, f.policy.LoadingRequest(title))
}

// CloseAlert dismisses whatever popup is displayed.
func (f *Facade) CloseAlert(ctx context.Context) error {
	f.logger.Debug("closing alert")
	return f.renderer.Dismiss(ctx)
}

// fire presents req and drops the deferred result.
func (f *Facade) fire(ctx context.Context, req *model.Request) error {
	_, err := f.present(ctx, req)
	return err
}

func (f *Facade) present(ctx context.Context, req *model.Request) (*model.Deferred, error) {
	f.logger.Debug("presenting alert",
		"request_id", req.ID,
		"kind", req.Kind,
		"mode", req.Mode,
		"icon", req.Icon,
	)
	return f.renderer.Present(ctx, req)
}
