package alert

import "github.com/jmylchreest/popkit/internal/model"

// toastTitles maps each toast kind to its fixed title and icon.
var toastTitles = map[model.Kind]struct {
	title string
	icon  model.Icon
}{
	model.KindSuccess: {"Success", model.IconSuccess},
	model.KindError:   {"Error", model.IconError},
	model.KindWarning: {"Warning", model.IconWarning},
	model.KindInfo:    {"Info", model.IconInfo},
}

// base stamps the attributes shared by every record.
func (p Policy) base(kind model.Kind) *model.Request {
	req := model.NewRequest(kind)
	req.Width = p.Width
	req.CustomClass = model.CustomClass{Popup: p.PopupClass}
	return req
}

// ToastRequest builds the record for one of the four toast kinds.
// Any other kind is treated as info.
func (p Policy) ToastRequest(kind model.Kind, message string) *model.Request {
	t, ok := toastTitles[kind]
	if !ok {
		kind = model.KindInfo
		t = toastTitles[kind]
	}

	req := p.base(kind)
	req.Mode = model.ModeToast
	req.Title = t.title
	req.Text = message
	req.Icon = t.icon
	req.Toast = true
	req.Position = p.ToastPosition
	req.ShowConfirmButton = false
	req.Timer = p.ToastTimer
	req.TimerProgressBar = p.ToastProgressBar
	return req
}

// SuccessRequest builds the record ShowSuccess presents.
func (p Policy) SuccessRequest(message string) *model.Request {
	return p.ToastRequest(model.KindSuccess, message)
}

// ErrorRequest builds the record ShowError presents.
func (p Policy) ErrorRequest(message string) *model.Request {
	return p.ToastRequest(model.KindError, message)
}

// WarningRequest builds the record ShowWarning presents.
func (p Policy) WarningRequest(message string) *model.Request {
	return p.ToastRequest(model.KindWarning, message)
}

// InfoRequest builds the record ShowInfo presents.
func (p Policy) InfoRequest(message string) *model.Request {
	return p.ToastRequest(model.KindInfo, message)
}

// ConfirmRequest builds the record ShowConfirm presents.
func (p Policy) ConfirmRequest(title, text string, opts ...ConfirmOption) *model.Request {
	labels := confirmLabels{confirm: p.ConfirmLabel, cancel: p.CancelLabel}
	for _, opt := range opts {
		opt(&labels)
	}

	req := p.base(model.KindConfirmation)
	req.Mode = model.ModeModal
	req.Title = title
	req.Text = text
	req.Icon = p.ConfirmIcon
	req.ShowConfirmButton = true
	req.ShowCancelButton = true
	req.ConfirmButtonText = labels.confirm
	req.CancelButtonText = labels.cancel
	req.ConfirmButtonColor = p.ConfirmColor
	req.CancelButtonColor = p.CancelColor
	req.AllowOutsideClick = true
	return req
}

// CustomRequest builds the record ShowCustomAlert presents.
// An empty icon falls back to the policy's custom icon.
func (p Policy) CustomRequest(title, text string, icon model.Icon) *model.Request {
	if icon == "" {
		icon = p.CustomIcon
	}

	req := p.base(model.KindCustom)
	req.Mode = model.ModeModal
	req.Title = title
	req.Text = text
	req.Icon = icon
	req.ShowConfirmButton = true
	req.ConfirmButtonText = p.OKLabel
	req.ConfirmButtonColor = p.ConfirmColor
	req.AllowOutsideClick = true
	return req
}

// LoadingRequest builds the record ShowLoading presents.
// An empty title falls back to the policy's loading title.
func (p Policy) LoadingRequest(title string) *model.Request {
	if title == "" {
		title = p.LoadingTitle
	}

	req := p.base(model.KindLoading)
	req.Mode = model.ModeLoading
	req.Title = title
	req.ShowConfirmButton = false
	req.AllowOutsideClick = false
	req.ShowLoading = true
	return req
}

// ConfirmOption overrides a button label on a confirmation.
type ConfirmOption func(*confirmLabels)

type confirmLabels struct {
	confirm string
	cancel  string
}

// WithConfirmLabel sets the confirm button text.
func WithConfirmLabel(label string) ConfirmOption {
	return func(l *confirmLabels) { l.confirm = label }
}

// WithCancelLabel sets the cancel button text.
func WithCancelLabel(label string) ConfirmOption {
	return func(l *confirmLabels) { l.cancel = label }
}
