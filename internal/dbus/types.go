package dbus

import (
	"strings"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/popkit/internal/alert"
	"github.com/jmylchreest/popkit/internal/model"
)

// CloseReason represents the reason for closing a notification.
// These values are defined by the freedesktop.org notification specification.
type CloseReason uint32

const (
	// CloseReasonExpired indicates the notification expired (timeout reached).
	CloseReasonExpired CloseReason = 1
	// CloseReasonDismissed indicates the user dismissed the notification.
	CloseReasonDismissed CloseReason = 2
	// CloseReasonClosed indicates the notification was closed via CloseNotification.
	CloseReasonClosed CloseReason = 3
	// CloseReasonUndefined is reserved by the notification specification.
	// popkitd sends it for a popup that was replaced by a newer one.
	CloseReasonUndefined CloseReason = 4
)

// String returns the string representation of the close reason.
func (r CloseReason) String() string {
	switch r {
	case CloseReasonExpired:
		return "expired"
	case CloseReasonDismissed:
		return "dismissed"
	case CloseReasonClosed:
		return "closed"
	case CloseReasonUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// Outcome maps a close reason onto the outcome of a popup.
func (r CloseReason) Outcome() model.Outcome {
	switch r {
	case CloseReasonExpired:
		return model.Dismissed(model.DismissReasonTimer)
	case CloseReasonUndefined:
		return model.Dismissed(model.DismissReasonReplaced)
	default:
		return model.Dismissed(model.DismissReasonClose)
	}
}

// Action keys used for popup buttons.
const (
	ActionConfirm = "confirm"
	ActionCancel  = "cancel"
	ActionDefault = "default"

	// Pseudo actions popkitd invokes on its own popups so clients can tell
	// how a dialog was dismissed.
	ActionEsc      = "x-popkit-esc"
	ActionBackdrop = "x-popkit-backdrop"
)

// ActionOutcome maps an invoked action key onto the outcome of a popup.
func ActionOutcome(key string) model.Outcome {
	switch key {
	case ActionConfirm, ActionDefault:
		return model.Confirmed()
	case ActionCancel:
		return model.Cancelled()
	case ActionEsc:
		return model.Dismissed(model.DismissReasonEsc)
	case ActionBackdrop:
		return model.Dismissed(model.DismissReasonBackdrop)
	default:
		return model.Dismissed(model.DismissReasonClose)
	}
}

// Hint keys carrying popup attributes that have no freedesktop equivalent.
const (
	HintID           = "x-popkit-id"
	HintKind         = "x-popkit-kind"
	HintMode         = "x-popkit-mode"
	HintIcon         = "x-popkit-icon"
	HintClass        = "x-popkit-class"
	HintWidth        = "x-popkit-width"
	HintPosition     = "x-popkit-position"
	HintProgressBar  = "x-popkit-progress-bar"
	HintLoading      = "x-popkit-loading"
	HintOutsideClick = "x-popkit-outside-click"
	HintConfirmColor = "x-popkit-confirm-color"
	HintCancelColor  = "x-popkit-cancel-color"
)

// Urgency levels from the notification specification.
const (
	UrgencyLow      byte = 0
	UrgencyNormal   byte = 1
	UrgencyCritical byte = 2
)

// CategoryPrefix prefixes the category hint of every popkit notification.
const CategoryPrefix = "x-popkit."

// DBusNotification represents the argument set of a D-Bus Notify call.
type DBusNotification struct {
	AppName       string
	ReplacesID    uint32
	AppIcon       string
	Summary       string
	Body          string
	Actions       []string // Alternating key, label pairs
	Hints         map[string]dbus.Variant
	ExpireTimeout int32 // -1 = server default, 0 = never expire
}

// Action represents a notification action with key and label.
type Action struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// FromRequest encodes a request as Notify arguments.
func FromRequest(appName string, req *model.Request) *DBusNotification {
	n := &DBusNotification{
		AppName:       appName,
		AppIcon:       req.Icon.FreedesktopName(),
		Summary:       req.Title,
		Body:          req.Text,
		Actions:       []string{},
		ExpireTimeout: 0,
		Hints: map[string]dbus.Variant{
			"urgency":        dbus.MakeVariant(UrgencyCritical),
			"category":       dbus.MakeVariant(CategoryPrefix + string(req.Kind)),
			HintID:           dbus.MakeVariant(req.ID),
			HintKind:         dbus.MakeVariant(string(req.Kind)),
			HintMode:         dbus.MakeVariant(string(req.Mode)),
			HintIcon:         dbus.MakeVariant(string(req.Icon)),
			HintClass:        dbus.MakeVariant(req.CustomClass.Popup),
			HintWidth:        dbus.MakeVariant(req.Width),
			HintProgressBar:  dbus.MakeVariant(req.TimerProgressBar),
			HintLoading:      dbus.MakeVariant(req.ShowLoading),
			HintOutsideClick: dbus.MakeVariant(req.AllowOutsideClick),
		},
	}

	if req.Position != "" {
		n.Hints[HintPosition] = dbus.MakeVariant(string(req.Position))
	}

	if req.Mode == model.ModeToast {
		n.ExpireTimeout = int32(req.Timer)
		n.Hints["urgency"] = dbus.MakeVariant(UrgencyNormal)
		n.Hints["transient"] = dbus.MakeVariant(true)
	}

	if req.ShowConfirmButton {
		n.Actions = append(n.Actions, ActionConfirm, req.ConfirmButtonText)
		if req.ConfirmButtonColor != "" {
			n.Hints[HintConfirmColor] = dbus.MakeVariant(req.ConfirmButtonColor)
		}
	}
	if req.ShowCancelButton {
		n.Actions = append(n.Actions, ActionCancel, req.CancelButtonText)
		if req.CancelButtonColor != "" {
			n.Hints[HintCancelColor] = dbus.MakeVariant(req.CancelButtonColor)
		}
	}

	return n
}

// IsPopkit reports whether the notification was sent by a popkit client.
func (n *DBusNotification) IsPopkit() bool {
	return n.stringHint(HintKind) != ""
}

// ToRequest decodes the notification into a request. Notifications from
// other applications are styled with policy p: anything with actions becomes
// a modal, everything else a toast.
func (n *DBusNotification) ToRequest(p alert.Policy) *model.Request {
	if !n.IsPopkit() {
		return n.foreignRequest(p)
	}

	req := model.NewRequest(model.Kind(n.stringHint(HintKind)))
	if id := n.stringHint(HintID); id != "" {
		req.ID = id
	}
	req.Mode = model.Mode(n.stringHint(HintMode))
	req.Title = n.Summary
	req.Text = n.Body
	req.Icon = model.Icon(n.stringHint(HintIcon))
	if req.Icon == "" {
		req.Icon = model.IconFromFreedesktopName(n.AppIcon)
	}
	req.CustomClass.Popup = n.stringHint(HintClass)
	req.Width = n.stringHint(HintWidth)
	req.Position = model.Position(n.stringHint(HintPosition))
	req.TimerProgressBar = n.boolHint(HintProgressBar)
	req.ShowLoading = n.boolHint(HintLoading)
	req.AllowOutsideClick = n.boolHint(HintOutsideClick)

	if req.Mode == model.ModeToast {
		req.Toast = true
		if n.ExpireTimeout > 0 {
			req.Timer = int(n.ExpireTimeout)
		}
	}

	for _, a := range n.ParsedActions() {
		switch a.Key {
		case ActionConfirm:
			req.ShowConfirmButton = true
			req.ConfirmButtonText = a.Label
		case ActionCancel:
			req.ShowCancelButton = true
			req.CancelButtonText = a.Label
		}
	}
	req.ConfirmButtonColor = n.stringHint(HintConfirmColor)
	req.CancelButtonColor = n.stringHint(HintCancelColor)

	return req
}

func (n *DBusNotification) foreignRequest(p alert.Policy) *model.Request {
	actions := n.ParsedActions()
	if len(actions) == 0 {
		req := p.ToastRequest(categoryKind(n.Category()), n.Body)
		req.Title = n.Summary
		if n.AppIcon != "" {
			req.Icon = model.IconFromFreedesktopName(n.AppIcon)
		}
		timeout := n.Timeout(time.Duration(req.Timer) * time.Millisecond)
		if timeout == 0 || n.Urgency() == UrgencyCritical {
			// Never expires; keep it up until dismissed.
			req.Mode = model.ModeModal
			req.Toast = false
			req.Timer = 0
			req.ShowConfirmButton = true
			req.ConfirmButtonText = p.OKLabel
			req.ConfirmButtonColor = p.ConfirmColor
		} else {
			req.Timer = int(timeout.Milliseconds())
		}
		return req
	}

	req := p.CustomRequest(n.Summary, n.Body, model.IconFromFreedesktopName(n.AppIcon))
	req.ShowConfirmButton = false
	for _, a := range actions {
		switch {
		case !req.ShowConfirmButton:
			req.ShowConfirmButton = true
			req.ConfirmButtonText = a.Label
		case !req.ShowCancelButton:
			req.ShowCancelButton = true
			req.CancelButtonText = a.Label
			req.CancelButtonColor = p.CancelColor
		}
	}
	return req
}

// categoryKind picks a toast kind from a freedesktop category such as
// "transfer.error" or "x-popkit.success".
func categoryKind(category string) model.Kind {
	_, suffix, _ := strings.Cut(category, ".")
	switch suffix {
	case "error", "bounced":
		return model.KindError
	case "complete", "success":
		return model.KindSuccess
	case "disconnected", "offline", "warning":
		return model.KindWarning
	default:
		return model.KindInfo
	}
}

// ForeignActionKey returns the action key a button of a foreign
// notification maps back to. Confirm is the first action, cancel the second.
func (n *DBusNotification) ForeignActionKey(button string) string {
	actions := n.ParsedActions()
	idx := 0
	if button == ActionCancel {
		idx = 1
	}
	if idx < len(actions) {
		return actions[idx].Key
	}
	return button
}

// Timeout returns the requested expiry, or def when the server default is asked for.
func (n *DBusNotification) Timeout(def time.Duration) time.Duration {
	if n.ExpireTimeout < 0 {
		return def
	}
	return time.Duration(n.ExpireTimeout) * time.Millisecond
}

// ParsedActions converts the D-Bus action array to structured form.
// D-Bus actions are passed as alternating key/label pairs.
func (n *DBusNotification) ParsedActions() []Action {
	actions := make([]Action, 0, len(n.Actions)/2)
	for i := 0; i+1 < len(n.Actions); i += 2 {
		actions = append(actions, Action{
			Key:   n.Actions[i],
			Label: n.Actions[i+1],
		})
	}
	return actions
}

// Urgency extracts the urgency hint from the notification.
// Returns UrgencyNormal if not specified.
func (n *DBusNotification) Urgency() byte {
	if v, ok := n.Hints["urgency"]; ok {
		if b, ok := v.Value().(byte); ok {
			return b
		}
	}
	return UrgencyNormal
}

// Category extracts the category hint from the notification.
func (n *DBusNotification) Category() string {
	return n.stringHint("category")
}

// SoundFile extracts the sound-file hint.
func (n *DBusNotification) SoundFile() string {
	return n.stringHint("sound-file")
}

// SuppressSound returns true if the suppress-sound hint is set.
func (n *DBusNotification) SuppressSound() bool {
	return n.boolHint("suppress-sound")
}

// Resident returns true if the resident hint is set.
// Resident notifications should not be auto-removed after an action is invoked.
func (n *DBusNotification) Resident() bool {
	return n.boolHint("resident")
}

func (n *DBusNotification) stringHint(key string) string {
	if v, ok := n.Hints[key]; ok {
		if s, ok := v.Value().(string); ok {
			return s
		}
	}
	return ""
}

func (n *DBusNotification) boolHint(key string) bool {
	if v, ok := n.Hints[key]; ok {
		if b, ok := v.Value().(bool); ok {
			return b
		}
	}
	return false
}

// args returns the Notify call arguments in signature order.
func (n *DBusNotification) args() []any {
	return []any{
		n.AppName,
		n.ReplacesID,
		n.AppIcon,
		n.Summary,
		n.Body,
		n.Actions,
		n.Hints,
		n.ExpireTimeout,
	}
}

// CapabilityPopkit is advertised by servers that understand x-popkit-* hints.
const CapabilityPopkit = "x-popkit"

// MethodCurrentPopup is the popkitd extension returning the ID of the popup
// on screen, or 0. Other servers do not export it.
const MethodCurrentPopup = "GetCurrentPopup"

// ServerCapabilities lists the capabilities advertised by popkitd.
var ServerCapabilities = []string{
	"actions",        // Support notification actions
	"body",           // Support body text
	"icon-static",    // Support static icons
	"sound",          // Play sounds
	CapabilityPopkit, // Understands x-popkit-* hints
}

// HasCapability reports whether caps contains name.
func HasCapability(caps []string, name string) bool {
	for _, c := range caps {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}

// ServerInfo contains information about the notification server.
type ServerInfo struct {
	Name        string `json:"name" yaml:"name"`
	Vendor      string `json:"vendor" yaml:"vendor"`
	Version     string `json:"version" yaml:"version"`
	SpecVersion string `json:"spec_version" yaml:"spec_version"`
}

// DefaultServerInfo returns the default server information.
func DefaultServerInfo() ServerInfo {
	return ServerInfo{
		Name:        "popkitd",
		Vendor:      "popkit",
		Version:     "0.0.1", // Will be replaced by build-time version
		SpecVersion: "1.2",
	}
}
