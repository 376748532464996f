package display

import (
	"log/slog"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/popkit/internal/config"
	"github.com/jmylchreest/popkit/internal/dbus"
	"github.com/jmylchreest/popkit/internal/display/placement"
	"github.com/jmylchreest/popkit/internal/model"
	"github.com/jmylchreest/popkit/internal/theme"
)

// Popup is a single layer-shell window rendering one request.
//
// Modal popups cover the monitor with a backdrop and center the dialog
// inside it so outside clicks can be detected. Toasts are a bare surface
// anchored by position.
type Popup struct {
	window *gtk.Window
	req    *model.Request
	config *config.DaemonConfig
	logger *slog.Logger

	backdrop *gtk.Box
	box      *gtk.Box
	progress *gtk.ProgressBar
	spinner  *gtk.Spinner
	confirm  *gtk.Button
	cancel   *gtk.Button

	onAction  func(actionKey string)
	onDismiss func(reason dbus.CloseReason, actionKey string)
	onHover   func(hovering bool)

	width  int
	closed bool
}

// NewPopup builds the window for req. monitorWidth sizes percentage widths.
func NewPopup(app *gtk.Application, req *model.Request, cfg *config.DaemonConfig, monitorWidth int, logger *slog.Logger) *Popup {
	if logger == nil {
		logger = slog.Default()
	}

	p := &Popup{
		req:    req,
		config: cfg,
		logger: logger,
		width:  placement.Width(req.Width, monitorWidth, cfg.Display.MinWidth),
	}

	p.window = gtk.NewWindow()
	p.window.SetApplication(app)
	p.window.SetDecorated(false)
	p.window.SetResizable(false)
	p.window.AddCSSClass("popkit-surface")

	layershell.InitForWindow(p.window)
	layershell.SetExclusiveZone(p.window, 0)
	layershell.SetNamespace(p.window, "popkit")
	if p.modal() {
		layershell.SetLayer(p.window, layershell.LayerShellLayerOverlay)
		layershell.SetKeyboardMode(p.window, layershell.LayerShellKeyboardModeExclusive)
	} else {
		layershell.SetLayer(p.window, layershell.LayerShellLayerTop)
		layershell.SetKeyboardMode(p.window, layershell.LayerShellKeyboardModeNone)
	}

	p.buildUI()
	p.applyClasses()
	p.applyButtonColors()
	p.connectSignals()

	return p
}

func (p *Popup) modal() bool {
	return p.req.Mode != model.ModeToast
}

func (p *Popup) position() model.Position {
	if p.config.Display.Position != "" {
		return model.Position(p.config.Display.Position)
	}
	return p.req.Position
}

func (p *Popup) buildUI() {
	p.box = gtk.NewBox(gtk.OrientationVertical, 6)
	p.box.AddCSSClass("popkit-popup")
	p.box.SetSizeRequest(p.width, -1)

	if p.req.Icon != "" {
		icon := gtk.NewImageFromIconName(p.req.Icon.FreedesktopName())
		icon.AddCSSClass("popkit-icon")
		icon.SetPixelSize(64)
		p.box.Append(icon)
	}

	if p.req.ShowLoading {
		p.spinner = gtk.NewSpinner()
		p.spinner.AddCSSClass("popkit-spinner")
		p.spinner.Start()
		p.box.Append(p.spinner)
	}

	if p.req.Title != "" {
		title := gtk.NewLabel(p.req.Title)
		title.AddCSSClass("popkit-title")
		title.SetWrap(true)
		title.SetJustify(gtk.JustifyCenter)
		p.box.Append(title)
	}

	if p.req.Text != "" {
		text := gtk.NewLabel(p.req.Text)
		text.AddCSSClass("popkit-text")
		text.SetWrap(true)
		text.SetJustify(gtk.JustifyCenter)
		p.box.Append(text)
	}

	if p.req.ShowConfirmButton || p.req.ShowCancelButton {
		actions := gtk.NewBox(gtk.OrientationHorizontal, 8)
		actions.AddCSSClass("popkit-actions")
		actions.SetHAlign(gtk.AlignCenter)
		if p.req.ShowConfirmButton {
			p.confirm = p.button(p.req.ConfirmButtonText, "popkit-confirm", dbus.ActionConfirm)
			actions.Append(p.confirm)
		}
		if p.req.ShowCancelButton {
			p.cancel = p.button(p.req.CancelButtonText, "popkit-cancel", dbus.ActionCancel)
			actions.Append(p.cancel)
		}
		p.box.Append(actions)
	}

	if p.req.TimerProgressBar && p.req.Timer > 0 {
		p.progress = gtk.NewProgressBar()
		p.progress.AddCSSClass("popkit-progress")
		p.progress.SetFraction(1)
		p.box.Append(p.progress)
	}

	if !p.modal() {
		p.window.SetDefaultSize(p.width, -1)
		p.window.SetChild(p.box)
		p.anchor(placement.For(p.position()))
		return
	}

	// Modal: a full-surface backdrop with the dialog aligned inside it.
	p.backdrop = gtk.NewBox(gtk.OrientationVertical, 0)
	p.backdrop.AddCSSClass("popkit-backdrop")
	p.backdrop.SetHExpand(true)
	p.backdrop.SetVExpand(true)
	p.align(placement.For(p.position()))
	p.backdrop.Append(p.box)
	p.window.SetChild(p.backdrop)
	p.anchor(placement.Anchors{Top: true, Bottom: true, Left: true, Right: true})
}

func (p *Popup) button(label, class, key string) *gtk.Button {
	btn := gtk.NewButtonWithLabel(label)
	btn.AddCSSClass(class)
	btn.ConnectClicked(func() {
		p.finish(func() {
			if p.onAction != nil {
				p.onAction(key)
			}
		})
	})
	return btn
}

// align places the dialog inside the backdrop.
func (p *Popup) align(a placement.Anchors) {
	p.box.SetVExpand(true)
	p.box.SetHAlign(gtk.AlignCenter)
	p.box.SetVAlign(gtk.AlignCenter)
	switch {
	case a.Top:
		p.box.SetVAlign(gtk.AlignStart)
	case a.Bottom:
		p.box.SetVAlign(gtk.AlignEnd)
	}
	switch {
	case a.Left:
		p.box.SetHAlign(gtk.AlignStart)
	case a.Right:
		p.box.SetHAlign(gtk.AlignEnd)
	}
	if !a.Centered() {
		p.box.SetMarginTop(p.config.Display.OffsetY)
		p.box.SetMarginBottom(p.config.Display.OffsetY)
		p.box.SetMarginStart(p.config.Display.OffsetX)
		p.box.SetMarginEnd(p.config.Display.OffsetX)
	}
}

// anchor pins the layer surface to edges. No edges centers it.
func (p *Popup) anchor(a placement.Anchors) {
	layershell.SetAnchor(p.window, layershell.LayerShellEdgeTop, a.Top)
	layershell.SetAnchor(p.window, layershell.LayerShellEdgeBottom, a.Bottom)
	layershell.SetAnchor(p.window, layershell.LayerShellEdgeLeft, a.Left)
	layershell.SetAnchor(p.window, layershell.LayerShellEdgeRight, a.Right)
	if p.modal() {
		return
	}
	layershell.SetMargin(p.window, layershell.LayerShellEdgeTop, p.config.Display.OffsetY)
	layershell.SetMargin(p.window, layershell.LayerShellEdgeBottom, p.config.Display.OffsetY)
	layershell.SetMargin(p.window, layershell.LayerShellEdgeLeft, p.config.Display.OffsetX)
	layershell.SetMargin(p.window, layershell.LayerShellEdgeRight, p.config.Display.OffsetX)
}

func (p *Popup) applyClasses() {
	p.box.AddCSSClass(p.colorSchemeClass())
	p.box.AddCSSClass("mode-" + string(p.req.Mode))
	p.box.AddCSSClass("kind-" + string(p.req.Kind))
	if p.req.Icon != "" {
		p.box.AddCSSClass("icon-" + placement.ClassName(string(p.req.Icon)))
	}
	if p.req.Toast {
		p.box.AddCSSClass("toast")
	}
	if c := placement.ClassName(p.req.CustomClass.Popup); c != "" {
		p.box.AddCSSClass(c)
	}
}

// applyButtonColors installs a per-popup provider for the button colours.
func (p *Popup) applyButtonColors() {
	if p.confirm == nil && p.cancel == nil {
		return
	}
	css, err := theme.ButtonColorsCSS(p.req.ConfirmButtonColor, p.req.CancelButtonColor)
	if err != nil {
		p.logger.Warn("ignoring button colors", "request_id", p.req.ID, "error", err)
		return
	}
	if css == "" {
		return
	}

	provider := gtk.NewCSSProvider()
	provider.LoadFromString(css)
	for _, btn := range []*gtk.Button{p.confirm, p.cancel} {
		if btn != nil {
			btn.StyleContext().AddProvider(provider, gtk.STYLE_PROVIDER_PRIORITY_USER)
		}
	}
}

func (p *Popup) connectSignals() {
	motion := gtk.NewEventControllerMotion()
	motion.ConnectEnter(func(x, y float64) {
		if p.onHover != nil {
			p.onHover(true)
		}
	})
	motion.ConnectLeave(func() {
		if p.onHover != nil {
			p.onHover(false)
		}
	})
	p.box.AddController(motion)

	if !p.req.Dismissible() {
		return
	}

	keys := gtk.NewEventControllerKey()
	keys.ConnectKeyPressed(func(keyval, keycode uint, state gdk.ModifierType) bool {
		switch keyval {
		case gdk.KEY_Escape:
			p.dismiss(dbus.ActionEsc)
			return true
		case gdk.KEY_Return, gdk.KEY_KP_Enter:
			if p.confirm != nil {
				p.confirm.Activate()
				return true
			}
		}
		return false
	})
	p.window.AddController(keys)

	if p.backdrop != nil && p.req.AllowOutsideClick {
		click := gtk.NewGestureClick()
		click.ConnectReleased(func(nPress int, x, y float64) {
			if p.outside(x, y) {
				p.dismiss(dbus.ActionBackdrop)
			}
		})
		p.backdrop.AddController(click)
	}

	if p.backdrop == nil {
		// Toasts close on click.
		click := gtk.NewGestureClick()
		click.ConnectReleased(func(nPress int, x, y float64) {
			p.dismiss("")
		})
		p.box.AddController(click)
	}
}

// outside reports whether a backdrop coordinate misses the dialog.
func (p *Popup) outside(x, y float64) bool {
	picked := p.backdrop.Pick(x, y, gtk.PickDefault)
	if picked == nil {
		return true
	}
	return glib.BaseObject(picked).Native() == glib.BaseObject(p.backdrop).Native()
}

func (p *Popup) dismiss(actionKey string) {
	p.finish(func() {
		if p.onDismiss != nil {
			p.onDismiss(dbus.CloseReasonDismissed, actionKey)
		}
	})
}

// finish closes the window once and then runs cb.
func (p *Popup) finish(cb func()) {
	if p.closed {
		return
	}
	p.Close()
	cb()
}

// Show presents the popup.
func (p *Popup) Show(monitor *gdk.Monitor) {
	if monitor != nil {
		layershell.SetMonitor(p.window, monitor)
	}
	p.window.Present()
}

// SetProgress updates the timer bar, if there is one.
func (p *Popup) SetProgress(fraction float64) {
	if p.progress != nil {
		p.progress.SetFraction(fraction)
	}
}

// Close destroys the window without firing callbacks.
func (p *Popup) Close() {
	if p.closed {
		return
	}
	p.closed = true
	if p.spinner != nil {
		p.spinner.Stop()
	}
	p.window.Close()
}

// Closed reports whether the window has been closed.
func (p *Popup) Closed() bool {
	return p.closed
}

// Width returns the resolved popup width in pixels.
func (p *Popup) Width() int {
	return p.width
}

// OnAction sets the callback for button presses.
func (p *Popup) OnAction(cb func(actionKey string)) {
	p.onAction = cb
}

// OnDismiss sets the callback for user dismissal. actionKey names the
// gesture (Esc or backdrop) and is empty for a plain click.
func (p *Popup) OnDismiss(cb func(reason dbus.CloseReason, actionKey string)) {
	p.onDismiss = cb
}

// OnHover sets the callback for pointer enter and leave.
func (p *Popup) OnHover(cb func(hovering bool)) {
	p.onHover = cb
}

// colorSchemeClass returns "light" or "dark" based on config or system preference.
func (p *Popup) colorSchemeClass() string {
	switch config.ColorScheme(p.config.Theme.ColorScheme) {
	case config.ColorSchemeLight:
		return "light"
	case config.ColorSchemeDark:
		return "dark"
	default:
		if adw.StyleManagerGetDefault().Dark() {
			return "dark"
		}
		return "light"
	}
}
