package alert

import (
	"github.com/jmylchreest/popkit/internal/config"
	"github.com/jmylchreest/popkit/internal/model"
)

// Policy holds the presentation constants applied to every record.
type Policy struct {
	Width      string
	PopupClass string

	ToastPosition    model.Position
	ToastTimer       int // milliseconds
	ToastProgressBar bool

	ConfirmColor string
	CancelColor  string
	ConfirmLabel string
	CancelLabel  string
	OKLabel      string

	LoadingTitle string

	CustomIcon  model.Icon
	ConfirmIcon model.Icon
}

// DefaultPolicy returns the stock presentation policy.
func DefaultPolicy() Policy {
	return Policy{
		Width:            config.DefaultWidth,
		PopupClass:       config.DefaultPopupClass,
		ToastPosition:    model.Position(config.DefaultPosition),
		ToastTimer:       int(config.DefaultToastTimer.Milliseconds()),
		ToastProgressBar: true,
		ConfirmColor:     config.DefaultConfirmColor,
		CancelColor:      config.DefaultCancelColor,
		ConfirmLabel:     config.DefaultConfirmLabel,
		CancelLabel:      config.DefaultCancelLabel,
		OKLabel:          config.DefaultOKLabel,
		LoadingTitle:     config.DefaultLoadingTitle,
		CustomIcon:       model.IconInfo,
		ConfirmIcon:      model.IconWarning,
	}
}

// PolicyFromConfig overlays the non-empty values of cfg onto DefaultPolicy.
func PolicyFromConfig(cfg *config.Config) Policy {
	p := DefaultPolicy()
	if cfg == nil {
		return p
	}

	setIf(&p.Width, cfg.Style.Width)
	setIf(&p.PopupClass, cfg.Style.PopupClass)
	if cfg.Toast.Position != "" {
		p.ToastPosition = model.Position(cfg.Toast.Position)
	}
	if cfg.Toast.Timer > 0 {
		p.ToastTimer = cfg.Toast.Timer.Milliseconds()
	}
	p.ToastProgressBar = cfg.Toast.ProgressBar
	setIf(&p.ConfirmColor, cfg.Buttons.ConfirmColor)
	setIf(&p.CancelColor, cfg.Buttons.CancelColor)
	setIf(&p.ConfirmLabel, cfg.Buttons.ConfirmLabel)
	setIf(&p.CancelLabel, cfg.Buttons.CancelLabel)
	setIf(&p.OKLabel, cfg.Buttons.OKLabel)
	setIf(&p.LoadingTitle, cfg.Loading.Title)

	return p
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
