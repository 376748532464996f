package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/popkit/internal/alert"
	"github.com/jmylchreest/popkit/internal/config"
	"github.com/jmylchreest/popkit/internal/model"
)

// NoticeLevel is the severity of a daemon notice. It picks the toast kind.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarning
	NoticeError
)

func (l NoticeLevel) String() string {
	switch l {
	case NoticeWarning:
		return "warning"
	case NoticeError:
		return "error"
	default:
		return "info"
	}
}

// DefaultNoticeInterval is how long a notice key stays rate-limited.
const DefaultNoticeInterval = 5 * time.Second

// CurrentPopup reports the popup on screen. *display.Manager satisfies it.
type CurrentPopup interface {
	Current() (uint32, *model.Request, bool)
}

// InternalNotifier raises toasts about popkitd's own events. Repeats of the
// same key within the minimum interval are dropped, and nothing is raised
// while a dialog or loading indicator is on screen so a notice never
// replaces a popup someone is waiting on.
type InternalNotifier struct {
	mu      sync.Mutex
	facade  *alert.Facade
	logger  *slog.Logger
	now     func() time.Time
	display CurrentPopup

	lastNotice  map[string]time.Time
	minInterval time.Duration
	enabled     bool
}

// NewInternalNotifier creates a notifier that raises toasts through facade.
func NewInternalNotifier(facade *alert.Facade, logger *slog.Logger) *InternalNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &InternalNotifier{
		facade:      facade,
		logger:      logger,
		now:         time.Now,
		lastNotice:  make(map[string]time.Time),
		minInterval: DefaultNoticeInterval,
		enabled:     true,
	}
}

// SetEnabled enables or disables notices.
func (n *InternalNotifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between notices with one key.
func (n *InternalNotifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Configure applies the notice settings from the daemon config.
func (n *InternalNotifier) Configure(b config.BehaviorConfig) {
	n.SetEnabled(b.DaemonNotices)
	n.SetMinInterval(b.NoticeInterval.Duration())
}

// SetDisplay sets the display checked for popups that must not be replaced.
func (n *InternalNotifier) SetDisplay(d CurrentPopup) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.display = d
}

// Notify raises message as a toast unless key was used recently or a
// non-toast popup is showing. Reports whether the toast was raised.
func (n *InternalNotifier) Notify(key, message string, level NoticeLevel) bool {
	n.mu.Lock()
	if !n.enabled || n.facade == nil {
		n.mu.Unlock()
		return false
	}
	if n.display != nil {
		if _, req, ok := n.display.Current(); ok && req != nil && req.Mode != model.ModeToast {
			n.mu.Unlock()
			n.logger.Debug("internal notice suppressed, popup waiting on user", "key", key, "mode", req.Mode)
			return false
		}
	}
	now := n.now()
	if last, ok := n.lastNotice[key]; ok && now.Sub(last) < n.minInterval {
		n.mu.Unlock()
		n.logger.Debug("internal notice rate-limited", "key", key)
		return false
	}
	n.lastNotice[key] = now
	n.mu.Unlock()

	n.logger.Debug("sending internal notice", "key", key, "level", level)

	ctx := context.Background()
	var err error
	switch level {
	case NoticeWarning:
		err = n.facade.ShowWarning(ctx, message)
	case NoticeError:
		err = n.facade.ShowError(ctx, message)
	default:
		err = n.facade.ShowInfo(ctx, message)
	}
	if err != nil {
		n.logger.Warn("failed to send internal notice", "key", key, "error", err)
		return false
	}
	return true
}

// NotifyConfigReloaded reports a successful config reload.
func (n *InternalNotifier) NotifyConfigReloaded() {
	n.Notify("config-reload", "popkitd configuration reloaded.", NoticeInfo)
}

// NotifyConfigError reports a config file that failed to load.
func (n *InternalNotifier) NotifyConfigError(err error) {
	n.Notify("config-error", "Failed to reload configuration: "+err.Error(), NoticeWarning)
}

// NotifyThemeReloaded reports a theme reload.
func (n *InternalNotifier) NotifyThemeReloaded(themeName string) {
	n.Notify("theme-reload", "Theme '"+themeName+"' reloaded.", NoticeInfo)
}

// NotifyThemeError reports a theme that failed to load.
func (n *InternalNotifier) NotifyThemeError(err error) {
	n.Notify("theme-error", "Failed to load theme: "+err.Error(), NoticeError)
}

// NotifyAudioError reports a configured sound that could not be loaded.
func (n *InternalNotifier) NotifyAudioError(err error) {
	n.Notify("audio-error", "Failed to load sound: "+err.Error(), NoticeWarning)
}
