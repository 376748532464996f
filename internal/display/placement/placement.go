// Package placement holds the toolkit-independent geometry used by popkitd
// popups: layer-shell anchors, width resolution and the countdown clock.
package placement

import (
	"strings"
	"time"

	"github.com/jmylchreest/popkit/internal/config"
	"github.com/jmylchreest/popkit/internal/model"
)

// DefaultWidth is used when a request carries an unparsable width.
var DefaultWidth = config.Width{Value: 40, Percent: true}

// Anchors are the screen edges a popup is pinned to.
// No anchors means the compositor centers the surface.
type Anchors struct {
	Top    bool
	Bottom bool
	Left   bool
	Right  bool
}

// For returns the anchors for a position. Unknown positions are centered.
func For(pos model.Position) Anchors {
	switch pos {
	case model.PositionTop:
		return Anchors{Top: true}
	case model.PositionTopStart:
		return Anchors{Top: true, Left: true}
	case model.PositionTopEnd:
		return Anchors{Top: true, Right: true}
	case model.PositionBottom:
		return Anchors{Bottom: true}
	case model.PositionBottomStart:
		return Anchors{Bottom: true, Left: true}
	case model.PositionBottomEnd:
		return Anchors{Bottom: true, Right: true}
	default:
		return Anchors{}
	}
}

// Centered reports whether no edge is anchored.
func (a Anchors) Centered() bool {
	return !a.Top && !a.Bottom && !a.Left && !a.Right
}

// Width resolves a width such as "40%" or "480px" against the monitor width.
func Width(spec string, monitorWidth, minWidth int) int {
	w, err := config.ParseWidth(spec)
	if err != nil {
		w = DefaultWidth
	}
	return w.Resolve(monitorWidth, minWidth)
}

// ClassName converts a string to a valid CSS class name.
// Replaces spaces and special characters with hyphens, lowercases.
func ClassName(name string) string {
	var result strings.Builder
	prevHyphen := false

	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			result.WriteRune(r)
			prevHyphen = false
		case r == '-' || r == '_' || r == ' ' || r == '.' || r == '/':
			if !prevHyphen && result.Len() > 0 {
				result.WriteRune('-')
				prevHyphen = true
			}
		}
	}

	return strings.TrimSuffix(result.String(), "-")
}

// Countdown tracks the time left on a toast. It is advanced by the caller's
// clock ticks and can be paused while the pointer hovers the popup.
type Countdown struct {
	total     time.Duration
	remaining time.Duration
	paused    bool
}

// NewCountdown starts a countdown of total.
func NewCountdown(total time.Duration) *Countdown {
	return &Countdown{total: total, remaining: total}
}

// Advance subtracts elapsed unless paused. Reports whether time has run out.
func (c *Countdown) Advance(elapsed time.Duration) bool {
	if !c.paused {
		c.remaining -= elapsed
	}
	if c.remaining < 0 {
		c.remaining = 0
	}
	return c.remaining == 0
}

// Pause stops the countdown.
func (c *Countdown) Pause() { c.paused = true }

// Resume continues the countdown.
func (c *Countdown) Resume() { c.paused = false }

// Paused reports whether the countdown is paused.
func (c *Countdown) Paused() bool { return c.paused }

// Remaining returns the time left.
func (c *Countdown) Remaining() time.Duration { return c.remaining }

// Fraction returns the share of time left, from 1 down to 0.
func (c *Countdown) Fraction() float64 {
	if c.total <= 0 {
		return 0
	}
	return float64(c.remaining) / float64(c.total)
}
