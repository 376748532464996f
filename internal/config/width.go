package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidWidth is returned for width values that are neither a percentage nor a size.
var ErrInvalidWidth = errors.New("width must be a percentage like \"40%\" or a size like \"480px\"")

// Width is a parsed popup width.
type Width struct {
	Value   float64
	Percent bool
}

// ParseWidth parses "40%", "480px" or "480".
func ParseWidth(s string) (Width, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Width{}, ErrInvalidWidth
	}

	if pct, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(strings.TrimSpace(pct), 64)
		if err != nil || v <= 0 || v > 100 {
			return Width{}, fmt.Errorf("%w: %q", ErrInvalidWidth, s)
		}
		return Width{Value: v, Percent: true}, nil
	}

	px := strings.TrimSuffix(s, "px")
	v, err := strconv.ParseFloat(strings.TrimSpace(px), 64)
	if err != nil || v <= 0 {
		return Width{}, fmt.Errorf("%w: %q", ErrInvalidWidth, s)
	}
	return Width{Value: v}, nil
}

// Resolve returns the width in units of the given container size
// (pixels for a monitor, columns for a terminal). Results smaller than
// minimum are raised to it and results wider than the container are clamped.
func (w Width) Resolve(container, minimum int) int {
	size := int(w.Value)
	if w.Percent {
		size = int(float64(container) * w.Value / 100)
	}
	if container > 0 && size > container {
		size = container
	}
	if size < minimum {
		size = minimum
	}
	return size
}
