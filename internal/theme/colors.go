package theme

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidColor is returned for colour values GTK CSS would not accept.
var ErrInvalidColor = errors.New("invalid color")

var (
	hexColor   = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	funcColor  = regexp.MustCompile(`^rgba?\(\s*[0-9.]+%?\s*,\s*[0-9.]+%?\s*,\s*[0-9.]+%?\s*(?:,\s*[0-9.]+%?\s*)?\)$`)
	namedColor = regexp.MustCompile(`^[a-zA-Z]+$`)
)

// ValidColor reports whether c is a hex, rgb()/rgba() or named colour.
// Anything else could break out of the generated rule.
func ValidColor(c string) bool {
	c = strings.TrimSpace(c)
	return hexColor.MatchString(c) || funcColor.MatchString(c) || namedColor.MatchString(c)
}

// ButtonColorsCSS renders the rules colouring the confirm and cancel buttons.
// Empty colours are skipped.
func ButtonColorsCSS(confirm, cancel string) (string, error) {
	var b strings.Builder
	for _, rule := range []struct {
		class string
		color string
	}{
		{"popkit-confirm", confirm},
		{"popkit-cancel", cancel},
	} {
		if rule.color == "" {
			continue
		}
		if !ValidColor(rule.color) {
			return "", fmt.Errorf("%w: %q", ErrInvalidColor, rule.color)
		}
		fmt.Fprintf(&b, "button.%s { background: %s; background-image: none; color: #ffffff; }\n",
			rule.class, strings.TrimSpace(rule.color))
	}
	return b.String(), nil
}
