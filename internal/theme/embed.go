package theme

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed themes/*.css
var bundled embed.FS

// DefaultThemeName is the name of the built-in default theme.
const DefaultThemeName = "default"

// Bundled retrieves a bundled theme by name. Imports are not processed.
func Bundled(name string) (string, bool) {
	data, err := bundled.ReadFile(path.Join("themes", name+".css"))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// BundledPartial retrieves a bundled partial such as "_base.css".
// The leading underscore and extension are optional.
func BundledPartial(name string) (string, bool) {
	name = strings.TrimSuffix(strings.TrimPrefix(name, "_"), ".css")
	data, err := bundled.ReadFile(path.Join("themes", "_"+name+".css"))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// BundledNames returns the names of the bundled themes, sorted.
// Partials are excluded.
func BundledNames() []string {
	entries, err := fs.ReadDir(bundled, "themes")
	if err != nil {
		return []string{DefaultThemeName}
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, "_") || path.Ext(name) != ".css" {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".css"))
	}
	sort.Strings(names)
	return names
}
