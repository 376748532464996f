package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/jmylchreest/popkit/internal/config"
)

// ErrThemeNotFound is returned when neither the user directory nor the
// bundled set has a theme of the requested name.
var ErrThemeNotFound = errors.New("theme not found")

// importRegex matches @import "file.css"; @import 'file.css'; and @import url("file.css");
var importRegex = regexp.MustCompile(`@import\s+(?:url\s*\(\s*)?["']([^"']+)["']\s*\)?;?`)

// Theme is a resolved stylesheet with its imports inlined.
type Theme struct {
	Name    string
	Path    string // empty for bundled themes
	CSS     string
	Bundled bool
}

// Info describes an available theme.
type Info struct {
	Name    string `json:"name" yaml:"name"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
	Bundled bool   `json:"bundled" yaml:"bundled"`
}

// Dir returns the user's themes directory.
func Dir() string {
	return filepath.Join(config.ConfigDir(), "themes")
}

// Resolve finds a theme by name, preferring userDir over the bundled set.
// An empty name resolves to the default theme.
func Resolve(name, userDir string) (*Theme, error) {
	if name == "" {
		name = DefaultThemeName
	}

	if userDir != "" {
		p := filepath.Join(userDir, name+".css")
		data, err := os.ReadFile(p)
		switch {
		case err == nil:
			return &Theme{
				Name: name,
				Path: p,
				CSS:  ProcessImports(string(data), userDir, nil),
			}, nil
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("failed to read theme %s: %w", p, err)
		}
	}

	if css, ok := Bundled(name); ok {
		return &Theme{
			Name:    name,
			CSS:     ProcessImports(css, "", nil),
			Bundled: true,
		}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrThemeNotFound, name)
}

// ProcessImports inlines @import statements, resolving relative paths
// against baseDir. seen guards against circular imports and may be nil.
// Imports that cannot be read are replaced by a comment.
func ProcessImports(css, baseDir string, seen map[string]bool) string {
	if seen == nil {
		seen = make(map[string]bool)
	}

	return importRegex.ReplaceAllStringFunc(css, func(match string) string {
		sub := importRegex.FindStringSubmatch(match)
		if len(sub) < 2 {
			return match
		}
		target := sub[1]

		full := target
		if !filepath.IsAbs(full) {
			full = filepath.Join(baseDir, target)
		}
		if seen[full] {
			return "/* circular import skipped: " + target + " */"
		}
		seen[full] = true

		var data []byte
		err := os.ErrNotExist
		if baseDir != "" || filepath.IsAbs(target) {
			data, err = os.ReadFile(full)
		}
		if err != nil {
			base := filepath.Base(target)
			if css, ok := BundledPartial(base); ok && strings.HasPrefix(base, "_") {
				return "/* imported (bundled): " + target + " */\n" + css
			}
			if css, ok := Bundled(strings.TrimSuffix(base, ".css")); ok {
				return "/* imported (bundled): " + target + " */\n" + ProcessImports(css, "", seen)
			}
			return "/* import failed: " + target + ": " + err.Error() + " */"
		}

		return "/* imported: " + target + " */\n" + ProcessImports(string(data), filepath.Dir(full), seen)
	})
}

// List returns the bundled themes followed by user themes from userDir.
// A user theme that shadows a bundled one is reported once, with its path.
func List(userDir string) ([]Info, error) {
	index := make(map[string]int)
	var out []Info

	for _, name := range BundledNames() {
		index[name] = len(out)
		out = append(out, Info{Name: name, Bundled: true})
	}

	if userDir == "" {
		return out, nil
	}
	entries, err := os.ReadDir(userDir)
	if errors.Is(err, os.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return out, fmt.Errorf("failed to read themes directory: %w", err)
	}

	var user []Info
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, "_") || filepath.Ext(name) != ".css" {
			continue
		}
		info := Info{Name: strings.TrimSuffix(name, ".css"), Path: filepath.Join(userDir, name)}
		if i, ok := index[info.Name]; ok {
			out[i] = info
			continue
		}
		user = append(user, info)
	}
	sort.Slice(user, func(i, j int) bool { return user[i].Name < user[j].Name })

	return append(out, user...), nil
}
