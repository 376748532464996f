package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSS(t *testing.T, dir, name, css string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(css), 0o644))
	return p
}

func TestBundled(t *testing.T) {
	css, ok := Bundled(DefaultThemeName)
	require.True(t, ok)
	assert.Contains(t, css, ".popkit-popup")
	assert.Contains(t, css, "@window_bg_color")

	_, ok = Bundled("does-not-exist")
	assert.False(t, ok)
}

func TestBundledPartial(t *testing.T) {
	for _, name := range []string{"_base.css", "_base", "base", "base.css"} {
		css, ok := BundledPartial(name)
		require.True(t, ok, name)
		assert.Contains(t, css, ".swal2-large")
	}
}

func TestBundledNames(t *testing.T) {
	names := BundledNames()
	assert.Contains(t, names, "default")
	assert.Contains(t, names, "minimal")
	assert.NotContains(t, names, "_base")
	assert.IsIncreasing(t, names)
}

func TestProcessImports_NoImports(t *testing.T) {
	css := `.popkit-popup { color: red; }`
	assert.Equal(t, css, ProcessImports(css, "", nil))
}

func TestProcessImports_File(t *testing.T) {
	dir := t.TempDir()
	writeCSS(t, dir, "_colors.css", `:root { --accent: #3085d6; }`)

	result := ProcessImports(`@import "_colors.css";
.popkit-confirm { color: var(--accent); }`, dir, nil)

	assert.Contains(t, result, "/* imported: _colors.css */")
	assert.Contains(t, result, "--accent: #3085d6")
	assert.Contains(t, result, ".popkit-confirm")
}

func TestProcessImports_URLSyntax(t *testing.T) {
	dir := t.TempDir()
	writeCSS(t, dir, "extra.css", `.extra {}`)

	result := ProcessImports(`@import url("extra.css");`, dir, nil)
	assert.Contains(t, result, ".extra {}")
}

func TestProcessImports_Nested(t *testing.T) {
	dir := t.TempDir()
	writeCSS(t, dir, "_grandchild.css", `.grandchild {}`)
	writeCSS(t, dir, "_child.css", `@import "_grandchild.css";
.child {}`)

	result := ProcessImports(`@import "_child.css";`, dir, nil)
	assert.Contains(t, result, ".child {}")
	assert.Contains(t, result, ".grandchild {}")
}

func TestProcessImports_Circular(t *testing.T) {
	dir := t.TempDir()
	writeCSS(t, dir, "a.css", `@import "b.css"; .a {}`)
	writeCSS(t, dir, "b.css", `@import "a.css"; .b {}`)

	result := ProcessImports(`@import "a.css";`, dir, nil)
	assert.Contains(t, result, ".a {}")
	assert.Contains(t, result, ".b {}")
	assert.Contains(t, result, "circular import skipped")
}

func TestProcessImports_BundledPartialFallback(t *testing.T) {
	result := ProcessImports(`@import "_base.css";`, t.TempDir(), nil)
	assert.Contains(t, result, "imported (bundled)")
	assert.Contains(t, result, ".swal2-large")
}

func TestProcessImports_Missing(t *testing.T) {
	result := ProcessImports(`@import "nope.css";`, t.TempDir(), nil)
	assert.Contains(t, result, "/* import failed: nope.css")
}

func TestResolve_Bundled(t *testing.T) {
	th, err := Resolve("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultThemeName, th.Name)
	assert.True(t, th.Bundled)
	assert.Empty(t, th.Path)
	// imports inlined
	assert.NotContains(t, th.CSS, `@import "_base.css"`)
	assert.Contains(t, th.CSS, ".swal2-large")
}

func TestResolve_UserOverridesBundled(t *testing.T) {
	dir := t.TempDir()
	p := writeCSS(t, dir, "default.css", `.popkit-popup { background: pink; }`)

	th, err := Resolve("default", dir)
	require.NoError(t, err)
	assert.False(t, th.Bundled)
	assert.Equal(t, p, th.Path)
	assert.Contains(t, th.CSS, "pink")
}

func TestResolve_UserImportsBundledPartial(t *testing.T) {
	dir := t.TempDir()
	writeCSS(t, dir, "mine.css", `@import "_base.css";
.popkit-popup { background: pink; }`)

	th, err := Resolve("mine", dir)
	require.NoError(t, err)
	assert.Contains(t, th.CSS, ".swal2-large")
	assert.Contains(t, th.CSS, "pink")
}

func TestResolve_NotFound(t *testing.T) {
	_, err := Resolve("nope", t.TempDir())
	assert.ErrorIs(t, err, ErrThemeNotFound)
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	writeCSS(t, dir, "zebra.css", `.z {}`)
	writeCSS(t, dir, "minimal.css", `.m {}`)
	writeCSS(t, dir, "_partial.css", `.p {}`)
	writeCSS(t, dir, "notes.txt", `nope`)

	infos, err := List(dir)
	require.NoError(t, err)

	byName := make(map[string]Info)
	for _, i := range infos {
		byName[i.Name] = i
	}

	assert.True(t, byName["default"].Bundled)
	assert.False(t, byName["minimal"].Bundled, "user file shadows bundled theme")
	assert.Equal(t, filepath.Join(dir, "minimal.css"), byName["minimal"].Path)
	assert.Contains(t, byName, "zebra")
	assert.NotContains(t, byName, "_partial")
	assert.NotContains(t, byName, "notes")
	assert.Equal(t, "zebra", infos[len(infos)-1].Name)
}

func TestList_MissingDir(t *testing.T) {
	infos, err := List(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Len(t, infos, len(BundledNames()))
}
