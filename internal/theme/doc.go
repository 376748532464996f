// Package theme loads the CSS used by popkitd popups.
//
// Themes are resolved from the user's themes directory first
// ($XDG_CONFIG_HOME/popkit/themes) and then from the bundled set, so a user
// file named default.css overrides the bundled default. @import statements
// are inlined, and partials (files starting with an underscore) fall back to
// the bundled copies.
package theme
