// Package daemon wires the pieces of popkitd together: it routes incoming
// notifications to the display, reports popup outcomes back over D-Bus,
// raises the daemon's own notices and reloads configuration.
package daemon
