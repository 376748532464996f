// Package dbus speaks the org.freedesktop.Notifications D-Bus interface.
//
// Client presents popkit alerts through whichever notification server owns
// the bus name, encoding popup attributes as x-popkit-* hints.
// NotificationServer is the popkitd side that decodes them again, and
// Monitor passively watches Notify traffic for debugging.
package dbus
