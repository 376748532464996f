// Package display renders popkit requests as GTK4 layer-shell popups.
//
// One popup is visible at a time. Showing a new request replaces the
// current popup, which is reported closed with CloseReasonUndefined.
// All Manager and Popup methods must run on the GTK main loop; callers on
// other goroutines use glib.IdleAdd.
package display
