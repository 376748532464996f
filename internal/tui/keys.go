package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the key bindings for an alert.
type KeyMap struct {
	Activate key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
	Dismiss  key.Binding
	Next     key.Binding
	Prev     key.Binding
	Quit     key.Binding
}

// ShortHelp returns a short help message.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Activate, k.Next, k.Dismiss}
}

// FullHelp returns a full help message.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Activate, k.Confirm, k.Cancel},
		{k.Next, k.Prev, k.Dismiss, k.Quit},
	}
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Activate: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "select"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "cancel"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "dismiss"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab/→", "next button"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("shift+tab/←", "previous button"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "close"),
		),
	}
}

// forRequest disables the bindings that do nothing for the given popup.
func (k KeyMap) forRequest(hasConfirm, hasCancel, dismissible bool) KeyMap {
	k.Activate.SetEnabled(hasConfirm || hasCancel)
	k.Confirm.SetEnabled(hasConfirm)
	k.Cancel.SetEnabled(hasCancel)
	k.Next.SetEnabled(hasConfirm && hasCancel)
	k.Prev.SetEnabled(hasConfirm && hasCancel)
	k.Dismiss.SetEnabled(dismissible)
	return k
}
