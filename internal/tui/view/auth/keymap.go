package auth

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the auth view.
type KeyMap struct {
	Next       key.Binding
	Prev       key.Binding
	ToggleMode key.Binding
	Submit     key.Binding
}

// DefaultKeyMap returns the default key bindings for the auth view.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "previous field"),
		),
		ToggleMode: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "switch login/signup"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
	}
}

// ShortHelp returns the short help bindings for the auth view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.ToggleMode, k.Submit}
}

// FullHelp returns the full help bindings for the auth view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev},
		{k.ToggleMode, k.Submit},
	}
}
