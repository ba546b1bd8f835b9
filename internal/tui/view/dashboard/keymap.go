package dashboard

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the dashboard.
type KeyMap struct {
	Next      key.Binding
	Prev      key.Binding
	Submit    key.Binding
	VoicePrev key.Binding
	VoiceNext key.Binding
	Up        key.Binding
	Down      key.Binding
	Details   key.Binding
	Download  key.Binding
	Preview   key.Binding
	Refresh   key.Binding
	Logout    key.Binding
}

// DefaultKeyMap returns the default key bindings for the dashboard.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "generate narration"),
		),
		VoicePrev: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "previous voice"),
		),
		VoiceNext: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "next voice"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Details: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Download: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "download"),
		),
		Preview: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "preview"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "log out"),
		),
	}
}

// ShortHelp returns the short help bindings for the dashboard.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Submit, k.Refresh, k.Logout}
}

// FullHelp returns the full help bindings for the dashboard.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Submit},
		{k.VoicePrev, k.VoiceNext},
		{k.Up, k.Down, k.Details, k.Download, k.Preview, k.Refresh},
		{k.Logout},
	}
}
