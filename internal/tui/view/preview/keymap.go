package preview

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the preview.
type KeyMap struct {
	Toggle key.Binding
	Close  key.Binding
}

// DefaultKeyMap returns the default key bindings for the preview.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toggle: key.NewBinding(
			key.WithKeys("space", " "),
			key.WithHelp("space", "play/pause"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
	}
}

// ShortHelp returns the short help bindings for the preview.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Close}
}

// FullHelp returns the full help bindings for the preview.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Toggle, k.Close}}
}
