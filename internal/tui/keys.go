package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Copy      key.Binding
	Edit      key.Binding
	Quit      key.Binding
	PreviewUp key.Binding
	PreviewDn key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
}

func binding(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

var keys = keyMap{
	Up:        binding("up/C-k", "up", "up", "ctrl+k"),
	Down:      binding("dn/C-j", "down", "down", "ctrl+j"),
	Copy:      binding("enter", "copy location", "enter"),
	Edit:      binding("C-o", "open in $EDITOR", "ctrl+o"),
	Quit:      binding("esc", "quit", "esc", "ctrl+c"),
	PreviewUp: binding("C-u", "preview up", "ctrl+u"),
	PreviewDn: binding("C-d", "preview down", "ctrl+d"),
	PageUp:    binding("pgup", "preview pgup", "pgup"),
	PageDown:  binding("pgdn", "preview pgdn", "pgdown"),
}
