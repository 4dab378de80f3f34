package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the question screen
type KeyMap struct {
	Fetch    key.Binding
	Cancel   key.Binding
	Copy     key.Binding
	Endpoint key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// Keys contains all the keybindings for the application
var Keys = KeyMap{
	Fetch: key.NewBinding(
		key.WithKeys("r", "enter"),
		key.WithHelp("r", "new question"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("c", "esc"),
		key.WithHelp("c", "cancel"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy"),
	),
	Endpoint: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "endpoint from clipboard"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Fetch, k.Cancel, k.Copy, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Fetch, k.Cancel},
		{k.Copy, k.Endpoint},
		{k.Help, k.Quit},
	}
}
