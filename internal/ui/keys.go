package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the triage view
type KeyMap struct {
	Keep      key.Binding
	Dismiss   key.Binding
	Undo      key.Binding
	Summarize key.Binding
	Open      key.Binding
	Copy      key.Binding
	Read      key.Binding
	Refresh   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Keep: key.NewBinding(
			key.WithKeys("k", "right"),
			key.WithHelp("k/→", "keep"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("d", "left"),
			key.WithHelp("d/←", "dismiss"),
		),
		Undo: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "undo"),
		),
		Summarize: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "summarize"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open url"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy url"),
		),
		Read: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "mark read"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
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
}

// Keys returns the keys as a slice for matching
func (k KeyMap) Keys() []key.Binding {
	return []key.Binding{
		k.Keep, k.Dismiss, k.Undo, k.Summarize,
		k.Open, k.Copy, k.Read, k.Refresh, k.Help, k.Quit,
	}
}
