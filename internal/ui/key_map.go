package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up            key.Binding
	down          key.Binding
	enter         key.Binding
	back          key.Binding
	stats         key.Binding
	missingTracks key.Binding
	missingAlbums key.Binding
	fix           key.Binding
	fixAll        key.Binding
	rescan        key.Binding
	quit          key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:            key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:          key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		back:          key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		stats:         key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "statistics")),
		missingTracks: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "export missing tracks")),
		missingAlbums: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "export missing albums")),
		fix:           key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fix playlist")),
		fixAll:        key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "fix all")),
		rescan:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rescan")),
		quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.stats, k.missingTracks, k.missingAlbums},
		{k.fix, k.fixAll, k.rescan, k.quit},
	}
}
