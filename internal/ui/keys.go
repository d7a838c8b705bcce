package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Focus  key.Binding
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
	Reload key.Binding
	Clear  key.Binding
	Back   key.Binding
	Debug  key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Focus:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
	Up:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
	Down:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
	Top:    key.NewBinding(key.WithKeys("g", "home")),
	Bottom: key.NewBinding(key.WithKeys("G", "end")),
	Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Clear:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear")),
	Back:   key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "back")),
	Debug:  key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "debug")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// statusHints are shown in the status bar, in order.
var statusHints = []key.Binding{keys.Focus, keys.Reload, keys.Clear, keys.Back, keys.Debug, keys.Quit}
