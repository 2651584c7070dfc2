package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Command key.Binding
	Pause   key.Binding
	Quit    key.Binding
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Toggle  key.Binding
	Glider  key.Binding
	Blinker key.Binding
	Start   key.Binding
	Back    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Command: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command")),
		Pause:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause/resume")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("up/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("down/j", "down")),
		Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("left/h", "left")),
		Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("right/l", "right")),
		Toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle cell")),
		Glider:  key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "stamp glider")),
		Blinker: key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "stamp blinker")),
		Start:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	}
}
