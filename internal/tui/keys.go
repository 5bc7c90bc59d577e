package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/PoluyanbIch/GoQuiz/internal/service"
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Toggle key.Binding
	Start  key.Binding
	Answer key.Binding
	Prev   key.Binding
	Next   key.Binding
	Jump   key.Binding
	Finish key.Binding
	Again  key.Binding
	Cancel key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "fewer")),
		Right:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "more")),
		Toggle: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle topic")),
		Start:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "start")),
		Answer: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "answer")),
		Prev:   key.NewBinding(key.WithKeys("left", "h", "p"), key.WithHelp("←/p", "previous")),
		Next:   key.NewBinding(key.WithKeys("right", "l", "n"), key.WithHelp("→/n", "next")),
		Jump:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "go to #")),
		Finish: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "finish")),
		Again:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "new test")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// phaseHelp adapts keyMap to help.KeyMap for the screen being shown.
type phaseHelp struct {
	keys    keyMap
	phase   service.Phase
	jumping bool
}

func (h phaseHelp) ShortHelp() []key.Binding {
	k := h.keys
	switch {
	case h.jumping:
		return []key.Binding{k.Start, k.Cancel}
	case h.phase == service.PhaseNotStarted:
		return []key.Binding{k.Left, k.Right, k.Up, k.Down, k.Toggle, k.Start, k.Quit}
	case h.phase == service.PhaseActive:
		return []key.Binding{k.Up, k.Down, k.Answer, k.Prev, k.Next, k.Jump, k.Finish, k.Quit}
	default:
		return []key.Binding{k.Prev, k.Next, k.Jump, k.Again, k.Quit}
	}
}

func (h phaseHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}
