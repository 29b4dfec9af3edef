package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle     key.Binding
	Slower     key.Binding
	Faster     key.Binding
	MuchSlower key.Binding
	MuchFaster key.Binding
	Next       key.Binding
	Prev       key.Binding
	Quit       key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Slower, k.Faster, k.Next, k.Prev, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Quit},
		{k.Slower, k.Faster, k.MuchSlower, k.MuchFaster},
		{k.Prev, k.Next},
	}
}

func newKeyMap() keyMap {
	return keyMap{
		Toggle:     key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "start/stop")),
		Slower:     key.NewBinding(key.WithKeys("["), key.WithHelp("[", "-1 bpm")),
		Faster:     key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "+1 bpm")),
		MuchSlower: key.NewBinding(key.WithKeys("{"), key.WithHelp("{", "-5 bpm")),
		MuchFaster: key.NewBinding(key.WithKeys("}"), key.WithHelp("}", "+5 bpm")),
		Next:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next preset")),
		Prev:       key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prev preset")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}
