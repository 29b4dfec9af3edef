// Package tui is the terminal front end: a beat indicator in lockstep with
// the clicks, tempo keys and setlist navigation.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/robmorgan/metronome/rhythm"
	"github.com/robmorgan/metronome/setlist"
)

// Metronome is the part of the scheduler the terminal UI drives.
type Metronome interface {
	Toggle() (bool, error)
	SetTempo(bpm float64) error
	Snapshot() rhythm.Snapshot
	Subscribe() *rhythm.Listener
	Unsubscribe(l *rhythm.Listener)
}

// Navigator moves through the active setlist.
type Navigator interface {
	Next() (setlist.Position, error)
	Prev() (setlist.Position, error)
}

// Colors of the lit beat cell.
type Colors struct {
	Downbeat colorful.Color
	Beat     colorful.Color
}

type model struct {
	metronome Metronome
	cursor    Navigator
	listener  *rhythm.Listener
	keys      keyMap
	help      help.Model
	colors    Colors

	tempo       float64
	playing     bool
	beatsPerBar int
	// lit cell, -1 before the first beat
	beat int
	// brightness of the lit cell, 1 on the beat fading to 0
	flash    float64
	position *setlist.Position
	err      error
	quitting bool
}

func newModel(m Metronome, cursor Navigator, colors Colors) model {
	snap := m.Snapshot()
	return model{
		metronome:   m,
		cursor:      cursor,
		listener:    m.Subscribe(),
		keys:        newKeyMap(),
		help:        help.New(),
		colors:      colors,
		tempo:       snap.Tempo,
		playing:     snap.Playing,
		beatsPerBar: snap.BeatsPerBar,
		beat:        -1,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), waitForBeat(m.listener))
}

type tickMsg time.Time

// tickCmd fades the beat cell.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*25, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type beatMsg rhythm.Beat

type listenerClosedMsg struct{}

// waitForBeat blocks until the scheduler delivers the next beat.
func waitForBeat(l *rhythm.Listener) tea.Cmd {
	return func() tea.Msg {
		select {
		case b := <-l.C:
			return beatMsg(b)
		case <-l.Done():
			return listenerClosedMsg{}
		}
	}
}

// Run shows the terminal UI until the user quits.
func Run(m Metronome, cursor Navigator, colors Colors) error {
	mdl := newModel(m, cursor, colors)
	defer m.Unsubscribe(mdl.listener)

	_, err := tea.NewProgram(mdl, tea.WithAltScreen()).Run()
	return err
}
