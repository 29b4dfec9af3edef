package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/robmorgan/metronome/utils"
)

// fadePerTick dims the lit cell over roughly 200ms.
const fadePerTick = 0.125

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case beatMsg:
		m.beat = msg.Index
		m.flash = 1
		return m, waitForBeat(m.listener)
	case listenerClosedMsg:
		return m, nil
	case tickMsg:
		m.flash = utils.Clamp(m.flash-fadePerTick, 0, 1)
		snap := m.metronome.Snapshot()
		m.playing = snap.Playing
		m.tempo = snap.Tempo
		return m, tickCmd()
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		playing, err := m.metronome.Toggle()
		m.err = err
		m.playing = playing
		if !playing {
			m.beat = -1
			m.flash = 0
		}
	case key.Matches(msg, m.keys.Slower):
		m.nudge(-1)
	case key.Matches(msg, m.keys.Faster):
		m.nudge(1)
	case key.Matches(msg, m.keys.MuchSlower):
		m.nudge(-5)
	case key.Matches(msg, m.keys.MuchFaster):
		m.nudge(5)
	case key.Matches(msg, m.keys.Next):
		m.navigate(1)
	case key.Matches(msg, m.keys.Prev):
		m.navigate(-1)
	}
	return m, nil
}

// nudge changes the tempo, clamped to the allowed range before it reaches
// the scheduler.
func (m *model) nudge(delta float64) {
	tempo := utils.NudgeTempo(m.tempo, delta)
	if err := m.metronome.SetTempo(tempo); err != nil {
		m.err = err
		return
	}
	m.tempo = tempo
	m.err = nil
}

func (m *model) navigate(delta int) {
	if m.cursor == nil {
		return
	}
	move := m.cursor.Next
	if delta < 0 {
		move = m.cursor.Prev
	}
	pos, err := move()
	if err != nil {
		m.err = err
		return
	}
	m.position = &pos
	m.tempo = m.metronome.Snapshot().Tempo
	m.err = nil
}
