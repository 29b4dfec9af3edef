package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

var (
	appStyle   = lipgloss.NewStyle().Margin(1, 2, 0, 2)
	tempoStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	cellStyle  = lipgloss.NewStyle().Width(6).Height(3).Margin(0, 1, 0, 0)

	dark = colorful.Color{R: 0.12, G: 0.12, B: 0.12}
)

// cellColor is the colour of beat cell i.
func (m model) cellColor(i int) colorful.Color {
	if !m.playing || i != m.beat {
		return dark
	}
	lit := m.colors.Beat
	if i == 0 {
		lit = m.colors.Downbeat
	}
	return dark.BlendLab(lit, m.flash).Clamped()
}

func (m model) View() string {
	var b strings.Builder

	state := "stopped"
	if m.playing {
		state = "playing"
	}
	b.WriteString(tempoStyle.Render(fmt.Sprintf("%.0f BPM", m.tempo)))
	b.WriteString(infoStyle.Render("  " + state))
	b.WriteString("\n\n")

	cells := make([]string, 0, m.beatsPerBar)
	for i := 0; i < m.beatsPerBar; i++ {
		c := m.cellColor(i)
		cells = append(cells, cellStyle.Copy().Background(lipgloss.Color(c.Hex())).Render(""))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	b.WriteString("\n\n")

	if m.position != nil {
		b.WriteString(infoStyle.Render(fmt.Sprintf("%s  %d/%d  %s",
			m.position.SetlistName, m.position.Index+1, m.position.Count, m.position.Preset.Name)))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	if m.quitting {
		b.WriteString("\n")
	}
	return appStyle.Render(b.String())
}
