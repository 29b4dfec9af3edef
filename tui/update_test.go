package tui

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/robmorgan/metronome/rhythm"
	"github.com/robmorgan/metronome/setlist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMetronome struct {
	tempo     float64
	playing   bool
	toggleErr error
	beats     *rhythm.Broadcaster
}

func newFakeMetronome() *fakeMetronome {
	return &fakeMetronome{tempo: 120, beats: rhythm.NewBroadcaster()}
}

func (m *fakeMetronome) Toggle() (bool, error) {
	if m.toggleErr != nil {
		return false, m.toggleErr
	}
	m.playing = !m.playing
	return m.playing, nil
}

func (m *fakeMetronome) SetTempo(bpm float64) error {
	if err := rhythm.ValidateTempo(bpm); err != nil {
		return err
	}
	m.tempo = bpm
	return nil
}

func (m *fakeMetronome) Snapshot() rhythm.Snapshot {
	return rhythm.Snapshot{Tempo: m.tempo, Playing: m.playing, BeatsPerBar: 4}
}

func (m *fakeMetronome) Subscribe() *rhythm.Listener { return m.beats.Subscribe(4) }

func (m *fakeMetronome) Unsubscribe(l *rhythm.Listener) { m.beats.Unsubscribe(l) }

type fakeNavigator struct {
	metronome *fakeMetronome
	index     int
	err       error
}

func (n *fakeNavigator) move(delta int) (setlist.Position, error) {
	if n.err != nil {
		return setlist.Position{}, n.err
	}
	n.index = (n.index + delta + 3) % 3
	p := setlist.Preset{Name: fmt.Sprintf("song %d", n.index), BPM: float64(100 + 10*n.index)}
	n.metronome.tempo = p.BPM
	return setlist.Position{SetlistName: "gig", Index: n.index, Count: 3, Preset: p}, nil
}

func (n *fakeNavigator) Next() (setlist.Position, error) { return n.move(1) }

func (n *fakeNavigator) Prev() (setlist.Position, error) { return n.move(-1) }

var testColors = Colors{
	Downbeat: colorful.Color{R: 1},
	Beat:     colorful.Color{R: 1, G: 1, B: 1},
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m model, keys ...string) model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(runes(k))
		m = next.(model)
	}
	return m
}

func TestTempoKeys(t *testing.T) {
	t.Parallel()

	metro := newFakeMetronome()
	m := newModel(metro, nil, testColors)

	m = press(t, m, "]", "]", "}")
	assert.Equal(t, 127.0, m.tempo)
	assert.Equal(t, 127.0, metro.tempo)

	m = press(t, m, "{", "[")
	assert.Equal(t, 121.0, metro.tempo)
}

func TestTempoKeysStayInRange(t *testing.T) {
	t.Parallel()

	metro := newFakeMetronome()
	metro.tempo = 298
	m := newModel(metro, nil, testColors)

	m = press(t, m, "}")
	assert.Equal(t, 300.0, metro.tempo)

	metro.tempo = 22
	m.tempo = 22
	m = press(t, m, "{", "{")
	assert.Equal(t, 20.0, metro.tempo)
	assert.NoError(t, m.err)
}

func TestToggleKey(t *testing.T) {
	t.Parallel()

	metro := newFakeMetronome()
	m := newModel(metro, nil, testColors)

	m = press(t, m, " ")
	assert.True(t, m.playing)
	m = press(t, m, " ")
	assert.False(t, m.playing)
	assert.Equal(t, -1, m.beat)

	metro.toggleErr = fmt.Errorf("audio device unavailable")
	m = press(t, m, " ")
	assert.False(t, m.playing)
	assert.Contains(t, m.View(), "audio device unavailable")
}

func TestBeatLightsCell(t *testing.T) {
	t.Parallel()

	metro := newFakeMetronome()
	metro.playing = true
	m := newModel(metro, nil, testColors)

	next, cmd := m.Update(beatMsg(rhythm.Beat{Index: 0, Downbeat: true}))
	m = next.(model)
	require.NotNil(t, cmd, "must keep listening for beats")
	assert.Equal(t, 0, m.beat)
	assert.Equal(t, 1.0, m.flash)
	assert.Equal(t, testColors.Downbeat.Hex(), m.cellColor(0).Hex())
	assert.Equal(t, dark, m.cellColor(1))

	for i := 0; i < 4; i++ {
		next, _ = m.Update(tickMsg{})
		m = next.(model)
	}
	assert.InDelta(t, 0.5, m.flash, 1e-9)

	for i := 0; i < 10; i++ {
		next, _ = m.Update(tickMsg{})
		m = next.(model)
	}
	assert.Equal(t, 0.0, m.flash)
	assert.Equal(t, dark.Hex(), m.cellColor(0).Hex())
}

func TestWaitForBeat(t *testing.T) {
	t.Parallel()

	b := rhythm.NewBroadcaster()
	l := b.Subscribe(1)
	b.Publish(rhythm.Beat{Index: 2})

	msg := waitForBeat(l)()
	assert.Equal(t, beatMsg(rhythm.Beat{Index: 2}), msg)

	b.Unsubscribe(l)
	assert.Equal(t, listenerClosedMsg{}, waitForBeat(l)())
}

func TestSetlistNavigation(t *testing.T) {
	t.Parallel()

	metro := newFakeMetronome()
	nav := &fakeNavigator{metronome: metro}
	m := newModel(metro, nav, testColors)

	m = press(t, m, "n")
	require.NotNil(t, m.position)
	assert.Equal(t, 1, m.position.Index)
	assert.Equal(t, 110.0, m.tempo)

	m = press(t, m, "p", "p")
	assert.Equal(t, 2, m.position.Index)
	assert.Contains(t, m.View(), "gig  3/3  song 2")

	nav.err = fmt.Errorf("no active setlist")
	m = press(t, m, "n")
	assert.Equal(t, 2, m.position.Index)
	assert.Error(t, m.err)
}

func TestNavigationWithoutSetlist(t *testing.T) {
	t.Parallel()

	m := newModel(newFakeMetronome(), nil, testColors)
	m = press(t, m, "n", "p")
	assert.Nil(t, m.position)
	assert.NoError(t, m.err)
}

func TestQuit(t *testing.T) {
	t.Parallel()

	m := newModel(newFakeMetronome(), nil, testColors)
	next, cmd := m.Update(runes("q"))
	assert.True(t, next.(model).quitting)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
