package fixture

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/robmorgan/metronome/rhythm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"
)

var (
	red   = colorful.Color{R: 1}
	white = colorful.Color{R: 1, G: 1, B: 1}
)

func newTestFlasher() (*Flasher, *DMXState) {
	g := NewGroup()
	g.AddFixture("left", NewFixture("left", 1, 1, testPar))
	g.AddFixture("right", NewFixture("right", 1, 11, testPar))
	state := NewDMXState()
	return NewFlasher(g, state, 40*time.Millisecond, 200*time.Millisecond, red, white), state
}

func TestFlasherDownbeatColour(t *testing.T) {
	t.Parallel()

	f, state := newTestFlasher()

	require.NoError(t, f.OnBeat(rhythm.Beat{Downbeat: true}))
	assert.Equal(t, byte(255), state.Get(1, 1))
	assert.Equal(t, byte(255), state.Get(1, 2))
	assert.Equal(t, byte(0), state.Get(1, 3))
	assert.Equal(t, byte(255), state.Get(1, 11))

	require.NoError(t, f.OnBeat(rhythm.Beat{Index: 1}))
	assert.Equal(t, byte(255), state.Get(1, 3))
	assert.Equal(t, byte(255), state.Get(1, 14))
}

func TestFlasherFadesOut(t *testing.T) {
	t.Parallel()

	f, state := newTestFlasher()
	require.NoError(t, f.OnBeat(rhythm.Beat{Index: 2}))

	prev := state.Get(1, 1)
	for i := 0; i < 5; i++ {
		require.NoError(t, f.Frame())
		level := state.Get(1, 1)
		assert.Less(t, level, prev)
		prev = level
	}
	assert.Equal(t, byte(0), prev)

	// fully faded frames leave the state alone
	require.NoError(t, f.Frame())
	assert.Equal(t, byte(0), state.Get(1, 11))
}

func TestFlasherRun(t *testing.T) {
	t.Parallel()

	f, state := newTestFlasher()
	clk := testingclock.NewFakeClock(time.Now())
	b := rhythm.NewBroadcaster()
	l := b.Subscribe(4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	var runErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = f.Run(ctx, clk, 40*time.Millisecond, l)
	}()

	b.Publish(rhythm.Beat{Downbeat: true})
	require.Eventually(t, func() bool { return state.Get(1, 1) == 255 }, time.Second, time.Millisecond)

	require.Eventually(t, clk.HasWaiters, time.Second, time.Millisecond)
	clk.Step(40 * time.Millisecond)
	require.Eventually(t, func() bool { return state.Get(1, 1) < 255 }, time.Second, time.Millisecond)

	b.Unsubscribe(l)
	wg.Wait()
	assert.NoError(t, runErr)
}
