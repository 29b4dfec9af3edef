package audio

import (
	"math"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/robmorgan/metronome/effect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClickStartsOnRequestedSample(t *testing.T) {
	t.Parallel()

	out := &fakeOutput{}
	ctx := NewContext(out, beep.SampleRate(44100), 10*time.Millisecond)
	require.NoError(t, ctx.Resume())

	click, err := NewClick(ctx, 1000, effect.DefaultEnvelope())
	require.NoError(t, err)

	// scheduled well before it sounds
	require.NoError(t, click.Emit(0.1))
	assert.Equal(t, 1, click.Active())

	buf := out.pull(44100 / 5)
	start := 4410
	length := int(math.Ceil(effect.DefaultEnvelope().Duration() * 44100))

	for i := 0; i <= start; i++ {
		require.Zero(t, buf[i][0], "frame %d sounds before the click", i)
	}
	assert.NotZero(t, buf[start+1][0])

	peak := 0.0
	for i := start; i < start+length; i++ {
		peak = math.Max(peak, math.Abs(buf[i][0]))
		assert.Equal(t, buf[i][0], buf[i][1])
	}
	assert.InDelta(t, 0.2, peak, 0.02)

	for i := start + length; i < len(buf); i++ {
		require.Zero(t, buf[i][0], "frame %d sounds after the click", i)
	}
	assert.Zero(t, click.Active())
	assert.Zero(t, ctx.Pending())
}

func TestClickVoicesAreReleasedOverLongSessions(t *testing.T) {
	t.Parallel()

	out := &fakeOutput{}
	ctx := NewContext(out, beep.SampleRate(8000), 10*time.Millisecond)
	require.NoError(t, ctx.Resume())

	click, err := NewClick(ctx, 800, effect.DefaultEnvelope())
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		require.NoError(t, click.Emit(ctx.CurrentTime()+0.05))
		out.pull(800)
	}
	out.pull(800)
	assert.Zero(t, click.Active())
	assert.Zero(t, ctx.Pending())
}

func TestClickRejectsBadInput(t *testing.T) {
	t.Parallel()

	ctx, _ := newTestContext()

	_, err := NewClick(ctx, 0, effect.DefaultEnvelope())
	assert.Error(t, err)

	click, err := NewClick(ctx, 1000, effect.DefaultEnvelope())
	require.NoError(t, err)

	assert.Error(t, click.Emit(-1))
	assert.Error(t, click.Emit(math.NaN()))

	// the device has not been acquired yet
	assert.ErrorIs(t, click.Emit(0.1), ErrNotRunning)
	assert.Zero(t, click.Active())
}
