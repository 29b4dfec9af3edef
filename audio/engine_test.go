package audio

import (
	"testing"

	"github.com/faiface/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantVoice(start int64, length int, ended *int) *Voice {
	return &Voice{
		Start:   start,
		Length:  length,
		Sample:  func(int) float64 { return 1 },
		OnEnded: func() { *ended++ },
	}
}

func pull(s beep.Streamer, frames int) [][2]float64 {
	buf := make([][2]float64, frames)
	n, ok := s.Stream(buf)
	if n != frames || !ok {
		panic("engine stopped streaming")
	}
	return buf
}

func TestEngineCountsFrames(t *testing.T) {
	t.Parallel()

	e := NewEngine(beep.SampleRate(1000))
	pull(e, 250)
	pull(e, 250)

	assert.Equal(t, int64(500), e.Position())
	assert.InDelta(t, 0.5, e.Seconds(), 1e-12)
	assert.NoError(t, e.Err())
}

func TestEnginePlacesVoiceOnExactFrame(t *testing.T) {
	t.Parallel()

	ended := 0
	e := NewEngine(beep.SampleRate(1000))
	e.add(constantVoice(70, 20, &ended))

	// the voice straddles the block boundary at 64
	first := pull(e, 64)
	second := pull(e, 64)

	for i, s := range first {
		assert.Zero(t, s[0], "frame %d", i)
	}
	for i, s := range second {
		frame := 64 + i
		want := 0.0
		if frame >= 70 && frame < 90 {
			want = 1
		}
		assert.Equal(t, [2]float64{want, want}, s, "frame %d", frame)
	}
	assert.Equal(t, 1, ended)
	assert.Zero(t, e.Pending())
}

func TestEngineReleasesOnlyFinishedVoices(t *testing.T) {
	t.Parallel()

	ended := 0
	e := NewEngine(beep.SampleRate(1000))
	e.add(constantVoice(10, 10, &ended))
	e.add(constantVoice(30, 100, &ended))

	pull(e, 50)
	assert.Equal(t, 1, ended)
	assert.Equal(t, 1, e.Pending())

	pull(e, 100)
	assert.Equal(t, 2, ended)
	assert.Zero(t, e.Pending())
}

func TestEngineMixesOverlappingVoices(t *testing.T) {
	t.Parallel()

	ended := 0
	e := NewEngine(beep.SampleRate(1000))
	e.add(constantVoice(0, 10, &ended))
	e.add(constantVoice(5, 10, &ended))

	buf := pull(e, 20)
	assert.Equal(t, 1.0, buf[4][0])
	assert.Equal(t, 2.0, buf[5][0])
	assert.Equal(t, 1.0, buf[12][1])
	assert.Equal(t, 0.0, buf[15][1])
}

func TestEngineRendersTailOfLateVoice(t *testing.T) {
	t.Parallel()

	e := NewEngine(beep.SampleRate(1000))
	pull(e, 100)

	ended := 0
	offsets := []int{}
	e.add(&Voice{
		Start:   90,
		Length:  20,
		Sample:  func(offset int) float64 { offsets = append(offsets, offset); return 0.5 },
		OnEnded: func() { ended++ },
	})

	buf := pull(e, 20)
	assert.Equal(t, 0.5, buf[0][0])
	assert.Equal(t, 0.5, buf[9][0])
	assert.Equal(t, 0.0, buf[10][0])
	assert.Equal(t, 10, offsets[0])
	assert.Equal(t, 1, ended)
}

func TestEngineSuspendedIsSilentAndFrozen(t *testing.T) {
	t.Parallel()

	ended := 0
	e := NewEngine(beep.SampleRate(1000))
	e.add(constantVoice(0, 10, &ended))
	e.suspended = true

	buf := pull(e, 64)
	for _, s := range buf {
		require.Zero(t, s[0])
	}
	assert.Zero(t, e.Position())
	assert.Zero(t, ended)

	e.suspended = false
	buf = pull(e, 64)
	assert.Equal(t, 1.0, buf[0][0])
	assert.Equal(t, 1, ended)
}

func TestEngineDropNotifiesVoices(t *testing.T) {
	t.Parallel()

	ended := 0
	e := NewEngine(beep.SampleRate(1000))
	e.add(constantVoice(100, 10, &ended))
	e.add(constantVoice(200, 10, &ended))

	e.drop()
	assert.Equal(t, 2, ended)
	assert.Zero(t, e.Pending())
}
