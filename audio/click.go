package audio

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/faiface/beep"
	"github.com/gruntwork-io/go-commons/errors"
	"github.com/robmorgan/metronome/effect"
)

// VoiceScheduler places voices on a sample timeline.
type VoiceScheduler interface {
	SampleRate() beep.SampleRate
	Schedule(v *Voice) error
}

// Click synthesizes a short enveloped sine tone at an exact transport time.
type Click struct {
	ctx       VoiceScheduler
	frequency float64
	envelope  effect.Envelope

	// voices scheduled and not yet released
	active atomic.Int64
}

// NewClick builds a click synthesizer. frequency is in Hz.
func NewClick(ctx VoiceScheduler, frequency float64, envelope effect.Envelope) (*Click, error) {
	if frequency <= 0 || math.IsInf(frequency, 0) {
		return nil, fmt.Errorf("click frequency %v must be positive", frequency)
	}
	if err := envelope.Validate(); err != nil {
		return nil, err
	}
	return &Click{ctx: ctx, frequency: frequency, envelope: envelope}, nil
}

// Emit schedules one click to start at transport time at (seconds). The call
// may happen well before at; placement is by sample index, not by when Emit
// runs.
func (c *Click) Emit(at float64) error {
	if at < 0 || math.IsNaN(at) || math.IsInf(at, 0) {
		return errors.WithStackTrace(fmt.Errorf("invalid click time %v", at))
	}

	sr := float64(c.ctx.SampleRate())
	freq := c.frequency
	env := c.envelope

	v := &Voice{
		Start:  int64(math.Round(at * sr)),
		Length: int(math.Ceil(env.Duration() * sr)),
		Sample: func(offset int) float64 {
			t := float64(offset) / sr
			return env.Gain(t) * math.Sin(2*math.Pi*freq*t)
		},
		OnEnded: c.release,
	}

	c.active.Add(1)
	if err := c.ctx.Schedule(v); err != nil {
		c.active.Add(-1)
		return err
	}
	return nil
}

// Active is the number of clicks scheduled but not yet finished playing.
func (c *Click) Active() int {
	return int(c.active.Load())
}

func (c *Click) release() {
	c.active.Add(-1)
}
