package fixture

import (
	"context"
	"sync"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/robmorgan/metronome/logger"
	"github.com/robmorgan/metronome/rhythm"
	"github.com/robmorgan/metronome/utils"
	"k8s.io/utils/clock"
)

// Flasher flashes a group of fixtures on every beat and fades them out
// frame by frame until the next one.
type Flasher struct {
	mu        sync.Mutex
	group     *Group
	state     *DMXState
	downbeat  colorful.Color
	beat      colorful.Color
	fadeSteps int
	step      int
}

// NewFlasher creates a flasher whose fade lasts decay, advanced once per frame.
func NewFlasher(group *Group, state *DMXState, frame, decay time.Duration, downbeat, beat colorful.Color) *Flasher {
	steps := 1
	if frame > 0 && decay > frame {
		steps = int(decay / frame)
	}
	return &Flasher{
		group:     group,
		state:     state,
		downbeat:  downbeat,
		beat:      beat,
		fadeSteps: steps,
		step:      steps,
	}
}

// OnBeat brings every fixture to full in the beat's colour.
func (f *Flasher) OnBeat(b rhythm.Beat) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	c := f.beat
	if b.Downbeat {
		c = f.downbeat
	}
	f.step = 0
	return f.group.Each(func(fix *Fixture) error {
		fix.SetColor(c)
		fix.SetIntensity(1)
		return fix.Render(f.state)
	})
}

// Frame advances the fade by one step.
func (f *Flasher) Frame() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step >= f.fadeSteps {
		return nil
	}
	f.step++
	level := 255 - utils.GetDimmerFadeValue(255, f.step, f.fadeSteps+1)

	return f.group.Each(func(fix *Fixture) error {
		fix.SetIntensity(float64(level) / 255)
		if !fix.NeedsUpdate() {
			return nil
		}
		return fix.Render(f.state)
	})
}

// Run flashes on beats from l and fades on every frame until ctx is done or
// the listener is unsubscribed.
func (f *Flasher) Run(ctx context.Context, clk clock.Clock, frame time.Duration, l *rhythm.Listener) error {
	logger := logger.GetProjectLogger()

	t := clk.NewTimer(frame)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.Done():
			return nil
		case b := <-l.C:
			if err := f.OnBeat(b); err != nil {
				logger.WithError(err).Warn("Could not flash fixtures")
			}
		case <-t.C():
			if err := f.Frame(); err != nil {
				logger.WithError(err).Warn("Could not fade fixtures")
			}
			t.Reset(frame)
		}
	}
}
