package audio

import "github.com/faiface/beep"

// Voice is one sound placed on the engine timeline.
type Voice struct {
	// Start is the absolute frame at which the first sample sounds.
	Start int64
	// Length is the number of frames the voice lasts.
	Length int
	// Sample returns the mono value offset frames into the voice.
	Sample func(offset int) float64
	// OnEnded runs once after the last frame has been rendered. It is called
	// from inside the output's render path and must not lock the output.
	OnEnded func()
}

func (v *Voice) end() int64 {
	return v.Start + int64(v.Length)
}

func (v *Voice) mix(samples [][2]float64, from, to int64) {
	lo := max(v.Start, from)
	hi := min(v.end(), to)
	for f := lo; f < hi; f++ {
		s := v.Sample(int(f - v.Start))
		i := f - from
		samples[i][0] += s
		samples[i][1] += s
	}
}

// Engine mixes scheduled voices and counts every frame it renders. That count
// is the transport clock: frame n sounds n/sampleRate seconds after the
// device started pulling.
type Engine struct {
	sampleRate beep.SampleRate
	position   int64
	suspended  bool
	voices     []*Voice
}

// NewEngine creates an engine at frame zero.
func NewEngine(sampleRate beep.SampleRate) *Engine {
	return &Engine{sampleRate: sampleRate}
}

// Stream renders the next block. While suspended the block is silent and
// the clock holds still.
func (e *Engine) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		samples[i] = [2]float64{}
	}
	if e.suspended {
		return len(samples), true
	}

	from := e.position
	to := from + int64(len(samples))

	var ended []*Voice
	live := e.voices[:0]
	for _, v := range e.voices {
		v.mix(samples, from, to)
		if v.end() <= to {
			ended = append(ended, v)
		} else {
			live = append(live, v)
		}
	}
	for i := len(live); i < len(e.voices); i++ {
		e.voices[i] = nil
	}
	e.voices = live
	e.position = to

	for _, v := range ended {
		if v.OnEnded != nil {
			v.OnEnded()
		}
	}
	return len(samples), true
}

// Err never fails; the engine plays until the output is closed.
func (e *Engine) Err() error {
	return nil
}

// Position is the number of frames rendered so far.
func (e *Engine) Position() int64 {
	return e.position
}

// Seconds converts the frame position to transport time.
func (e *Engine) Seconds() float64 {
	return float64(e.position) / float64(e.sampleRate)
}

// Pending is the number of voices not yet fully rendered.
func (e *Engine) Pending() int {
	return len(e.voices)
}

func (e *Engine) add(v *Voice) {
	e.voices = append(e.voices, v)
}

// drop discards every pending voice, still notifying each one.
func (e *Engine) drop() {
	voices := e.voices
	e.voices = nil
	for _, v := range voices {
		if v.OnEnded != nil {
			v.OnEnded()
		}
	}
}
