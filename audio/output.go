package audio

import (
	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// Output is the sound device the engine is played on. Lock and Unlock guard
// every streamer the output is currently pulling from.
type Output interface {
	Init(sampleRate beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Lock()
	Unlock()
	Close()
}

// Speaker is the system default device through beep's speaker package.
type Speaker struct{}

func (Speaker) Init(sampleRate beep.SampleRate, bufferSize int) error {
	return speaker.Init(sampleRate, bufferSize)
}

func (Speaker) Play(s beep.Streamer) { speaker.Play(s) }

func (Speaker) Lock() { speaker.Lock() }

func (Speaker) Unlock() { speaker.Unlock() }

func (Speaker) Close() {
	speaker.Clear()
	speaker.Close()
}
