package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/gruntwork-io/go-commons/errors"
	"github.com/robmorgan/metronome/logger"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNotRunning is returned when sounds are scheduled before the device was acquired.
	ErrNotRunning = fmt.Errorf("audio context is not running")
	// ErrClosed is returned once the context has been torn down.
	ErrClosed = fmt.Errorf("audio context is closed")
)

// State is the lifecycle state of a Context.
type State int

const (
	StateUninitialized State = iota
	StateRunning
	StateSuspended
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	case StateSuspended:
		return "suspended"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Context owns the output device and the engine playing on it. The device is
// acquired on the first Resume, kept warm across Suspend/Resume and released
// by Close.
type Context struct {
	mu         sync.Mutex
	out        Output
	engine     *Engine
	sampleRate beep.SampleRate
	bufferSize int
	state      State
}

// NewContext prepares a context. No device is touched until Resume.
func NewContext(out Output, sampleRate beep.SampleRate, buffer time.Duration) *Context {
	bufferSize := sampleRate.N(buffer)
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Context{
		out:        out,
		engine:     NewEngine(sampleRate),
		sampleRate: sampleRate,
		bufferSize: bufferSize,
	}
}

// Resume acquires the device on first use, or un-freezes a suspended one.
// A failed acquisition leaves the context uninitialized so a later Resume
// tries again.
func (c *Context) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	logger := logger.GetProjectLogger()

	switch c.state {
	case StateClosed:
		return errors.WithStackTrace(ErrClosed)
	case StateRunning:
		return nil
	case StateUninitialized:
		if err := c.out.Init(c.sampleRate, c.bufferSize); err != nil {
			logger.WithError(err).Error("Could not acquire audio device")
			return errors.WithStackTrace(fmt.Errorf("acquire audio device: %w", err))
		}
		c.out.Play(c.engine)
		logger.WithFields(logrus.Fields{"sample_rate": int(c.sampleRate), "buffer": c.bufferSize}).Info("Audio device acquired")
	case StateSuspended:
		c.out.Lock()
		c.engine.suspended = false
		c.out.Unlock()
		logger.Debug("Audio device resumed")
	}

	c.state = StateRunning
	return nil
}

// Suspend freezes the transport clock and silences output without releasing
// the device. Queued voices are dropped so they cannot sound after Resume.
func (c *Context) Suspend() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateClosed:
		return errors.WithStackTrace(ErrClosed)
	case StateRunning:
		c.out.Lock()
		c.engine.suspended = true
		c.engine.drop()
		c.out.Unlock()
		c.state = StateSuspended
	}
	return nil
}

// Close releases the device. Pending voices are dropped.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return nil
	}
	if c.state != StateUninitialized {
		c.out.Lock()
		c.engine.drop()
		c.out.Unlock()
		c.out.Close()
		logger.GetProjectLogger().Info("Audio device released")
	}
	c.state = StateClosed
	return nil
}

// State reports the lifecycle state.
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SampleRate of the engine timeline.
func (c *Context) SampleRate() beep.SampleRate {
	return c.sampleRate
}

// CurrentTime is the transport time in seconds. It is zero until the device
// has rendered its first block and stands still while suspended.
func (c *Context) CurrentTime() float64 {
	c.out.Lock()
	defer c.out.Unlock()
	return c.engine.Seconds()
}

// Schedule hands a voice to the engine.
func (c *Context) Schedule(v *Voice) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateClosed:
		return errors.WithStackTrace(ErrClosed)
	case StateUninitialized:
		return errors.WithStackTrace(ErrNotRunning)
	}

	c.out.Lock()
	c.engine.add(v)
	c.out.Unlock()
	return nil
}

// Pending is the number of voices still queued or sounding.
func (c *Context) Pending() int {
	c.out.Lock()
	defer c.out.Unlock()
	return c.engine.Pending()
}
