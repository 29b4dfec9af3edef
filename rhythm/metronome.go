package rhythm

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gruntwork-io/go-commons/errors"
	"github.com/robmorgan/metronome/logger"
	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"
)

var (
	// ErrInvalidTempo is returned for a tempo that is not a finite positive number.
	ErrInvalidTempo = fmt.Errorf("tempo must be a finite number greater than zero")
	// ErrClosed is returned once the metronome has been torn down.
	ErrClosed = fmt.Errorf("metronome is closed")
)

// Transport exposes the device clock in seconds.
type Transport interface {
	CurrentTime() float64
}

// Device is the sound output the metronome keeps warm between runs.
type Device interface {
	Transport
	Resume() error
	Suspend() error
	Close() error
}

// Synth produces one click at an exact transport time.
type Synth interface {
	Emit(at float64) error
}

// Options tune the scheduler.
type Options struct {
	Tempo         float64
	BeatsPerBar   int
	Lookahead     time.Duration
	ScheduleAhead time.Duration
	StartOffset   time.Duration
	SuspendOnStop bool
}

// DefaultOptions are 120 bpm in 4/4, topping up 100ms ahead every 25ms.
func DefaultOptions() Options {
	return Options{
		Tempo:         120.0,
		BeatsPerBar:   4,
		Lookahead:     25 * time.Millisecond,
		ScheduleAhead: 100 * time.Millisecond,
		StartOffset:   50 * time.Millisecond,
	}
}

func (o Options) validate() error {
	if err := ValidateTempo(o.Tempo); err != nil {
		return err
	}
	if o.BeatsPerBar < 1 {
		return fmt.Errorf("beats per bar must be at least 1, got %d", o.BeatsPerBar)
	}
	if o.Lookahead <= 0 {
		return fmt.Errorf("lookahead must be positive, got %s", o.Lookahead)
	}
	if o.ScheduleAhead <= 0 {
		return fmt.Errorf("schedule ahead must be positive, got %s", o.ScheduleAhead)
	}
	if o.StartOffset < 0 {
		return fmt.Errorf("start offset must not be negative, got %s", o.StartOffset)
	}
	return nil
}

// ValidateTempo rejects values the scheduler cannot divide by.
func ValidateTempo(bpm float64) error {
	if bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return errors.WithStackTrace(fmt.Errorf("%w: %v", ErrInvalidTempo, bpm))
	}
	return nil
}

// Metronome schedules clicks on the device clock. A coarse timer tick tops
// up every beat due within the schedule-ahead window; the device plays each
// click at its exact time.
type Metronome struct {
	mu     sync.Mutex
	clock  clock.Clock
	device Device
	synth  Synth
	beats  *Broadcaster

	tempo         float64
	beatsPerBar   int
	lookahead     time.Duration
	scheduleAhead float64
	startOffset   float64
	suspendOnStop bool

	playing      bool
	nextBeatTime float64
	beat         int
	count        int64
	ticks        int64
	closed       bool

	// session identifies one Start..Stop run
	session uint64
	stop    chan struct{}
	done    chan struct{}
}

// NewMetronome creates a stopped metronome. The device is not touched until Start.
func NewMetronome(clk clock.Clock, device Device, synth Synth, opts Options) (*Metronome, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Metronome{
		clock:         clk,
		device:        device,
		synth:         synth,
		beats:         NewBroadcaster(),
		tempo:         opts.Tempo,
		beatsPerBar:   opts.BeatsPerBar,
		lookahead:     opts.Lookahead,
		scheduleAhead: opts.ScheduleAhead.Seconds(),
		startOffset:   opts.StartOffset.Seconds(),
		suspendOnStop: opts.SuspendOnStop,
	}, nil
}

// Start acquires or resumes the device and begins scheduling. It must be
// called from the user action that asked for sound. Starting while playing
// is a no-op.
func (m *Metronome) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return errors.WithStackTrace(ErrClosed)
	}
	if m.playing {
		return nil
	}

	if err := m.device.Resume(); err != nil {
		return errors.WithStackTrace(err)
	}

	m.beat = 0
	m.count = 0
	m.nextBeatTime = m.device.CurrentTime() + m.startOffset
	m.playing = true
	m.session++
	m.stop = make(chan struct{})
	m.done = make(chan struct{})

	// the first tick fires as soon as the scheduler goroutine gets to run
	t := m.clock.NewTimer(0)
	go m.run(m.session, t, m.stop, m.done)

	logger.GetProjectLogger().WithFields(logrus.Fields{
		"session": m.session,
		"tempo":   m.tempo,
		"at":      m.nextBeatTime,
	}).Info("Metronome started")
	return nil
}

// Stop cancels the pending scheduling tick and waits for the scheduler to
// exit. Clicks already handed to the device play out.
func (m *Metronome) Stop() error {
	m.mu.Lock()
	if !m.playing {
		m.mu.Unlock()
		return nil
	}
	m.playing = false
	close(m.stop)
	done := m.done
	session := m.session
	m.mu.Unlock()

	<-done

	logger.GetProjectLogger().WithField("session", session).Info("Metronome stopped")

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.suspendOnStop && !m.playing && !m.closed {
		return m.device.Suspend()
	}
	return nil
}

// Toggle stops a playing metronome and starts a stopped one. It reports
// whether the metronome is playing afterwards.
func (m *Metronome) Toggle() (bool, error) {
	if m.IsPlaying() {
		return false, m.Stop()
	}
	if err := m.Start(); err != nil {
		return false, err
	}
	return true, nil
}

// SetTempo updates the live tempo. The next beat still to be scheduled is
// spaced with the new value; beats already handed to the device keep theirs.
func (m *Metronome) SetTempo(bpm float64) error {
	if err := ValidateTempo(bpm); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tempo = bpm
	return nil
}

func (m *Metronome) Tempo() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tempo
}

func (m *Metronome) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// BeatInterval returns how long a beat lasts at the current tempo.
func (m *Metronome) BeatInterval() time.Duration {
	return m.Snapshot().BeatInterval()
}

// Snapshot returns the current state.
func (m *Metronome) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Playing:      m.playing,
		Tempo:        m.tempo,
		BeatsPerBar:  m.beatsPerBar,
		NextBeat:     m.beat,
		NextBeatTime: m.nextBeatTime,
		Time:         m.device.CurrentTime(),
		Ticks:        m.ticks,
	}
}

// Subscribe returns a listener that receives each beat close to the moment
// it becomes audible.
func (m *Metronome) Subscribe() *Listener {
	return m.beats.Subscribe(16)
}

func (m *Metronome) Unsubscribe(l *Listener) {
	m.beats.Unsubscribe(l)
}

// Close stops playback, releases the device and unsubscribes all listeners.
func (m *Metronome) Close() error {
	if err := m.Stop(); err != nil {
		logger.GetProjectLogger().WithError(err).Warn("Could not suspend audio device while closing")
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.beats.Close()
	return m.device.Close()
}

func (m *Metronome) run(session uint64, t clock.Timer, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer t.Stop()

	for {
		select {
		case <-stop:
			return
		case <-t.C():
			if !m.tick(session, t, stop) {
				return
			}
		}
	}
}

// tick schedules every beat due before now+scheduleAhead and re-arms the
// timer. It returns false once the session is over.
func (m *Metronome) tick(session uint64, t clock.Timer, stop <-chan struct{}) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.playing || m.session != session {
		return false
	}

	now := m.device.CurrentTime()
	for m.nextBeatTime < now+m.scheduleAhead {
		b := Beat{
			Count:    m.count,
			Index:    m.beat,
			Time:     m.nextBeatTime,
			Tempo:    m.tempo,
			Downbeat: m.beat == 0,
		}
		m.emit(b)
		m.notify(session, b, now, stop)

		m.nextBeatTime += 60.0 / m.tempo
		m.beat = (m.beat + 1) % m.beatsPerBar
		m.count++
	}

	m.ticks++
	t.Reset(m.lookahead)
	return true
}

// emit hands one click to the synth. A failing or panicking synth costs
// that click only.
func (m *Metronome) emit(b Beat) {
	logger := logger.GetProjectLogger().WithFields(logrus.Fields{
		"beat":  b.Count,
		"at":    b.Time,
		"tempo": b.Tempo,
	})

	defer errors.Recover(func(cause error) {
		logger.WithError(cause).Warn("Dropped click")
	})

	if err := m.synth.Emit(b.Time); err != nil {
		logger.WithError(err).Warn("Dropped click")
		return
	}
	logger.Debug("Scheduled click")
}

// notify publishes the beat once the device clock reaches it. Notifications
// for a session that has ended are discarded.
func (m *Metronome) notify(session uint64, b Beat, now float64, stop <-chan struct{}) {
	delay := time.Duration(math.Round((b.Time - now) * float64(time.Second)))
	if delay < 0 {
		delay = 0
	}
	t := m.clock.NewTimer(delay)

	go func() {
		select {
		case <-stop:
			t.Stop()
			return
		case <-t.C():
		}

		m.mu.Lock()
		current := m.playing && m.session == session
		m.mu.Unlock()
		if current {
			m.beats.Publish(b)
		}
	}()
}
