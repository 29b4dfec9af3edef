package fixture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robmorgan/metronome/logger"
	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"
)

// UniverseSize is the number of channels in a DMX512 universe.
const UniverseSize = 512

// DMXState holds the DMX512 values for each channel
type DMXState struct {
	universes map[int][]byte
	lock      sync.Mutex
}

type dmxOperation struct {
	universe, channel, value int
}

func NewDMXState() *DMXState {
	return &DMXState{universes: make(map[int][]byte)}
}

// Get returns the value of a channel (1-based).
func (s *DMXState) Get(universe, channel int) byte {
	s.lock.Lock()
	defer s.lock.Unlock()
	u := s.universes[universe]
	if u == nil || channel < 1 || channel > UniverseSize {
		return 0
	}
	return u[channel-1]
}

func (s *DMXState) set(ops ...dmxOperation) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, op := range ops {
		if op.channel < 1 || op.channel > UniverseSize {
			return fmt.Errorf("dmx channel (%d) not in range, op=%v", op.channel, op)
		}

		s.initializeUniverse(op.universe)
		s.universes[op.universe][op.channel-1] = byte(op.value)
	}

	return nil
}

func (s *DMXState) initializeUniverse(universe int) {
	if s.universes[universe] == nil {
		s.universes[universe] = make([]byte, UniverseSize)
	}
}

// Universes returns a copy of every universe written so far.
func (s *DMXState) Universes() map[int][]byte {
	s.lock.Lock()
	defer s.lock.Unlock()
	out := make(map[int][]byte, len(s.universes))
	for k, v := range s.universes {
		out[k] = append([]byte(nil), v...)
	}
	return out
}

// OLAClient is the interface for communicating with OLA
type OLAClient interface {
	SendDmx(universe int, values []byte) (status bool, err error)
	Close()
}

// SendDMXWorker sends OLA the current DMX state across all universes every tick.
func SendDMXWorker(ctx context.Context, client OLAClient, clk clock.Clock, tick time.Duration, state *DMXState) error {
	logger := logger.GetProjectLogger()
	defer client.Close()

	t := clk.NewTimer(tick)
	defer t.Stop()
	logger.WithField("tick", tick).Info("DMX worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("DMX worker shutdown")
			return ctx.Err()
		case <-t.C():
			for universe, values := range state.Universes() {
				if _, err := client.SendDmx(universe, values); err != nil {
					logger.WithFields(logrus.Fields{"universe": universe}).WithError(err).Warn("Could not send DMX frame")
				}
			}
			t.Reset(tick)
		}
	}
}
