// Package oscsync forwards metronome beats to OSC receivers.
package oscsync

import (
	"context"

	"github.com/hypebeast/go-osc/osc"
	"github.com/robmorgan/metronome/logger"
	"github.com/robmorgan/metronome/rhythm"
	"github.com/sirupsen/logrus"
)

// DefaultAddress is the OSC address beats are sent to.
const DefaultAddress = "/metronome/beat"

// Sender delivers a packet to an OSC server. *osc.Client satisfies it.
type Sender interface {
	Send(packet osc.Packet) error
}

// Forwarder sends one OSC message per beat: bar index, tempo and a downbeat flag.
type Forwarder struct {
	sender  Sender
	address string
}

// NewForwarder creates a forwarder sending to host:port.
func NewForwarder(host string, port int, address string) *Forwarder {
	return NewForwarderWithSender(osc.NewClient(host, port), address)
}

func NewForwarderWithSender(sender Sender, address string) *Forwarder {
	if address == "" {
		address = DefaultAddress
	}
	return &Forwarder{sender: sender, address: address}
}

// Message builds the OSC message for a beat.
func (f *Forwarder) Message(b rhythm.Beat) *osc.Message {
	downbeat := int32(0)
	if b.Downbeat {
		downbeat = 1
	}
	return osc.NewMessage(f.address, int32(b.Index), float32(b.Tempo), downbeat)
}

// Forward sends a single beat.
func (f *Forwarder) Forward(b rhythm.Beat) error {
	return f.sender.Send(f.Message(b))
}

// Run forwards beats from l until ctx is done or the listener is unsubscribed.
// Send failures are logged and the beat is skipped.
func (f *Forwarder) Run(ctx context.Context, l *rhythm.Listener) error {
	logger := logger.GetProjectLogger().WithField("address", f.address)
	logger.Info("Forwarding beats over OSC")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.Done():
			return nil
		case b := <-l.C:
			if err := f.Forward(b); err != nil {
				logger.WithFields(logrus.Fields{"beat": b.Count}).WithError(err).Warn("Could not send OSC beat")
			}
		}
	}
}
