package effect

import (
	"fmt"
	"math"

	"github.com/fogleman/ease"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Curve shapes a normalized progress value in [0,1].
type Curve func(t float64) float64

var curves = map[string]Curve{
	"linear":      ease.Linear,
	"in-quad":     ease.InQuad,
	"out-quad":    ease.OutQuad,
	"in-out-quad": ease.InOutQuad,
	"in-quart":    ease.InQuart,
	"out-quart":   ease.OutQuart,
	"in-sine":     ease.InSine,
	"out-sine":    ease.OutSine,
}

// CurveByName looks up one of the named easing curves.
func CurveByName(name string) (Curve, error) {
	if c, ok := curves[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("unknown curve %q (known: %v)", name, CurveNames())
}

// CurveNames lists the curves accepted by CurveByName.
func CurveNames() []string {
	names := maps.Keys(curves)
	slices.Sort(names)
	return names
}

// Envelope is the gain over time of a single percussive sound. It always
// starts and ends at silence:
//
//	0 --attack--> Peak --exponential decay--> Floor --release--> 0
type Envelope struct {
	Peak    float64
	Floor   float64
	Attack  float64 // seconds
	Decay   float64 // seconds
	Release float64 // seconds

	// AttackCurve shapes the rise from silence. Defaults to linear.
	AttackCurve Curve
}

// DefaultEnvelope is a 60ms click: 5ms rise to 0.2, exponential fall to 0.001
// at 50ms, then a 10ms fade to silence.
func DefaultEnvelope() Envelope {
	return Envelope{
		Peak:        0.2,
		Floor:       0.001,
		Attack:      0.005,
		Decay:       0.045,
		Release:     0.010,
		AttackCurve: ease.Linear,
	}
}

// Duration is the total length of the envelope in seconds.
func (e Envelope) Duration() float64 {
	return e.Attack + e.Decay + e.Release
}

// Validate reports envelopes that cannot be rendered without a hard edge.
func (e Envelope) Validate() error {
	switch {
	case e.Peak <= 0 || e.Peak > 1:
		return fmt.Errorf("envelope peak %v must be in (0,1]", e.Peak)
	case e.Floor <= 0 || e.Floor >= e.Peak:
		return fmt.Errorf("envelope floor %v must be in (0,peak)", e.Floor)
	case e.Attack <= 0:
		return fmt.Errorf("envelope attack must be positive")
	case e.Decay < 0 || e.Release <= 0:
		return fmt.Errorf("envelope decay must be >= 0 and release > 0")
	}
	return nil
}

// Gain returns the envelope value t seconds after the sound starts.
func (e Envelope) Gain(t float64) float64 {
	if t <= 0 || t >= e.Duration() {
		return 0
	}

	if t < e.Attack {
		curve := e.AttackCurve
		if curve == nil {
			curve = ease.Linear
		}
		return e.Peak * curve(t/e.Attack)
	}

	t -= e.Attack
	if t < e.Decay {
		return e.Peak * math.Pow(e.Floor/e.Peak, t/e.Decay)
	}

	t -= e.Decay
	return e.Floor * (1 - t/e.Release)
}
