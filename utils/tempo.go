package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Tempo bounds applied wherever a human enters a tempo. The scheduler itself
// only requires a positive value.
const (
	MinTempo     = 20.0
	MaxTempo     = 300.0
	DefaultTempo = 120.0
)

// ClampTempo forces bpm into [MinTempo, MaxTempo]. NaN maps to DefaultTempo.
func ClampTempo(bpm float64) float64 {
	if math.IsNaN(bpm) {
		return DefaultTempo
	}
	return Clamp(bpm, MinTempo, MaxTempo)
}

// NudgeTempo adds delta to bpm and clamps the result.
func NudgeTempo(bpm, delta float64) float64 {
	return ClampTempo(bpm + delta)
}

// ParseTempo reads a user supplied tempo such as "128" or "96.5bpm".
// Non-positive values are rejected; positive values are clamped.
func ParseTempo(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "bpm"))
	bpm, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid tempo %q: %w", s, err)
	}
	if !(bpm > 0) || math.IsInf(bpm, 0) {
		return 0, fmt.Errorf("invalid tempo %q: must be a positive number", s)
	}
	return ClampTempo(bpm), nil
}
