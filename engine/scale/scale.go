package scale

import "github.com/robmorgan/metronome/utils"

// Clamp returns a function that linearly maps a number from [rMin,rMax] onto
// [tMin,tMax], clamping results that fall outside the target interval.
func Clamp(rMin, rMax, tMin, tMax float64) func(m float64) float64 {
	span := rMax - rMin
	return func(m float64) float64 {
		if span == 0 {
			return tMin
		}
		v := (m-rMin)/span*(tMax-tMin) + tMin
		return utils.Clamp(v, tMin, tMax)
	}
}

// ToUnitClamp returns a function that scales a number from the interval [rMin,rMax]
// to the unit interval ([0,1]), if the result falls outside [0,1], it is clamped
// to 0 or 1.
func ToUnitClamp(rMin, rMax float64) func(m float64) float64 {
	return Clamp(rMin, rMax, 0, 1)
}

// ToDMX maps a unit level onto a DMX channel value.
func ToDMX(level float64) byte {
	return byte(Clamp(0, 1, 0, 255)(level) + 0.5)
}
