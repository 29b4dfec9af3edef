package utils

// GetDimmerFadeValue returns the DMX level for step of a numSteps fade from 0
// up to target. The final step always lands exactly on target.
func GetDimmerFadeValue(target, step, numSteps int) int {
	if numSteps <= 1 {
		return Clamp(target, 0, 255)
	}

	progress := float64(step) / float64(numSteps-1)
	if progress >= 1 {
		return Clamp(target, 0, 255)
	}

	out := Clamp(progress*float64(target), 0, 255)
	return int(out)
}
