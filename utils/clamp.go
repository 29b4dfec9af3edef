package utils

import "golang.org/x/exp/constraints"

// Clamp limits v to the closed interval spanned by min and max. The bounds may
// be given in either order.
func Clamp[T constraints.Ordered](v, min, max T) T {
	if min > max {
		min, max = max, min
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
