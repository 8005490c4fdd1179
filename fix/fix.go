// package fix provides integer helpers for DAC and PWM levels.
package fix

import (
	"golang.org/x/exp/constraints"
)

// Map linearly maps x from the range [inMin, inMax] to [outMin, outMax] using
// integer arithmetic, truncating towards zero. x is not clamped. If the input
// range is empty it returns outMin.
func Map[T constraints.Integer](x, inMin, inMax, outMin, outMax T) T {
	if inMax == inMin {
		return outMin
	}
	return (x-inMin)*(outMax-outMin)/(inMax-inMin) + outMin
}

// Clamp limits x to [lo, hi].
func Clamp[T constraints.Integer | constraints.Float](x, lo, hi T) T {
	return min(max(x, lo), hi)
}

// Level is an output level of a DAC with a given vertical resolution, e.g.
// 0 to 4095 for a 12 bit DAC.
type Level int

// FromFloat converts f in [0, 1] into a Level of the given resolution,
// clamping to the maximum or minimum values.
func FromFloat[T constraints.Float](f T, resolution int) Level {
	if f <= 0 {
		return 0
	}
	if f >= 1 {
		return Level(resolution - 1)
	}
	// round to nearest
	return Level(f*T(resolution-1) + 0.5)
}

// Float converts a Level of the given resolution into [0, 1].
func Float[T constraints.Float](l Level, resolution int) T {
	if resolution < 2 {
		return 0
	}
	return T(l) / T(resolution-1)
}
