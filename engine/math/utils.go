package math

import (
	stdmath "math"

	"golang.org/x/exp/constraints"
)

const TwoPi = 2 * stdmath.Pi

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * stdmath.Pi / 180.0
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180.0 / stdmath.Pi
}

// NormalizeRadians wraps an angle to [0, 2π).
func NormalizeRadians(angle float64) float64 {
	angle = stdmath.Mod(angle, TwoPi)
	if angle < 0 {
		angle += TwoPi
	}
	return angle
}
