package math

import (
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 5, Clamp(5, 0, 10))
	assert.Equal(t, 0, Clamp(-3, 0, 10))
	assert.Equal(t, 10, Clamp(42, 0, 10))
	assert.Equal(t, 1.5, Clamp(1.5, 1.0, 2.0))
}

func TestDegRadConversionRoundTrip(t *testing.T) {
	for _, deg := range []float64{0, 45, 90, 180, 270, 359.9, -30} {
		assert.InDelta(t, deg, RadToDeg(DegToRad(deg)), 1e-12)
	}
	assert.InDelta(t, stdmath.Pi, DegToRad(180), 1e-15)
}

func TestNormalizeRadians(t *testing.T) {
	assert.InDelta(t, 0, NormalizeRadians(TwoPi), 1e-15)
	assert.InDelta(t, stdmath.Pi, NormalizeRadians(-stdmath.Pi), 1e-15)
	assert.InDelta(t, 0.5, NormalizeRadians(TwoPi+0.5), 1e-12)
	assert.InDelta(t, TwoPi-0.5, NormalizeRadians(-0.5), 1e-12)
}
