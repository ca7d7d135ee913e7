package renderer

import (
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/parallax/engine/math"
)

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera()
	pointing := c.Pointing()
	assert.InDelta(t, stdmath.Pi/4, pointing.Alt, 1e-12)
	assert.InDelta(t, 0, pointing.Az, 1e-12)
	assert.InDelta(t, 60.0, c.FOVDeg(), 1e-9)
}

func TestSetPointingClampsAltitude(t *testing.T) {
	c := NewCamera()
	c.SetPointing(stdmath.Pi, 0)
	assert.InDelta(t, stdmath.Pi/2, c.Pointing().Alt, 1e-12)

	c.SetPointing(-stdmath.Pi, 0)
	assert.InDelta(t, -stdmath.Pi/2, c.Pointing().Alt, 1e-12)
}

func TestSetPointingNormalizesAzimuth(t *testing.T) {
	c := NewCamera()
	c.SetPointing(0, -stdmath.Pi/2)
	assert.InDelta(t, 3*stdmath.Pi/2, c.Pointing().Az, 1e-12)

	c.SetPointing(0, math.TwoPi+0.25)
	assert.InDelta(t, 0.25, c.Pointing().Az, 1e-12)
}

func TestSetFOVClamps(t *testing.T) {
	c := NewCamera()
	c.SetFOV(0.01)
	assert.InDelta(t, 0.5, c.FOVDeg(), 1e-9)

	c.SetFOV(500)
	assert.InDelta(t, 120.0, c.FOVDeg(), 1e-9)
}

func TestZoomMultipliesAndClamps(t *testing.T) {
	c := NewCamera()
	c.Zoom(0.5)
	assert.InDelta(t, 30.0, c.FOVDeg(), 1e-9)

	for i := 0; i < 100; i++ {
		c.Zoom(0.5)
	}
	assert.InDelta(t, 0.5, c.FOVDeg(), 1e-9)

	for i := 0; i < 100; i++ {
		c.Zoom(2.0)
	}
	assert.InDelta(t, 120.0, c.FOVDeg(), 1e-9)
}

func TestPanAccumulates(t *testing.T) {
	c := NewCamera()
	c.SetPointing(0, 0)
	c.Pan(0.1, 0.2)
	pointing := c.Pointing()
	assert.InDelta(t, 0.1, pointing.Az, 1e-12)
	assert.InDelta(t, 0.2, pointing.Alt, 1e-12)
}

func TestResetRestoresDefaults(t *testing.T) {
	c := NewCamera()
	c.SetPointing(-0.3, 2.0)
	c.SetFOV(5)
	c.Reset()

	pointing := c.Pointing()
	assert.InDelta(t, stdmath.Pi/4, pointing.Alt, 1e-12)
	assert.InDelta(t, 0, pointing.Az, 1e-12)
	assert.InDelta(t, 60.0, c.FOVDeg(), 1e-9)
}

func TestMagnitudeLimit(t *testing.T) {
	c := NewCamera()

	// Naked-eye limit at the default 60° field.
	assert.InDelta(t, 6.5, float64(c.MagnitudeLimit()), 1e-5)

	// Each factor-of-10 narrowing gains 5 magnitudes.
	c.SetFOV(6)
	assert.InDelta(t, 11.5, float64(c.MagnitudeLimit()), 1e-5)

	// Deeply zoomed fields cap at 20.
	c.SetFOV(0.5)
	assert.LessOrEqual(t, float64(c.MagnitudeLimit()), 20.0)
}

func TestMagnitudeLimitMonotonicInZoom(t *testing.T) {
	c := NewCamera()
	previous := c.MagnitudeLimit()
	for _, fov := range []float64{45, 30, 15, 5, 1} {
		c.SetFOV(fov)
		limit := c.MagnitudeLimit()
		assert.GreaterOrEqual(t, limit, previous, "fov %.1f", fov)
		previous = limit
	}
}
