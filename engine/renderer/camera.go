package renderer

import (
	stdmath "math"

	"github.com/spaghettifunk/parallax/engine/astro"
	"github.com/spaghettifunk/parallax/engine/math"
)

const (
	defaultAltitudeRad = stdmath.Pi / 4 // 45° up
	defaultAzimuthRad  = 0.0            // due north
	defaultFOVDeg      = 60.0

	minFOVDeg = 0.5
	maxFOVDeg = 120.0

	baseMagLimit    = 6.5
	referenceFOVDeg = 60.0
	maxMagLimit     = 20.0
)

// Camera is the observer's pointing direction and field of view. Pointing is
// stored as horizontal coordinates; FOV is the full angle in radians.
type Camera struct {
	altitude float64
	azimuth  float64
	fov      float64
}

func NewCamera() *Camera {
	return &Camera{
		altitude: defaultAltitudeRad,
		azimuth:  defaultAzimuthRad,
		fov:      math.DegToRad(defaultFOVDeg),
	}
}

// SetPointing sets an absolute Alt/Az direction. Altitude is clamped to
// [-π/2, π/2], azimuth normalized to [0, 2π).
func (c *Camera) SetPointing(altitudeRad, azimuthRad float64) {
	c.altitude = math.Clamp(altitudeRad, -stdmath.Pi/2, stdmath.Pi/2)
	c.azimuth = math.NormalizeRadians(azimuthRad)
}

// SetFOV sets the field of view in degrees, clamped to [0.5, 120].
func (c *Camera) SetFOV(fovDeg float64) {
	c.fov = math.Clamp(math.DegToRad(fovDeg), math.DegToRad(minFOVDeg), math.DegToRad(maxFOVDeg))
}

// Pan adjusts pointing by a delta, for mouse drag.
func (c *Camera) Pan(deltaAzRad, deltaAltRad float64) {
	c.SetPointing(c.altitude+deltaAltRad, c.azimuth+deltaAzRad)
}

// Zoom multiplies the FOV by factor. Factors below 1 zoom in.
func (c *Camera) Zoom(factor float64) {
	c.fov = math.Clamp(c.fov*factor, math.DegToRad(minFOVDeg), math.DegToRad(maxFOVDeg))
}

// Reset restores the defaults: 45° up, due north, 60° FOV.
func (c *Camera) Reset() {
	c.altitude = defaultAltitudeRad
	c.azimuth = defaultAzimuthRad
	c.fov = math.DegToRad(defaultFOVDeg)
}

// Pointing returns the current direction as a HorizontalCoord.
func (c *Camera) Pointing() astro.HorizontalCoord {
	return astro.HorizontalCoord{Alt: c.altitude, Az: c.azimuth}
}

func (c *Camera) FOVRad() float64 {
	return c.fov
}

func (c *Camera) FOVDeg() float64 {
	return math.RadToDeg(c.fov)
}

// MagnitudeLimit returns the limiting magnitude for the current FOV:
//
//	limit = 6.5 + 5·log10(60 / fov_deg), capped at 20
//
// Narrower fields concentrate more light per pixel, so the limit rises as
// the camera zooms in (~6.5 naked eye at 60°, ~10 at 5°, ~14 at 0.5°).
func (c *Camera) MagnitudeLimit() float32 {
	limit := baseMagLimit + 5.0*stdmath.Log10(referenceFOVDeg/c.FOVDeg())
	return float32(stdmath.Min(limit, maxMagLimit))
}
