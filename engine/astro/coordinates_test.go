package astro

import (
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/parallax/engine/math"
)

func TestEquatorialToHorizontalZenith(t *testing.T) {
	// A star on the meridian with dec == latitude is at the zenith.
	observer := ObserverLocation{LatitudeRad: math.DegToRad(45)}
	lst := math.DegToRad(100)
	eq := EquatorialCoord{RA: lst, Dec: observer.LatitudeRad}

	hz := EquatorialToHorizontal(eq, observer, lst)
	assert.InDelta(t, stdmath.Pi/2, hz.Alt, 1e-9)
}

func TestEquatorialToHorizontalPole(t *testing.T) {
	// The north celestial pole sits at the observer's latitude, due north.
	observer := ObserverLocation{LatitudeRad: math.DegToRad(51.4769)}
	eq := EquatorialCoord{RA: 0, Dec: stdmath.Pi / 2}

	for _, lstDeg := range []float64{0, 90, 215.5} {
		hz := EquatorialToHorizontal(eq, observer, math.DegToRad(lstDeg))
		assert.InDelta(t, observer.LatitudeRad, hz.Alt, 1e-9)
	}
}

func TestEquatorialHorizontalRoundTrip(t *testing.T) {
	observer := ObserverLocation{LatitudeRad: math.DegToRad(37.5)}
	lst := math.DegToRad(123.4)

	cases := []EquatorialCoord{
		{RA: math.DegToRad(101.287), Dec: math.DegToRad(-16.716)},
		{RA: math.DegToRad(279.235), Dec: math.DegToRad(38.784)},
		{RA: math.DegToRad(0), Dec: math.DegToRad(0)},
		{RA: math.DegToRad(350), Dec: math.DegToRad(75)},
	}
	for _, eq := range cases {
		hz := EquatorialToHorizontal(eq, observer, lst)
		back := HorizontalToEquatorial(hz, observer, lst)
		assert.InDelta(t, eq.RA, back.RA, 1e-9)
		assert.InDelta(t, eq.Dec, back.Dec, 1e-9)
	}
}

func TestHorizontalToScreenCenter(t *testing.T) {
	pointing := HorizontalCoord{Alt: math.DegToRad(45), Az: math.DegToRad(180)}
	pos, ok := HorizontalToScreen(pointing, pointing, math.DegToRad(60))
	require.True(t, ok)
	assert.InDelta(t, 0, float64(pos.X), 1e-6)
	assert.InDelta(t, 0, float64(pos.Y), 1e-6)
}

func TestHorizontalToScreenSymmetry(t *testing.T) {
	// Stars 10° either side of center at a 60° FOV project to mirrored X.
	fov := math.DegToRad(60)
	pointing := HorizontalCoord{Alt: 0, Az: math.DegToRad(180)}

	east := HorizontalCoord{Alt: 0, Az: math.DegToRad(190)}
	west := HorizontalCoord{Alt: 0, Az: math.DegToRad(170)}

	posEast, okEast := HorizontalToScreen(east, pointing, fov)
	posWest, okWest := HorizontalToScreen(west, pointing, fov)
	require.True(t, okEast)
	require.True(t, okWest)

	assert.InDelta(t, float64(posEast.X), -float64(posWest.X), 1e-6)
	assert.InDelta(t, float64(posEast.Y), float64(posWest.Y), 1e-6)
	assert.Greater(t, float64(posEast.X), 0.0)
}

func TestHorizontalToScreenAltitudeMapsToY(t *testing.T) {
	fov := math.DegToRad(60)
	pointing := HorizontalCoord{Alt: math.DegToRad(45), Az: 0}

	above := HorizontalCoord{Alt: math.DegToRad(55), Az: 0}
	pos, ok := HorizontalToScreen(above, pointing, fov)
	require.True(t, ok)
	assert.Greater(t, float64(pos.Y), 0.0)
	assert.InDelta(t, 0, float64(pos.X), 1e-6)
}

func TestHorizontalToScreenRejectsOutsideMargin(t *testing.T) {
	fov := math.DegToRad(60)
	pointing := HorizontalCoord{Alt: 0, Az: 0}

	// 50° separation exceeds the 0.75×FOV = 45° margin.
	far := HorizontalCoord{Alt: 0, Az: math.DegToRad(50)}
	_, ok := HorizontalToScreen(far, pointing, fov)
	assert.False(t, ok)
}

func TestHorizontalToScreenRejectsFarHemisphere(t *testing.T) {
	// At a very wide FOV the margin check alone admits separations past
	// 90°, where the gnomonic projection is undefined.
	fov := math.DegToRad(120) * 1.2
	pointing := HorizontalCoord{Alt: 0, Az: 0}
	behind := HorizontalCoord{Alt: 0, Az: math.DegToRad(100)}
	_, ok := HorizontalToScreen(behind, pointing, fov)
	assert.False(t, ok)
}
