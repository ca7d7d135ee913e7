package renderer

import (
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/parallax/engine/astro"
	"github.com/spaghettifunk/parallax/engine/catalog"
	"github.com/spaghettifunk/parallax/engine/math"
)

// zenithStar returns a catalog entry that sits exactly at the zenith for
// the given observer and sidereal time.
func zenithStar(observer astro.ObserverLocation, lst float64, mag, bv float32) catalog.StarEntry {
	return catalog.StarEntry{
		RA:      lst,
		Dec:     observer.LatitudeRad,
		MagV:    mag,
		ColorBV: bv,
	}
}

func zenithCamera() *Camera {
	c := NewCamera()
	c.SetPointing(stdmath.Pi/2, 0)
	return c
}

func TestMagnitudeToBrightness(t *testing.T) {
	// Magnitude 0 is the Pogson reference: 1/3.98.
	assert.InDelta(t, 1.0/3.98, float64(magnitudeToBrightness(0)), 1e-6)

	// Sirius at -1.46 is near but below saturation.
	sirius := magnitudeToBrightness(-1.46)
	assert.InDelta(t, 0.9641, float64(sirius), 1e-3)
	assert.LessOrEqual(t, float64(sirius), 1.0)

	// Anything brighter than about -1.5 clamps to 1.
	assert.Equal(t, float32(1.0), magnitudeToBrightness(-3))
}

func TestMagnitudeToBrightnessMonotonic(t *testing.T) {
	previous := float32(2.0)
	for mag := float32(-1.0); mag < 7.0; mag += 0.5 {
		b := magnitudeToBrightness(mag)
		assert.Less(t, b, previous, "mag %.1f", mag)
		previous = b
	}
}

func TestTransformStarsProjectsVisibleStar(t *testing.T) {
	observer := astro.ObserverLocation{LatitudeRad: math.DegToRad(45)}
	lst := math.DegToRad(120)
	stars := []catalog.StarEntry{zenithStar(observer, lst, -1.46, 0.0)}

	out := make([]StarVertex, 8)
	n := TransformStars(stars, observer, lst, zenithCamera(), out)

	require.Equal(t, 1, n)
	assert.InDelta(t, 0, float64(out[0].ScreenX), 1e-5)
	assert.InDelta(t, 0, float64(out[0].ScreenY), 1e-5)
	assert.InDelta(t, 0.9641, float64(out[0].Brightness), 1e-3)
}

func TestTransformStarsDropsFaintStars(t *testing.T) {
	observer := astro.ObserverLocation{LatitudeRad: math.DegToRad(45)}
	lst := 1.0
	stars := []catalog.StarEntry{
		zenithStar(observer, lst, 3.0, 0.0),
		// Fainter than the 6.5 naked-eye limit at 60° FOV.
		zenithStar(observer, lst, 9.0, 0.0),
	}

	out := make([]StarVertex, 8)
	n := TransformStars(stars, observer, lst, zenithCamera(), out)
	assert.Equal(t, 1, n)
}

func TestTransformStarsDropsBelowHorizon(t *testing.T) {
	observer := astro.ObserverLocation{LatitudeRad: math.DegToRad(45)}
	lst := 0.0
	// Dec -80° never rises at latitude +45°.
	stars := []catalog.StarEntry{
		{RA: 0, Dec: math.DegToRad(-80), MagV: 0},
	}

	out := make([]StarVertex, 8)
	n := TransformStars(stars, observer, lst, zenithCamera(), out)
	assert.Zero(t, n)
}

func TestTransformStarsRespectsCapacity(t *testing.T) {
	observer := astro.ObserverLocation{LatitudeRad: math.DegToRad(45)}
	lst := 2.5
	stars := make([]catalog.StarEntry, 10)
	for i := range stars {
		stars[i] = zenithStar(observer, lst, 1.0, 0.5)
	}

	out := make([]StarVertex, 4)
	n := TransformStars(stars, observer, lst, zenithCamera(), out)
	assert.Equal(t, 4, n)
}

func TestTransformStarsEmptyOutput(t *testing.T) {
	observer := astro.ObserverLocation{LatitudeRad: math.DegToRad(45)}
	stars := []catalog.StarEntry{zenithStar(observer, 0, 1.0, 0.5)}
	assert.Zero(t, TransformStars(stars, observer, 0, zenithCamera(), nil))
}

func TestTransformStarsZoomRevealsFainterStars(t *testing.T) {
	observer := astro.ObserverLocation{LatitudeRad: math.DegToRad(45)}
	lst := 1.0
	stars := []catalog.StarEntry{zenithStar(observer, lst, 9.0, 0.0)}

	out := make([]StarVertex, 8)

	wide := zenithCamera()
	assert.Zero(t, TransformStars(stars, observer, lst, wide, out))

	// At 6° the limit rises to 11.5, admitting the magnitude 9 star.
	narrow := zenithCamera()
	narrow.SetFOV(6)
	assert.Equal(t, 1, TransformStars(stars, observer, lst, narrow, out))
}

func TestTransformStarsSiriusEndToEnd(t *testing.T) {
	// Point the camera at Sirius's actual horizontal position for an
	// observer in the southern hemisphere and check the full chain.
	observer := astro.ObserverLocation{LatitudeRad: math.DegToRad(-33.8688)}
	lst := math.DegToRad(101.287) // Sirius on the meridian

	sirius := catalog.StarEntry{
		RA:        math.DegToRad(101.287),
		Dec:       math.DegToRad(-16.716),
		MagV:      -1.46,
		ColorBV:   0.0,
		CatalogID: 1,
	}

	pointing := astro.EquatorialToHorizontal(
		astro.EquatorialCoord{RA: sirius.RA, Dec: sirius.Dec}, observer, lst)
	require.Greater(t, pointing.Alt, 0.0)

	c := NewCamera()
	c.SetPointing(pointing.Alt, pointing.Az)

	out := make([]StarVertex, 4)
	n := TransformStars([]catalog.StarEntry{sirius}, observer, lst, c, out)

	require.Equal(t, 1, n)
	assert.InDelta(t, 0, float64(out[0].ScreenX), 1e-5)
	assert.InDelta(t, 0, float64(out[0].ScreenY), 1e-5)
	assert.InDelta(t, 0.9641, float64(out[0].Brightness), 1e-3)
}

func TestTransformStarsCarriesColorIndex(t *testing.T) {
	observer := astro.ObserverLocation{LatitudeRad: math.DegToRad(45)}
	lst := 3.0
	stars := []catalog.StarEntry{zenithStar(observer, lst, 0.5, 1.85)}

	out := make([]StarVertex, 1)
	n := TransformStars(stars, observer, lst, zenithCamera(), out)
	require.Equal(t, 1, n)
	assert.InDelta(t, 1.85, float64(out[0].ColorBV), 1e-6)
}
