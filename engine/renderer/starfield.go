package renderer

import (
	stdmath "math"

	"github.com/spaghettifunk/parallax/engine/astro"
	"github.com/spaghettifunk/parallax/engine/catalog"
)

// StarVertex is the GPU-facing layout of one visible star: normalized
// screen position in [-1, 1], linear brightness in [0, 1], and the B-V
// color index for on-GPU color mapping. 16 bytes, matching the storage
// buffer stride in the vertex shader.
type StarVertex struct {
	ScreenX    float32
	ScreenY    float32
	Brightness float32
	ColorBV    float32
}

const (
	// Pogson's ratio reference: a star of magnitude 0 maps to brightness
	// 1/3.98 before normalization, saturating around magnitude -1.5.
	brightnessZeroPointMag = 0.0
	brightnessDivisor      = 3.98
	maxBrightness          = 1.0
)

// TransformStars projects catalog stars into out for the current observer,
// sidereal time and camera, and returns the number of vertices written.
// Stars are dropped, in order, when they are fainter than the camera's
// magnitude limit, below the horizon, outside the projection margin, or
// once out is full.
func TransformStars(stars []catalog.StarEntry, observer astro.ObserverLocation, lstRad float64, camera *Camera, out []StarVertex) int {
	if len(out) == 0 {
		return 0
	}

	magLimit := camera.MagnitudeLimit()
	pointing := camera.Pointing()
	fov := camera.FOVRad()

	count := 0
	for i := range stars {
		star := &stars[i]
		if star.MagV > magLimit {
			continue
		}

		eq := astro.EquatorialCoord{RA: star.RA, Dec: star.Dec}
		hz := astro.EquatorialToHorizontal(eq, observer, lstRad)
		if hz.Alt < 0 {
			continue
		}

		pos, visible := astro.HorizontalToScreen(hz, pointing, fov)
		if !visible {
			continue
		}

		out[count] = StarVertex{
			ScreenX:    pos.X,
			ScreenY:    pos.Y,
			Brightness: magnitudeToBrightness(star.MagV),
			ColorBV:    star.ColorBV,
		}
		count++
		if count == len(out) {
			break
		}
	}
	return count
}

// magnitudeToBrightness converts visual magnitude to a linear [0, 1]
// brightness via the Pogson relation 10^(-0.4·m).
func magnitudeToBrightness(magV float32) float32 {
	linear := stdmath.Pow(10, -0.4*float64(magV-brightnessZeroPointMag)) / brightnessDivisor
	return float32(stdmath.Min(linear, maxBrightness))
}
