package astro

import (
	stdmath "math"

	"github.com/spaghettifunk/parallax/engine/math"
)

// EquatorialCoord is a right ascension / declination pair, both in radians.
type EquatorialCoord struct {
	RA  float64
	Dec float64
}

// HorizontalCoord is an altitude / azimuth pair, both in radians.
// Azimuth is north-based with east at +π/2.
type HorizontalCoord struct {
	Alt float64
	Az  float64
}

// ObserverLocation is a geographic position in radians.
// East longitudes are positive.
type ObserverLocation struct {
	LatitudeRad  float64
	LongitudeRad float64
}

// ScreenPos is a normalized device coordinate pair, each in [-1, 1].
type ScreenPos struct {
	X float32
	Y float32
}

// EquatorialToHorizontal converts RA/Dec to Alt/Az for the given observer
// and local sidereal time.
//
// Hour angle H = LST - RA, then
//
//	sin(alt) = sin(dec)sin(lat) + cos(dec)cos(lat)cos(H)
//	az = atan2(-cos(dec)sin(H), sin(dec)cos(lat) - cos(dec)sin(lat)cos(H))
//
// with azimuth normalized to [0, 2π).
func EquatorialToHorizontal(eq EquatorialCoord, observer ObserverLocation, lstRad float64) HorizontalCoord {
	hourAngle := lstRad - eq.RA

	sinDec := stdmath.Sin(eq.Dec)
	cosDec := stdmath.Cos(eq.Dec)
	sinLat := stdmath.Sin(observer.LatitudeRad)
	cosLat := stdmath.Cos(observer.LatitudeRad)
	cosHA := stdmath.Cos(hourAngle)
	sinHA := stdmath.Sin(hourAngle)

	sinAlt := sinDec*sinLat + cosDec*cosLat*cosHA
	alt := stdmath.Asin(math.Clamp(sinAlt, -1.0, 1.0))

	azY := -cosDec * sinHA
	azX := sinDec*cosLat - cosDec*sinLat*cosHA
	az := math.NormalizeRadians(stdmath.Atan2(azY, azX))

	return HorizontalCoord{Alt: alt, Az: az}
}

// HorizontalToEquatorial is the inverse transform:
//
//	sin(dec) = sin(alt)sin(lat) + cos(alt)cos(lat)cos(az)
//	H = atan2(-cos(alt)sin(az), sin(alt)cos(lat) - cos(alt)sin(lat)cos(az))
//	RA = LST - H, normalized to [0, 2π).
func HorizontalToEquatorial(hz HorizontalCoord, observer ObserverLocation, lstRad float64) EquatorialCoord {
	sinAlt := stdmath.Sin(hz.Alt)
	cosAlt := stdmath.Cos(hz.Alt)
	sinAz := stdmath.Sin(hz.Az)
	cosAz := stdmath.Cos(hz.Az)
	sinLat := stdmath.Sin(observer.LatitudeRad)
	cosLat := stdmath.Cos(observer.LatitudeRad)

	sinDec := sinAlt*sinLat + cosAlt*cosLat*cosAz
	dec := stdmath.Asin(math.Clamp(sinDec, -1.0, 1.0))

	haY := -cosAlt * sinAz
	haX := sinAlt*cosLat - cosAlt*sinLat*cosAz
	hourAngle := stdmath.Atan2(haY, haX)

	ra := math.NormalizeRadians(lstRad - hourAngle)

	return EquatorialCoord{RA: ra, Dec: dec}
}

// HorizontalToScreen projects a star at `star` onto the tangent plane at
// `pointing` using a gnomonic projection, scaled so the FOV half-angle maps
// to the screen edge. Returns ok=false for stars outside the FOV margin,
// behind the observer, or off the ±1 screen bounds.
//
// The separation pre-check uses 0.75×FOV rather than FOV/2 so stars near the
// corners of the square viewport are not clipped early.
func HorizontalToScreen(star, pointing HorizontalCoord, fovRad float64) (ScreenPos, bool) {
	deltaAz := star.Az - pointing.Az

	sinAltS := stdmath.Sin(star.Alt)
	cosAltS := stdmath.Cos(star.Alt)
	sinAltP := stdmath.Sin(pointing.Alt)
	cosAltP := stdmath.Cos(pointing.Alt)
	cosDAz := stdmath.Cos(deltaAz)
	sinDAz := stdmath.Sin(deltaAz)

	// Angular separation via dot product of the two unit vectors.
	cosSep := sinAltS*sinAltP + cosAltS*cosAltP*cosDAz
	separation := stdmath.Acos(math.Clamp(cosSep, -1.0, 1.0))

	if separation > fovRad*0.75 {
		return ScreenPos{}, false
	}

	// Gnomonic projection divides by cos(separation); reject the far
	// hemisphere before it blows up.
	if cosSep <= 0.0 {
		return ScreenPos{}, false
	}

	dx := cosAltS * sinDAz
	dy := sinAltS*cosAltP - cosAltS*sinAltP*cosDAz

	projX := dx / cosSep
	projY := dy / cosSep

	// tan(FOV/2) on the tangent plane maps to the screen edge.
	scale := 1.0 / stdmath.Tan(fovRad*0.5)

	screenX := float32(projX * scale)
	screenY := float32(projY * scale)

	if screenX > 1.0 || screenX < -1.0 || screenY > 1.0 || screenY < -1.0 {
		return ScreenPos{}, false
	}

	return ScreenPos{X: screenX, Y: screenY}, true
}
