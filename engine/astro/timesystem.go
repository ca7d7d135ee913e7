package astro

import (
	stdmath "math"
	"time"

	"github.com/spaghettifunk/parallax/engine/math"
)

// J2000 is the Julian Date of the J2000.0 epoch (2000-01-01 12:00 TT).
const J2000 = 2451545.0

// UnixEpochJD is 1970-01-01 00:00 UTC as a Julian Date.
const UnixEpochJD = 2440587.5

// SecondsPerDay converts between wall-clock seconds and Julian days.
const SecondsPerDay = 86400.0

// DateTime is a civil UTC date and time.
type DateTime struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second float64
}

// ToJulianDate converts a civil date to a Julian Date using the Meeus
// algorithm (Astronomical Algorithms, ch. 7).
func ToJulianDate(dt DateTime) float64 {
	y := dt.Year
	m := dt.Month

	// Jan and Feb count as months 13 and 14 of the previous year.
	if m <= 2 {
		y--
		m += 12
	}

	// Gregorian calendar correction.
	a := y / 100
	b := 2 - a + a/4

	dayFraction := (float64(dt.Hour) + float64(dt.Minute)/60.0 + dt.Second/3600.0) / 24.0

	return stdmath.Floor(365.25*float64(y+4716)) +
		stdmath.Floor(30.6001*float64(m+1)) +
		float64(dt.Day) +
		dayFraction +
		float64(b) -
		1524.5
}

// FromJulianDate converts a Julian Date back to a civil date (Meeus, ch. 7).
func FromJulianDate(jd float64) DateTime {
	// Shift from noon-based to midnight-based.
	jdPlus := jd + 0.5
	z := int(stdmath.Floor(jdPlus))
	f := jdPlus - float64(z)

	a := z
	if z >= 2299161 {
		alpha := int(stdmath.Floor((float64(z) - 1867216.25) / 36524.25))
		a = z + 1 + alpha - alpha/4
	}

	b := a + 1524
	c := int(stdmath.Floor((float64(b) - 122.1) / 365.25))
	d := int(stdmath.Floor(365.25 * float64(c)))
	e := int(stdmath.Floor(float64(b-d) / 30.6001))

	dayWithFraction := float64(b-d) - stdmath.Floor(30.6001*float64(e)) + f
	day := int(stdmath.Floor(dayWithFraction))
	dayFrac := dayWithFraction - float64(day)

	month := e - 1
	if e >= 14 {
		month = e - 13
	}

	year := c - 4715
	if month > 2 {
		year = c - 4716
	}

	hoursTotal := dayFrac * 24.0
	hour := int(stdmath.Floor(hoursTotal))
	minutesTotal := (hoursTotal - float64(hour)) * 60.0
	minute := int(stdmath.Floor(minutesTotal))
	second := (minutesTotal - float64(minute)) * 60.0

	return DateTime{
		Year:   year,
		Month:  month,
		Day:    day,
		Hour:   hour,
		Minute: minute,
		Second: second,
	}
}

// JulianCenturies returns centuries elapsed since J2000.0.
func JulianCenturies(jd float64) float64 {
	return (jd - J2000) / 36525.0
}

// GMST returns Greenwich mean sidereal time in radians for the given Julian
// Date, using the IAU 1982 expression:
//
//	GMST° = 280.46061837 + 360.98564736629·(JD−J2000) + 0.000387933·T² − T³/38710000
func GMST(jd float64) float64 {
	t := JulianCenturies(jd)
	d := jd - J2000

	gmstDeg := 280.46061837 +
		360.98564736629*d +
		0.000387933*t*t -
		(t*t*t)/38710000.0

	gmstDeg = stdmath.Mod(gmstDeg, 360.0)
	if gmstDeg < 0 {
		gmstDeg += 360.0
	}

	return math.DegToRad(gmstDeg)
}

// LMST returns local mean sidereal time: GMST plus the observer's east
// longitude, normalized to [0, 2π).
func LMST(jd float64, longitudeRad float64) float64 {
	return math.NormalizeRadians(GMST(jd) + longitudeRad)
}

// NowAsJD returns the current system time as a Julian Date.
func NowAsJD() float64 {
	seconds := float64(time.Now().UnixNano()) / float64(time.Second)
	return UnixEpochJD + seconds/SecondsPerDay
}
