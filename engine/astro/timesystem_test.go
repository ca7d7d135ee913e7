package astro

import (
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/parallax/engine/math"
)

func TestToJulianDateJ2000(t *testing.T) {
	jd := ToJulianDate(DateTime{Year: 2000, Month: 1, Day: 1, Hour: 12})
	assert.InDelta(t, J2000, jd, 1e-9)
}

func TestToJulianDateKnownDates(t *testing.T) {
	// Meeus, Astronomical Algorithms, example 7.a: Sputnik launch.
	jd := ToJulianDate(DateTime{Year: 1957, Month: 10, Day: 4, Hour: 19, Minute: 26, Second: 24})
	assert.InDelta(t, 2436116.31, jd, 1e-2)

	// Unix epoch.
	jd = ToJulianDate(DateTime{Year: 1970, Month: 1, Day: 1})
	assert.InDelta(t, UnixEpochJD, jd, 1e-9)
}

func TestJulianDateRoundTrip(t *testing.T) {
	dates := []DateTime{
		{Year: 2000, Month: 1, Day: 1, Hour: 12},
		{Year: 2026, Month: 8, Day: 23, Hour: 3, Minute: 30, Second: 15},
		{Year: 1987, Month: 4, Day: 10, Hour: 19, Minute: 21},
		{Year: 2012, Month: 2, Day: 29, Hour: 23, Minute: 59, Second: 30},
	}
	for _, want := range dates {
		got := FromJulianDate(ToJulianDate(want))
		require.Equal(t, want.Year, got.Year)
		require.Equal(t, want.Month, got.Month)
		require.Equal(t, want.Day, got.Day)
		require.Equal(t, want.Hour, got.Hour)
		require.Equal(t, want.Minute, got.Minute)
		assert.InDelta(t, want.Second, got.Second, 1e-3)
	}
}

func TestJulianCenturies(t *testing.T) {
	assert.Zero(t, JulianCenturies(J2000))
	assert.InDelta(t, 1.0, JulianCenturies(J2000+36525.0), 1e-12)
}

func TestGMSTReference(t *testing.T) {
	// Meeus, example 12.b: 1987 April 10, 19:21:00 UT is
	// GMST 8h 34m 57.0896s.
	jd := ToJulianDate(DateTime{Year: 1987, Month: 4, Day: 10, Hour: 19, Minute: 21})
	gmstHours := math.RadToDeg(GMST(jd)) / 15.0
	want := 8.0 + 34.0/60.0 + 57.0896/3600.0
	assert.InDelta(t, want, gmstHours, 1e-4)
}

func TestGMSTRangeIsNormalized(t *testing.T) {
	for _, jd := range []float64{J2000 - 40000, J2000, J2000 + 12345.678} {
		gmst := GMST(jd)
		assert.GreaterOrEqual(t, gmst, 0.0)
		assert.Less(t, gmst, math.TwoPi)
	}
}

func TestLMSTAppliesEastLongitude(t *testing.T) {
	gmst := GMST(J2000)
	// 90° east advances sidereal time by 6 hours.
	lmst := LMST(J2000, math.DegToRad(90))
	diff := stdmath.Mod(lmst-gmst+math.TwoPi, math.TwoPi)
	assert.InDelta(t, math.DegToRad(90), diff, 1e-9)
}
