// Package lunar estimates the moon phase for a calendar date.
package lunar

import (
	"math"
	"time"
)

const (
	synodicMonth = 29.530588853
	// referenceNewMoon is the Julian day of the 2000-01-06 new moon.
	referenceNewMoon = 2451550.1
)

// Phase is one of the eight named moon phases.
type Phase struct {
	Index      int     `json:"index"`
	Name       string  `json:"name"`
	Glyph      string  `json:"glyph"`
	BiteFactor float64 `json:"bite_factor"`
}

var phases = [8]Phase{
	{0, "New Moon", "🌑", 0.7},
	{1, "Waxing Crescent", "🌒", 0.8},
	{2, "First Quarter", "🌓", 0.9},
	{3, "Waxing Gibbous", "🌔", 1.0},
	{4, "Full Moon", "🌕", 0.6},
	{5, "Waning Gibbous", "🌖", 1.1},
	{6, "Last Quarter", "🌗", 1.0},
	{7, "Waning Crescent", "🌘", 0.9},
}

// Phases returns the ordered phase table starting at New Moon.
func Phases() []Phase {
	out := make([]Phase, len(phases))
	copy(out, phases[:])
	return out
}

// Compute returns the phase for the UTC calendar date of t.
func Compute(t time.Time) Phase {
	return phases[index(Fraction(t))]
}

// Fraction is the position within the synodic month, in [0, 1).
func Fraction(t time.Time) float64 {
	jdn := float64(JulianDayNumber(t))
	f := math.Mod((jdn-referenceNewMoon)/synodicMonth, 1)
	if f < 0 {
		f++
	}
	// -tiny + 1 rounds to exactly 1.
	if f >= 1 {
		f = 0
	}
	return f
}

func index(fraction float64) int {
	return int(math.Floor(fraction*8)) % 8
}

// JulianDayNumber converts the UTC calendar date of t to its integer
// Julian Day Number using the Gregorian calendar.
func JulianDayNumber(t time.Time) int {
	y, m, d := t.UTC().Date()
	a := (14 - int(m)) / 12
	yy := y + 4800 - a
	mm := int(m) + 12*a - 3
	return d + (153*mm+2)/5 + 365*yy + yy/4 - yy/100 + yy/400 - 32045
}
