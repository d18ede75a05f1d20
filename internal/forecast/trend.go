package forecast

import (
	"time"

	"github.com/neexbeast/bite-forecast/internal/bite"
)

// Trend is the coarse direction of barometric pressure over the horizon.
type Trend string

const (
	Rising  Trend = "rising"
	Falling Trend = "falling"
	Stable  Trend = "stable"
)

const trendThreshold = 3.0 // hPa

const (
	goodNowNote   = "Now is a great time to go fishing!"
	poorNowNote   = "Now is not the best time."
	bestDayNote   = "Best day in the forecast: "
	risingNote    = "Rising pressure improves the bite"
	fallingNote   = "Falling pressure may worsen the bite"
	goodThreshold = 0.7
	poorThreshold = 0.3
)

// PressureTrend compares the last day's pressure to the first.
func PressureTrend(days []Day) Trend {
	if len(days) < 2 {
		return Stable
	}
	diff := days[len(days)-1].Weather.Pressure - days[0].Weather.Pressure
	switch {
	case diff > trendThreshold:
		return Rising
	case diff < -trendThreshold:
		return Falling
	default:
		return Stable
	}
}

// Recommendations assembles the overall advice for the current score and
// the forecast days. current may be nil when conditions are unknown.
func Recommendations(current *bite.Forecast, days []Day) []string {
	rec := make([]string, 0, 3)

	if current != nil {
		switch {
		case current.BiteFactor >= goodThreshold:
			rec = append(rec, goodNowNote)
		case current.BiteFactor <= poorThreshold:
			rec = append(rec, poorNowNote)
		}
	}

	if best, ok := Best(days); ok {
		local := best.Date.In(time.FixedZone("", best.Weather.UTCOffset))
		rec = append(rec, bestDayNote+local.Format(time.DateOnly))
	}

	if len(days) >= 2 {
		switch PressureTrend(days) {
		case Rising:
			rec = append(rec, risingNote)
		case Falling:
			rec = append(rec, fallingNote)
		}
	}

	return rec
}
