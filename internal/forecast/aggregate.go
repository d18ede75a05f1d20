// Package forecast applies the bite engine across a multi-day horizon and
// turns the result into plain recommendations.
package forecast

import (
	"iter"
	"slices"
	"time"

	"github.com/neexbeast/bite-forecast/internal/bite"
	"github.com/neexbeast/bite-forecast/internal/weather"
)

// DefaultMaxGap is how far the nearest forecast entry may be from a day's
// target instant before the day is dropped.
const DefaultMaxGap = 12 * time.Hour

// Day pairs a calendar day with the nearest forecast entry and its score.
type Day struct {
	Date     time.Time        `json:"date"`
	Weather  weather.Snapshot `json:"weather"`
	Forecast bite.Forecast    `json:"bite_forecast"`
}

// Closest returns the entry whose timestamp is nearest to target. Ties go
// to the earlier entry in the list.
func Closest(snaps []weather.Snapshot, target time.Time) (weather.Snapshot, time.Duration, bool) {
	var (
		best    weather.Snapshot
		bestGap time.Duration
		found   bool
	)
	for _, s := range snaps {
		if s.Timestamp.IsZero() {
			continue
		}
		gap := s.Timestamp.Sub(target).Abs()
		if !found || gap < bestGap {
			best, bestGap, found = s, gap, true
		}
	}
	return best, bestGap, found
}

// Days yields one Day per calendar day starting at start, for horizon days.
// Days without an entry within maxGap, or whose entry cannot be scored, are
// skipped. An entry already used by the previous day is not reused, so each
// yielded day carries distinct weather. The sequence holds no state and can
// be ranged over repeatedly.
func Days(snaps []weather.Snapshot, start time.Time, horizon int, fishKey string, maxGap time.Duration) iter.Seq[Day] {
	if maxGap <= 0 {
		maxGap = DefaultMaxGap
	}
	return func(yield func(Day) bool) {
		var used time.Time
		for i := 0; i < horizon; i++ {
			target := start.AddDate(0, 0, i)
			snap, gap, ok := Closest(snaps, target)
			if !ok || gap > maxGap || snap.Timestamp.Equal(used) {
				continue
			}
			used = snap.Timestamp
			f, err := bite.Score(snap, fishKey)
			if err != nil {
				continue
			}
			if !yield(Day{Date: target, Weather: snap, Forecast: f}) {
				return
			}
		}
	}
}

// BuildDays collects Days into a slice.
func BuildDays(snaps []weather.Snapshot, start time.Time, horizon int, fishKey string, maxGap time.Duration) []Day {
	return slices.Collect(Days(snaps, start, horizon, fishKey, maxGap))
}

// Best returns the day with the highest bite factor; the first one wins ties.
func Best(days []Day) (Day, bool) {
	if len(days) == 0 {
		return Day{}, false
	}
	best := days[0]
	for _, d := range days[1:] {
		if d.Forecast.BiteFactor > best.Forecast.BiteFactor {
			best = d
		}
	}
	return best, true
}
