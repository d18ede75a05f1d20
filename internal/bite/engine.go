// Package bite scores how likely fish are to bite under given conditions.
//
// The score is the product of a 0.5 base and six independent factors
// (water temperature, pressure, sky, wind, time of day, moon phase),
// clamped to [0.1, 1.0] and rounded to two decimals.
package bite

import (
	"errors"
	"fmt"
	"math"

	"github.com/neexbeast/bite-forecast/internal/fish"
	"github.com/neexbeast/bite-forecast/internal/lunar"
	"github.com/neexbeast/bite-forecast/internal/weather"
)

// ErrIncompleteSnapshot is returned when a snapshot lacks a field the
// score depends on. Scoring with a silently defaulted factor would be
// misleading.
var ErrIncompleteSnapshot = errors.New("snapshot is missing required fields")

const (
	baseFactor = 0.5
	minFactor  = 0.1
	maxFactor  = 1.0
)

// Forecast is the scored outcome for one snapshot and species.
type Forecast struct {
	BiteFactor       float64         `json:"bite_factor"`
	Level            Level           `json:"level"`
	WaterTemperature float64         `json:"water_temperature_c"`
	AirTemperature   float64         `json:"air_temperature_c"`
	Pressure         float64         `json:"pressure_hpa"`
	WindSpeed        float64         `json:"wind_speed_ms"`
	Sky              weather.SkyCode `json:"sky"`
	SkyCategory      string          `json:"sky_category"`
	Night            bool            `json:"night"`
	TimeOfDay        TimeOfDay       `json:"time_of_day"`
	MoonPhase        lunar.Phase     `json:"moon_phase"`
	Fish             string          `json:"fish"`
	Recommendations  []string        `json:"recommendations"`
	Factors          FactorBreakdown `json:"factors"`
}

// FactorBreakdown exposes each multiplier that went into the score.
type FactorBreakdown struct {
	Temperature float64 `json:"temperature"`
	Pressure    float64 `json:"pressure"`
	Sky         float64 `json:"sky"`
	Wind        float64 `json:"wind"`
	Time        float64 `json:"time"`
	Moon        float64 `json:"moon"`
}

// Score computes the bite forecast for s and the species fishKey. Unknown
// species are scored against the general profile.
func Score(s weather.Snapshot, fishKey string) (Forecast, error) {
	if !s.Complete() {
		return Forecast{}, fmt.Errorf("scoring snapshot at %s: %w", s.Timestamp, ErrIncompleteSnapshot)
	}

	profile := fish.Lookup(fishKey)
	local := s.Local()
	water := EstimateWaterTemperature(s.AirTemperature)
	moon := lunar.Compute(s.Timestamp)

	factors := FactorBreakdown{
		Temperature: TemperatureFactor(water, profile),
		Pressure:    PressureFactor(s.Pressure),
		Sky:         SkyFactor(s.Sky),
		Wind:        WindFactor(s.WindSpeed),
		Time:        TimeFactor(local.Hour()),
		Moon:        moon.BiteFactor,
	}

	raw := baseFactor * factors.Temperature * factors.Pressure * factors.Sky *
		factors.Wind * factors.Time * factors.Moon
	score := round2(clamp(raw))
	level := LevelFor(score)

	return Forecast{
		BiteFactor:       score,
		Level:            level,
		WaterTemperature: water,
		AirTemperature:   s.AirTemperature,
		Pressure:         s.Pressure,
		WindSpeed:        s.WindSpeed,
		Sky:              s.Sky,
		SkyCategory:      s.Sky.Category(),
		Night:            s.Sky.IsNight(),
		TimeOfDay:        TimeOfDayFor(local.Hour()),
		MoonPhase:        moon,
		Fish:             profile.Key,
		Recommendations:  RecommendationsFor(level.Key),
		Factors:          factors,
	}, nil
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return minFactor
	}
	return math.Max(minFactor, math.Min(maxFactor, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
