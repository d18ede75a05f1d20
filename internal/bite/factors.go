package bite

import (
	"math"

	"github.com/neexbeast/bite-forecast/internal/fish"
	"github.com/neexbeast/bite-forecast/internal/weather"
)

const (
	optimalPressure   = 1016.0
	outOfRangeFactor  = 0.3
	unknownSkyFactor  = 0.8
	maxWaterTemp      = 25.0
	edgeOfRangeFactor = 0.5
)

// EstimateWaterTemperature approximates water temperature from air
// temperature. Water lags the air, so it stays warmer in frost and cooler
// in heat.
func EstimateWaterTemperature(air float64) float64 {
	switch {
	case air < 0:
		return math.Max(0, air+2)
	case air < 10:
		return air + 1
	case air < 20:
		return air - 1
	default:
		return math.Min(maxWaterTemp, air-3)
	}
}

// TemperatureFactor falls linearly from 1.0 at the optimum to 0.5 at the
// edges of the species' band and is 0.3 outside it.
func TemperatureFactor(water float64, p fish.Profile) float64 {
	if water < p.Min || water > p.Max {
		return outOfRangeFactor
	}
	span := math.Max(p.Optimal-p.Min, p.Max-p.Optimal)
	if span == 0 {
		return 1
	}
	return 1 - edgeOfRangeFactor*(math.Abs(water-p.Optimal)/span)
}

// PressureFactor steps down with deviation from 1016 hPa.
func PressureFactor(hPa float64) float64 {
	dev := math.Abs(hPa - optimalPressure)
	switch {
	case dev > 20:
		return 0.5
	case dev > 10:
		return 0.8
	default:
		return 1.0
	}
}

var skyFactors = map[weather.SkyCode]float64{
	weather.ClearDay:          1.0,
	weather.ClearNight:        1.1,
	weather.FewCloudsDay:      0.9,
	weather.FewCloudsNight:    1.0,
	weather.ScatteredDay:      0.8,
	weather.ScatteredNight:    0.9,
	weather.OvercastDay:       0.7,
	weather.OvercastNight:     0.8,
	weather.ShowerDay:         0.6,
	weather.ShowerNight:       0.7,
	weather.RainDay:           0.5,
	weather.RainNight:         0.6,
	weather.ThunderstormDay:   0.3,
	weather.ThunderstormNight: 0.4,
	weather.SnowDay:           0.4,
	weather.SnowNight:         0.5,
	weather.MistDay:           0.6,
	weather.MistNight:         0.7,
}

// SkyFactor looks up the weight for a sky code; unknown codes get 0.8.
func SkyFactor(code weather.SkyCode) float64 {
	if f, ok := skyFactors[code]; ok {
		return f
	}
	return unknownSkyFactor
}

// WindFactor steps down as wind speed (m/s) rises.
func WindFactor(speed float64) float64 {
	switch {
	case speed < 2:
		return 1.0
	case speed < 5:
		return 0.9
	case speed < 10:
		return 0.7
	case speed < 15:
		return 0.5
	default:
		return 0.3
	}
}

// TimeFactor weights the local hour: dawn is best, midday worst.
func TimeFactor(hour int) float64 {
	switch {
	case hour >= 5 && hour <= 7:
		return 1.3
	case hour >= 17 && hour <= 19:
		return 1.2
	case hour >= 20 || hour <= 4:
		return 1.1
	case hour >= 10 && hour <= 16:
		return 0.7
	default:
		return 0.9
	}
}
