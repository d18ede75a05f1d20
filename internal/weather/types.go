package weather

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

// ErrDataUnavailable is returned when the provider call fails or its payload
// cannot be turned into a usable snapshot.
var ErrDataUnavailable = errors.New("weather data unavailable")

// Coordinates is a geographic point in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the coordinates are inside the WGS84 range.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Key renders the coordinates rounded to 3 decimals (~100 m), stable enough
// to share cache entries between nearby requests.
func (c Coordinates) Key() string {
	return strconv.FormatFloat(c.Lat, 'f', 3, 64) + ":" + strconv.FormatFloat(c.Lon, 'f', 3, 64)
}

func (c Coordinates) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", c.Lat, c.Lon)
}

// Snapshot is a point-in-time observation or forecast entry.
type Snapshot struct {
	Timestamp      time.Time `json:"timestamp"`
	AirTemperature float64   `json:"air_temperature_c"`
	Pressure       float64   `json:"pressure_hpa"`
	WindSpeed      float64   `json:"wind_speed_ms"`
	WindDirection  float64   `json:"wind_direction_deg"`
	Sky            SkyCode   `json:"sky"`
	Description    string    `json:"description,omitempty"`
	// UTCOffset is the location's offset from UTC in seconds.
	UTCOffset int `json:"utc_offset"`
}

// Local returns the snapshot timestamp in the location's own time zone.
func (s Snapshot) Local() time.Time {
	return s.Timestamp.In(time.FixedZone("", s.UTCOffset))
}

// Complete reports whether every field needed for scoring is present.
func (s Snapshot) Complete() bool {
	if s.Timestamp.IsZero() || s.Sky == "" {
		return false
	}
	for _, v := range []float64{s.AirTemperature, s.Pressure, s.WindSpeed} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
