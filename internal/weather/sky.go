package weather

import "strings"

// SkyCode is the provider's icon code for cloud and precipitation state,
// e.g. "01d" for a clear day or "11n" for a thunderstorm at night.
type SkyCode string

const (
	ClearDay          SkyCode = "01d"
	ClearNight        SkyCode = "01n"
	FewCloudsDay      SkyCode = "02d"
	FewCloudsNight    SkyCode = "02n"
	ScatteredDay      SkyCode = "03d"
	ScatteredNight    SkyCode = "03n"
	OvercastDay       SkyCode = "04d"
	OvercastNight     SkyCode = "04n"
	ShowerDay         SkyCode = "09d"
	ShowerNight       SkyCode = "09n"
	RainDay           SkyCode = "10d"
	RainNight         SkyCode = "10n"
	ThunderstormDay   SkyCode = "11d"
	ThunderstormNight SkyCode = "11n"
	SnowDay           SkyCode = "13d"
	SnowNight         SkyCode = "13n"
	MistDay           SkyCode = "50d"
	MistNight         SkyCode = "50n"
)

// IsNight reports whether the code is the night variant.
func (c SkyCode) IsNight() bool {
	return strings.HasSuffix(string(c), "n")
}

// Category groups the code into clear, clouds, rain, snow, storm or mist.
// Unknown codes map to "unknown".
func (c SkyCode) Category() string {
	if len(c) < 2 {
		return "unknown"
	}
	switch c[:2] {
	case "01":
		return "clear"
	case "02", "03", "04":
		return "clouds"
	case "09", "10":
		return "rain"
	case "11":
		return "storm"
	case "13":
		return "snow"
	case "50":
		return "mist"
	}
	return "unknown"
}
