package bite

// LevelKey names one of the five bite bands.
type LevelKey string

const (
	Excellent LevelKey = "excellent"
	Good      LevelKey = "good"
	Average   LevelKey = "average"
	Poor      LevelKey = "poor"
	VeryPoor  LevelKey = "very-poor"
)

// Level is a qualitative band with its display text and color.
type Level struct {
	Key   LevelKey `json:"key"`
	Text  string   `json:"text"`
	Color string   `json:"color"`
}

// LevelFor classifies a bite factor. Boundary values belong to the higher band.
func LevelFor(factor float64) Level {
	switch {
	case factor >= 0.8:
		return Level{Excellent, "Excellent", "#22c55e"}
	case factor >= 0.6:
		return Level{Good, "Good", "#84cc16"}
	case factor >= 0.4:
		return Level{Average, "Average", "#f59e0b"}
	case factor >= 0.2:
		return Level{Poor, "Poor", "#ef4444"}
	default:
		return Level{VeryPoor, "Very poor", "#dc2626"}
	}
}

var recommendations = map[LevelKey][]string{
	Excellent: {"Ideal conditions!", "Fish are active", "Good chance of a trophy"},
	Good:      {"Good conditions", "Use an active retrieve", "Try different depths"},
	Average:   {"Moderate bite", "Stick to proven baits", "Fish deeper water"},
	Poor:      {"Difficult conditions", "Be patient", "Use natural baits"},
	VeryPoor:  {"Better to postpone the trip", "Fish pre-baited spots only", "Scale down to the finest tackle"},
}

// RecommendationsFor returns the tips for a level. The slice is a copy.
func RecommendationsFor(key LevelKey) []string {
	tips, ok := recommendations[key]
	if !ok {
		tips = recommendations[Average]
	}
	return append([]string(nil), tips...)
}

// TimeOfDay is a coarse part of the local day.
type TimeOfDay string

const (
	Morning TimeOfDay = "morning"
	Day     TimeOfDay = "day"
	Evening TimeOfDay = "evening"
	Night   TimeOfDay = "night"
)

// TimeOfDayFor maps a local hour to a part of the day.
func TimeOfDayFor(hour int) TimeOfDay {
	switch {
	case hour >= 5 && hour < 12:
		return Morning
	case hour >= 12 && hour < 18:
		return Day
	case hour >= 18 && hour < 22:
		return Evening
	default:
		return Night
	}
}
