// Package fish holds the per-species preference table shared by the bite
// engine and the gear recommender.
package fish

import (
	"sort"
	"strings"
)

// General is the fallback species key.
const General = "general"

// Profile is a species' preferred water temperature band, in °C.
// Min <= Optimal <= Max holds for every entry.
type Profile struct {
	Key     string  `json:"key"`
	Name    string  `json:"name"`
	Min     float64 `json:"min_water_temp_c"`
	Optimal float64 `json:"optimal_water_temp_c"`
	Max     float64 `json:"max_water_temp_c"`
}

var profiles = map[string]Profile{
	"pike":    {Key: "pike", Name: "Pike", Min: 8, Optimal: 12, Max: 18},
	"perch":   {Key: "perch", Name: "Perch", Min: 6, Optimal: 15, Max: 20},
	"carp":    {Key: "carp", Name: "Carp", Min: 15, Optimal: 20, Max: 25},
	"bream":   {Key: "bream", Name: "Bream", Min: 10, Optimal: 16, Max: 22},
	"salmon":  {Key: "salmon", Name: "Salmon", Min: 4, Optimal: 8, Max: 12},
	"catfish": {Key: "catfish", Name: "Catfish", Min: 12, Optimal: 22, Max: 28},
	General:   {Key: General, Name: "General", Min: 10, Optimal: 15, Max: 20},
}

// Normalize trims and lowercases a species key.
func Normalize(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Lookup returns the profile for key. Unknown keys get the general profile.
func Lookup(key string) Profile {
	if p, ok := profiles[Normalize(key)]; ok {
		return p
	}
	return profiles[General]
}

// Known reports whether key has a dedicated profile.
func Known(key string) bool {
	_, ok := profiles[Normalize(key)]
	return ok
}

// Keys lists every profile key in alphabetical order.
func Keys() []string {
	keys := make([]string, 0, len(profiles))
	for k := range profiles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
