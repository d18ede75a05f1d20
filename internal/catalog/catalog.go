// Package catalog holds the reference data about fishing spots and species
// and the read-only queries over it.
package catalog

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/neexbeast/bite-forecast/internal/weather"
)

// ErrEmptyCatalog is returned by sources that found no lakes.
var ErrEmptyCatalog = errors.New("catalog has no lakes")

// Lake is a fishing spot.
type Lake struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Region         string   `json:"region"`
	District       string   `json:"district"`
	Lat            float64  `json:"lat"`
	Lon            float64  `json:"lon"`
	Fish           []string `json:"fish"`
	FishType       string   `json:"fish_type"`
	Rating         float64  `json:"rating"`
	Reviews        int      `json:"reviews"`
	Popularity     int      `json:"popularity"`
	BestTime       string   `json:"best_time"`
	Seasons        []string `json:"seasons"`
	Infrastructure string   `json:"infrastructure"`
	Description    string   `json:"description"`
	Depth          string   `json:"depth"`
	Area           string   `json:"area"`
	Facilities     []string `json:"facilities"`
	Restrictions   string   `json:"restrictions"`
}

// Coordinates returns the lake's position.
func (l Lake) Coordinates() weather.Coordinates {
	return weather.Coordinates{Lat: l.Lat, Lon: l.Lon}
}

// InSeason reports whether the lake is fished in season. "all" matches any
// season.
func (l Lake) InSeason(season string) bool {
	season = strings.ToLower(strings.TrimSpace(season))
	for _, s := range l.Seasons {
		if s == "all" || s == season {
			return true
		}
	}
	return false
}

func (l Lake) clone() Lake {
	l.Fish = slices.Clone(l.Fish)
	l.Seasons = slices.Clone(l.Seasons)
	l.Facilities = slices.Clone(l.Facilities)
	return l
}

// Species is a fish species entry of the guide. Profile is the key of the
// bite profile used to score it.
type Species struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Profile     string   `json:"profile"`
	Description string   `json:"description"`
	Habitat     string   `json:"habitat"`
	Baits       []string `json:"baits"`
}

func (s Species) clone() Species {
	s.Baits = slices.Clone(s.Baits)
	return s
}

// Source loads a catalog.
type Source interface {
	Load(ctx context.Context) (*Catalog, error)
}

// Catalog is an immutable snapshot of lakes and species. All accessors
// return copies.
type Catalog struct {
	lakes   []Lake
	species []Species
	byID    map[string]int
}

// New builds a catalog from the given records. Lakes with a duplicate ID
// keep the first occurrence.
func New(lakes []Lake, species []Species) *Catalog {
	c := &Catalog{
		lakes:   make([]Lake, 0, len(lakes)),
		species: make([]Species, 0, len(species)),
		byID:    make(map[string]int, len(lakes)),
	}
	for _, l := range lakes {
		if _, dup := c.byID[l.ID]; dup {
			continue
		}
		c.byID[l.ID] = len(c.lakes)
		c.lakes = append(c.lakes, l.clone())
	}
	for _, s := range species {
		c.species = append(c.species, s.clone())
	}
	return c
}

// Lakes returns every lake in catalog order.
func (c *Catalog) Lakes() []Lake {
	out := make([]Lake, len(c.lakes))
	for i, l := range c.lakes {
		out[i] = l.clone()
	}
	return out
}

// Species returns every species in catalog order.
func (c *Catalog) Species() []Species {
	out := make([]Species, len(c.species))
	for i, s := range c.species {
		out[i] = s.clone()
	}
	return out
}

// SpeciesByID looks a species up by ID.
func (c *Catalog) SpeciesByID(id string) (Species, bool) {
	for _, s := range c.species {
		if s.ID == id {
			return s.clone(), true
		}
	}
	return Species{}, false
}

// ProfileKey maps a requested fish key to the bite profile that scores it.
// Species IDs resolve to their profile; anything else is returned as is.
func (c *Catalog) ProfileKey(key string) string {
	if s, ok := c.SpeciesByID(key); ok && s.Profile != "" {
		return s.Profile
	}
	return key
}

// Len returns the number of lakes.
func (c *Catalog) Len() int { return len(c.lakes) }

// Lake looks a lake up by ID.
func (c *Catalog) Lake(id string) (Lake, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Lake{}, false
	}
	return c.lakes[i].clone(), true
}
