package catalog

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"

	"github.com/neexbeast/bite-forecast/internal/weather"
)

// SortKey orders a lake list.
type SortKey string

const (
	SortNone      SortKey = ""
	SortRating    SortKey = "rating"
	SortName      SortKey = "name"
	SortRegion    SortKey = "region"
	SortFishCount SortKey = "fish-count"
)

// ParseSort validates a sort key.
func ParseSort(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortNone, SortRating, SortName, SortRegion, SortFishCount:
		return k, nil
	default:
		return SortNone, fmt.Errorf("unknown sort key %q", s)
	}
}

// LakeFilter narrows a lake list. Zero fields are ignored.
type LakeFilter struct {
	Query          string
	Region         string
	Fish           string
	Season         string
	MinRating      float64
	Infrastructure string
}

// Popular returns the n most popular lakes. Ties are broken by name.
func (c *Catalog) Popular(n int) []Lake {
	lakes := c.Lakes()
	slices.SortStableFunc(lakes, func(a, b Lake) int {
		if a.Popularity != b.Popularity {
			return cmp.Compare(b.Popularity, a.Popularity)
		}
		return strings.Compare(a.Name, b.Name)
	})
	if n >= 0 && n < len(lakes) {
		lakes = lakes[:n]
	}
	return lakes
}

// FilterLakes returns the lakes matching every non-zero field of f, in
// catalog order.
func (c *Catalog) FilterLakes(f LakeFilter) []Lake {
	out := make([]Lake, 0, len(c.lakes))
	for _, l := range c.lakes {
		if f.match(l) {
			out = append(out, l.clone())
		}
	}
	return out
}

func (f LakeFilter) match(l Lake) bool {
	if q := strings.TrimSpace(f.Query); q != "" {
		haystack := append([]string{l.Name, l.Region}, l.Fish...)
		if !matchQuery(q, haystack) {
			return false
		}
	}
	if f.Region != "" && !containsFold(l.Region, f.Region) {
		return false
	}
	if f.Fish != "" && !slices.ContainsFunc(l.Fish, func(s string) bool { return containsFold(s, f.Fish) }) {
		return false
	}
	if f.Season != "" && !l.InSeason(f.Season) {
		return false
	}
	if f.MinRating > 0 && l.Rating < f.MinRating {
		return false
	}
	if f.Infrastructure != "" && !containsFold(l.Infrastructure, f.Infrastructure) {
		return false
	}
	return true
}

// SortLakes returns a sorted copy of lakes. SortNone keeps the input order.
func SortLakes(lakes []Lake, by SortKey) []Lake {
	out := slices.Clone(lakes)
	var fn func(a, b Lake) int
	switch by {
	case SortRating:
		fn = func(a, b Lake) int { return cmp.Compare(b.Rating, a.Rating) }
	case SortName:
		fn = func(a, b Lake) int { return strings.Compare(a.Name, b.Name) }
	case SortRegion:
		fn = func(a, b Lake) int { return strings.Compare(a.Region, b.Region) }
	case SortFishCount:
		fn = func(a, b Lake) int { return cmp.Compare(len(b.Fish), len(a.Fish)) }
	default:
		return out
	}
	slices.SortStableFunc(out, fn)
	return out
}

// FilterSpecies returns species whose name or description matches query and
// whose category equals category ("" or "all" for any), sorted by name.
func (c *Catalog) FilterSpecies(query, category string) []Species {
	category = strings.ToLower(strings.TrimSpace(category))
	query = strings.TrimSpace(query)

	out := make([]Species, 0, len(c.species))
	for _, s := range c.species {
		if category != "" && category != "all" && s.Category != category {
			continue
		}
		if query != "" && !matchQuery(query, []string{s.Name, s.Description}) {
			continue
		}
		out = append(out, s.clone())
	}
	slices.SortStableFunc(out, func(a, b Species) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Nearby is a lake with its distance from a point.
type Nearby struct {
	Lake       Lake    `json:"lake"`
	DistanceKM float64 `json:"distance_km"`
	Distance   string  `json:"distance"`
}

// Nearest returns up to n lakes ordered by distance from at.
func (c *Catalog) Nearest(at weather.Coordinates, n int) []Nearby {
	out := make([]Nearby, 0, len(c.lakes))
	for _, l := range c.lakes {
		d := Distance(at, l.Coordinates())
		out = append(out, Nearby{Lake: l.clone(), DistanceKM: d, Distance: FormatDistance(d)})
	}
	slices.SortStableFunc(out, func(a, b Nearby) int { return cmp.Compare(a.DistanceKM, b.DistanceKM) })
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

const earthRadiusKM = 6371.0

// Distance returns the great-circle distance between a and b in kilometres.
func Distance(a, b weather.Coordinates) float64 {
	rad := math.Pi / 180
	dLat := (b.Lat - a.Lat) * rad
	dLon := (b.Lon - a.Lon) * rad
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*rad)*math.Cos(b.Lat*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// FormatDistance renders km for display: metres below one kilometre,
// otherwise kilometres with one decimal.
func FormatDistance(km float64) string {
	switch {
	case math.IsNaN(km) || math.IsInf(km, 0) || km < 0:
		return "unknown"
	case km < 1:
		return fmt.Sprintf("%d m", int(math.Round(km*1000)))
	default:
		return fmt.Sprintf("%.1f km", km)
	}
}

// matchQuery reports whether q is a substring of any haystack entry, or
// every word of q is within one edit of some word in the haystack. Words
// shorter than four letters must match exactly.
func matchQuery(q string, haystack []string) bool {
	for _, h := range haystack {
		if containsFold(h, q) {
			return true
		}
	}

	var words []string
	for _, h := range haystack {
		words = append(words, tokenize(h)...)
	}
	tokens := tokenize(q)
	if len(tokens) == 0 {
		return false
	}
	for _, t := range tokens {
		if !slices.ContainsFunc(words, func(w string) bool { return fuzzyEqual(t, w) }) {
			return false
		}
	}
	return true
}

func fuzzyEqual(token, word string) bool {
	if token == word {
		return true
	}
	if len([]rune(token)) < 4 {
		return false
	}
	return levenshtein.ComputeDistance(token, word) <= 1
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(sub)))
}
