package catalog_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/bite-forecast/internal/catalog"
	"github.com/neexbeast/bite-forecast/internal/weather"
)

func embedded(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.EmbeddedSource{}.Load(context.Background())
	require.NoError(t, err)
	return c
}

func ids(lakes []catalog.Lake) []string {
	out := make([]string, len(lakes))
	for i, l := range lakes {
		out[i] = l.ID
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ---- dataset ----

func TestEmbedded_Loads(t *testing.T) {
	c := embedded(t)
	assert.Equal(t, 19, c.Len())
	assert.NotEmpty(t, c.Species())

	for _, l := range c.Lakes() {
		assert.True(t, l.Coordinates().Valid(), l.ID)
		assert.NotEmpty(t, l.Fish, l.ID)
		assert.NotEmpty(t, l.Seasons, l.ID)
	}
}

func TestParse_Errors(t *testing.T) {
	_, err := catalog.Parse([]byte("{"))
	require.Error(t, err)

	_, err = catalog.Parse([]byte(`{"lakes": []}`))
	require.ErrorIs(t, err, catalog.ErrEmptyCatalog)
}

func TestNew_DuplicateIDsKeepFirst(t *testing.T) {
	c := catalog.New([]catalog.Lake{{ID: "a", Name: "First"}, {ID: "a", Name: "Second"}}, nil)
	assert.Equal(t, 1, c.Len())
	l, ok := c.Lake("a")
	require.True(t, ok)
	assert.Equal(t, "First", l.Name)
}

func TestCatalog_ReturnsCopies(t *testing.T) {
	c := embedded(t)

	l, ok := c.Lake("seliger")
	require.True(t, ok)
	l.Fish[0] = "Shark"

	again, _ := c.Lake("seliger")
	assert.Equal(t, "Pike", again.Fish[0])

	_, ok = c.Lake("atlantis")
	assert.False(t, ok)
}

// ---- Popular ----

func TestPopular(t *testing.T) {
	c := embedded(t)
	assert.Equal(t, []string{"volga-delta", "baikal", "ladoga"}, ids(c.Popular(3)))
	assert.Len(t, c.Popular(100), c.Len())
	assert.Empty(t, c.Popular(0))
}

func TestPopular_TiesByName(t *testing.T) {
	c := catalog.New([]catalog.Lake{
		{ID: "b", Name: "Bravo", Popularity: 5},
		{ID: "a", Name: "Alpha", Popularity: 5},
		{ID: "c", Name: "Charlie", Popularity: 7},
	}, nil)
	assert.Equal(t, []string{"c", "a", "b"}, ids(c.Popular(3)))
}

// ---- FilterLakes ----

func TestFilterLakes_Region(t *testing.T) {
	got := embedded(t).FilterLakes(catalog.LakeFilter{Region: "karelia"})
	assert.ElementsMatch(t, []string{"onega", "syamozero"}, ids(got))
}

func TestFilterLakes_Season(t *testing.T) {
	got := embedded(t).FilterLakes(catalog.LakeFilter{Season: "Winter"})
	assert.ElementsMatch(t, []string{"ladoga", "onega", "kuybyshev-reservoir", "turgoyak", "baikal"}, ids(got))
}

func TestFilterLakes_MinRating(t *testing.T) {
	got := embedded(t).FilterLakes(catalog.LakeFilter{MinRating: 5})
	assert.ElementsMatch(t, []string{"volga-delta", "turgoyak", "baikal", "kezenoyam"}, ids(got))
}

func TestFilterLakes_Combined(t *testing.T) {
	f := catalog.LakeFilter{Fish: "carp", Season: "summer", Infrastructure: "paid"}
	got := embedded(t).FilterLakes(f)
	assert.ElementsMatch(t, []string{"lotos-lipetsk", "chulpan-pond"}, ids(got))
}

func TestFilterLakes_QuerySubstring(t *testing.T) {
	got := embedded(t).FilterLakes(catalog.LakeFilter{Query: "baik"})
	assert.Equal(t, []string{"baikal"}, ids(got))
}

func TestFilterLakes_QueryTolerance(t *testing.T) {
	got := ids(embedded(t).FilterLakes(catalog.LakeFilter{Query: "zandr"}))
	assert.Contains(t, got, "seliger")
	assert.Contains(t, got, "kuybyshev-reservoir")
	assert.NotContains(t, got, "baikal")
}

func TestFilterLakes_ShortWordsExact(t *testing.T) {
	got := embedded(t).FilterLakes(catalog.LakeFilter{Query: "pke"})
	assert.Empty(t, got)
}

func TestFilterLakes_NoFilter(t *testing.T) {
	c := embedded(t)
	assert.Equal(t, ids(c.Lakes()), ids(c.FilterLakes(catalog.LakeFilter{})))
}

// ---- SortLakes ----

func TestSortLakes(t *testing.T) {
	lakes := []catalog.Lake{
		{ID: "x", Name: "Xeno", Region: "B", Rating: 4.1, Fish: []string{"a"}},
		{ID: "y", Name: "Alpha", Region: "C", Rating: 4.9, Fish: []string{"a", "b", "c"}},
		{ID: "z", Name: "Mid", Region: "A", Rating: 4.5, Fish: []string{"a", "b"}},
	}

	assert.Equal(t, []string{"y", "z", "x"}, ids(catalog.SortLakes(lakes, catalog.SortRating)))
	assert.Equal(t, []string{"y", "z", "x"}, ids(catalog.SortLakes(lakes, catalog.SortName)))
	assert.Equal(t, []string{"z", "x", "y"}, ids(catalog.SortLakes(lakes, catalog.SortRegion)))
	assert.Equal(t, []string{"y", "z", "x"}, ids(catalog.SortLakes(lakes, catalog.SortFishCount)))
	assert.Equal(t, []string{"x", "y", "z"}, ids(catalog.SortLakes(lakes, catalog.SortNone)))
	assert.Equal(t, "x", lakes[0].ID, "input is not reordered")
}

func TestParseSort(t *testing.T) {
	k, err := catalog.ParseSort(" Rating ")
	require.NoError(t, err)
	assert.Equal(t, catalog.SortRating, k)

	k, err = catalog.ParseSort("")
	require.NoError(t, err)
	assert.Equal(t, catalog.SortNone, k)

	_, err = catalog.ParseSort("depth")
	require.Error(t, err)
}

// ---- species ----

func TestFilterSpecies_Category(t *testing.T) {
	got := embedded(t).FilterSpecies("", "predator")
	names := make([]string, len(got))
	for i, s := range got {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"Atlantic salmon", "Catfish", "Grayling", "Perch", "Pike", "Taimen", "Zander"}, names)
}

func TestFilterSpecies_Query(t *testing.T) {
	c := embedded(t)

	got := c.FilterSpecies("graylng", "all")
	require.Len(t, got, 1)
	assert.Equal(t, "grayling", got[0].ID)

	assert.Empty(t, c.FilterSpecies("pike", "peaceful"))
	assert.Len(t, c.FilterSpecies("", ""), len(c.Species()))
}

// ---- distance ----

func TestSpeciesByID(t *testing.T) {
	c := embedded(t)

	s, ok := c.SpeciesByID("crucian-carp")
	require.True(t, ok)
	assert.Equal(t, "Crucian carp", s.Name)

	_, ok = c.SpeciesByID("marlin")
	assert.False(t, ok)
}

func TestProfileKey(t *testing.T) {
	c := embedded(t)

	assert.Equal(t, "carp", c.ProfileKey("crucian-carp"))
	assert.Equal(t, "salmon", c.ProfileKey("taimen"))
	assert.Equal(t, "pike", c.ProfileKey("pike"))
	assert.Equal(t, "marlin", c.ProfileKey("marlin"), "unknown keys pass through")

	bare := catalog.New(nil, []catalog.Species{{ID: "ide"}})
	assert.Equal(t, "ide", bare.ProfileKey("ide"), "species without a profile keeps its key")
}

func TestDistance(t *testing.T) {
	moscow := weather.Coordinates{Lat: 55.7558, Lon: 37.6173}
	spb := weather.Coordinates{Lat: 59.9343, Lon: 30.3351}

	assert.InDelta(t, 634, catalog.Distance(moscow, spb), 5)
	assert.InDelta(t, catalog.Distance(moscow, spb), catalog.Distance(spb, moscow), 1e-9)
	assert.Zero(t, catalog.Distance(moscow, moscow))
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "850 m", catalog.FormatDistance(0.85))
	assert.Equal(t, "0 m", catalog.FormatDistance(0))
	assert.Equal(t, "12.3 km", catalog.FormatDistance(12.34))
	assert.Equal(t, "1.0 km", catalog.FormatDistance(1))
	assert.Equal(t, "unknown", catalog.FormatDistance(-1))
	assert.Equal(t, "unknown", catalog.FormatDistance(math.NaN()))
}

func TestNearest(t *testing.T) {
	c := embedded(t)
	seliger, _ := c.Lake("seliger")

	got := c.Nearest(seliger.Coordinates(), 3)
	require.Len(t, got, 3)
	assert.Equal(t, "seliger", got[0].Lake.ID)
	assert.Equal(t, "0 m", got[0].Distance)
	assert.LessOrEqual(t, got[1].DistanceKM, got[2].DistanceKM)
}

// ---- FallbackSource ----

type stubSource struct {
	c     *catalog.Catalog
	err   error
	calls int
}

func (s *stubSource) Load(context.Context) (*catalog.Catalog, error) {
	s.calls++
	return s.c, s.err
}

func TestFallbackSource_PrimaryWins(t *testing.T) {
	primary := &stubSource{c: catalog.New([]catalog.Lake{{ID: "db"}}, nil)}
	secondary := &stubSource{}

	c, err := catalog.NewFallbackSource(primary, secondary, discardLogger()).Load(context.Background())
	require.NoError(t, err)
	_, ok := c.Lake("db")
	assert.True(t, ok)
	assert.Zero(t, secondary.calls)
}

func TestFallbackSource_PrimaryFails(t *testing.T) {
	primary := &stubSource{err: errors.New("db down")}

	c, err := catalog.NewFallbackSource(primary, catalog.EmbeddedSource{}, discardLogger()).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 19, c.Len())
}

func TestFallbackSource_PrimaryEmpty(t *testing.T) {
	primary := &stubSource{c: catalog.New(nil, nil)}

	c, err := catalog.NewFallbackSource(primary, catalog.EmbeddedSource{}, discardLogger()).Load(context.Background())
	require.NoError(t, err)
	assert.Positive(t, c.Len())
}

func TestFallbackSource_BothFail(t *testing.T) {
	primary := &stubSource{err: errors.New("db down")}
	secondary := &stubSource{err: errors.New("disk gone")}

	_, err := catalog.NewFallbackSource(primary, secondary, discardLogger()).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fallback")
}
