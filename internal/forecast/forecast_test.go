package forecast_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/bite-forecast/internal/bite"
	"github.com/neexbeast/bite-forecast/internal/forecast"
	"github.com/neexbeast/bite-forecast/internal/weather"
)

var (
	now  = time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	here = weather.Coordinates{Lat: 55.75, Lon: 37.61}
)

// steps returns n entries 3 hours apart from start, with pressure changing
// by dp per entry.
func steps(start time.Time, n int, p0, dp float64) []weather.Snapshot {
	out := make([]weather.Snapshot, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, weather.Snapshot{
			Timestamp:      start.Add(time.Duration(i) * 3 * time.Hour),
			AirTemperature: 14,
			Pressure:       p0 + dp*float64(i),
			WindSpeed:      3,
			Sky:            weather.FewCloudsDay,
		})
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ---- Closest / Days ----

func TestClosest_NearestNeighbor(t *testing.T) {
	snaps := steps(now, 8, 1010, 0)

	got, gap, ok := forecast.Closest(snaps, now.Add(4*time.Hour))
	require.True(t, ok)
	assert.Equal(t, now.Add(3*time.Hour), got.Timestamp)
	assert.Equal(t, time.Hour, gap)

	_, _, ok = forecast.Closest(nil, now)
	assert.False(t, ok)
}

func TestClosest_TieGoesToFirst(t *testing.T) {
	snaps := steps(now, 2, 1010, 0)
	got, _, ok := forecast.Closest(snaps, now.Add(90*time.Minute))
	require.True(t, ok)
	assert.Equal(t, now, got.Timestamp)
}

func TestBuildDays_AtMostHorizonIncreasingDates(t *testing.T) {
	snaps := steps(now, 40, 1010, 0)

	days := forecast.BuildDays(snaps, now, 3, "pike", 0)
	require.Len(t, days, 3)
	for i := 1; i < len(days); i++ {
		assert.True(t, days[i].Date.After(days[i-1].Date))
	}
	assert.Equal(t, now.AddDate(0, 0, 2), days[2].Date)
	assert.Equal(t, now.AddDate(0, 0, 2), days[2].Weather.Timestamp)
}

func TestBuildDays_ShorterProviderHorizon(t *testing.T) {
	// Provider covers just over one day.
	snaps := steps(now, 10, 1010, 0)

	days := forecast.BuildDays(snaps, now, 5, "pike", 12*time.Hour)
	assert.Len(t, days, 2)
}

func TestBuildDays_SkipsUnscorableEntries(t *testing.T) {
	snaps := steps(now, 16, 1010, 0)
	snaps[8].Sky = "" // exactly one day ahead

	days := forecast.BuildDays(snaps, now, 2, "pike", time.Hour)
	require.Len(t, days, 1)
	assert.Equal(t, now, days[0].Date)
}

func TestBuildDays_SparseEntryUsedOnce(t *testing.T) {
	midway := steps(now.Add(12*time.Hour), 1, 1010, 0)

	days := forecast.BuildDays(midway, now, 3, "pike", 12*time.Hour)
	require.Len(t, days, 1)
	assert.Equal(t, now, days[0].Date)

	sparse := append(midway, steps(now.Add(60*time.Hour), 1, 1020, 0)...)
	days = forecast.BuildDays(sparse, now, 3, "pike", 12*time.Hour)
	require.Len(t, days, 2)
	assert.Equal(t, now.Add(12*time.Hour), days[0].Weather.Timestamp)
	assert.Equal(t, now.AddDate(0, 0, 2), days[1].Date)
	assert.Equal(t, now.Add(60*time.Hour), days[1].Weather.Timestamp)
	assert.Equal(t, forecast.Rising, forecast.PressureTrend(days))
}

func TestDays_Restartable(t *testing.T) {
	seq := forecast.Days(steps(now, 40, 1010, 0), now, 4, "carp", 0)

	first, second := 0, 0
	for range seq {
		first++
	}
	for range seq {
		second++
	}
	assert.Equal(t, 4, first)
	assert.Equal(t, first, second)
}

func TestDays_StopsEarly(t *testing.T) {
	count := 0
	for range forecast.Days(steps(now, 40, 1010, 0), now, 5, "carp", 0) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

// ---- Best / Trend / Recommendations ----

func day(date time.Time, factor, pressure float64) forecast.Day {
	return forecast.Day{
		Date:     date,
		Weather:  weather.Snapshot{Timestamp: date, Pressure: pressure},
		Forecast: bite.Forecast{BiteFactor: factor},
	}
}

func TestBest_FirstWinsTies(t *testing.T) {
	days := []forecast.Day{
		day(now, 0.4, 1010),
		day(now.AddDate(0, 0, 1), 0.6, 1010),
		day(now.AddDate(0, 0, 2), 0.6, 1010),
	}
	best, ok := forecast.Best(days)
	require.True(t, ok)
	assert.Equal(t, now.AddDate(0, 0, 1), best.Date)

	_, ok = forecast.Best(nil)
	assert.False(t, ok)
}

func TestPressureTrend(t *testing.T) {
	assert.Equal(t, forecast.Rising, forecast.PressureTrend([]forecast.Day{day(now, 0.5, 1005), day(now, 0.5, 1008.5)}))
	assert.Equal(t, forecast.Falling, forecast.PressureTrend([]forecast.Day{day(now, 0.5, 1020), day(now, 0.5, 1010)}))
	assert.Equal(t, forecast.Stable, forecast.PressureTrend([]forecast.Day{day(now, 0.5, 1010), day(now, 0.5, 1013)}))
	assert.Equal(t, forecast.Stable, forecast.PressureTrend([]forecast.Day{day(now, 0.5, 900)}))
	assert.Equal(t, forecast.Stable, forecast.PressureTrend(nil))
}

func TestRecommendations_GoodNowRisingPressure(t *testing.T) {
	current := &bite.Forecast{BiteFactor: 0.75}
	days := []forecast.Day{
		day(now, 0.5, 1005),
		day(now.AddDate(0, 0, 1), 0.7, 1007),
		day(now.AddDate(0, 0, 2), 0.6, 1012),
	}

	rec := forecast.Recommendations(current, days)
	assert.Equal(t, []string{
		"Now is a great time to go fishing!",
		"Best day in the forecast: 2025-06-02",
		"Rising pressure improves the bite",
	}, rec)
}

func TestRecommendations_PoorNowSingleDay(t *testing.T) {
	rec := forecast.Recommendations(&bite.Forecast{BiteFactor: 0.3}, []forecast.Day{day(now, 0.2, 1030)})
	assert.Equal(t, []string{"Now is not the best time.", "Best day in the forecast: 2025-06-01"}, rec)
}

func TestRecommendations_NoData(t *testing.T) {
	rec := forecast.Recommendations(nil, nil)
	assert.Empty(t, rec)
	assert.NotNil(t, rec)

	rec = forecast.Recommendations(&bite.Forecast{BiteFactor: 0.5}, nil)
	assert.Empty(t, rec)
}

func TestRecommendations_FallingPressure(t *testing.T) {
	days := []forecast.Day{day(now, 0.5, 1020), day(now.AddDate(0, 0, 1), 0.5, 1012)}
	rec := forecast.Recommendations(nil, days)
	assert.Contains(t, rec, "Falling pressure may worsen the bite")
}

// ---- Service ----

type fakeSource struct {
	current     *weather.Snapshot
	list        []weather.Snapshot
	currentErr  error
	forecastErr error
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Current(context.Context, weather.Coordinates) (*weather.Snapshot, error) {
	return f.current, f.currentErr
}

func (f *fakeSource) Forecast(context.Context, weather.Coordinates) ([]weather.Snapshot, error) {
	return f.list, f.forecastErr
}

func newService(src weather.Source) *forecast.Service {
	return forecast.NewService(src, forecast.Config{}, discardLogger()).
		WithClock(func() time.Time { return now })
}

func TestService_DetailedConditions(t *testing.T) {
	cur := steps(now, 1, 1016, 0)[0]
	src := &fakeSource{current: &cur, list: steps(now, 40, 1005, 0.5)}

	got, err := newService(src).DetailedConditions(context.Background(), here, "bream")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "bream", got.Current.Fish)
	require.Len(t, got.Forecast, forecast.DefaultHorizon)
	assert.Equal(t, forecast.Rising, got.Trend)
	assert.Contains(t, got.Recommendations, "Rising pressure improves the bite")
}

func TestService_DetailedConditions_CurrentUnavailable(t *testing.T) {
	src := &fakeSource{currentErr: weather.ErrDataUnavailable, list: steps(now, 40, 1010, 0)}

	got, err := newService(src).DetailedConditions(context.Background(), here, "pike")
	require.ErrorIs(t, err, weather.ErrDataUnavailable)
	assert.Nil(t, got)
}

func TestService_DetailedConditions_ForecastUnavailable(t *testing.T) {
	cur := steps(now, 1, 1016, 0)[0]
	src := &fakeSource{current: &cur, forecastErr: errors.New("provider down")}

	got, err := newService(src).DetailedConditions(context.Background(), here, "pike")
	require.NoError(t, err)
	assert.Empty(t, got.Forecast)
	assert.NotNil(t, got.Forecast)
	assert.Equal(t, forecast.Stable, got.Trend)
}

func TestService_DetailedConditions_IncompleteCurrent(t *testing.T) {
	cur := weather.Snapshot{Timestamp: now}
	src := &fakeSource{current: &cur}

	_, err := newService(src).DetailedConditions(context.Background(), here, "pike")
	require.ErrorIs(t, err, bite.ErrIncompleteSnapshot)
}

func TestService_Forecast(t *testing.T) {
	src := &fakeSource{list: steps(now, 40, 1020, -0.5)}
	svc := newService(src)

	out, err := svc.Forecast(context.Background(), here, 4, "perch")
	require.NoError(t, err)
	assert.Len(t, out.Days, 4)
	assert.Equal(t, forecast.Falling, out.Trend)

	def, err := svc.Forecast(context.Background(), here, 0, "perch")
	require.NoError(t, err)
	assert.Len(t, def.Days, svc.Horizon())
}

func TestService_Forecast_Error(t *testing.T) {
	src := &fakeSource{forecastErr: weather.ErrDataUnavailable}
	_, err := newService(src).Forecast(context.Background(), here, 3, "perch")
	require.ErrorIs(t, err, weather.ErrDataUnavailable)
}
