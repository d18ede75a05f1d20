package weather_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/bite-forecast/internal/weather"
)

var moscow = weather.Coordinates{Lat: 55.7558, Lon: 37.6173}

func currentHandler(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		assert.Equal(t, "55.7558", r.URL.Query().Get("lat"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"dt":       1700000000,
			"timezone": 10800,
			"main":     map[string]any{"temp": 12.5, "pressure": 1016},
			"wind":     map[string]any{"speed": 1.5, "deg": 270},
			"weather":  []map[string]any{{"description": "clear sky", "icon": "01d"}},
		})
	}
}

func forecastHandler(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"city": map[string]any{"timezone": 10800},
			"list": []map[string]any{
				{
					"dt":      1700000000,
					"main":    map[string]any{"temp": 10.0, "pressure": 1010},
					"wind":    map[string]any{"speed": 3.0, "deg": 90},
					"weather": []map[string]any{{"description": "light rain", "icon": "10d"}},
				},
				{
					// no wind block: skipped
					"dt":      1700010800,
					"main":    map[string]any{"temp": 9.0, "pressure": 1011},
					"weather": []map[string]any{{"icon": "04n"}},
				},
				{
					"dt":      1700021600,
					"main":    map[string]any{"temp": 8.0, "pressure": 1012},
					"wind":    map[string]any{"speed": 4.0, "deg": 80},
					"weather": []map[string]any{{"description": "overcast", "icon": "04n"}},
				},
			},
		})
	}
}

func TestClient_Current(t *testing.T) {
	srv := httptest.NewServer(currentHandler(t))
	defer srv.Close()

	c := weather.NewClientWithURL(srv.URL, "key")
	snap, err := c.Current(context.Background(), moscow)
	require.NoError(t, err)
	require.NotNil(t, snap)

	assert.Equal(t, 12.5, snap.AirTemperature)
	assert.Equal(t, 1016.0, snap.Pressure)
	assert.Equal(t, 1.5, snap.WindSpeed)
	assert.Equal(t, 270.0, snap.WindDirection)
	assert.Equal(t, weather.ClearDay, snap.Sky)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), snap.Timestamp)
	assert.Equal(t, 10800, snap.UTCOffset)
	assert.True(t, snap.Complete())
}

func TestClient_Current_MissingMain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"dt":      1700000000,
			"wind":    map[string]any{"speed": 1.5},
			"weather": []map[string]any{{"icon": "01d"}},
		})
	}))
	defer srv.Close()

	c := weather.NewClientWithURL(srv.URL, "key")
	_, err := c.Current(context.Background(), moscow)
	require.ErrorIs(t, err, weather.ErrDataUnavailable)
}

func TestClient_Current_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "err", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := weather.NewClientWithURL(srv.URL, "key")
	_, err := c.Current(context.Background(), moscow)
	require.ErrorIs(t, err, weather.ErrDataUnavailable)
}

func TestClient_Forecast_SkipsMalformedEntries(t *testing.T) {
	srv := httptest.NewServer(forecastHandler(t))
	defer srv.Close()

	c := weather.NewClientWithURL(srv.URL, "key")
	snaps, err := c.Forecast(context.Background(), moscow)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, weather.RainDay, snaps[0].Sky)
	assert.Equal(t, 1012.0, snaps[1].Pressure)
	assert.Equal(t, 10800, snaps[1].UTCOffset)
}

func TestClient_Forecast_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"list": []any{}})
	}))
	defer srv.Close()

	c := weather.NewClientWithURL(srv.URL, "key")
	_, err := c.Forecast(context.Background(), moscow)
	require.ErrorIs(t, err, weather.ErrDataUnavailable)
}

func TestClient_Timeout(t *testing.T) {
	slowSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer slowSrv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	c := weather.NewClientWithURL(slowSrv.URL, "key")
	_, err := c.Current(ctx, moscow)
	require.ErrorIs(t, err, weather.ErrDataUnavailable)
}

func TestRateLimited_Forwards(t *testing.T) {
	srv := httptest.NewServer(currentHandler(t))
	defer srv.Close()

	rl := weather.NewRateLimited(weather.NewClientWithURL(srv.URL, "key"), 100, 1)
	assert.Equal(t, "openweathermap [rate limited]", rl.Name())

	snap, err := rl.Current(context.Background(), moscow)
	require.NoError(t, err)
	assert.Equal(t, 12.5, snap.AirTemperature)
}

func TestRateLimited_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(currentHandler(t))
	defer srv.Close()

	rl := weather.NewRateLimited(weather.NewClientWithURL(srv.URL, "key"), 0.001, 1)
	_, err := rl.Current(context.Background(), moscow) // consumes the burst token
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = rl.Current(ctx, moscow)
	require.ErrorIs(t, err, weather.ErrDataUnavailable)
}

func TestSnapshot_Local(t *testing.T) {
	s := weather.Snapshot{Timestamp: time.Date(2024, 6, 1, 3, 0, 0, 0, time.UTC), UTCOffset: 3 * 3600}
	assert.Equal(t, 6, s.Local().Hour())
}

func TestSkyCode_Category(t *testing.T) {
	assert.Equal(t, "storm", weather.ThunderstormNight.Category())
	assert.Equal(t, "clouds", weather.OvercastDay.Category())
	assert.Equal(t, "unknown", weather.SkyCode("x").Category())
	assert.True(t, weather.MistNight.IsNight())
	assert.False(t, weather.ClearDay.IsNight())
}

func TestCoordinates_Key(t *testing.T) {
	assert.Equal(t, "55.756:37.617", moscow.Key())
	assert.True(t, moscow.Valid())
	assert.False(t, weather.Coordinates{Lat: 91}.Valid())
}
