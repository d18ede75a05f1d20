package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	httpTimeout    = 10 * time.Second
	owmDefaultURL  = "https://api.openweathermap.org/data/2.5"
	owmDefaultLang = "en"
)

// newHTTPClient returns an http.Client with a 10-second timeout.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// doGet performs a GET request and decodes the JSON response into dst.
func doGet(ctx context.Context, client *http.Client, rawURL string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s returned status %d", req.URL.Path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decoding response from %s: %w", req.URL.Path, err)
	}

	return nil
}

// Client fetches current conditions and the multi-point forecast from
// OpenWeatherMap.
type Client struct {
	apiKey  string
	baseURL string
	lang    string
	client  *http.Client
}

// NewClient constructs a Client against the production API.
func NewClient(apiKey string) *Client {
	return NewClientWithURL(owmDefaultURL, apiKey)
}

// NewClientWithURL constructs a Client pointing at a custom base URL (for tests).
func NewClientWithURL(baseURL, apiKey string) *Client {
	return &Client{apiKey: apiKey, baseURL: baseURL, lang: owmDefaultLang, client: newHTTPClient()}
}

// WithLang sets the language of provider descriptions.
func (c *Client) WithLang(lang string) *Client {
	if lang != "" {
		c.lang = lang
	}
	return c
}

// WithTimeout overrides the per-request HTTP timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d > 0 {
		c.client = &http.Client{Timeout: d}
	}
	return c
}

// Name identifies the provider in logs.
func (c *Client) Name() string { return "openweathermap" }

type owmMain struct {
	Temp     *float64 `json:"temp"`
	Pressure *float64 `json:"pressure"`
}

type owmWind struct {
	Speed *float64 `json:"speed"`
	Deg   float64  `json:"deg"`
}

type owmCondition struct {
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owmEntry struct {
	Dt      int64          `json:"dt"`
	Main    *owmMain       `json:"main"`
	Wind    *owmWind       `json:"wind"`
	Weather []owmCondition `json:"weather"`
}

type owmCurrentResponse struct {
	owmEntry
	Timezone int `json:"timezone"`
}

type owmForecastResponse struct {
	List []owmEntry `json:"list"`
	City struct {
		Timezone int `json:"timezone"`
	} `json:"city"`
}

func (c *Client) endpoint(path string, at Coordinates) string {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(at.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(at.Lon, 'f', -1, 64))
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")
	params.Set("lang", c.lang)
	return c.baseURL + path + "?" + params.Encode()
}

// Current retrieves the current conditions at the given point.
func (c *Client) Current(ctx context.Context, at Coordinates) (*Snapshot, error) {
	var raw owmCurrentResponse
	if err := doGet(ctx, c.client, c.endpoint("/weather", at), &raw); err != nil {
		return nil, fmt.Errorf("openweathermap current at %s: %w: %w", at, ErrDataUnavailable, err)
	}

	snap, ok := raw.owmEntry.snapshot(raw.Timezone)
	if !ok {
		return nil, fmt.Errorf("openweathermap current at %s: malformed payload: %w", at, ErrDataUnavailable)
	}
	return &snap, nil
}

// Forecast retrieves the provider's multi-point forecast (3-hour steps over
// the next days) at the given point. Malformed entries are skipped.
func (c *Client) Forecast(ctx context.Context, at Coordinates) ([]Snapshot, error) {
	var raw owmForecastResponse
	if err := doGet(ctx, c.client, c.endpoint("/forecast", at), &raw); err != nil {
		return nil, fmt.Errorf("openweathermap forecast at %s: %w: %w", at, ErrDataUnavailable, err)
	}

	snaps := make([]Snapshot, 0, len(raw.List))
	for _, e := range raw.List {
		if s, ok := e.snapshot(raw.City.Timezone); ok {
			snaps = append(snaps, s)
		}
	}

	if len(snaps) == 0 {
		return nil, fmt.Errorf("openweathermap forecast at %s: no usable entries: %w", at, ErrDataUnavailable)
	}
	return snaps, nil
}

func (e owmEntry) snapshot(utcOffset int) (Snapshot, bool) {
	if e.Dt == 0 || e.Main == nil || e.Main.Temp == nil || e.Main.Pressure == nil ||
		e.Wind == nil || e.Wind.Speed == nil || len(e.Weather) == 0 || e.Weather[0].Icon == "" {
		return Snapshot{}, false
	}

	return Snapshot{
		Timestamp:      time.Unix(e.Dt, 0).UTC(),
		AirTemperature: *e.Main.Temp,
		Pressure:       *e.Main.Pressure,
		WindSpeed:      *e.Wind.Speed,
		WindDirection:  e.Wind.Deg,
		Sky:            SkyCode(e.Weather[0].Icon),
		Description:    e.Weather[0].Description,
		UTCOffset:      utcOffset,
	}, true
}
