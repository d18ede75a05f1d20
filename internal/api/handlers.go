package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/neexbeast/bite-forecast/internal/bite"
	"github.com/neexbeast/bite-forecast/internal/catalog"
	"github.com/neexbeast/bite-forecast/internal/config"
	"github.com/neexbeast/bite-forecast/internal/fish"
	"github.com/neexbeast/bite-forecast/internal/lunar"
	"github.com/neexbeast/bite-forecast/internal/weather"
)

const (
	defaultPopular = 6
	defaultNearest = 5
	maxListLimit   = 50

	// StatusClientClosedRequest marks requests abandoned by the client
	// before a response was written.
	StatusClientClosedRequest = 499
)

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	conditions ConditionsService
	catalog    *catalog.Catalog
	cache      CacheSweeper
	now        func() time.Time
	log        *slog.Logger
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(conditions ConditionsService, cat *catalog.Catalog, cache CacheSweeper, log *slog.Logger) *Handlers {
	return &Handlers{
		conditions: conditions,
		catalog:    cat,
		cache:      cache,
		now:        time.Now,
		log:        log,
	}
}

// WithClock replaces the wall clock used for "today" (for tests).
func (h *Handlers) WithClock(now func() time.Time) *Handlers {
	h.now = now
	return h
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps forecasting errors to a status code.
func (h *Handlers) writeServiceError(w http.ResponseWriter, err error, at weather.Coordinates) {
	switch {
	case errors.Is(err, weather.ErrDataUnavailable), errors.Is(err, bite.ErrIncompleteSnapshot):
		h.log.Warn("weather unavailable", "lat", at.Lat, "lon", at.Lon, "err", err)
		writeError(w, http.StatusBadGateway, "weather data unavailable")
	case errors.Is(err, context.Canceled):
		h.log.Info("request canceled by client", "lat", at.Lat, "lon", at.Lon)
		w.WriteHeader(StatusClientClosedRequest)
	default:
		h.log.Error("forecast failed", "lat", at.Lat, "lon", at.Lon, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func parseCoordinates(r *http.Request) (weather.Coordinates, error) {
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		return weather.Coordinates{}, errors.New("lat must be a number")
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		return weather.Coordinates{}, errors.New("lon must be a number")
	}
	at := weather.Coordinates{Lat: lat, Lon: lon}
	if !at.Valid() {
		return weather.Coordinates{}, errors.New("coordinates out of range")
	}
	return at, nil
}

// parseLimit reads an optional positive integer capped at maxListLimit.
func parseLimit(r *http.Request, fallback int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.New("limit must be a positive integer")
	}
	return min(n, maxListLimit), nil
}

// fishKey resolves the fish query parameter to a bite profile key. Catalog
// species map to their profile; keys without a profile score as general.
func (h *Handlers) fishKey(r *http.Request) string {
	requested := fish.Normalize(r.URL.Query().Get("fish"))
	if requested == "" {
		return fish.General
	}
	key := h.catalog.ProfileKey(requested)
	if !fish.Known(key) {
		h.log.Debug("no profile for fish, using general", "fish", requested)
		return fish.General
	}
	return key
}

// Conditions handles GET /api/v1/conditions?lat=&lon=&fish=.
func (h *Handlers) Conditions(w http.ResponseWriter, r *http.Request) {
	at, err := parseCoordinates(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.conditions.DetailedConditions(r.Context(), at, h.fishKey(r))
	if err != nil {
		h.writeServiceError(w, err, at)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// Forecast handles GET /api/v1/forecast?lat=&lon=&days=&fish=.
// days defaults to the configured horizon.
func (h *Handlers) Forecast(w http.ResponseWriter, r *http.Request) {
	at, err := parseCoordinates(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		days, err = strconv.Atoi(raw)
		if err != nil || days < 1 || days > config.MaxForecastDays {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("days must be between 1 and %d", config.MaxForecastDays))
			return
		}
	}

	out, err := h.conditions.Forecast(r.Context(), at, days, h.fishKey(r))
	if err != nil {
		h.writeServiceError(w, err, at)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

type lakeList struct {
	Count int            `json:"count"`
	Lakes []catalog.Lake `json:"lakes"`
}

// Lakes handles GET /api/v1/lakes with optional filters and sort.
func (h *Handlers) Lakes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	sortKey, err := catalog.ParseSort(q.Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter := catalog.LakeFilter{
		Query:          q.Get("q"),
		Region:         q.Get("region"),
		Fish:           q.Get("fish"),
		Season:         q.Get("season"),
		Infrastructure: q.Get("infrastructure"),
	}
	if raw := q.Get("min_rating"); raw != "" {
		filter.MinRating, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "min_rating must be a number")
			return
		}
	}

	lakes := catalog.SortLakes(h.catalog.FilterLakes(filter), sortKey)
	writeJSON(w, http.StatusOK, lakeList{Count: len(lakes), Lakes: lakes})
}

// PopularLakes handles GET /api/v1/lakes/popular?limit=.
func (h *Handlers) PopularLakes(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, defaultPopular)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	lakes := h.catalog.Popular(limit)
	writeJSON(w, http.StatusOK, lakeList{Count: len(lakes), Lakes: lakes})
}

// NearestLakes handles GET /api/v1/lakes/nearest?lat=&lon=&limit=.
func (h *Handlers) NearestLakes(w http.ResponseWriter, r *http.Request) {
	at, err := parseCoordinates(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := parseLimit(r, defaultNearest)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"lakes": h.catalog.Nearest(at, limit)})
}

// Lake handles GET /api/v1/lakes/{id}.
func (h *Handlers) Lake(w http.ResponseWriter, r *http.Request) {
	lake, ok := h.catalog.Lake(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "lake not found")
		return
	}
	writeJSON(w, http.StatusOK, lake)
}

// LakeConditions handles GET /api/v1/lakes/{id}/conditions?fish=.
func (h *Handlers) LakeConditions(w http.ResponseWriter, r *http.Request) {
	lake, ok := h.catalog.Lake(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "lake not found")
		return
	}

	at := lake.Coordinates()
	c, err := h.conditions.DetailedConditions(r.Context(), at, h.fishKey(r))
	if err != nil {
		h.writeServiceError(w, err, at)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"lake": lake, "conditions": c})
}

// Species handles GET /api/v1/species?q=&category=.
func (h *Handlers) Species(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	species := h.catalog.FilterSpecies(q.Get("q"), q.Get("category"))
	writeJSON(w, http.StatusOK, map[string]any{"count": len(species), "species": species})
}

// Fish handles GET /api/v1/fish, listing every bite profile.
func (h *Handlers) Fish(w http.ResponseWriter, _ *http.Request) {
	keys := fish.Keys()
	profiles := make([]fish.Profile, 0, len(keys))
	for _, k := range keys {
		profiles = append(profiles, fish.Lookup(k))
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(profiles), "fish": profiles})
}

type moonResponse struct {
	Date     string      `json:"date"`
	Phase    lunar.Phase `json:"phase"`
	Fraction float64     `json:"fraction"`
}

// Moon handles GET /api/v1/moon?date=YYYY-MM-DD. The date defaults to today
// (UTC).
func (h *Handlers) Moon(w http.ResponseWriter, r *http.Request) {
	day := h.now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	writeJSON(w, http.StatusOK, moonResponse{
		Date:     day.Format(time.DateOnly),
		Phase:    lunar.Compute(day),
		Fraction: lunar.Fraction(day),
	})
}

// MoonPhases handles GET /api/v1/moon/phases, the phase table with each
// phase's bite factor.
func (h *Handlers) MoonPhases(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"phases": lunar.Phases()})
}

// Gear handles GET /api/v1/gear?fish=&season=&budget=.
func (h *Handlers) Gear(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := fish.GearRequest{Fish: q.Get("fish"), Season: q.Get("season")}
	if raw := strings.TrimSpace(q.Get("budget")); raw != "" {
		budget, err := strconv.Atoi(raw)
		if err != nil || budget < 0 {
			writeError(w, http.StatusBadRequest, "budget must be a non-negative integer")
			return
		}
		req.Budget = budget
	}

	items, err := fish.RecommendGear(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"request": req, "gear": items})
}

// SweepCache handles POST /api/v1/admin/cache/sweep.
func (h *Handlers) SweepCache(w http.ResponseWriter, r *http.Request) {
	n, err := h.cache.Sweep(r.Context())
	if err != nil {
		h.log.Error("cache sweep failed", "err", err)
		writeError(w, http.StatusInternalServerError, "cache sweep failed")
		return
	}

	h.log.Info("cache swept", "removed", n)
	writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}

// HealthHandlerFunc returns an http.HandlerFunc that checks the cache store
// and, when configured, the database. db may be nil.
func HealthHandlerFunc(store, db Pinger, cat *catalog.Catalog, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		cacheStatus := "ok"
		dbStatus := "disabled"

		if err := store.Ping(ctx); err != nil {
			log.Error("health check: cache ping failed", "err", err)
			cacheStatus = "error"
			status = http.StatusServiceUnavailable
		}

		if db != nil {
			dbStatus = "ok"
			if err := db.Ping(ctx); err != nil {
				log.Error("health check: db ping failed", "err", err)
				dbStatus = "error"
				status = http.StatusServiceUnavailable
			}
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}

		writeJSON(w, status, map[string]any{
			"status": overall,
			"cache":  cacheStatus,
			"db":     dbStatus,
			"lakes":  cat.Len(),
		})
	}
}
