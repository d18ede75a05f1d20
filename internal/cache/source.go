package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/neexbeast/bite-forecast/internal/weather"
)

// CachedSource memoizes provider responses per location for ttl. Cache
// failures are logged and fall through to the wrapped source.
type CachedSource struct {
	source weather.Source
	store  Store
	ttl    time.Duration
	log    *slog.Logger
}

// NewCachedSource wraps source with store. A non-positive ttl uses DefaultTTL.
func NewCachedSource(source weather.Source, store Store, ttl time.Duration, log *slog.Logger) *CachedSource {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedSource{source: source, store: store, ttl: ttl, log: log.With("component", "cache.source")}
}

// Name returns the wrapped source's name.
func (c *CachedSource) Name() string { return c.source.Name() + " [cached]" }

func currentKey(at weather.Coordinates) string  { return "weather:current:" + at.Key() }
func forecastKey(at weather.Coordinates) string { return "weather:forecast:" + at.Key() }

// Current returns cached conditions when fresh, otherwise fetches and stores them.
func (c *CachedSource) Current(ctx context.Context, at weather.Coordinates) (*weather.Snapshot, error) {
	key := currentKey(at)

	var cached weather.Snapshot
	hit, err := c.store.Get(ctx, key, &cached)
	if err != nil {
		c.log.Warn("cache read failed", "key", key, "err", err)
	}
	if hit {
		return &cached, nil
	}

	snap, err := c.source.Current(ctx, at)
	if err != nil {
		return nil, err
	}

	if err := c.store.Set(ctx, key, snap, c.ttl); err != nil {
		c.log.Warn("cache write failed", "key", key, "err", err)
	}
	return snap, nil
}

// Forecast returns the cached forecast list when fresh, otherwise fetches and stores it.
func (c *CachedSource) Forecast(ctx context.Context, at weather.Coordinates) ([]weather.Snapshot, error) {
	key := forecastKey(at)

	var cached []weather.Snapshot
	hit, err := c.store.Get(ctx, key, &cached)
	if err != nil {
		c.log.Warn("cache read failed", "key", key, "err", err)
	}
	if hit && len(cached) > 0 {
		return cached, nil
	}

	snaps, err := c.source.Forecast(ctx, at)
	if err != nil {
		return nil, err
	}

	if err := c.store.Set(ctx, key, snaps, c.ttl); err != nil {
		c.log.Warn("cache write failed", "key", key, "err", err)
	}
	return snaps, nil
}

var _ weather.Source = (*CachedSource)(nil)
