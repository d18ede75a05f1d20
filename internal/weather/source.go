package weather

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Source is anything that can supply current conditions and a forecast for
// a point. *Client is the network implementation.
type Source interface {
	Name() string
	Current(ctx context.Context, at Coordinates) (*Snapshot, error)
	Forecast(ctx context.Context, at Coordinates) ([]Snapshot, error)
}

// RateLimited wraps a Source so outbound provider calls stay under the
// account's request quota.
type RateLimited struct {
	source  Source
	limiter *rate.Limiter
}

// NewRateLimited allows rps requests per second with the given burst.
// rps may be fractional.
func NewRateLimited(source Source, rps float64, burst int) *RateLimited {
	return &RateLimited{source: source, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Name returns the wrapped source's name.
func (r *RateLimited) Name() string { return r.source.Name() + " [rate limited]" }

// Current waits for a token, then forwards the call.
func (r *RateLimited) Current(ctx context.Context, at Coordinates) (*Snapshot, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w: %w", ErrDataUnavailable, err)
	}
	return r.source.Current(ctx, at)
}

// Forecast waits for a token, then forwards the call.
func (r *RateLimited) Forecast(ctx context.Context, at Coordinates) ([]Snapshot, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w: %w", ErrDataUnavailable, err)
	}
	return r.source.Forecast(ctx, at)
}

var (
	_ Source = (*Client)(nil)
	_ Source = (*RateLimited)(nil)
)
