package api

import (
	"context"

	"github.com/neexbeast/bite-forecast/internal/forecast"
	"github.com/neexbeast/bite-forecast/internal/weather"
)

// ConditionsService defines the forecasting operations needed by handlers.
// *forecast.Service satisfies it.
type ConditionsService interface {
	DetailedConditions(ctx context.Context, at weather.Coordinates, fishKey string) (*forecast.Conditions, error)
	Forecast(ctx context.Context, at weather.Coordinates, days int, fishKey string) (*forecast.Outlook, error)
}

// CacheSweeper defines the cache maintenance needed by the admin route.
// cache.Store satisfies it.
type CacheSweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// Pinger is a dependency the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}
