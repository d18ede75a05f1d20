package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/neexbeast/bite-forecast/internal/bite"
	"github.com/neexbeast/bite-forecast/internal/weather"
)

// DefaultHorizon is the number of days covered by DetailedConditions.
const DefaultHorizon = 3

// Conditions is the full picture for one location and species.
type Conditions struct {
	Current         bite.Forecast    `json:"current"`
	CurrentWeather  weather.Snapshot `json:"current_weather"`
	Forecast        []Day            `json:"forecast"`
	Trend           Trend            `json:"pressure_trend"`
	Recommendations []string         `json:"recommendations"`
}

// Outlook is the forecast-only view.
type Outlook struct {
	Days  []Day `json:"days"`
	Trend Trend `json:"pressure_trend"`
}

// Config tunes the service.
type Config struct {
	Horizon int
	MaxGap  time.Duration
}

// Service fetches weather for a location and scores it.
type Service struct {
	source  weather.Source
	horizon int
	maxGap  time.Duration
	now     func() time.Time
	log     *slog.Logger
}

// NewService wires a Service on top of a weather source.
func NewService(source weather.Source, cfg Config, log *slog.Logger) *Service {
	if cfg.Horizon <= 0 {
		cfg.Horizon = DefaultHorizon
	}
	if cfg.MaxGap <= 0 {
		cfg.MaxGap = DefaultMaxGap
	}
	return &Service{
		source:  source,
		horizon: cfg.Horizon,
		maxGap:  cfg.MaxGap,
		now:     time.Now,
		log:     log.With("component", "forecast.service"),
	}
}

// WithClock replaces the wall clock (for tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Horizon returns the configured default number of forecast days.
func (s *Service) Horizon() int { return s.horizon }

// Forecast scores up to days calendar days starting today.
func (s *Service) Forecast(ctx context.Context, at weather.Coordinates, days int, fishKey string) (*Outlook, error) {
	if days <= 0 {
		days = s.horizon
	}

	snaps, err := s.source.Forecast(ctx, at)
	if err != nil {
		return nil, fmt.Errorf("forecast at %s: %w", at, err)
	}

	list := BuildDays(snaps, s.now(), days, fishKey, s.maxGap)
	if list == nil {
		list = []Day{}
	}
	return &Outlook{Days: list, Trend: PressureTrend(list)}, nil
}

// DetailedConditions fetches current conditions and the forecast in
// parallel and scores both. Failure to get current conditions fails the
// call; a forecast failure only leaves the forecast empty.
func (s *Service) DetailedConditions(ctx context.Context, at weather.Coordinates, fishKey string) (*Conditions, error) {
	g, gCtx := errgroup.WithContext(ctx)

	var current *weather.Snapshot
	var snaps []weather.Snapshot

	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("current weather fetch panicked", "recover", r)
				err = fmt.Errorf("current weather fetch panicked: %v", r)
			}
		}()
		cur, fetchErr := s.source.Current(gCtx, at)
		if fetchErr != nil {
			return fetchErr
		}
		current = cur
		return nil
	})

	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("forecast fetch panicked", "recover", r)
				err = fmt.Errorf("forecast fetch panicked: %v", r)
			}
		}()
		list, fetchErr := s.source.Forecast(gCtx, at)
		if fetchErr != nil {
			s.log.Warn("forecast fetch failed", "lat", at.Lat, "lon", at.Lon, "err", fetchErr)
			return nil
		}
		snaps = list
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("conditions at %s: %w", at, err)
	}

	currentBite, err := bite.Score(*current, fishKey)
	if err != nil {
		return nil, fmt.Errorf("conditions at %s: %w", at, err)
	}

	days := BuildDays(snaps, s.now(), s.horizon, fishKey, s.maxGap)
	if days == nil {
		days = []Day{}
	}

	return &Conditions{
		Current:         currentBite,
		CurrentWeather:  *current,
		Forecast:        days,
		Trend:           PressureTrend(days),
		Recommendations: Recommendations(&currentBite, days),
	}, nil
}
