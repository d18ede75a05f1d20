package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/neexbeast/bite-forecast/internal/api"
	"github.com/neexbeast/bite-forecast/internal/cache"
	"github.com/neexbeast/bite-forecast/internal/catalog"
	"github.com/neexbeast/bite-forecast/internal/config"
	"github.com/neexbeast/bite-forecast/internal/forecast"
	"github.com/neexbeast/bite-forecast/internal/storage"
	"github.com/neexbeast/bite-forecast/internal/weather"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("loading .env failed", "err", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error("loading config failed", "err", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx := context.Background()

	// Catalog: Postgres when configured, embedded dataset otherwise.
	var catalogSource catalog.Source = catalog.EmbeddedSource{}
	var db api.Pinger
	if cfg.Database.URL != "" {
		pool, err := storage.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer pool.Close()
		db = pool

		migrations := storage.Migrations()
		if cfg.Database.MigrationsDir != "" {
			migrations = os.DirFS(cfg.Database.MigrationsDir)
		}
		if err := storage.RunMigrations(ctx, pool, migrations); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		log.Info("migrations applied")

		repo := storage.NewRepository(pool)
		if err := seed(ctx, repo, log); err != nil {
			return err
		}
		catalogSource = catalog.NewFallbackSource(repo, catalog.EmbeddedSource{}, log)
	}

	cat, err := catalogSource.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	log.Info("catalog loaded", "lakes", cat.Len(), "species", len(cat.Species()))

	// Cache store: Redis when configured, in-process otherwise.
	var store cache.Store
	if cfg.Cache.RedisURL != "" {
		redisClient, err := cache.Connect(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer func() { _ = redisClient.Close() }()
		store = cache.NewRedisStore(redisClient)
	} else {
		store = cache.NewMemoryStore()
		log.Info("REDIS_URL not set, using in-memory cache")
	}

	// Wire dependencies.
	client := weather.NewClientWithURL(cfg.Weather.BaseURL, cfg.Weather.APIKey).
		WithLang(cfg.Weather.Lang).
		WithTimeout(cfg.Weather.Timeout)
	limited := weather.NewRateLimited(client, cfg.Weather.RPS, cfg.Weather.Burst)
	source := cache.NewCachedSource(limited, store, cfg.Cache.TTL, log)
	service := forecast.NewService(source, forecast.Config{
		Horizon: cfg.Forecast.Days,
		MaxGap:  cfg.Forecast.MaxGap,
	}, log)

	handlers := api.NewHandlers(service, cat, store, log)
	health := api.HealthHandlerFunc(store, db, cat, log)
	router := api.NewRouter(handlers, api.RouterConfig{
		AdminToken:        cfg.HTTP.AdminToken,
		RequestsPerMinute: cfg.HTTP.RequestsPerMinute,
		AllowedOrigins:    cfg.HTTP.AllowedOrigins,
	}, health, log)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sweepLoop(sweepCtx, store, cfg.Cache.SweepInterval, log)

	// Graceful shutdown on SIGINT / SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("server goroutine panicked", "recover", r)
				errCh <- fmt.Errorf("server panicked: %v", r)
			}
		}()
		log.Info("server starting", "port", cfg.HTTP.Port, "weather", source.Name())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listening: %w", err)
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("server shut down cleanly")
	return nil
}

// seed fills an empty database with the embedded catalog.
func seed(ctx context.Context, repo *storage.Repository, log *slog.Logger) error {
	embedded, err := catalog.EmbeddedSource{}.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading embedded catalog: %w", err)
	}
	seeded, err := repo.Seed(ctx, embedded)
	if err != nil {
		return fmt.Errorf("seeding catalog: %w", err)
	}
	if seeded {
		log.Info("catalog seeded", "lakes", embedded.Len())
	}
	return nil
}

// sweepLoop drops expired entries from the in-process store at a fixed
// interval. Redis expires keys on its own, so sweeping it is a no-op.
func sweepLoop(ctx context.Context, store cache.Store, every time.Duration, log *slog.Logger) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.Sweep(ctx)
			if err != nil {
				log.Warn("cache sweep failed", "err", err)
				continue
			}
			if n > 0 {
				log.Debug("cache swept", "removed", n)
			}
		}
	}
}
