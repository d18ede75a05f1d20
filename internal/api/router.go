package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// RouterConfig carries the HTTP-level settings of NewRouter.
type RouterConfig struct {
	// AdminToken guards the admin routes. They are not mounted when empty.
	AdminToken        string
	RequestsPerMinute int
	AllowedOrigins    []string
}

// NewRouter builds and returns the Chi router with all routes configured.
// Public routes are rate limited per IP; admin routes require bearer auth.
func NewRouter(handlers *Handlers, cfg RouterConfig, health http.HandlerFunc, log *slog.Logger) *chi.Mux {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(httprate.LimitByIP(cfg.RequestsPerMinute, time.Minute))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", health)

		r.Get("/conditions", handlers.Conditions)
		r.Get("/forecast", handlers.Forecast)
		r.Get("/moon", handlers.Moon)
		r.Get("/moon/phases", handlers.MoonPhases)
		r.Get("/fish", handlers.Fish)
		r.Get("/gear", handlers.Gear)
		r.Get("/species", handlers.Species)

		r.Route("/lakes", func(r chi.Router) {
			r.Get("/", handlers.Lakes)
			r.Get("/popular", handlers.PopularLakes)
			r.Get("/nearest", handlers.NearestLakes)
			r.Get("/{id}", handlers.Lake)
			r.Get("/{id}/conditions", handlers.LakeConditions)
		})

		if cfg.AdminToken == "" {
			log.Warn("admin token not set, admin routes disabled")
			return
		}
		r.Group(func(r chi.Router) {
			r.Use(BearerAuth(cfg.AdminToken))
			r.Post("/admin/cache/sweep", handlers.SweepCache)
		})
	})

	return r
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)
