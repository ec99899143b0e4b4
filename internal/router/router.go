package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	appMiddleware "github.com/Danielle-Barbieri/seat-scout/app/middleware"
	_ "github.com/Danielle-Barbieri/seat-scout/docs"
	"github.com/Danielle-Barbieri/seat-scout/internal/api/locations"
	"github.com/Danielle-Barbieri/seat-scout/internal/api/popularity"
)

// Config contains the handlers mounted by SetupRouter. PopularityHandler is nil when
// the database is disabled.
type Config struct {
	LocationsHandler  locations.Handler
	PopularityHandler popularity.Handler
	AllowedOrigins    []string
	RatePerSecond     float64
	RateBurst         int
	Logger            *slog.Logger
}

// SetupRouter builds the application routes. Server-wide middleware (request id,
// logging, recoverer, timeout) is applied by the caller before mounting.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(appMiddleware.RateLimit(cfg.RatePerSecond, cfg.RateBurst, logger))

		r.Get("/locations", cfg.LocationsHandler.GetLocations)
		r.Get("/availability/forecast", cfg.LocationsHandler.GetForecast)
		r.Get("/geocode", cfg.LocationsHandler.GetGeocode)

		if cfg.PopularityHandler != nil {
			r.Get("/popularity/{placeID}", cfg.PopularityHandler.GetPopularity)
			r.Put("/popularity/{placeID}", cfg.PopularityHandler.PutPopularity)
		}
	})

	return r
}
