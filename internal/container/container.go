package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/Danielle-Barbieri/seat-scout/app/db"
	"github.com/Danielle-Barbieri/seat-scout/config"
	"github.com/Danielle-Barbieri/seat-scout/internal/api/geocode"
	"github.com/Danielle-Barbieri/seat-scout/internal/api/locations"
	"github.com/Danielle-Barbieri/seat-scout/internal/api/places"
	"github.com/Danielle-Barbieri/seat-scout/internal/api/popularity"
	"github.com/Danielle-Barbieri/seat-scout/internal/availability"
	"github.com/Danielle-Barbieri/seat-scout/internal/router"
)

// Container holds all application dependencies
type Container struct {
	Config            *config.Config
	Logger            *slog.Logger
	Pool              *pgxpool.Pool
	LocationsService  *locations.ServiceImpl
	LocationsHandler  *locations.HandlerImpl
	PopularityHandler *popularity.HandlerImpl
}

// NewContainer wires the collaborators, the optional popularity store and the handlers.
// Without a database the live signal comes from declared or simulated popularity only.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	var signals availability.SignalProvider = availability.DeclaredSignal{
		Fallback: availability.NewSimulatedSignal(nil),
	}

	if cfg.Repositories.Postgres.Enabled {
		pool, err := openDatabase(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		c.Pool = pool

		popularityRepo := popularity.NewRepository(pool, logger)
		popularityService := popularity.NewService(popularityRepo, logger)
		c.PopularityHandler = popularity.NewHandlerImpl(popularityService, logger)
		signals = popularity.NewSignalProvider(popularityRepo, signals, logger)
	} else {
		logger.Info("Postgres disabled, stored popularity is unavailable")
	}

	placesClient := places.NewClient(places.Options{
		APIKey:        cfg.Places.APIKey,
		BaseURL:       cfg.Places.BaseURL,
		RadiusMeters:  cfg.Places.RadiusMeters,
		MaxResults:    cfg.Places.MaxResults,
		Timeout:       cfg.Places.Timeout,
		RatePerSecond: cfg.Places.RatePerSecond,
		Retries:       cfg.Places.Retries,
	}, logger)
	searcher := places.NewSearcher(placesClient, cfg.Places.CacheTTL, logger)

	geocoder := geocode.NewClient(geocode.Options{
		APIKey:    cfg.Geocode.APIKey,
		BaseURL:   cfg.Geocode.BaseURL,
		CacheSize: cfg.Geocode.CacheSize,
		CacheTTL:  cfg.Geocode.CacheTTL,
	}, nil, logger)

	if cfg.Places.APIKey == "" {
		logger.Warn("Places API key not configured, searches will fail")
	}

	c.LocationsService = locations.NewService(searcher, geocoder, signals, nil, logger)
	c.LocationsHandler = locations.NewHandlerImpl(c.LocationsService, logger)
	return c, nil
}

func openDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(ctx, dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	if !database.WaitForDB(ctx, pool, logger) {
		pool.Close()
		return nil, fmt.Errorf("database not ready after waiting")
	}
	return pool, nil
}

// RouterConfig returns the handler set for router.SetupRouter.
func (c *Container) RouterConfig() *router.Config {
	rc := &router.Config{
		LocationsHandler: c.LocationsHandler,
		AllowedOrigins:   c.Config.Server.AllowedOrigins,
		RatePerSecond:    c.Config.Server.RateLimit.PerSecond,
		RateBurst:        c.Config.Server.RateLimit.Burst,
		Logger:           c.Logger,
	}
	if c.PopularityHandler != nil {
		rc.PopularityHandler = c.PopularityHandler
	}
	return rc
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}
