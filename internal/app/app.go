// Package app wires configuration into stores, caches and services.
package app

import (
	"context"
	"fmt"

	"github.com/nutricoach/backend/config"
	"github.com/nutricoach/backend/internal/domain"
	"github.com/nutricoach/backend/internal/infrastructure/cache"
	"github.com/nutricoach/backend/internal/infrastructure/extraction"
	"github.com/nutricoach/backend/internal/infrastructure/memstore"
	"github.com/nutricoach/backend/internal/infrastructure/postgres"
	"github.com/nutricoach/backend/internal/jobs"
	"github.com/nutricoach/backend/internal/logger"
	"github.com/nutricoach/backend/internal/usecase"
	"go.uber.org/zap"
)

// Store is everything the services need from persistence
type Store interface {
	domain.ProfileRepository
	domain.MealRepository
	domain.RecapStore
}

// App holds the wired services
type App struct {
	Store    Store
	Cache    *cache.MemoryCache
	Profiles *usecase.ProfileService
	Targets  *usecase.TargetService
	Meals    *usecase.MealService
	Recaps   *usecase.RecapService
	Runner   *jobs.RecapRunner

	// Database is nil with the memory driver
	Database *postgres.Store
}

// New builds the application for cfg. The caller must Close it.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Cache: cache.NewMemoryCache()}

	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConns)
		if err != nil {
			a.Cache.Close()
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			a.Cache.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		a.Store = db
		a.Database = db
		logger.Info("using postgres store", zap.Int32("max_conns", cfg.Database.MaxConns))
	default:
		a.Store = memstore.New()
		logger.Warn("using in-memory store; data is lost on restart")
	}

	var extractor domain.MealExtractor
	if cfg.Extraction.APIKey != "" {
		extractor = extraction.NewClient(extraction.Config{
			APIKey:            cfg.Extraction.APIKey,
			BaseURL:           cfg.Extraction.BaseURL,
			Model:             cfg.Extraction.Model,
			Timeout:           cfg.Extraction.Timeout,
			RequestsPerMinute: cfg.Extraction.RequestsPerMinute,
		})
		logger.Info("meal extraction configured",
			zap.String("base_url", cfg.Extraction.BaseURL),
			zap.String("model", cfg.Extraction.Model))
	} else {
		logger.Warn("meal extraction not configured (set NUTRICOACH_EXTRACTION_API_KEY)")
	}

	a.Profiles = usecase.NewProfileService(a.Store, a.Cache)
	a.Targets = usecase.NewTargetService(a.Store)
	a.Meals = usecase.NewMealService(a.Store, a.Store, a.Cache, extractor, usecase.MealServiceConfig{
		CacheTTL:        cfg.Cache.TTL,
		DefaultTimezone: cfg.Recap.DefaultTimezone,
	})
	a.Recaps = usecase.NewRecapService(a.Store, a.Store, a.Store, a.Cache, usecase.RecapServiceConfig{
		Tolerance:       cfg.Recap.Tolerance,
		PeriodDays:      cfg.Recap.PeriodDays,
		CacheTTL:        cfg.Cache.TTL,
		DefaultTimezone: cfg.Recap.DefaultTimezone,
	})
	a.Runner = jobs.NewRecapRunner(a.Store, a.Recaps, cfg.Recap.Concurrency, cfg.Recap.PeriodDays)

	return a, nil
}

// Close releases the database pool and stops the cache janitor
func (a *App) Close() {
	if a.Database != nil {
		a.Database.Close()
	}
	a.Cache.Close()
}
