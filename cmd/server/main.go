package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nutricoach/backend/config"
	"github.com/nutricoach/backend/internal/app"
	httpDelivery "github.com/nutricoach/backend/internal/delivery/http"
	"github.com/nutricoach/backend/internal/logger"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Init(cfg.Server.Environment, cfg.Log.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting NutriCoach backend",
		zap.String("version", "1.0.0"),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("database", cfg.Database.Driver),
		zap.Duration("cache_ttl", cfg.Cache.TTL))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize application", zap.Error(err))
		os.Exit(1)
	}
	defer application.Close()

	services := httpDelivery.Services{
		Profiles: application.Profiles,
		Targets:  application.Targets,
		Meals:    application.Meals,
		Recaps:   application.Recaps,
	}
	if application.Database != nil {
		services.Database = application.Database
	}

	// Setup router
	router := httpDelivery.SetupRouter(cfg, httpDelivery.NewHandler(services))

	// Recap batch job runs alongside the server
	go func() {
		if err := application.Runner.RunPeriodic(ctx, cfg.Recap.Interval); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("recap runner stopped", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
