// backend-go/cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/food-insight/backend-go/internal/api"
	"github.com/andresuchdata/food-insight/backend-go/internal/cache"
	"github.com/andresuchdata/food-insight/backend-go/internal/config"
	"github.com/andresuchdata/food-insight/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/food-insight/backend-go/internal/service"
	"github.com/andresuchdata/food-insight/backend-go/internal/storage"
	"github.com/andresuchdata/food-insight/backend-go/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Initialize logger
	logger.SetLevel(cfg.App.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	datasets := postgres.NewDatasetRepository(db)
	admin := postgres.NewAdminRepository(db)

	insightCache, err := cache.NewInsightCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Insight cache unavailable, continuing without cache")
		insightCache = cache.NewNoopInsightCache()
	}

	// Initialize services
	insightService := service.NewInsightService(service.Repositories{
		Datasets:     datasets,
		Writer:       datasets,
		ChannelCosts: admin,
		Labor:        admin,
		Runs:         postgres.NewImportRunRepository(db),
	}, insightCache, cfg.Business).WithLoadConcurrency(cfg.App.LoadConcurrency)

	if cfg.Storage.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		store, err := storage.NewMinioClient(ctx, cfg.Storage)
		cancel()
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to initialize object storage")
		}
		insightService.WithArchiver(storage.NewArchiver(store, cfg.Storage.ArchivePrefix))
	}

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{Insights: insightService, Admin: insightService}, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
