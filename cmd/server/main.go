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

	"go.uber.org/zap"

	"github.com/boozescore/backend/config"
	httpDelivery "github.com/boozescore/backend/internal/delivery/http"
	"github.com/boozescore/backend/internal/domain"
	"github.com/boozescore/backend/internal/infrastructure/cache"
	"github.com/boozescore/backend/internal/infrastructure/catalog"
	"github.com/boozescore/backend/internal/infrastructure/metrics"
	"github.com/boozescore/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.Server.Environment == "production" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	logger.Info("Starting Boozescore backend",
		zap.String("version", "1.0.0"),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("cache_type", cfg.Cache.Type),
		zap.Duration("cache_ttl", cfg.Cache.TTL),
	)

	// Initialize infrastructure dependencies
	kv, closeKV, err := openStore(cfg.Cache)
	if err != nil {
		logger.Fatal("Failed to open cache", zap.Error(err))
	}
	defer closeKV()

	recorder := metrics.New()

	catalogClient := catalog.NewClient(cfg.Catalog.BaseURL, catalog.ClientConfig{
		Timeout:   cfg.Catalog.Timeout,
		RateLimit: cfg.Catalog.RateLimit,
		Logger:    logger.Named("catalog"),
	})

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		catalogClient.SetDebug(true)
		logger.Debug("catalog client debug mode enabled")
	}

	// Initialize usecase layer
	store := usecase.NewCacheStore(kv, usecase.CacheStoreConfig{
		TTL:      cfg.Cache.TTL,
		Logger:   logger.Named("cache"),
		Recorder: recorder,
	})
	repo := usecase.NewProductRepository(store, catalogClient, usecase.ProductRepositoryConfig{
		CacheKey: cfg.Cache.Key,
		Logger:   logger.Named("repository"),
		Recorder: recorder,
	})

	// Already validated by config.Load
	defaultSort, _ := domain.ParseSortSpec(cfg.Catalog.DefaultSort)
	catalogService := usecase.NewCatalogService(repo, catalogClient, usecase.CatalogServiceConfig{
		NoiseFloor:  cfg.Catalog.NoiseFloor,
		TopN:        cfg.Catalog.TopN,
		DefaultSort: defaultSort,
		Logger:      logger.Named("catalog_service"),
	})

	logger.Info("Catalog configured",
		zap.String("base_url", cfg.Catalog.BaseURL),
		zap.Float64("noise_floor", cfg.Catalog.NoiseFloor),
		zap.Int("top_n", cfg.Catalog.TopN),
		zap.Strings("default_sort", cfg.Catalog.DefaultSort),
	)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(catalogService, logger.Named("http"))
	router := httpDelivery.SetupRouter(cfg, handler, recorder.Handler(), logger.Named("http"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Catalog.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Server started successfully", zap.String("address", srv.Addr))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// openStore builds the configured key-value backend and its cleanup func
func openStore(cfg config.CacheConfig) (domain.KVStore, func(), error) {
	switch cfg.Type {
	case "sqlite":
		store, err := cache.NewSQLiteCache(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	case "redis":
		store, err := cache.NewRedisCache(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	case "memory":
		return cache.NewMemoryCache(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported cache type: %s", cfg.Type)
	}
}
