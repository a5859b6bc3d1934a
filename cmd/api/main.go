package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/harlowprint/backoffice-backend/api"
	"github.com/harlowprint/backoffice-backend/api/routes"
	"github.com/harlowprint/backoffice-backend/internal/categories"
	"github.com/harlowprint/backoffice-backend/internal/files"
	"github.com/harlowprint/backoffice-backend/internal/images"
	"github.com/harlowprint/backoffice-backend/internal/metafields"
	"github.com/harlowprint/backoffice-backend/internal/pricing"
	"github.com/harlowprint/backoffice-backend/internal/products"
	"github.com/harlowprint/backoffice-backend/internal/runstream"
	"github.com/harlowprint/backoffice-backend/pkg/config"
	"github.com/harlowprint/backoffice-backend/pkg/db"
	"github.com/harlowprint/backoffice-backend/pkg/logger"
	"github.com/harlowprint/backoffice-backend/pkg/metrics"
	"github.com/harlowprint/backoffice-backend/pkg/migrate"
	"github.com/harlowprint/backoffice-backend/pkg/redis"
	"github.com/harlowprint/backoffice-backend/pkg/shopify"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	platform, err := shopify.NewClient(cfg.Shopify, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create shopify client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	pricingMetrics := metrics.NewPricingMetrics(registry)

	writer, err := metafields.NewWriter(platform, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create metafield writer", err)
		os.Exit(1)
	}

	pricingService, err := pricing.NewService(pricing.ServiceParams{
		Platform:   platform,
		Reconciler: pricing.NewReconciler(platform, cfg.Pricing, logg),
		Writer:     writer,
		Binder:     images.NewBinder(platform, cfg.Pricing, logg),
		Locker:     redisClient,
		Runs:       pricing.NewRunRepository(dbClient.DB()),
		Metrics:    pricingMetrics,
		Logger:     logg,
		Cfg:        cfg.Pricing,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing service", err)
		os.Exit(1)
	}

	productService, err := products.NewService(products.ServiceParams{Platform: platform, Logger: logg})
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	metafieldService, err := metafields.NewService(metafields.ServiceParams{Platform: platform, Cache: redisClient, Logger: logg})
	if err != nil {
		logg.Error(context.Background(), "failed to create metafield service", err)
		os.Exit(1)
	}

	fileService, err := files.NewService(files.ServiceParams{Platform: platform, Cfg: cfg.Files, Logger: logg})
	if err != nil {
		logg.Error(context.Background(), "failed to create files service", err)
		os.Exit(1)
	}

	categoryService, err := categories.NewService(categories.ServiceParams{
		Store:    categories.NewRepository(dbClient.DB()),
		Platform: platform,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create categories service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.Deps{
		Cfg:             cfg,
		Logger:          logg,
		DB:              dbClient,
		Redis:           redisClient,
		Platform:        platform,
		Products:        productService,
		Pricing:         pricingService,
		Metafields:      metafieldService,
		Files:           fileService,
		Categories:      categoryService,
		RunHub:          runstream.NewHub(),
		RunHistory:      pricing.NewRunRepository(dbClient.DB()),
		MetricsGatherer: registry,
	})

	port := os.Getenv("PORT")
	if port != "" {
		cfg.App.Port = port
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": ":" + cfg.App.Port,
	})
	logg.Info(ctx, "starting api server")

	server := api.NewServer(cfg, router)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
