package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/harlowprint/backoffice-backend/internal/images"
	"github.com/harlowprint/backoffice-backend/internal/metafields"
	"github.com/harlowprint/backoffice-backend/internal/pricing"
	"github.com/harlowprint/backoffice-backend/pkg/config"
	"github.com/harlowprint/backoffice-backend/pkg/db"
	"github.com/harlowprint/backoffice-backend/pkg/logger"
	"github.com/harlowprint/backoffice-backend/pkg/redis"
	"github.com/harlowprint/backoffice-backend/pkg/shopify"
)

// pricing-runner drives a pricing run from the terminal, streaming the
// run log to stdout. The database and redis are optional: without them
// the run simply skips run-history recording and product locking.
func main() {
	logg := logger.New(logger.Options{ServiceName: "pricing-runner"})

	_ = godotenv.Load()

	filter := flag.String("filter", "", "substring filter on product titles")
	productsArg := flag.String("products", "", "comma-separated product ids to run")
	productID := flag.Int64("product", 0, "single product id to run")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "pricing-runner",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithField(context.Background(), "env", cfg.App.Env)

	platform, err := shopify.NewClient(cfg.Shopify, logg)
	if err != nil {
		logg.Error(ctx, "failed to create shopify client", err)
		os.Exit(1)
	}

	params := pricing.ServiceParams{
		Platform:   platform,
		Reconciler: pricing.NewReconciler(platform, cfg.Pricing, logg),
		Binder:     images.NewBinder(platform, cfg.Pricing, logg),
		Logger:     logg,
		Cfg:        cfg.Pricing,
	}

	writer, err := metafields.NewWriter(platform, logg)
	if err != nil {
		logg.Error(ctx, "failed to create metafield writer", err)
		os.Exit(1)
	}
	params.Writer = writer

	if cfg.DB.DSN != "" || cfg.DB.Driver == "sqlite" {
		dbClient, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap database", err)
			os.Exit(1)
		}
		defer dbClient.Close()
		params.Runs = pricing.NewRunRepository(dbClient.DB())
	} else {
		logg.Warn(ctx, "no database configured, run history disabled")
	}

	if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		params.Locker = redisClient
	} else {
		logg.Warn(ctx, "no redis configured, product locking disabled")
	}

	svc, err := pricing.NewService(params)
	if err != nil {
		logg.Error(ctx, "failed to create pricing service", err)
		os.Exit(1)
	}

	sink := func(line string) { fmt.Println(line) }

	if *productID > 0 {
		result, err := svc.RunForProduct(ctx, *productID, sink)
		if err != nil {
			logg.Error(ctx, "pricing run failed", err)
			os.Exit(1)
		}
		if result.Skipped {
			fmt.Printf("skipped %q: %s\n", result.Title, result.Reason)
			return
		}
		fmt.Printf("done: %q, %d variants\n", result.Title, result.VariantCount)
		return
	}

	ids, err := parseProductIDs(*productsArg)
	if err != nil {
		logg.Error(ctx, "invalid -products value", err)
		os.Exit(1)
	}

	summary, err := svc.RunBatch(ctx, pricing.BatchOptions{
		ProductIDs: ids,
		Filter:     strings.TrimSpace(*filter),
	}, sink)
	if err != nil {
		logg.Error(ctx, "pricing batch failed", err)
		os.Exit(1)
	}

	fmt.Printf("run %s finished: %d ok, %d failed, %d skipped of %d\n",
		summary.RunID, summary.Successful, summary.Failed, summary.Skipped, summary.Total)
	if summary.Failed > 0 {
		os.Exit(1)
	}
}

func parseProductIDs(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("bad product id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
