package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/platedrop/ordercore/api/routes"
	"github.com/platedrop/ordercore/internal/cart"
	checkoutsvc "github.com/platedrop/ordercore/internal/checkout"
	"github.com/platedrop/ordercore/internal/delivery"
	"github.com/platedrop/ordercore/internal/pricing"
	"github.com/platedrop/ordercore/pkg/config"
	"github.com/platedrop/ordercore/pkg/db"
	"github.com/platedrop/ordercore/pkg/logger"
	"github.com/platedrop/ordercore/pkg/maps"
	"github.com/platedrop/ordercore/pkg/ordersvc"
	"github.com/platedrop/ordercore/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "console"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "console",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.CartDB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to open cart storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing cart storage", err)
		}
	}()

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, caching disabled")
	}

	orderClient, err := ordersvc.NewClient(cfg.Backend.BaseURL, ordersvc.WithTimeout(cfg.Backend.Timeout))
	if err != nil {
		logg.Error(context.Background(), "failed to build order service client", err)
		os.Exit(1)
	}

	var mapsClient *maps.Client
	if cfg.Mapbox.Token != "" {
		mapsClient, err = maps.NewClient(cfg.Mapbox.Token)
		if err != nil {
			logg.Error(context.Background(), "failed to build mapbox client", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "mapbox token not configured, road annotations disabled")
	}

	cartStore, err := cart.NewStore(context.Background(), cart.NewRepository(dbClient), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to restore cart", err)
		os.Exit(1)
	}

	calculator := pricing.NewCalculator(cfg.Pricing)

	var geocoder *delivery.Geocoder
	if mapsClient != nil {
		geocoder = delivery.NewGeocoder(mapsClient, redisClient, cfg.Driver.GeocodeCacheTTL, logg)
	}

	checkoutService, err := checkoutsvc.NewService(
		cartStore,
		calculator,
		orderClient,
		geocoder,
		logg,
		cfg.Tracking.ConfirmationDelay,
		nil,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to build checkout service", err)
		os.Exit(1)
	}

	var matrix delivery.MatrixClient
	if mapsClient != nil {
		matrix = mapsClient
	}

	readyFeed, err := delivery.NewReadyFeed(
		orderClient,
		matrix,
		redisClient,
		logg,
		cfg.Driver.MaxDestinationsPerMatrix,
		cfg.Driver.ReadyFeedCacheTTL,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to build ready feed", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting console server")

	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			pingerOrNil(redisClient),
			cartStore,
			calculator,
			checkoutService,
			orderClient,
			orderClient,
			readyFeed,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "console server stopped unexpectedly", err)
		os.Exit(1)
	}
}

// pingerOrNil keeps a nil *redis.Client from becoming a non-nil
// interface in the readiness probe.
func pingerOrNil(c *redis.Client) interface{ Ping(context.Context) error } {
	if c == nil {
		return nil
	}
	return c
}
