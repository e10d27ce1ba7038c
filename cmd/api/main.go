package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/catalogcart/api/controllers"
	"github.com/angelmondragon/catalogcart/api/routes"
	"github.com/angelmondragon/catalogcart/internal/catalog"
	"github.com/angelmondragon/catalogcart/internal/storage"
	"github.com/angelmondragon/catalogcart/internal/storefront"
	"github.com/angelmondragon/catalogcart/pkg/config"
	"github.com/angelmondragon/catalogcart/pkg/db"
	"github.com/angelmondragon/catalogcart/pkg/logger"
	"github.com/angelmondragon/catalogcart/pkg/metrics"
	"github.com/angelmondragon/catalogcart/pkg/migrate"
	"github.com/angelmondragon/catalogcart/pkg/redis"
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

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, readiness, closeStore, err := openStorage(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, closeStore())
	}()

	cat, err := catalog.Load(cfg.Catalog.Dir)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storefrontMetrics := metrics.NewStorefrontMetrics(registry)

	sessions, err := storefront.NewManager(cat, store,
		storefront.WithCartKey(cfg.Storage.CartKey),
		storefront.WithLogger(logg),
		storefront.WithMetrics(storefrontMetrics),
		storefront.WithIdleTTL(cfg.Session.CookieTTL),
	)
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":            cfg.App.Env,
		"addr":           addr,
		"storage_driver": cfg.Storage.Driver,
		"products":       len(cat.Products()),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, cat, sessions, storefrontMetrics, registry, readiness),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openStorage connects the configured cart storage and returns the dependencies the
// readiness probe should check.
func openStorage(ctx context.Context, cfg *config.Config, logg *logger.Logger) (storage.Store, map[string]controllers.Pinger, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Storage.Driver {
	case config.StorageDriverRedis:
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, nil, noop, err
		}
		store, err := storage.NewRedis(client, cfg.Redis.CartTTL)
		if err != nil {
			return nil, nil, noop, multierr.Append(err, client.Close())
		}
		return store, map[string]controllers.Pinger{"redis": client}, client.Close, nil

	case config.StorageDriverSQL:
		client, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, nil, noop, err
		}
		if err := migrate.MaybeAutoRun(ctx, cfg, logg, client); err != nil {
			return nil, nil, noop, multierr.Append(err, client.Close())
		}
		store, err := storage.NewSQL(client.DB())
		if err != nil {
			return nil, nil, noop, multierr.Append(err, client.Close())
		}
		return store, map[string]controllers.Pinger{"database": client}, client.Close, nil

	default:
		store := storage.NewMemory()
		return store, map[string]controllers.Pinger{"storage": store}, noop, nil
	}
}
