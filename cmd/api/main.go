package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/orangegegege/equipment-manager/api/routes"
	"github.com/orangegegege/equipment-manager/internal/auth"
	"github.com/orangegegege/equipment-manager/internal/borrow"
	"github.com/orangegegege/equipment-manager/internal/cart"
	"github.com/orangegegege/equipment-manager/internal/inventory"
	"github.com/orangegegege/equipment-manager/internal/manifest"
	"github.com/orangegegege/equipment-manager/internal/media"
	"github.com/orangegegege/equipment-manager/pkg/auth/session"
	"github.com/orangegegege/equipment-manager/pkg/config"
	"github.com/orangegegege/equipment-manager/pkg/db"
	"github.com/orangegegege/equipment-manager/pkg/logger"
	"github.com/orangegegege/equipment-manager/pkg/metrics"
	"github.com/orangegegege/equipment-manager/pkg/migrate"
	"github.com/orangegegege/equipment-manager/pkg/redis"
	"github.com/orangegegege/equipment-manager/pkg/storage/gcs"
)

const shutdownGrace = 15 * time.Second

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

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap object storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing object storage", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	workflowMetrics := metrics.NewWorkflowMetrics(registry)

	itemRepo := inventory.NewRepository(dbClient.DB())
	recordRepo := borrow.NewRecordRepository(dbClient.DB())

	inventoryService, err := inventory.NewService(itemRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(redisClient, itemRepo, sessionManager.TTL())
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	borrowService, err := borrow.NewService(dbClient, itemRepo, recordRepo, cartService, logg, workflowMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create borrow service", err)
		os.Exit(1)
	}

	manifestService, err := manifest.NewService(cfg.Manifest)
	if err != nil {
		logg.Error(context.Background(), "failed to create manifest service", err)
		os.Exit(1)
	}

	mediaService, err := media.NewService(gcsClient, cfg.Media, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create media service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(sessionManager, cfg.Auth, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, gcsClient, sessionManager, registry, routes.Services{
			Auth:      authService,
			Inventory: inventoryService,
			Cart:      cartService,
			Borrow:    borrowService,
			Manifest:  manifestService,
			Media:     mediaService,
			Workflow:  workflowMetrics,
		}),
	}

	signalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-signalCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
