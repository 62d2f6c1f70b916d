package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ibrahimali10381-lab/Bloomwatch/internal/adapters/earthengine"
	"github.com/ibrahimali10381-lab/Bloomwatch/internal/adapters/http"
	natsadapter "github.com/ibrahimali10381-lab/Bloomwatch/internal/adapters/nats"
	"github.com/ibrahimali10381-lab/Bloomwatch/internal/adapters/postgres"
	"github.com/ibrahimali10381-lab/Bloomwatch/internal/adapters/valkey"
	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/domain"
	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/ports"
	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/usecases"
	"github.com/ibrahimali10381-lab/Bloomwatch/internal/pkg/charts"
	"github.com/ibrahimali10381-lab/Bloomwatch/internal/pkg/config"
	"github.com/ibrahimali10381-lab/Bloomwatch/internal/pkg/logging"
	"github.com/ibrahimali10381-lab/Bloomwatch/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("bloomwatch-web")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	// The raster credential is required before anything else starts.
	if err := cfg.EarthEngine.Validate(); err != nil {
		var cerr *domain.ConfigError
		if errors.As(err, &cerr) {
			log.Fatalf("configuration: %v", cerr)
		}
		log.Fatalf("configuration: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Raster analytics client. A bad credential is fatal here, before any
	// request is served.
	ee, err := earthengine.New(ctx, cfg.EarthEngine)
	if err != nil {
		log.Fatalf("earth engine client: %v", err)
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		defer cache.Close()
	}

	// NATS render-activity events
	var events ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		events = pub
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Repos
	boundaryRepo := postgres.NewBoundaryRepo(db)

	// Use cases
	var cacheSvc ports.CacheService
	if cache != nil {
		cacheSvc = cache
	}
	boundarySvc := usecases.NewBoundaryService(boundaryRepo, cacheSvc)
	rasterSvc := usecases.NewRasterService(ee)
	bloomSvc := usecases.NewBloomService(rasterSvc, ee)
	mapSvc := usecases.NewMapService(boundarySvc, rasterSvc, bloomSvc, events)
	tsSvc := usecases.NewTimeSeriesService(rasterSvc, charts.NewRenderer(), events, cfg.Charts.Dir, cfg.Charts.URLPrefix)

	deps := &http.Dependencies{
		Boundaries: boundarySvc,
		Rasters:    rasterSvc,
		Bloom:      bloomSvc,
		Maps:       mapSvc,
		TimeSeries: tsSvc,
		NATS:       natsConn,
		DB:         db,
		Cache:      cache,
		ChartsDir:  cfg.Charts.Dir,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Bloomwatch",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("web server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
