package main

import (
	"context"
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

	"github.com/samirrijal/skyglobe/internal/adapters/feed"
	"github.com/samirrijal/skyglobe/internal/adapters/geocode"
	"github.com/samirrijal/skyglobe/internal/adapters/http"
	natsadapter "github.com/samirrijal/skyglobe/internal/adapters/nats"
	"github.com/samirrijal/skyglobe/internal/adapters/panel"
	"github.com/samirrijal/skyglobe/internal/adapters/valkey"
	"github.com/samirrijal/skyglobe/internal/core/domain"
	"github.com/samirrijal/skyglobe/internal/core/ports"
	"github.com/samirrijal/skyglobe/internal/core/usecases"
	"github.com/samirrijal/skyglobe/internal/pkg/config"
	"github.com/samirrijal/skyglobe/internal/pkg/logging"
	"github.com/samirrijal/skyglobe/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("skyglobe-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Tracing.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing
	if cfg.Tracing.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
		if err != nil {
			slog.Warn("tracing init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Cache
	var cache ports.CacheService
	var cachePinger http.Pinger
	if cfg.Valkey.Enabled {
		vc, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
		} else {
			defer vc.Close()
			cache, cachePinger = vc, vc
		}
	}

	// NATS
	var publisher ports.EventPublisher
	deps := &http.Dependencies{}
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
		}

		// Raw NATS connection for the WebSocket relay
		nc, err := natsadapter.RawConn(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats ws conn unavailable", "error", err)
		} else {
			defer nc.Drain()
			deps.NATS = nc
		}
	}

	// Globe
	registry := usecases.NewMarkerRegistry(usecases.RegistryConfig{
		Policy: domain.RadiusPolicy{
			BaseRadius:    cfg.Globe.BaseRadius,
			AltitudeScale: cfg.Globe.AltitudeScale,
		},
		ColorFactor:  cfg.Globe.ColorFactor,
		MarkerRadius: cfg.Globe.MarkerRadius,
	})
	picker := usecases.NewPickResolver(registry)

	// Click-to-info
	places := geocode.NewClient(cfg.Geocode.BaseURL, cfg.Geocode.Language, cfg.Geocode.Timeout)
	sessions := usecases.NewSessionManager(picker, places, panel.NewPresenter(publisher), cfg.Geocode.Timeout, cfg.Sessions.TTL)
	go sessions.RunJanitor(ctx, cfg.Sessions.SweepInterval)

	// Telemetry
	source := feed.NewClient(cfg.Telemetry.BaseURL, cfg.Telemetry.ProxyPrefix, cfg.Telemetry.Timeout)
	telemetrySvc := usecases.NewTelemetryService(source, registry, cache, publisher, cfg.Telemetry.Hour, cfg.Telemetry.CacheTTL)
	telemetrySvc.SetFanout(usecases.FanoutGenerations)

	switch cfg.Telemetry.Mode {
	case config.ModeSubscribe:
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			log.Fatalf("nats subscriber: %v", err)
		}
		defer sub.Close()
		if err := sub.SubscribeSnapshots(ctx, telemetrySvc.Apply); err != nil {
			log.Fatalf("subscribe snapshots: %v", err)
		}
		slog.Info("telemetry from broker", "subject", natsadapter.SubjectSnapshot)
	default:
		go telemetrySvc.Run(ctx, cfg.Telemetry.PollInterval)
		slog.Info("telemetry polling", "url", source.URL(cfg.Telemetry.Hour), "interval", cfg.Telemetry.PollInterval)
	}

	deps.Registry = registry
	deps.Picker = picker
	deps.Sessions = sessions
	deps.Telemetry = telemetrySvc
	deps.Places = places
	deps.Camera = cfg.Camera.Camera()
	deps.Cache = cachePinger

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    256 * 1024,
		AppName:      "Skyglobe API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, If-None-Match",
		ExposeHeaders:    "ETag, Link, X-Marker-Generation, X-Request-ID",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "mode", cfg.Telemetry.Mode)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
