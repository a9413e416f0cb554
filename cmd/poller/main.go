package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/samirrijal/skyglobe/internal/adapters/feed"
	natsadapter "github.com/samirrijal/skyglobe/internal/adapters/nats"
	"github.com/samirrijal/skyglobe/internal/adapters/valkey"
	"github.com/samirrijal/skyglobe/internal/core/ports"
	"github.com/samirrijal/skyglobe/internal/core/usecases"
	"github.com/samirrijal/skyglobe/internal/pkg/config"
	"github.com/samirrijal/skyglobe/internal/pkg/logging"
	"github.com/samirrijal/skyglobe/internal/pkg/telemetry"
)

// The poller fetches the telemetry feed on a ticker and publishes each
// snapshot to JetStream, where API instances in subscribe mode pick it up.
func main() {
	cfg, err := config.Load("skyglobe-poller")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if !cfg.NATS.Enabled {
		log.Fatalf("config: the poller needs nats.enabled")
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Tracing.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Tracing.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
		if err != nil {
			slog.Warn("tracing init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer pub.Close()

	var cache ports.CacheService
	if cfg.Valkey.Enabled {
		vc, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
		} else {
			defer vc.Close()
			cache = vc
		}
	}

	// The poller keeps its own registry only to report what it last fetched.
	registry := usecases.NewMarkerRegistry(usecases.DefaultRegistryConfig())
	source := feed.NewClient(cfg.Telemetry.BaseURL, cfg.Telemetry.ProxyPrefix, cfg.Telemetry.Timeout)
	svc := usecases.NewTelemetryService(source, registry, cache, pub, cfg.Telemetry.Hour, cfg.Telemetry.CacheTTL)
	svc.SetFanout(usecases.FanoutSnapshots)

	slog.Info("telemetry poller starting",
		"url", source.URL(cfg.Telemetry.Hour),
		"interval", cfg.Telemetry.PollInterval,
		"subject", natsadapter.SubjectSnapshot,
	)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		sig := <-quit
		slog.Info("shutting down telemetry poller", "signal", sig.String())
		cancel()
	}()

	svc.Run(ctx, cfg.Telemetry.PollInterval)
}
