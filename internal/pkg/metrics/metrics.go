package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skyglobe",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "skyglobe",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "skyglobe",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Telemetry feed metrics
	TelemetryPolls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skyglobe",
		Subsystem: "telemetry",
		Name:      "polls_total",
		Help:      "Total telemetry refreshes by outcome",
	}, []string{"outcome"})

	TelemetryPollDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "skyglobe",
		Subsystem: "telemetry",
		Name:      "poll_duration_seconds",
		Help:      "Duration of telemetry feed refreshes",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	})

	TelemetryRowsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "skyglobe",
		Subsystem: "telemetry",
		Name:      "rows_skipped_total",
		Help:      "Telemetry rows dropped because they were not [lat, lon, alt]",
	})

	// Globe metrics
	MarkersActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "skyglobe",
		Subsystem: "globe",
		Name:      "markers",
		Help:      "Markers in the current generation",
	})

	MarkerGeneration = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "skyglobe",
		Subsystem: "globe",
		Name:      "generation",
		Help:      "Sequence number of the current marker generation",
	})

	Picks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skyglobe",
		Subsystem: "globe",
		Name:      "picks_total",
		Help:      "Pick attempts by result",
	}, []string{"result"})

	// Click-to-info metrics
	GeocodeLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skyglobe",
		Subsystem: "geocode",
		Name:      "lookups_total",
		Help:      "Reverse-geocode lookups by outcome",
	}, []string{"outcome"})

	GeocodeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "skyglobe",
		Subsystem: "geocode",
		Name:      "lookup_duration_seconds",
		Help:      "Duration of reverse-geocode lookups",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	StaleLookupsDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "skyglobe",
		Subsystem: "panel",
		Name:      "stale_lookups_discarded_total",
		Help:      "Lookup completions dropped because a newer click superseded them",
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "skyglobe",
		Subsystem: "panel",
		Name:      "active_sessions",
		Help:      "Click sessions currently tracked",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "skyglobe",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skyglobe",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skyglobe",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		// fiber resolves the route pattern, which keeps :id out of the labels
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
