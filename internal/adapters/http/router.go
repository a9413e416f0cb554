package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/skyglobe/internal/pkg/metrics"
)

// requestTimeout bounds ordinary REST handlers. Telemetry refresh gets the
// feed client's own timeout on top of this.
const (
	requestTimeout = 15 * time.Second
	refreshTimeout = 45 * time.Second
)

// balloonsSunset is when the /v1/balloons alias goes away.
var balloonsSunset = time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// Rate limiting: 600 requests per minute per IP. Clicks are chatty.
	app.Use(limiter.New(limiter.Config{
		Max:        600,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(DeprecationMiddleware([]DeprecatedRoute{
		{Path: "/v1/balloons", SunsetDate: balloonsSunset, Alternative: "/v1/markers"},
	}))

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")

	// Markers. Literal paths go before :handle.
	v1.Get("/markers", timeout.NewWithContext(ListMarkersHandler(deps), requestTimeout))
	v1.Get("/markers/geojson", timeout.NewWithContext(MarkersGeoJSONHandler(deps), requestTimeout))
	v1.Get("/markers/nearby", timeout.NewWithContext(NearbyMarkersHandler(deps), requestTimeout))
	v1.Get("/markers/:handle", timeout.NewWithContext(GetMarkerHandler(deps), requestTimeout))
	v1.Get("/balloons", timeout.NewWithContext(ListMarkersHandler(deps), requestTimeout))

	v1.Post("/pick", timeout.NewWithContext(PickHandler(deps), requestTimeout))

	// Click sessions
	v1.Post("/sessions", CreateSessionHandler(deps))
	v1.Delete("/sessions/:id", DeleteSessionHandler(deps))
	v1.Post("/sessions/:id/clicks", timeout.NewWithContext(ClickHandler(deps), requestTimeout))
	v1.Get("/sessions/:id/panel", GetPanelHandler(deps))
	v1.Delete("/sessions/:id/panel", DismissPanelHandler(deps))
	v1.Put("/sessions/:id/viewport", UpdateViewportHandler(deps))

	// Telemetry
	v1.Post("/telemetry/refresh", timeout.NewWithContext(RefreshTelemetryHandler(deps), refreshTimeout))
	v1.Get("/telemetry/status", TelemetryStatusHandler(deps))

	app.Post("/graphql", timeout.NewWithContext(GraphQLHandler(deps), requestTimeout))

	SetupDocs(app)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
