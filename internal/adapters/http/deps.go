package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/skyglobe/internal/core/domain"
	"github.com/samirrijal/skyglobe/internal/core/ports"
	"github.com/samirrijal/skyglobe/internal/core/usecases"
)

// Pinger is a backing service that can report its health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Registry  *usecases.MarkerRegistry
	Picker    *usecases.PickResolver
	Sessions  *usecases.SessionManager
	Telemetry *usecases.TelemetryService
	Places    ports.PlaceResolver
	Camera    domain.Camera // used when a request carries no camera
	NATS      *nats.Conn
	Cache     Pinger
}
