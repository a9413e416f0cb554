package ports

import (
	"context"

	"github.com/samirrijal/skyglobe/internal/core/domain"
)

// TelemetrySource retrieves balloon positions for an hour index (0-23).
type TelemetrySource interface {
	Fetch(ctx context.Context, hour int) ([]domain.GeoCoordinate, error)
}

// PlaceResolver reverse-geocodes a coordinate.
type PlaceResolver interface {
	Reverse(ctx context.Context, lat, lon float64) (domain.PlaceDescriptor, error)
}

// InfoPanel displays a text message near a screen point for one session.
type InfoPanel interface {
	Show(ctx context.Context, state domain.PanelState)
	Hide(ctx context.Context, sessionID string)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishSnapshot(ctx context.Context, snap *domain.TelemetrySnapshot) error
	PublishGeneration(ctx context.Context, gen *domain.Generation) error
	PublishPanel(ctx context.Context, state *domain.PanelState) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeSnapshots(ctx context.Context, handler func(ctx context.Context, snap *domain.TelemetrySnapshot) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
