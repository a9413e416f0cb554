package usecases_test

import (
	"context"
	"sync"

	"github.com/samirrijal/skyglobe/internal/core/domain"
)

// --- Mock TelemetrySource ---

type mockSource struct {
	fetchFn func(ctx context.Context, hour int) ([]domain.GeoCoordinate, error)
}

func (m *mockSource) Fetch(ctx context.Context, hour int) ([]domain.GeoCoordinate, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, hour)
	}
	return nil, nil
}

// --- Mock PlaceResolver ---

type mockPlaces struct {
	reverseFn func(ctx context.Context, lat, lon float64) (domain.PlaceDescriptor, error)
}

func (m *mockPlaces) Reverse(ctx context.Context, lat, lon float64) (domain.PlaceDescriptor, error) {
	if m.reverseFn != nil {
		return m.reverseFn(ctx, lat, lon)
	}
	return domain.PlaceDescriptor{}, nil
}

// --- Mock InfoPanel ---

type mockPanel struct {
	mu     sync.Mutex
	shown  []domain.PanelState
	hidden []string
}

func (m *mockPanel) Show(ctx context.Context, state domain.PanelState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shown = append(m.shown, state)
}

func (m *mockPanel) Hide(ctx context.Context, sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hidden = append(m.hidden, sessionID)
}

func (m *mockPanel) Shown() []domain.PanelState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.PanelState(nil), m.shown...)
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.sets++
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu          sync.Mutex
	snapshots   []*domain.TelemetrySnapshot
	generations []*domain.Generation
	panels      []*domain.PanelState
}

func (m *mockPublisher) PublishSnapshot(ctx context.Context, snap *domain.TelemetrySnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, snap)
	return nil
}

func (m *mockPublisher) PublishGeneration(ctx context.Context, gen *domain.Generation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generations = append(m.generations, gen)
	return nil
}

func (m *mockPublisher) PublishPanel(ctx context.Context, state *domain.PanelState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panels = append(m.panels, state)
	return nil
}

// --- Helpers ---

func testViewport() domain.ViewportContext {
	return domain.ViewportContext{Width: 800, Height: 600, Camera: domain.DefaultCamera()}
}
