package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/samirrijal/skyglobe/internal/core/domain"
	"github.com/samirrijal/skyglobe/internal/core/ports"
	"github.com/samirrijal/skyglobe/internal/pkg/metrics"
)

// HoursAvailable is the number of hourly feed files (00.json to 23.json).
const HoursAvailable = 24

// ErrInvalidHour is returned for an hour index outside 0-23.
var ErrInvalidHour = errors.New("hour must be between 0 and 23")

// TelemetryStatus describes the outcome of the most recent refreshes.
type TelemetryStatus struct {
	Hour                int       `json:"hour"`
	Generation          uint64    `json:"generation"`
	Markers             int       `json:"markers"`
	LastAttempt         time.Time `json:"last_attempt"`
	LastSuccess         time.Time `json:"last_success"`
	LastError           string    `json:"last_error,omitempty"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
}

// Fanout selects what a TelemetryService announces on the broker.
type Fanout int

const (
	// FanoutGenerations announces every rebuilt marker generation. Used by
	// the API, which owns the registry that browsers read.
	FanoutGenerations Fanout = iota
	// FanoutSnapshots announces raw feed snapshots for API instances running
	// in subscribe mode. Used by the standalone poller.
	FanoutSnapshots
)

// TelemetryService turns feed fetches into marker generations. A failed fetch
// leaves the current generation in place.
type TelemetryService struct {
	source    ports.TelemetrySource
	registry  *MarkerRegistry
	cache     ports.CacheService
	publisher ports.EventPublisher
	cacheTTL  int
	hour      int
	fanout    Fanout

	mu     sync.Mutex
	status TelemetryStatus
}

// NewTelemetryService creates a TelemetryService. cache and publisher may be nil.
func NewTelemetryService(
	source ports.TelemetrySource,
	registry *MarkerRegistry,
	cache ports.CacheService,
	publisher ports.EventPublisher,
	hour int,
	cacheTTLSeconds int,
) *TelemetryService {
	return &TelemetryService{
		source:    source,
		registry:  registry,
		cache:     cache,
		publisher: publisher,
		cacheTTL:  cacheTTLSeconds,
		hour:      hour,
		status:    TelemetryStatus{Hour: hour},
	}
}

// SetFanout changes what is published after a refresh.
func (s *TelemetryService) SetFanout(f Fanout) {
	s.fanout = f
}

// DefaultHour is the hour index used by the poll loop.
func (s *TelemetryService) DefaultHour() int {
	return s.hour
}

// Refresh fetches the feed for hour, rebuilds the registry and announces the
// new generation. On error the registry is left untouched.
func (s *TelemetryService) Refresh(ctx context.Context, hour int) (domain.Generation, error) {
	if hour < 0 || hour >= HoursAvailable {
		return domain.Generation{}, ErrInvalidHour
	}

	start := time.Now()
	snap, err := s.snapshot(ctx, hour)
	metrics.TelemetryPollDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.TelemetryPolls.WithLabelValues("error").Inc()
		s.recordFailure(start, err)
		slog.Error("telemetry refresh failed", "hour", hour, "error", err)
		return domain.Generation{}, fmt.Errorf("refresh hour %02d: %w", hour, err)
	}
	metrics.TelemetryPolls.WithLabelValues("ok").Inc()

	if s.publisher != nil && s.fanout == FanoutSnapshots {
		if err := s.publisher.PublishSnapshot(ctx, snap); err != nil {
			slog.Warn("publish snapshot failed", "hour", hour, "error", err)
		}
	}

	gen := s.apply(ctx, snap, start)
	slog.Info("telemetry refreshed", "hour", hour, "markers", len(gen.Markers), "generation", gen.Seq)
	return gen, nil
}

// Apply rebuilds the registry from a snapshot received from elsewhere, such
// as a poller publishing over the broker.
func (s *TelemetryService) Apply(ctx context.Context, snap *domain.TelemetrySnapshot) error {
	if snap == nil {
		return errors.New("nil snapshot")
	}
	gen := s.apply(ctx, snap, time.Now())
	slog.Info("telemetry snapshot applied", "hour", snap.Hour, "markers", len(gen.Markers), "generation", gen.Seq)
	return nil
}

func (s *TelemetryService) apply(ctx context.Context, snap *domain.TelemetrySnapshot, attempt time.Time) domain.Generation {
	gen := s.registry.RebuildSnapshot(*snap)

	s.mu.Lock()
	s.status = TelemetryStatus{
		Hour:        snap.Hour,
		Generation:  gen.Seq,
		Markers:     len(gen.Markers),
		LastAttempt: attempt,
		LastSuccess: time.Now(),
	}
	s.mu.Unlock()

	if s.publisher != nil && s.fanout == FanoutGenerations {
		if err := s.publisher.PublishGeneration(ctx, &gen); err != nil {
			slog.Warn("publish generation failed", "generation", gen.Seq, "error", err)
		}
	}
	return gen
}

// snapshot reads the hour from cache, falling back to the feed.
func (s *TelemetryService) snapshot(ctx context.Context, hour int) (*domain.TelemetrySnapshot, error) {
	cacheKey := snapshotKey(hour)
	if s.cache != nil {
		data, err := s.cache.Get(ctx, cacheKey)
		switch {
		case err == nil:
			var snap domain.TelemetrySnapshot
			if err := json.Unmarshal(data, &snap); err == nil {
				metrics.CacheHits.WithLabelValues("telemetry").Inc()
				return &snap, nil
			}
		case !errors.Is(err, domain.ErrNotFound):
			slog.Warn("telemetry cache read failed", "key", cacheKey, "error", err)
		}
		metrics.CacheMisses.WithLabelValues("telemetry").Inc()
	}

	coords, err := s.source.Fetch(ctx, hour)
	if err != nil {
		return nil, err
	}
	snap := &domain.TelemetrySnapshot{
		Hour:        hour,
		FetchedAt:   time.Now().UTC(),
		Coordinates: coords,
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if data, err := json.Marshal(snap); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.cacheTTL)
		}
	}
	return snap, nil
}

// Invalidate drops the cached snapshot for hour so the next refresh goes to
// the feed.
func (s *TelemetryService) Invalidate(ctx context.Context, hour int) error {
	if hour < 0 || hour >= HoursAvailable {
		return ErrInvalidHour
	}
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Delete(ctx, snapshotKey(hour)); err != nil {
		return fmt.Errorf("invalidate hour %02d: %w", hour, err)
	}
	return nil
}

func snapshotKey(hour int) string {
	return fmt.Sprintf("telemetry:hour:%02d", hour)
}

func (s *TelemetryService) recordFailure(attempt time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.LastAttempt = attempt
	s.status.LastError = err.Error()
	s.status.ConsecutiveFailures++
}

// Status returns the outcome of the latest refreshes.
func (s *TelemetryService) Status() TelemetryStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Run refreshes the default hour immediately and then every interval until
// ctx is cancelled. Failures are logged and retried on the next tick.
func (s *TelemetryService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	_, _ = s.Refresh(ctx, s.hour)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("telemetry poller stopped")
			return
		case <-ticker.C:
			_, _ = s.Refresh(ctx, s.hour)
		}
	}
}
