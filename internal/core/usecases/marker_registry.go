package usecases

import (
	"slices"
	"sync/atomic"
	"time"

	"github.com/samirrijal/skyglobe/internal/core/domain"
	"github.com/samirrijal/skyglobe/internal/pkg/metrics"
)

// RegistryConfig tunes marker placement and styling.
type RegistryConfig struct {
	Policy       domain.RadiusPolicy
	ColorFactor  float64 // k in t = min(1, altitude*k)
	MarkerRadius float64 // bounding sphere radius used for picking
}

// DefaultRegistryConfig returns the stock globe settings.
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		Policy:       domain.DefaultRadiusPolicy(),
		ColorFactor:  domain.DefaultColorFactor,
		MarkerRadius: domain.DefaultMarkerRadius,
	}
}

type registrySnapshot struct {
	gen      domain.Generation
	byHandle map[string]int
}

// MarkerRegistry owns the pickable markers of exactly one telemetry generation.
// Rebuild swaps in a complete new generation atomically, so readers never see
// a mix of old and new markers.
type MarkerRegistry struct {
	cfg     RegistryConfig
	seq     atomic.Uint64
	current atomic.Pointer[registrySnapshot]
}

// NewMarkerRegistry creates an empty registry. Zero fields in cfg fall back to
// DefaultRegistryConfig.
func NewMarkerRegistry(cfg RegistryConfig) *MarkerRegistry {
	def := DefaultRegistryConfig()
	if cfg.Policy.BaseRadius <= 0 {
		cfg.Policy.BaseRadius = def.Policy.BaseRadius
	}
	if cfg.Policy.AltitudeScale == 0 {
		cfg.Policy.AltitudeScale = def.Policy.AltitudeScale
	}
	if cfg.ColorFactor == 0 {
		cfg.ColorFactor = def.ColorFactor
	}
	if cfg.MarkerRadius <= 0 {
		cfg.MarkerRadius = def.MarkerRadius
	}

	r := &MarkerRegistry{cfg: cfg}
	r.current.Store(&registrySnapshot{byHandle: map[string]int{}})
	return r
}

// Config returns the registry settings.
func (r *MarkerRegistry) Config() RegistryConfig {
	return r.cfg
}

// Rebuild replaces every marker with one marker per coordinate.
func (r *MarkerRegistry) Rebuild(coords []domain.GeoCoordinate) domain.Generation {
	return r.RebuildSnapshot(domain.TelemetrySnapshot{
		Hour:        -1,
		FetchedAt:   time.Now(),
		Coordinates: coords,
	})
}

// RebuildSnapshot is Rebuild with the hour and fetch time carried over.
func (r *MarkerRegistry) RebuildSnapshot(snap domain.TelemetrySnapshot) domain.Generation {
	seq := r.seq.Add(1)

	markers := make([]domain.Marker, len(snap.Coordinates))
	byHandle := make(map[string]int, len(snap.Coordinates))
	for i, c := range snap.Coordinates {
		color := domain.AltitudeColor(c.Altitude, r.cfg.ColorFactor)
		handle := domain.MarkerHandle(seq, i)
		markers[i] = domain.Marker{
			ID:         i,
			Handle:     handle,
			Generation: seq,
			Position:   r.cfg.Policy.ProjectCoordinate(c),
			Coordinate: c,
			Color:      color,
			ColorHex:   color.Hex(),
			Radius:     r.cfg.MarkerRadius,
		}
		byHandle[handle] = i
	}

	snapshot := &registrySnapshot{
		gen: domain.Generation{
			Seq:       seq,
			Hour:      snap.Hour,
			FetchedAt: snap.FetchedAt,
			Markers:   markers,
		},
		byHandle: byHandle,
	}
	r.current.Store(snapshot)

	metrics.MarkersActive.Set(float64(len(markers)))
	metrics.MarkerGeneration.Set(float64(seq))

	return snapshot.gen
}

// All returns a copy of the current markers.
func (r *MarkerRegistry) All() []domain.Marker {
	return slices.Clone(r.current.Load().gen.Markers)
}

// Snapshot returns the current generation. Its Markers slice is shared and
// must not be modified.
func (r *MarkerRegistry) Snapshot() domain.Generation {
	return r.current.Load().gen
}

// Lookup finds a marker of the current generation by handle.
func (r *MarkerRegistry) Lookup(handle string) (domain.Marker, bool) {
	snap := r.current.Load()
	i, ok := snap.byHandle[handle]
	if !ok {
		return domain.Marker{}, false
	}
	return snap.gen.Markers[i], true
}

// Len returns the number of markers in the current generation.
func (r *MarkerRegistry) Len() int {
	return len(r.current.Load().gen.Markers)
}
