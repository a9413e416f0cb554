package usecases

import (
	"sort"

	"github.com/samirrijal/skyglobe/internal/core/domain"
	"github.com/samirrijal/skyglobe/internal/pkg/metrics"
)

// Hit is a ray/marker intersection.
type Hit struct {
	Marker   domain.Marker `json:"marker"`
	Distance float64       `json:"distance"`
	Point    domain.Vec3   `json:"point"`
}

// PickResolver maps screen clicks to markers of the current registry generation.
type PickResolver struct {
	registry *MarkerRegistry
}

// NewPickResolver creates a PickResolver reading from registry.
func NewPickResolver(registry *MarkerRegistry) *PickResolver {
	return &PickResolver{registry: registry}
}

// Resolve returns the marker nearest to the camera under the screen point, if any.
func (p *PickResolver) Resolve(screenX, screenY float64, vp domain.ViewportContext) (domain.Marker, bool) {
	hits := p.Hits(screenX, screenY, vp)
	if len(hits) == 0 {
		metrics.Picks.WithLabelValues("miss").Inc()
		return domain.Marker{}, false
	}
	metrics.Picks.WithLabelValues("hit").Inc()
	return hits[0].Marker, true
}

// Hits returns every marker under the screen point ordered by distance.
func (p *PickResolver) Hits(screenX, screenY float64, vp domain.ViewportContext) []Hit {
	ray, ok := vp.RayFromScreen(screenX, screenY)
	if !ok {
		return nil
	}
	return IntersectMarkers(ray, p.registry.Snapshot().Markers)
}

// IntersectMarkers tests ray against each marker's bounding sphere. Hits are
// sorted by ascending distance; equal distances keep marker order.
func IntersectMarkers(ray domain.PickRay, markers []domain.Marker) []Hit {
	var hits []Hit
	for _, m := range markers {
		t, ok := ray.IntersectSphere(m.Position, m.Radius)
		if !ok {
			continue
		}
		hits = append(hits, Hit{Marker: m, Distance: t, Point: ray.At(t)})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	return hits
}
