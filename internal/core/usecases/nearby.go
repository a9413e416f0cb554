package usecases

import (
	"sort"

	"github.com/samirrijal/skyglobe/internal/core/domain"
	"github.com/samirrijal/skyglobe/internal/pkg/geospatial"
)

// NearbyMarker is a marker with its ground distance from a query point.
type NearbyMarker struct {
	domain.Marker
	DistanceMeters float64 `json:"distance_m"`
}

// Nearby returns markers of the current generation whose ground track lies
// within radiusMeters of (lat, lon), nearest first. limit <= 0 or > 100
// falls back to 100.
func (r *MarkerRegistry) Nearby(lat, lon, radiusMeters float64, limit int) []NearbyMarker {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(lat, lon, radiusMeters)

	var out []NearbyMarker
	for _, m := range r.current.Load().gen.Markers {
		c := m.Coordinate
		if !geospatial.InBox(c.Latitude, c.Longitude, minLat, minLon, maxLat, maxLon) {
			continue
		}
		d := geospatial.Haversine(lat, lon, c.Latitude, c.Longitude)
		if d <= radiusMeters {
			out = append(out, NearbyMarker{Marker: m, DistanceMeters: d})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceMeters < out[j].DistanceMeters
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
