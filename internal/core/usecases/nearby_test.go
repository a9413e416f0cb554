package usecases_test

import (
	"math"
	"testing"

	"github.com/samirrijal/skyglobe/internal/core/domain"
	"github.com/samirrijal/skyglobe/internal/core/usecases"
)

func TestMarkerRegistry_Nearby(t *testing.T) {
	reg := usecases.NewMarkerRegistry(usecases.RegistryConfig{})
	reg.Rebuild([]domain.GeoCoordinate{
		london,
		{Latitude: 48.8566, Longitude: 2.3522, Altitude: 3}, // Paris, ~344 km from London
		newYork,
		{Latitude: 51.52, Longitude: -0.10, Altitude: 12}, // ~2.4 km from London
	})

	got := reg.Nearby(51.5074, -0.1278, 500e3, 10)
	if len(got) != 3 {
		t.Fatalf("expected 3 markers within 500 km, got %d", len(got))
	}
	if got[0].ID != 0 || got[1].ID != 3 || got[2].ID != 1 {
		t.Errorf("order = %d, %d, %d", got[0].ID, got[1].ID, got[2].ID)
	}
	if got[0].DistanceMeters != 0 {
		t.Errorf("self distance = %v", got[0].DistanceMeters)
	}

	if limited := reg.Nearby(51.5074, -0.1278, 500e3, 1); len(limited) != 1 {
		t.Errorf("limit ignored: %d results", len(limited))
	}
}

func TestMarkerRegistry_NearbyEdgeOfRadius(t *testing.T) {
	reg := usecases.NewMarkerRegistry(usecases.RegistryConfig{})
	// 999.5 km due north of (0, 0) on a 6371 km sphere
	north := 999.5e3 / (6371e3 * math.Pi / 180)
	reg.Rebuild([]domain.GeoCoordinate{{Latitude: north, Longitude: 0, Altitude: 1}})

	got := reg.Nearby(0, 0, 1000e3, 10)
	if len(got) != 1 {
		t.Fatalf("expected the marker at 999.5 km, got %d results", len(got))
	}
	if math.Abs(got[0].DistanceMeters-999.5e3) > 1 {
		t.Errorf("distance = %.1f m", got[0].DistanceMeters)
	}
}

func TestMarkerRegistry_NearbyAcrossPole(t *testing.T) {
	reg := usecases.NewMarkerRegistry(usecases.RegistryConfig{})
	reg.Rebuild([]domain.GeoCoordinate{
		{Latitude: 89.5, Longitude: 180, Altitude: 20}, // ~167 km, other side of the pole
		{Latitude: 85, Longitude: 90, Altitude: 20},    // well outside 300 km
	})

	got := reg.Nearby(89, 0, 300e3, 10)
	if len(got) != 1 || got[0].ID != 0 {
		t.Fatalf("expected only the marker beyond the pole, got %+v", got)
	}
}
