package usecases_test

import (
	"testing"

	"github.com/samirrijal/skyglobe/internal/core/domain"
	"github.com/samirrijal/skyglobe/internal/core/usecases"
)

var newYork = domain.GeoCoordinate{Latitude: 40.7128, Longitude: -74.0060, Altitude: 5}

func TestPickResolver_Miss(t *testing.T) {
	reg := usecases.NewMarkerRegistry(usecases.RegistryConfig{})
	reg.Rebuild([]domain.GeoCoordinate{newYork})
	picker := usecases.NewPickResolver(reg)

	if m, ok := picker.Resolve(0, 0, testViewport()); ok {
		t.Errorf("expected miss at the corner, got marker %d", m.ID)
	}
}

func TestPickResolver_EmptyRegistry(t *testing.T) {
	picker := usecases.NewPickResolver(usecases.NewMarkerRegistry(usecases.RegistryConfig{}))
	if _, ok := picker.Resolve(400, 300, testViewport()); ok {
		t.Error("expected no hit on an empty registry")
	}
}

func TestPickResolver_ZeroViewport(t *testing.T) {
	reg := usecases.NewMarkerRegistry(usecases.RegistryConfig{})
	reg.Rebuild([]domain.GeoCoordinate{newYork})
	picker := usecases.NewPickResolver(reg)

	if _, ok := picker.Resolve(0, 0, domain.ViewportContext{}); ok {
		t.Error("expected no hit for a zero-size viewport")
	}
}

func TestPickResolver_SingleHit(t *testing.T) {
	reg := usecases.NewMarkerRegistry(usecases.RegistryConfig{})
	gen := reg.Rebuild([]domain.GeoCoordinate{newYork})
	picker := usecases.NewPickResolver(reg)
	vp := testViewport()

	pt, ok := vp.ProjectToScreen(gen.Markers[0].Position)
	if !ok {
		t.Fatal("marker should be in front of the camera")
	}

	m, ok := picker.Resolve(pt.X, pt.Y, vp)
	if !ok {
		t.Fatalf("expected hit at %+v", pt)
	}
	if m.Handle != gen.Markers[0].Handle {
		t.Errorf("picked %s, want %s", m.Handle, gen.Markers[0].Handle)
	}
}

func TestPickResolver_OverlapPicksNearest(t *testing.T) {
	reg := usecases.NewMarkerRegistry(usecases.RegistryConfig{})
	low := newYork
	high := newYork
	high.Altitude = 10
	gen := reg.Rebuild([]domain.GeoCoordinate{low, high})
	picker := usecases.NewPickResolver(reg)
	vp := testViewport()

	pt, _ := vp.ProjectToScreen(gen.Markers[1].Position)
	hits := picker.Hits(pt.X, pt.Y, vp)
	if len(hits) != 2 {
		t.Fatalf("expected both markers under the cursor, got %d", len(hits))
	}

	m, ok := picker.Resolve(pt.X, pt.Y, vp)
	if !ok {
		t.Fatal("expected hit")
	}
	// the higher balloon sits between the camera and the lower one
	if m.ID != 1 {
		t.Errorf("picked marker %d, want 1", m.ID)
	}
}

func TestIntersectMarkers_Ordering(t *testing.T) {
	ray := domain.PickRay{Origin: domain.Vec3{Z: 5}, Direction: domain.Vec3{Z: -1}}
	markers := []domain.Marker{
		{ID: 0, Position: domain.Vec3{Z: 1}, Radius: 0.1},
		{ID: 1, Position: domain.Vec3{Z: 2}, Radius: 0.1},
		{ID: 2, Position: domain.Vec3{X: 3}, Radius: 0.1},
	}

	hits := usecases.IntersectMarkers(ray, markers)
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Marker.ID != 1 || hits[1].Marker.ID != 0 {
		t.Errorf("unexpected order: %d, %d", hits[0].Marker.ID, hits[1].Marker.ID)
	}
	if d := hits[0].Distance; d < 2.89 || d > 2.91 {
		t.Errorf("nearest distance = %v, want 2.9", d)
	}
}

func TestIntersectMarkers_TieKeepsLowerID(t *testing.T) {
	ray := domain.PickRay{Origin: domain.Vec3{Z: 5}, Direction: domain.Vec3{Z: -1}}
	markers := []domain.Marker{
		{ID: 0, Position: domain.Vec3{Z: 1}, Radius: 0.1},
		{ID: 1, Position: domain.Vec3{Z: 1}, Radius: 0.1},
	}

	hits := usecases.IntersectMarkers(ray, markers)
	if len(hits) != 2 || hits[0].Marker.ID != 0 {
		t.Fatalf("expected marker 0 first, got %+v", hits)
	}
}

func TestIntersectMarkers_BehindOrigin(t *testing.T) {
	ray := domain.PickRay{Origin: domain.Vec3{Z: 5}, Direction: domain.Vec3{Z: 1}}
	markers := []domain.Marker{{ID: 0, Position: domain.Vec3{Z: 1}, Radius: 0.1}}

	if hits := usecases.IntersectMarkers(ray, markers); len(hits) != 0 {
		t.Errorf("expected no hits behind the ray, got %d", len(hits))
	}
}
