package usecases_test

import (
	"math"
	"sync"
	"testing"

	"github.com/samirrijal/skyglobe/internal/core/domain"
	"github.com/samirrijal/skyglobe/internal/core/usecases"
)

func TestMarkerRegistry_RebuildCount(t *testing.T) {
	reg := usecases.NewMarkerRegistry(usecases.RegistryConfig{})

	coords := []domain.GeoCoordinate{
		{Latitude: 10, Longitude: 20, Altitude: 1},
		{Latitude: -30, Longitude: 140, Altitude: 12},
		{Latitude: 60, Longitude: -75, Altitude: 20},
	}
	gen := reg.Rebuild(coords)

	if len(gen.Markers) != 3 {
		t.Fatalf("expected 3 markers, got %d", len(gen.Markers))
	}
	if reg.Len() != 3 {
		t.Errorf("expected Len 3, got %d", reg.Len())
	}
	for i, m := range gen.Markers {
		if m.ID != i {
			t.Errorf("marker %d has ID %d", i, m.ID)
		}
		if m.Coordinate != coords[i] {
			t.Errorf("marker %d coordinate = %+v, want %+v", i, m.Coordinate, coords[i])
		}
		if m.Radius != domain.DefaultMarkerRadius {
			t.Errorf("marker %d radius = %v", i, m.Radius)
		}
	}
}

func TestMarkerRegistry_RebuildReplacesGeneration(t *testing.T) {
	reg := usecases.NewMarkerRegistry(usecases.RegistryConfig{})

	first := reg.Rebuild([]domain.GeoCoordinate{{Latitude: 1, Longitude: 1}, {Latitude: 2, Longitude: 2}})
	second := reg.Rebuild([]domain.GeoCoordinate{{Latitude: 3, Longitude: 3}})

	if second.Seq <= first.Seq {
		t.Fatalf("expected increasing generation, got %d then %d", first.Seq, second.Seq)
	}
	if reg.Len() != 1 {
		t.Fatalf("expected 1 marker after rebuild, got %d", reg.Len())
	}
	if _, ok := reg.Lookup(first.Markers[0].Handle); ok {
		t.Error("marker of the previous generation still resolvable")
	}
	m, ok := reg.Lookup(second.Markers[0].Handle)
	if !ok {
		t.Fatal("current marker not found by handle")
	}
	if m.Coordinate.Latitude != 3 {
		t.Errorf("unexpected marker %+v", m)
	}
}

func TestMarkerRegistry_EmptyRebuild(t *testing.T) {
	reg := usecases.NewMarkerRegistry(usecases.RegistryConfig{})
	reg.Rebuild([]domain.GeoCoordinate{{Latitude: 1}})
	reg.Rebuild(nil)

	if reg.Len() != 0 {
		t.Errorf("expected empty registry, got %d markers", reg.Len())
	}
	if len(reg.All()) != 0 {
		t.Error("All returned markers for an empty generation")
	}
}

func TestMarkerRegistry_AltitudeColor(t *testing.T) {
	reg := usecases.NewMarkerRegistry(usecases.RegistryConfig{})
	gen := reg.Rebuild([]domain.GeoCoordinate{
		{Latitude: 0, Longitude: 0, Altitude: 0},
		{Latitude: 0, Longitude: 0, Altitude: 1000},
		{Latitude: 0, Longitude: 0, Altitude: 10},
		{Latitude: 0, Longitude: 0, Altitude: -4},
	})

	if gen.Markers[0].ColorHex != "#ff0000" {
		t.Errorf("altitude 0: got %s, want #ff0000", gen.Markers[0].ColorHex)
	}
	if gen.Markers[1].ColorHex != "#0000ff" {
		t.Errorf("altitude 1000: got %s, want #0000ff", gen.Markers[1].ColorHex)
	}
	mid := gen.Markers[2].Color
	if math.Abs(mid.R-0.5) > 1e-9 || math.Abs(mid.B-0.5) > 1e-9 {
		t.Errorf("altitude 10: got %+v, want half blend", mid)
	}
	if gen.Markers[3].ColorHex != "#ff0000" {
		t.Errorf("negative altitude: got %s, want #ff0000", gen.Markers[3].ColorHex)
	}
}

func TestMarkerRegistry_PositionFollowsRadiusPolicy(t *testing.T) {
	reg := usecases.NewMarkerRegistry(usecases.RegistryConfig{})
	gen := reg.Rebuild([]domain.GeoCoordinate{{Latitude: 40.7128, Longitude: -74.0060, Altitude: 5}})

	want := domain.Project(40.7128, -74.0060, 1+5*0.003)
	if gen.Markers[0].Position.DistanceTo(want) > 1e-12 {
		t.Errorf("position = %+v, want %+v", gen.Markers[0].Position, want)
	}
}

func TestMarkerRegistry_AllIsACopy(t *testing.T) {
	reg := usecases.NewMarkerRegistry(usecases.RegistryConfig{})
	reg.Rebuild([]domain.GeoCoordinate{{Latitude: 1, Longitude: 2, Altitude: 3}})

	all := reg.All()
	all[0].Radius = 99

	if reg.Snapshot().Markers[0].Radius == 99 {
		t.Error("mutating All result changed the registry")
	}
}

func TestMarkerRegistry_ConcurrentReadersSeeWholeGenerations(t *testing.T) {
	reg := usecases.NewMarkerRegistry(usecases.RegistryConfig{})

	small := []domain.GeoCoordinate{{Latitude: 1}}
	large := make([]domain.GeoCoordinate, 50)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if i%2 == 0 {
				reg.Rebuild(small)
			} else {
				reg.Rebuild(large)
			}
		}
	}()

	for i := 0; i < 200; i++ {
		gen := reg.Snapshot()
		if n := len(gen.Markers); n != 0 && n != 1 && n != 50 {
			t.Fatalf("torn generation with %d markers", n)
		}
		for _, m := range gen.Markers {
			if m.Generation != gen.Seq {
				t.Fatalf("marker from generation %d in snapshot %d", m.Generation, gen.Seq)
			}
		}
	}
	wg.Wait()
}
