package domain_test

import (
	"math"
	"testing"

	"github.com/samirrijal/skyglobe/internal/core/domain"
)

func defaultViewport() domain.ViewportContext {
	return domain.ViewportContext{Width: 800, Height: 600, Camera: domain.DefaultCamera()}
}

func TestViewport_NDC(t *testing.T) {
	vp := defaultViewport()

	x, y := vp.NDC(0, 0)
	if x != -1 || y != 1 {
		t.Errorf("top-left = (%v, %v)", x, y)
	}
	x, y = vp.NDC(800, 600)
	if x != 1 || y != -1 {
		t.Errorf("bottom-right = (%v, %v)", x, y)
	}
	x, y = vp.NDC(400, 300)
	if x != 0 || y != 0 {
		t.Errorf("centre = (%v, %v)", x, y)
	}
}

func TestViewport_CentreRayHitsTarget(t *testing.T) {
	vp := defaultViewport()

	ray, ok := vp.RayFromScreen(400, 300)
	if !ok {
		t.Fatal("no ray")
	}
	if ray.Origin != vp.Camera.Position {
		t.Errorf("origin = %+v", ray.Origin)
	}
	want := domain.Vec3{}.Sub(vp.Camera.Position).Normalize()
	if ray.Direction.DistanceTo(want) > 1e-6 {
		t.Errorf("direction = %+v, want %+v", ray.Direction, want)
	}
	if math.Abs(ray.Direction.Norm()-1) > 1e-9 {
		t.Errorf("direction not unit: %v", ray.Direction.Norm())
	}
}

func TestViewport_ProjectUnprojectRoundTrip(t *testing.T) {
	vp := defaultViewport()
	p := domain.Project(40.7128, -74.0060, 1.015)

	pt, ok := vp.ProjectToScreen(p)
	if !ok {
		t.Fatal("point should be visible")
	}
	ray, ok := vp.RayFromScreen(pt.X, pt.Y)
	if !ok {
		t.Fatal("no ray")
	}

	// distance from p to the ray
	t0 := p.Sub(ray.Origin).Dot(ray.Direction)
	if d := ray.At(t0).DistanceTo(p); d > 1e-6 {
		t.Errorf("ray misses the projected point by %v", d)
	}
}

func TestViewport_ZeroSize(t *testing.T) {
	var vp domain.ViewportContext
	if _, ok := vp.RayFromScreen(1, 1); ok {
		t.Error("expected no ray for a zero viewport")
	}
	if _, ok := vp.ProjectToScreen(domain.Vec3{}); ok {
		t.Error("expected no projection for a zero viewport")
	}
	if vp.Aspect() != 1 {
		t.Errorf("aspect = %v", vp.Aspect())
	}
}

func TestViewport_ZeroCameraUsesDefaults(t *testing.T) {
	vp := domain.ViewportContext{Width: 800, Height: 600}
	ray, ok := vp.RayFromScreen(400, 300)
	if !ok {
		t.Fatal("no ray")
	}
	if ray.Origin != domain.DefaultCamera().Position {
		t.Errorf("origin = %+v", ray.Origin)
	}
}

func TestViewport_BehindCamera(t *testing.T) {
	vp := defaultViewport()
	behind := vp.Camera.Position.Scale(2)
	if _, ok := vp.ProjectToScreen(behind); ok {
		t.Error("point behind the camera should not project")
	}
}

func TestViewport_Resize(t *testing.T) {
	vp := defaultViewport().Resize(1920, 1080)
	if vp.Width != 1920 || vp.Height != 1080 {
		t.Errorf("size = %vx%v", vp.Width, vp.Height)
	}
	if math.Abs(vp.Aspect()-1920.0/1080.0) > eps {
		t.Errorf("aspect = %v", vp.Aspect())
	}
}

func TestPickRay_IntersectSphere(t *testing.T) {
	ray := domain.PickRay{Origin: domain.Vec3{Z: 5}, Direction: domain.Vec3{Z: -1}}

	d, ok := ray.IntersectSphere(domain.Vec3{}, 1)
	if !ok || math.Abs(d-4) > eps {
		t.Errorf("hit = %v, %v; want 4", d, ok)
	}

	if _, ok := ray.IntersectSphere(domain.Vec3{X: 3}, 1); ok {
		t.Error("expected miss")
	}

	inside := domain.PickRay{Origin: domain.Vec3{}, Direction: domain.Vec3{X: 1}}
	d, ok = inside.IntersectSphere(domain.Vec3{}, 0.045)
	if !ok || math.Abs(d-0.045) > eps {
		t.Errorf("inside hit = %v, %v; want exit at 0.045", d, ok)
	}
}

func TestBoundsOf(t *testing.T) {
	if _, ok := domain.BoundsOf(nil); ok {
		t.Error("expected no bounds for empty input")
	}
	b, ok := domain.BoundsOf([]domain.GeoCoordinate{
		{Latitude: 10, Longitude: -20},
		{Latitude: -5, Longitude: 40},
	})
	if !ok || b.MinLat != -5 || b.MaxLat != 10 || b.MinLon != -20 || b.MaxLon != 40 {
		t.Errorf("bounds = %+v", b)
	}
}
