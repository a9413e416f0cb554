package domain

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera is a perspective camera looking at Target.
type Camera struct {
	Position Vec3    `json:"position"`
	Target   Vec3    `json:"target"`
	Up       Vec3    `json:"up"`
	FovY     float64 `json:"fov"` // vertical field of view, degrees
	Near     float64 `json:"near"`
	Far      float64 `json:"far"`
}

// DefaultCamera matches the browser's initial camera.
func DefaultCamera() Camera {
	return Camera{
		Position: Vec3{X: 0, Y: 1.5, Z: 3},
		Target:   Vec3{},
		Up:       Vec3{Y: 1},
		FovY:     45,
		Near:     0.1,
		Far:      1000,
	}
}

// withDefaults fills zero-valued fields from DefaultCamera.
func (c Camera) withDefaults() Camera {
	d := DefaultCamera()
	if c.Position == c.Target {
		c.Position, c.Target = d.Position, d.Target
	}
	if c.Up == (Vec3{}) {
		c.Up = d.Up
	}
	if c.FovY <= 0 {
		c.FovY = d.FovY
	}
	if c.Near <= 0 {
		c.Near = d.Near
	}
	if c.Far <= c.Near {
		c.Far = d.Far
	}
	return c
}

// ViewportContext is the render surface size plus the camera viewing it.
// Projection and picking read it instead of shared scene state.
type ViewportContext struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Camera Camera  `json:"camera"`
}

// Valid reports whether the surface has a usable size.
func (v ViewportContext) Valid() bool {
	return v.Width > 0 && v.Height > 0
}

// Aspect returns width / height, or 1 for an empty surface.
func (v ViewportContext) Aspect() float64 {
	if !v.Valid() {
		return 1
	}
	return v.Width / v.Height
}

// Resize returns a copy sized to width x height. The camera aspect follows
// the surface because it is always derived from Width and Height.
func (v ViewportContext) Resize(width, height float64) ViewportContext {
	v.Width = width
	v.Height = height
	return v
}

// NDC converts surface pixels to device-normalized coordinates in [-1,1],
// with Y flipped so that up is positive.
func (v ViewportContext) NDC(screenX, screenY float64) (x, y float64) {
	x = (screenX/v.Width)*2 - 1
	y = -(screenY/v.Height)*2 + 1
	return x, y
}

func (v ViewportContext) viewProjection() mgl64.Mat4 {
	c := v.Camera.withDefaults()
	proj := mgl64.Perspective(mgl64.DegToRad(c.FovY), v.Aspect(), c.Near, c.Far)
	view := mgl64.LookAtV(toMgl(c.Position), toMgl(c.Target), toMgl(c.Up))
	return proj.Mul4(view)
}

// RayFromScreen builds a pick ray from the camera through a surface point.
// ok is false for an empty surface or a degenerate camera.
func (v ViewportContext) RayFromScreen(screenX, screenY float64) (PickRay, bool) {
	if !v.Valid() {
		return PickRay{}, false
	}
	vp := v.viewProjection()
	if math.Abs(vp.Det()) < 1e-12 {
		return PickRay{}, false
	}
	x, y := v.NDC(screenX, screenY)
	near := mgl64.TransformCoordinate(mgl64.Vec3{x, y, -1}, vp.Inv())

	origin := v.Camera.withDefaults().Position
	dir := fromMgl(near).Sub(origin).Normalize()
	if dir == (Vec3{}) {
		return PickRay{}, false
	}
	return PickRay{Origin: origin, Direction: dir}, true
}

// ProjectToScreen maps a world point to surface pixels. ok is false when the
// point is behind the camera.
func (v ViewportContext) ProjectToScreen(p Vec3) (ScreenPoint, bool) {
	if !v.Valid() {
		return ScreenPoint{}, false
	}
	clip := v.viewProjection().Mul4x1(toMgl(p).Vec4(1))
	if clip.W() <= 0 {
		return ScreenPoint{}, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	return ScreenPoint{
		X: (ndc.X() + 1) / 2 * v.Width,
		Y: (1 - ndc.Y()) / 2 * v.Height,
	}, true
}

// PickRay is a half-line used for picking. Direction is a unit vector.
type PickRay struct {
	Origin    Vec3 `json:"origin"`
	Direction Vec3 `json:"direction"`
}

// At returns the point at distance t along the ray.
func (r PickRay) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// IntersectSphere returns the distance along the ray to the first surface
// crossing of the sphere, if any lies ahead of the origin. An origin inside
// the sphere reports the exit point.
func (r PickRay) IntersectSphere(center Vec3, radius float64) (float64, bool) {
	oc := r.Origin.Sub(center)
	b := oc.Dot(r.Direction)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

func toMgl(v Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func fromMgl(v mgl64.Vec3) Vec3 {
	return Vec3{X: v.X(), Y: v.Y(), Z: v.Z()}
}
