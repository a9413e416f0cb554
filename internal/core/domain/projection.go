package domain

import "math"

// Project maps a geographic position onto a sphere of the given radius.
//
// phi is the polar angle measured from +Y and theta the azimuth, offset by 180°
// so the texture seam of the globe lands on the antimeridian. Inputs are not
// range checked: out-of-range latitudes or longitudes yield a displaced but
// well-defined point.
func Project(latitude, longitude, radius float64) Vec3 {
	phi := (90 - latitude) * (math.Pi / 180)
	theta := (longitude + 180) * (math.Pi / 180)

	return Vec3{
		X: -radius * math.Sin(phi) * math.Cos(theta),
		Y: radius * math.Cos(phi),
		Z: radius * math.Sin(phi) * math.Sin(theta),
	}
}

// Default projection and marker styling constants.
const (
	DefaultBaseRadius    = 1.0
	DefaultAltitudeScale = 0.003
	DefaultColorFactor   = 0.05
	DefaultMarkerRadius  = 0.045
)

// RadiusPolicy decides how far from the origin a point is placed.
type RadiusPolicy struct {
	BaseRadius    float64 `json:"base_radius"`
	AltitudeScale float64 `json:"altitude_scale"`
}

// DefaultRadiusPolicy returns the policy used when none is configured.
func DefaultRadiusPolicy() RadiusPolicy {
	return RadiusPolicy{BaseRadius: DefaultBaseRadius, AltitudeScale: DefaultAltitudeScale}
}

// GlobeRadius is the radius of the globe mesh itself.
func (p RadiusPolicy) GlobeRadius() float64 {
	return p.BaseRadius
}

// MarkerRadius is the distance from the origin of a marker at altitude alt.
func (p RadiusPolicy) MarkerRadius(alt float64) float64 {
	return p.BaseRadius + p.AltitudeScale*alt
}

// ProjectCoordinate projects c using the marker radius for its altitude.
func (p RadiusPolicy) ProjectCoordinate(c GeoCoordinate) Vec3 {
	return Project(c.Latitude, c.Longitude, p.MarkerRadius(c.Altitude))
}
