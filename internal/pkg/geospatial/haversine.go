package geospatial

import "math"

const earthRadiusKm = 6371.0

// Haversine calculates the great-circle distance in meters between two points
// on the ground, ignoring altitude.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c * 1000 // meters
}

// metersPerDegree is the length of one degree of arc on the sphere used by
// Haversine.
const metersPerDegree = earthRadiusKm * 1000 * math.Pi / 180

// BoundingBox returns a box around a point that contains every point within
// radiusMeters. When the circle reaches a pole the box spans every longitude.
func BoundingBox(lat, lon, radiusMeters float64) (minLat, minLon, maxLat, maxLon float64) {
	latDelta := radiusMeters / metersPerDegree
	minLat, maxLat = lat-latDelta, lat+latDelta
	if minLat <= -90 || maxLat >= 90 {
		return math.Max(minLat, -90), -180, math.Min(maxLat, 90), 180
	}

	// longitude of the meridians tangent to the circle
	lonDelta := 180.0
	if ratio := math.Sin(toRad(latDelta)) / math.Cos(toRad(lat)); ratio < 1 {
		lonDelta = math.Asin(ratio) * 180 / math.Pi
	}
	return minLat, lon - lonDelta, maxLat, lon + lonDelta
}

// InBox reports whether (lat, lon) lies in the box, allowing the longitude
// range to cross the antimeridian.
func InBox(lat, lon, minLat, minLon, maxLat, maxLon float64) bool {
	if lat < minLat || lat > maxLat {
		return false
	}
	if maxLon-minLon >= 360 {
		return true
	}
	lon = normalizeLon(lon)
	lo, hi := normalizeLon(minLon), normalizeLon(maxLon)
	if lo <= hi {
		return lon >= lo && lon <= hi
	}
	return lon >= lo || lon <= hi
}

func normalizeLon(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
