package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/skyglobe/internal/core/domain"
)

// MarkersFeatureCollection renders markers as GeoJSON points in lon/lat order.
func MarkersFeatureCollection(markers []domain.Marker) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, m := range markers {
		f := geojson.NewFeature(orb.Point{m.Coordinate.Longitude, m.Coordinate.Latitude})
		f.ID = m.Handle
		f.Properties["handle"] = m.Handle
		f.Properties["altitude"] = m.Coordinate.Altitude
		f.Properties["color"] = m.ColorHex
		f.Properties["generation"] = m.Generation
		fc.Append(f)
	}
	return fc
}

// MarkersGeoJSONHandler exports the current generation for map tooling.
func MarkersGeoJSONHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		gen := deps.Registry.Snapshot()
		data, err := MarkersFeatureCollection(gen.Markers).MarshalJSON()
		if err != nil {
			return errInternal(c, "encode geojson: "+err.Error())
		}
		c.Set("X-Marker-Generation", strconv.FormatUint(gen.Seq, 10))
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(data)
	}
}
