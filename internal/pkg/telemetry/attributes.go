package telemetry

import "go.opentelemetry.io/otel/attribute"

// Span attribute keys shared by the feed, geocode and click spans.
const (
	AttrHour       = attribute.Key("skyglobe.telemetry.hour")
	AttrRows       = attribute.Key("skyglobe.telemetry.rows")
	AttrSkipped    = attribute.Key("skyglobe.telemetry.skipped")
	AttrLatitude   = attribute.Key("skyglobe.geo.latitude")
	AttrLongitude  = attribute.Key("skyglobe.geo.longitude")
	AttrSession    = attribute.Key("skyglobe.session.id")
	AttrMarker     = attribute.Key("skyglobe.marker.handle")
	AttrClickToken = attribute.Key("skyglobe.click.token")
	AttrHTTPStatus = attribute.Key("http.status_code")
)
