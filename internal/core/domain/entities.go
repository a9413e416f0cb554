package domain

import (
	"fmt"
	"math"
	"time"
)

// Color is a linear RGB triple with channels in [0,1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Hex returns the color as a CSS hex string (#rrggbb).
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B))
}

func channel(v float64) uint8 {
	v = math.Max(0, math.Min(1, v))
	return uint8(math.Round(v * 255))
}

// Two-stop altitude gradient endpoints.
var (
	LowAltitudeColor  = Color{R: 1, G: 0, B: 0}
	HighAltitudeColor = Color{R: 0, G: 0, B: 1}
)

// AltitudeColor blends from LowAltitudeColor to HighAltitudeColor with
// t = min(1, altitude*k). Negative altitudes clamp to t = 0.
func AltitudeColor(altitude, k float64) Color {
	t := math.Max(0, math.Min(1, altitude*k))
	return Color{
		R: LowAltitudeColor.R + (HighAltitudeColor.R-LowAltitudeColor.R)*t,
		G: LowAltitudeColor.G + (HighAltitudeColor.G-LowAltitudeColor.G)*t,
		B: LowAltitudeColor.B + (HighAltitudeColor.B-LowAltitudeColor.B)*t,
	}
}

// Marker is one pickable balloon.
type Marker struct {
	ID         int           `json:"id"`
	Handle     string        `json:"handle"`
	Generation uint64        `json:"generation"`
	Position   Vec3          `json:"position"`
	Coordinate GeoCoordinate `json:"coordinate"`
	Color      Color         `json:"color"`
	ColorHex   string        `json:"color_hex"`
	Radius     float64       `json:"radius"` // bounding sphere
}

// MarkerHandle builds the stable handle of marker id within generation seq.
func MarkerHandle(seq uint64, id int) string {
	return fmt.Sprintf("g%d-m%d", seq, id)
}

// Generation is one immutable set of markers built from a single telemetry fetch.
type Generation struct {
	Seq       uint64    `json:"seq"`
	Hour      int       `json:"hour"`
	FetchedAt time.Time `json:"fetched_at"`
	Markers   []Marker  `json:"markers"`
}

// TelemetrySnapshot is a decoded telemetry feed for one hour index.
type TelemetrySnapshot struct {
	Hour        int             `json:"hour"`
	FetchedAt   time.Time       `json:"fetched_at"`
	Coordinates []GeoCoordinate `json:"coordinates"`
}

// PlaceDescriptor is a reverse-geocoded location. Every field is optional.
type PlaceDescriptor struct {
	City        string `json:"city,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
	Continent   string `json:"continent,omitempty"`
	Locality    string `json:"locality,omitempty"`
}

// ScreenPoint is a position in render-surface pixels, origin top-left.
type ScreenPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PanelStatus is the click-to-info state.
type PanelStatus string

const (
	PanelIdle      PanelStatus = "idle"
	PanelResolving PanelStatus = "resolving"
	PanelShowing   PanelStatus = "showing"
)

// PanelState is what an info panel currently displays for a session.
type PanelState struct {
	SessionID string      `json:"session_id"`
	Status    PanelStatus `json:"status"`
	Message   string      `json:"message,omitempty"`
	Anchor    ScreenPoint `json:"anchor"`
	Align     string      `json:"align,omitempty"`
	Token     uint64      `json:"token"`
	Marker    *Marker     `json:"marker,omitempty"`
	UpdatedAt time.Time   `json:"updated_at"`
}
