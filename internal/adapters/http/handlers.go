package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/skyglobe/internal/core/domain"
	"github.com/samirrijal/skyglobe/internal/core/usecases"
)

// viewportRequest is the render surface a browser reports.
type viewportRequest struct {
	Width  float64        `json:"width"`
	Height float64        `json:"height"`
	Camera *domain.Camera `json:"camera,omitempty"`
}

// clickRequest is a pointer event in surface pixels. Viewport and camera are
// optional for session clicks, which fall back to the stored viewport.
type clickRequest struct {
	X        float64          `json:"x"`
	Y        float64          `json:"y"`
	Viewport *viewportRequest `json:"viewport,omitempty"`
	Camera   *domain.Camera   `json:"camera,omitempty"`
}

// viewport resolves the request into a ViewportContext. ok is false when the
// request carries no surface size.
func (r clickRequest) viewport(def domain.Camera) (domain.ViewportContext, bool) {
	if r.Viewport == nil {
		return domain.ViewportContext{}, false
	}
	cam := def
	switch {
	case r.Camera != nil:
		cam = *r.Camera
	case r.Viewport.Camera != nil:
		cam = *r.Viewport.Camera
	}
	vp := domain.ViewportContext{Width: r.Viewport.Width, Height: r.Viewport.Height, Camera: cam}
	return vp, vp.Valid()
}

// ---- Markers ----

// ListMarkersHandler returns the current generation's markers, paginated.
func ListMarkersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		gen := deps.Registry.Snapshot()
		offset, limit := pageParams(c)

		markers, pg := paginate(gen.Markers, offset, limit)
		SetLinkHeaders(c, pg)
		c.Set("X-Marker-Generation", strconv.FormatUint(gen.Seq, 10))
		return c.JSON(PaginatedResponse{Data: markers, Pagination: pg})
	}
}

// GetMarkerHandler returns one marker of the current generation by handle.
func GetMarkerHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		handle := c.Params("handle")
		if handle == "" {
			return errBadRequest(c, "marker handle is required")
		}

		m, ok := deps.Registry.Lookup(handle)
		if !ok {
			return errNotFound(c, "marker not found in the current generation")
		}
		return c.JSON(m)
	}
}

// NearbyMarkersHandler returns markers whose ground track is within radius_km
// of a point.
func NearbyMarkersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("lat") == "" || c.Query("lon") == "" {
			return errBadRequest(c, "lat and lon are required")
		}
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		radiusKm := c.QueryFloat("radius_km", 500)
		limit := c.QueryInt("limit", 20)

		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return errBadRequest(c, "lat must be within [-90, 90] and lon within [-180, 180]")
		}
		if radiusKm <= 0 || radiusKm > 20000 {
			return errBadRequest(c, "radius_km must be between 0 and 20000")
		}

		return c.JSON(deps.Registry.Nearby(lat, lon, radiusKm*1000, limit))
	}
}

// PickHandler resolves a screen point against the current markers without
// touching any session. It answers 204 when nothing is under the point.
func PickHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req clickRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		vp, ok := req.viewport(deps.Camera)
		if !ok {
			return errBadRequest(c, "viewport width and height are required")
		}

		m, hit := deps.Picker.Resolve(req.X, req.Y, vp)
		if !hit {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.JSON(fiber.Map{
			"marker":     m,
			"generation": m.Generation,
		})
	}
}

// ---- Sessions ----

// CreateSessionHandler starts a click session for one browser tab.
func CreateSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := deps.Sessions.Create()

		var req viewportRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return errBadRequest(c, "invalid request body")
			}
			if req.Width > 0 && req.Height > 0 {
				cam := deps.Camera
				if req.Camera != nil {
					cam = *req.Camera
				}
				s.SetViewport(domain.ViewportContext{Width: req.Width, Height: req.Height, Camera: cam})
			}
		}

		LoggerFromCtx(c.UserContext()).Info("session created", "session", s.ID())
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":    s.ID(),
			"state": s.State(),
		})
	}
}

// DeleteSessionHandler ends a session and hides its panel.
func DeleteSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := deps.Sessions.Get(id); err != nil {
			return errFromDomain(c, err)
		}
		deps.Sessions.Remove(c.UserContext(), id)
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ClickHandler feeds a pointer event to a session. A hit answers 202 because
// the place lookup completes asynchronously; the panel is then available via
// GET /panel or the websocket.
func ClickHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := deps.Sessions.Get(c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}

		var req clickRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		var vp *domain.ViewportContext
		if v, ok := req.viewport(deps.Camera); ok {
			vp = &v
		}

		out, err := s.Click(c.UserContext(), req.X, req.Y, vp)
		if errors.Is(err, usecases.ErrNoViewport) {
			return errBadRequest(c, "viewport is required until one has been stored for the session")
		}
		if err != nil {
			return errInternal(c, err.Error())
		}

		if out.Hit {
			return c.Status(fiber.StatusAccepted).JSON(out)
		}
		return c.JSON(out)
	}
}

// GetPanelHandler returns a session's panel state.
func GetPanelHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := deps.Sessions.Get(c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Set("Cache-Control", "no-store")
		return c.JSON(s.State())
	}
}

// DismissPanelHandler closes a session's panel.
func DismissPanelHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := deps.Sessions.Get(c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(s.Dismiss(c.UserContext()))
	}
}

// UpdateViewportHandler stores the session's surface size and camera after a
// resize.
func UpdateViewportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := deps.Sessions.Get(c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}

		var req viewportRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Width <= 0 || req.Height <= 0 {
			return errBadRequest(c, "width and height must be positive")
		}

		vp := s.Viewport()
		if !vp.Valid() {
			vp.Camera = deps.Camera
		}
		vp = vp.Resize(req.Width, req.Height)
		if req.Camera != nil {
			vp.Camera = *req.Camera
		}
		s.SetViewport(vp)

		return c.JSON(fiber.Map{
			"width":  vp.Width,
			"height": vp.Height,
			"aspect": vp.Aspect(),
			"camera": vp.Camera,
		})
	}
}

// ---- Telemetry ----

// RefreshTelemetryHandler fetches an hour of telemetry on demand and swaps in
// the resulting generation. force=true drops the cached snapshot first.
func RefreshTelemetryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Telemetry == nil {
			return errUnavailable(c, "telemetry refresh is not available in this mode")
		}

		hour := deps.Telemetry.DefaultHour()
		if raw := c.Query("hour"); raw != "" {
			h, err := strconv.Atoi(raw)
			if err != nil {
				return errBadRequest(c, "hour must be an integer")
			}
			hour = h
		}

		if c.QueryBool("force", false) {
			if err := deps.Telemetry.Invalidate(c.UserContext(), hour); err != nil {
				if errors.Is(err, usecases.ErrInvalidHour) {
					return errBadRequest(c, err.Error())
				}
				LoggerFromCtx(c.UserContext()).Warn("cache invalidation failed", "hour", hour, "error", err)
			}
		}

		gen, err := deps.Telemetry.Refresh(c.UserContext(), hour)
		if errors.Is(err, usecases.ErrInvalidHour) {
			return errBadRequest(c, err.Error())
		}
		if err != nil {
			return errFromDomain(c, err)
		}

		return c.JSON(fiber.Map{
			"generation": gen.Seq,
			"hour":       gen.Hour,
			"markers":    len(gen.Markers),
			"fetched_at": gen.FetchedAt,
		})
	}
}

// TelemetryStatusHandler reports the outcome of recent refreshes.
func TelemetryStatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		gen := deps.Registry.Snapshot()
		resp := fiber.Map{
			"generation": gen.Seq,
			"hour":       gen.Hour,
			"markers":    len(gen.Markers),
		}
		if deps.Telemetry != nil {
			resp["status"] = deps.Telemetry.Status()
		}
		if b, ok := domain.BoundsOf(coordinates(gen.Markers)); ok {
			resp["bounds"] = b
		}
		return c.JSON(resp)
	}
}

func coordinates(markers []domain.Marker) []domain.GeoCoordinate {
	out := make([]domain.GeoCoordinate, len(markers))
	for i, m := range markers {
		out[i] = m.Coordinate
	}
	return out
}
