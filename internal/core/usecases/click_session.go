package usecases

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/skyglobe/internal/core/domain"
	"github.com/samirrijal/skyglobe/internal/core/ports"
	"github.com/samirrijal/skyglobe/internal/pkg/metrics"
	"github.com/samirrijal/skyglobe/internal/pkg/telemetry"
)

// DefaultLookupTimeout bounds a single reverse-geocode lookup.
const DefaultLookupTimeout = 10 * time.Second

// PanelOffsetY is how far below the click the panel is anchored.
const PanelOffsetY = 20

// ErrNoViewport is returned by Click when neither the request nor the session
// carries a usable viewport.
var ErrNoViewport = errors.New("no viewport")

var tracer = telemetry.Tracer("skyglobe/usecases")

// ClickOutcome reports what a click did.
type ClickOutcome struct {
	Hit    bool              `json:"hit"`
	Token  uint64            `json:"token"`
	Marker *domain.Marker    `json:"marker,omitempty"`
	State  domain.PanelState `json:"state"`
}

// ClickSession is the click-to-info state machine of one browser session.
// States move Idle -> Resolving -> Showing; a new hit restarts the cycle and
// only the lookup started by the latest hit may update the panel.
type ClickSession struct {
	id      string
	picker  *PickResolver
	places  ports.PlaceResolver
	panel   ports.InfoPanel
	timeout time.Duration

	mu         sync.Mutex
	token      uint64
	state      domain.PanelState
	viewport   domain.ViewportContext
	lastActive time.Time

	inflight sync.WaitGroup
}

// NewClickSession creates an idle session.
func NewClickSession(id string, picker *PickResolver, places ports.PlaceResolver, panel ports.InfoPanel, timeout time.Duration) *ClickSession {
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	now := time.Now()
	return &ClickSession{
		id:      id,
		picker:  picker,
		places:  places,
		panel:   panel,
		timeout: timeout,
		state: domain.PanelState{
			SessionID: id,
			Status:    domain.PanelIdle,
			UpdatedAt: now,
		},
		lastActive: now,
	}
}

// ID returns the session id.
func (s *ClickSession) ID() string {
	return s.id
}

// State returns the current panel state.
func (s *ClickSession) State() domain.PanelState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Viewport returns the last viewport stored for the session.
func (s *ClickSession) Viewport() domain.ViewportContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

// SetViewport records the render surface and camera used by later clicks
// that carry no viewport of their own.
func (s *ClickSession) SetViewport(vp domain.ViewportContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport = vp
	s.lastActive = time.Now()
}

// LastActive returns the time of the last click, resize or dismiss.
func (s *ClickSession) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Click picks at (screenX, screenY). A hit moves the session to Resolving and
// starts an asynchronous place lookup. A miss leaves the state untouched.
// vp may be nil, in which case the stored viewport is used.
func (s *ClickSession) Click(ctx context.Context, screenX, screenY float64, vp *domain.ViewportContext) (ClickOutcome, error) {
	ctx, span := tracer.Start(ctx, "ClickSession.Click",
		trace.WithAttributes(telemetry.AttrSession.String(s.id)))
	defer span.End()

	s.mu.Lock()
	if vp != nil && vp.Valid() {
		s.viewport = *vp
	}
	view := s.viewport
	s.lastActive = time.Now()
	s.mu.Unlock()

	if !view.Valid() {
		return ClickOutcome{}, ErrNoViewport
	}

	marker, ok := s.picker.Resolve(screenX, screenY, view)
	if !ok {
		return ClickOutcome{Hit: false, State: s.State()}, nil
	}
	span.SetAttributes(telemetry.AttrMarker.String(marker.Handle))

	anchor := domain.ScreenPoint{X: screenX, Y: screenY + PanelOffsetY}

	s.mu.Lock()
	s.token++
	token := s.token
	s.state = domain.PanelState{
		SessionID: s.id,
		Status:    domain.PanelResolving,
		Anchor:    anchor,
		Align:     "center",
		Token:     token,
		Marker:    &marker,
		UpdatedAt: time.Now(),
	}
	state := s.state
	s.inflight.Add(1)
	s.mu.Unlock()

	span.SetAttributes(telemetry.AttrClickToken.Int64(int64(token)))

	// The lookup outlives the request that triggered it.
	go s.lookup(context.WithoutCancel(ctx), token, marker, anchor)

	return ClickOutcome{Hit: true, Token: token, Marker: &marker, State: state}, nil
}

func (s *ClickSession) lookup(ctx context.Context, token uint64, marker domain.Marker, anchor domain.ScreenPoint) {
	defer s.inflight.Done()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "ClickSession.lookup", trace.WithAttributes(
		telemetry.AttrSession.String(s.id),
		telemetry.AttrClickToken.Int64(int64(token)),
		telemetry.AttrLatitude.Float64(marker.Coordinate.Latitude),
		telemetry.AttrLongitude.Float64(marker.Coordinate.Longitude),
	))
	defer span.End()

	start := time.Now()
	place, err := s.places.Reverse(ctx, marker.Coordinate.Latitude, marker.Coordinate.Longitude)
	metrics.GeocodeDuration.Observe(time.Since(start).Seconds())

	var message string
	switch {
	case err == nil:
		metrics.GeocodeLookups.WithLabelValues("ok").Inc()
		message = ComposePlaceMessage(place)
	case errors.Is(err, domain.ErrEmptyResult):
		metrics.GeocodeLookups.WithLabelValues("empty").Inc()
		message = NoDataMessage
	default:
		metrics.GeocodeLookups.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Warn("place lookup failed", "session", s.id, "marker", marker.Handle, "error", err)
		message = FetchFailureMessage(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.token {
		metrics.StaleLookupsDiscarded.Inc()
		slog.Debug("discarding stale lookup", "session", s.id, "token", token, "latest", s.token)
		return
	}

	s.state = domain.PanelState{
		SessionID: s.id,
		Status:    domain.PanelShowing,
		Message:   message,
		Anchor:    anchor,
		Align:     "center",
		Token:     token,
		Marker:    &marker,
		UpdatedAt: time.Now(),
	}
	// Shown under the lock so an older completion can never be displayed
	// after a newer one.
	s.panel.Show(ctx, s.state)
}

// Dismiss hides the panel and returns to Idle. Any lookup still in flight is
// invalidated.
func (s *ClickSession) Dismiss(ctx context.Context) domain.PanelState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token++
	s.state = domain.PanelState{
		SessionID: s.id,
		Status:    domain.PanelIdle,
		Token:     s.token,
		UpdatedAt: time.Now(),
	}
	s.lastActive = time.Now()
	s.panel.Hide(ctx, s.id)
	return s.state
}

// Wait blocks until every lookup started so far has finished.
func (s *ClickSession) Wait() {
	s.inflight.Wait()
}
