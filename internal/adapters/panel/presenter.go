package panel

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samirrijal/skyglobe/internal/core/domain"
	"github.com/samirrijal/skyglobe/internal/core/ports"
)

// Presenter implements ports.InfoPanel by keeping the last displayed state
// per session and pushing every change to the browser over the broker.
type Presenter struct {
	publisher ports.EventPublisher

	mu     sync.RWMutex
	states map[string]domain.PanelState
}

// NewPresenter creates a Presenter. publisher may be nil, in which case
// changes are only kept locally.
func NewPresenter(publisher ports.EventPublisher) *Presenter {
	return &Presenter{
		publisher: publisher,
		states:    make(map[string]domain.PanelState),
	}
}

// Show displays state for its session.
func (p *Presenter) Show(ctx context.Context, state domain.PanelState) {
	p.mu.Lock()
	p.states[state.SessionID] = state
	p.mu.Unlock()

	slog.Debug("panel shown", "session", state.SessionID, "token", state.Token, "message", state.Message)
	p.publish(ctx, &state)
}

// Hide removes the panel of a session.
func (p *Presenter) Hide(ctx context.Context, sessionID string) {
	p.mu.Lock()
	delete(p.states, sessionID)
	p.mu.Unlock()

	slog.Debug("panel hidden", "session", sessionID)
	p.publish(ctx, &domain.PanelState{
		SessionID: sessionID,
		Status:    domain.PanelIdle,
		UpdatedAt: time.Now(),
	})
}

// Current returns the panel shown for a session, if any.
func (p *Presenter) Current(sessionID string) (domain.PanelState, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.states[sessionID]
	return s, ok
}

func (p *Presenter) publish(ctx context.Context, state *domain.PanelState) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.PublishPanel(ctx, state); err != nil {
		slog.Warn("publish panel failed", "session", state.SessionID, "error", err)
	}
}
