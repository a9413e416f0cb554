package usecases

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/skyglobe/internal/core/domain"
	"github.com/samirrijal/skyglobe/internal/core/ports"
	"github.com/samirrijal/skyglobe/internal/pkg/metrics"
)

// DefaultSessionTTL is how long an untouched session is kept.
const DefaultSessionTTL = 30 * time.Minute

// SessionManager owns one ClickSession per browser session.
type SessionManager struct {
	picker  *PickResolver
	places  ports.PlaceResolver
	panel   ports.InfoPanel
	timeout time.Duration
	ttl     time.Duration

	mu       sync.RWMutex
	sessions map[string]*ClickSession
}

// NewSessionManager creates a SessionManager. lookupTimeout bounds each place
// lookup and ttl is the idle time after which Sweep evicts a session.
func NewSessionManager(picker *PickResolver, places ports.PlaceResolver, panel ports.InfoPanel, lookupTimeout, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{
		picker:   picker,
		places:   places,
		panel:    panel,
		timeout:  lookupTimeout,
		ttl:      ttl,
		sessions: make(map[string]*ClickSession),
	}
}

// Create starts a new idle session with a random id.
func (m *SessionManager) Create() *ClickSession {
	s := NewClickSession(uuid.NewString(), m.picker, m.places, m.panel, m.timeout)

	m.mu.Lock()
	m.sessions[s.ID()] = s
	n := len(m.sessions)
	m.mu.Unlock()

	metrics.ActiveSessions.Set(float64(n))
	return s
}

// Get returns the session with id or domain.ErrNotFound.
func (m *SessionManager) Get(id string) (*ClickSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

// Remove drops a session and hides its panel.
func (m *SessionManager) Remove(ctx context.Context, id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()

	if ok {
		s.Dismiss(ctx)
	}
	metrics.ActiveSessions.Set(float64(n))
}

// Len returns the number of tracked sessions.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep evicts sessions idle since before now-ttl and returns how many went.
func (m *SessionManager) Sweep(ctx context.Context, now time.Time) int {
	cutoff := now.Add(-m.ttl)

	m.mu.Lock()
	var expired []*ClickSession
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	for _, s := range expired {
		s.Dismiss(ctx)
	}
	metrics.ActiveSessions.Set(float64(n))
	return len(expired)
}

// RunJanitor sweeps expired sessions every interval until ctx is done.
func (m *SessionManager) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := m.Sweep(ctx, now); n > 0 {
				slog.Info("evicted idle sessions", "count", n)
			}
		}
	}
}
