package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/skyglobe/internal/core/domain"
)

// Subjects used on the broker.
const (
	SubjectSnapshot      = "globe.telemetry.snapshot"
	SubjectGeneration    = "globe.markers.generation"
	SubjectPanelPrefix   = "globe.panel."
	SubjectPanelWildcard = SubjectPanelPrefix + "*"

	streamTelemetry = "GLOBE_TELEMETRY"
)

// PanelSubject returns the subject carrying panel updates for one session.
func PanelSubject(sessionID string) string {
	return SubjectPanelPrefix + sessionID
}

// GenerationEvent announces a new marker generation. Browsers refetch the
// markers themselves, which keeps the message small.
type GenerationEvent struct {
	Seq       uint64    `json:"seq"`
	Hour      int       `json:"hour"`
	FetchedAt time.Time `json:"fetched_at"`
	Markers   int       `json:"markers"`
}

// NewGenerationEvent summarises a generation.
func NewGenerationEvent(gen *domain.Generation) GenerationEvent {
	return GenerationEvent{
		Seq:       gen.Seq,
		Hour:      gen.Hour,
		FetchedAt: gen.FetchedAt,
		Markers:   len(gen.Markers),
	}
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure streams exist
	streams := []nats.StreamConfig{
		{
			Name:      streamTelemetry,
			Subjects:  []string{"globe.telemetry.>"},
			Retention: nats.LimitsPolicy,
			MaxMsgs:   48,
			MaxAge:    6 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, so try an update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishSnapshot persists a raw feed snapshot for API instances in subscribe mode.
func (p *Publisher) PublishSnapshot(ctx context.Context, snap *domain.TelemetrySnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectSnapshot, data, nats.Context(ctx))
	return err
}

// PublishGeneration broadcasts a generation summary to websocket clients.
func (p *Publisher) PublishGeneration(ctx context.Context, gen *domain.Generation) error {
	data, err := json.Marshal(NewGenerationEvent(gen))
	if err != nil {
		return err
	}
	return p.conn.Publish(SubjectGeneration, data)
}

// PublishPanel sends a panel change to the session's subject.
func (p *Publisher) PublishPanel(ctx context.Context, state *domain.PanelState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return p.conn.Publish(PanelSubject(state.SessionID), data)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
