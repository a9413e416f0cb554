package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/skyglobe/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeSnapshots delivers feed snapshots starting from the most recent
// one, so a freshly started instance does not wait for the next poll. Every
// instance gets its own ephemeral consumer.
func (s *Subscriber) SubscribeSnapshots(ctx context.Context, handler func(ctx context.Context, snap *domain.TelemetrySnapshot) error) error {
	sub, err := s.js.Subscribe(SubjectSnapshot, func(msg *nats.Msg) {
		var snap domain.TelemetrySnapshot
		if err := json.Unmarshal(msg.Data, &snap); err != nil {
			slog.Warn("dropping undecodable snapshot", "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &snap); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.DeliverLast(),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
