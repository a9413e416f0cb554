package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/skyglobe/internal/adapters/nats"
	"github.com/samirrijal/skyglobe/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to feeds.
type wsMessage struct {
	Action  string `json:"action"`            // "subscribe" | "unsubscribe"
	Channel string `json:"channel"`           // "markers" | "panel" (default: markers)
	Session string `json:"session,omitempty"` // required for the panel channel
}

// WebSocketHandler returns a handler that relays broker events to a browser.
// Every client receives marker generation announcements. Clients follow their
// own panel with {"action":"subscribe","channel":"panel","session":"<id>"}.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		logger := slog.Default().With("remote", c.RemoteAddr().String())

		var mu sync.Mutex
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		relay := func(msg *nats.Msg) {
			_ = writeJSON(json.RawMessage(msg.Data))
		}

		if nc == nil {
			_ = writeJSON(map[string]string{"error": "live updates are not configured"})
			return
		}

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()
		logger.Info("ws client connected")

		subs := make(map[string]*nats.Subscription) // subject -> subscription

		sub, err := nc.Subscribe(natsadapter.SubjectGeneration, relay)
		if err != nil {
			logger.Error("ws default subscribe failed", "error", err)
			return
		}
		subs[natsadapter.SubjectGeneration] = sub

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			subject, errMsg := wsSubject(m)
			if errMsg != "" {
				_ = writeJSON(map[string]string{"error": errMsg})
				continue
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[subject]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				s, err := nc.Subscribe(subject, relay)
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[subject] = s
				_ = writeJSON(map[string]string{"status": "subscribed", "subject": subject})

			case "unsubscribe":
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		logger.Info("ws client disconnected")
	}
}

// wsSubject maps a client message to a broker subject. Session ids must be
// UUIDs so a client cannot smuggle wildcards into the subject.
func wsSubject(m wsMessage) (subject, errMsg string) {
	switch m.Channel {
	case "", "markers":
		return natsadapter.SubjectGeneration, ""
	case "panel":
		if _, err := uuid.Parse(m.Session); err != nil {
			return "", "panel channel needs a valid session id"
		}
		return natsadapter.PanelSubject(m.Session), ""
	default:
		return "", "unknown channel: " + m.Channel
	}
}
