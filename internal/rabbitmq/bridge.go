package rabbitmq

import (
	"encoding/json"
	"log/slog"

	"github.com/example/trip-planner/internal/session"
)

// Broadcaster is the delivery fan-out the bridge wraps, normally the
// WebSocket hub.
type Broadcaster interface {
	BroadcastToSession(sessionID string, event session.Event)
	BroadcastGlobal(event session.Event)
}

// lifecycleMessage is the body published for each mirrored event.
type lifecycleMessage struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// LifecycleBridge forwards every event to the wrapped broadcaster and mirrors
// the global lifecycle events onto an AMQP exchange. Publish failures are
// logged and never block delivery to connected clients.
type LifecycleBridge struct {
	next      Broadcaster
	publisher Publisher
	exchange  string
	logger    *slog.Logger
}

func NewLifecycleBridge(next Broadcaster, publisher Publisher, exchange string, logger *slog.Logger) *LifecycleBridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &LifecycleBridge{
		next:      next,
		publisher: publisher,
		exchange:  exchange,
		logger:    logger,
	}
}

// BroadcastToSession passes session-scoped events straight through. Only
// global lifecycle events are mirrored to the broker.
func (b *LifecycleBridge) BroadcastToSession(sessionID string, event session.Event) {
	b.next.BroadcastToSession(sessionID, event)
}

func (b *LifecycleBridge) BroadcastGlobal(event session.Event) {
	b.next.BroadcastGlobal(event)

	body, err := json.Marshal(lifecycleMessage{Event: event.Name, Payload: event.Payload})
	if err != nil {
		b.logger.Error("failed to encode lifecycle event", "event", event.Name, "error", err)
		return
	}
	if err := b.publisher.Publish(b.exchange, body); err != nil {
		b.logger.Warn("failed to publish lifecycle event", "event", event.Name, "exchange", b.exchange, "error", err)
	}
}
