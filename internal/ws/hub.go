package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/example/trip-planner/internal/session"
)

// peer is one connected client. Writes are serialized with a mutex because
// the serve loop and the fan-out path both write to the same socket.
type peer struct {
	handle string

	mu      sync.Mutex
	encoder *json.Encoder
	userID  string
}

func newPeer(handle string, encoder *json.Encoder) *peer {
	return &peer{handle: handle, encoder: encoder}
}

func (p *peer) writeFrame(frame Frame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.encoder.Encode(frame)
}

// bind records which user speaks through this connection. Events excluding
// that user are not echoed back to it.
func (p *peer) bind(userID string) {
	p.mu.Lock()
	p.userID = userID
	p.mu.Unlock()
}

func (p *peer) boundUserID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.userID
}

// Hub tracks live connections and which session each one follows, and fans
// engine events out to them. Delivery is best effort; a write failure drops
// the frame, not the connection, which dies on its own read loop.
type Hub struct {
	mu       sync.Mutex
	peers    map[*peer]struct{}
	sessions map[string]map[*peer]struct{}

	logger *slog.Logger
}

// NewHub constructs an empty hub.
func NewHub() *Hub {
	return NewHubWithLogger(nil)
}

// NewHubWithLogger constructs an empty hub with a specified logger.
func NewHubWithLogger(logger *slog.Logger) *Hub {
	return &Hub{
		peers:    make(map[*peer]struct{}),
		sessions: make(map[string]map[*peer]struct{}),
		logger:   defaultLogger(logger),
	}
}

func (h *Hub) register(p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.peers[p] = struct{}{}
}

// drop removes the peer from the hub and every session it followed.
func (h *Hub) drop(p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.peers, p)
	for sessionID, subscribers := range h.sessions {
		delete(subscribers, p)
		if len(subscribers) == 0 {
			delete(h.sessions, sessionID)
		}
	}
}

func (h *Hub) subscribe(sessionID string, p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subscribers, ok := h.sessions[sessionID]
	if !ok {
		subscribers = make(map[*peer]struct{})
		h.sessions[sessionID] = subscribers
	}
	subscribers[p] = struct{}{}
}

func (h *Hub) unsubscribe(sessionID string, p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subscribers, ok := h.sessions[sessionID]
	if !ok {
		return
	}
	delete(subscribers, p)
	if len(subscribers) == 0 {
		delete(h.sessions, sessionID)
	}
}

func (h *Hub) sessionPeers(sessionID string) []*peer {
	h.mu.Lock()
	defer h.mu.Unlock()
	subscribers := h.sessions[sessionID]
	snapshot := make([]*peer, 0, len(subscribers))
	for p := range subscribers {
		snapshot = append(snapshot, p)
	}
	return snapshot
}

func (h *Hub) allPeers() []*peer {
	h.mu.Lock()
	defer h.mu.Unlock()
	snapshot := make([]*peer, 0, len(h.peers))
	for p := range h.peers {
		snapshot = append(snapshot, p)
	}
	return snapshot
}

// BroadcastToSession delivers an engine event to every connection following
// the session, skipping the connection bound to the excluded user.
func (h *Hub) BroadcastToSession(sessionID string, event session.Event) {
	h.deliver(h.sessionPeers(sessionID), event)
}

// BroadcastGlobal delivers an engine event to every open connection.
func (h *Hub) BroadcastGlobal(event session.Event) {
	h.deliver(h.allPeers(), event)
}

func (h *Hub) deliver(peers []*peer, event session.Event) {
	if len(peers) == 0 {
		return
	}
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		h.logger.Error("failed to encode event payload",
			"service", "WSHub", "event", event.Name, "error", err)
		return
	}
	frame := Frame{Type: event.Name, Payload: payload}
	for _, p := range peers {
		if event.ExcludeUserID != "" && p.boundUserID() == event.ExcludeUserID {
			continue
		}
		if err := p.writeFrame(frame); err != nil {
			h.logger.Debug("dropping frame for unwritable connection",
				"service", "WSHub", "event", event.Name, "conn_handle", p.handle, "error", err)
		}
	}
}
