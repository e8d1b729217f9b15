package session

import "time"

// Event names shared by the engine, the transport layer, and clients.
const (
	EventSessionState     = "session-state"
	EventSessionCreated   = "session-created"
	EventSessionEnded     = "session-ended"
	EventUserJoined       = "user-joined"
	EventUserLeft         = "user-left"
	EventUserDisconnected = "user-disconnected"
	EventVoteUpdate       = "vote-update"
	EventItineraryUpdated = "itinerary-updated"
	EventCursorUpdate     = "cursor-update"
	EventCommentAdded     = "comment-added"
)

// Event is one outbound notification. SessionID is empty for global events.
// ExcludeUserID, when set, tells the transport not to deliver the event to
// that user's connections (a joiner never sees its own join notice).
type Event struct {
	Name          string
	SessionID     string
	Payload       any
	ExcludeUserID string
}

// broadcaster fans events out to connected clients. Delivery is best effort;
// the engine never waits on it.
type broadcaster interface {
	BroadcastToSession(sessionID string, event Event)
	BroadcastGlobal(event Event)
}

// SessionCreatedPayload announces a new session to every connected client.
type SessionCreatedPayload struct {
	Session SessionState `json:"session"`
}

// SessionEndedPayload announces a session's end to every connected client.
type SessionEndedPayload struct {
	SessionID string    `json:"sessionId"`
	EndedBy   string    `json:"endedBy"`
	EndedAt   time.Time `json:"endedAt"`
}

// UserJoinedPayload announces a new participant to the other session members.
type UserJoinedPayload struct {
	SessionID string          `json:"sessionId"`
	User      ParticipantView `json:"user"`
	Timestamp time.Time       `json:"timestamp"`
}

// UserLeftPayload announces an explicit departure.
type UserLeftPayload struct {
	SessionID string    `json:"sessionId"`
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

// UserDisconnectedPayload announces a participant removed by transport loss.
type UserDisconnectedPayload struct {
	SessionID string    `json:"sessionId"`
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

// VoteUpdatePayload carries the recomputed tally for one item.
type VoteUpdatePayload struct {
	SessionID string    `json:"sessionId"`
	ItemID    string    `json:"itemId"`
	Votes     Tally     `json:"votes"`
	Timestamp time.Time `json:"timestamp"`
}

// ItineraryUpdatedPayload carries the full replacement document with attribution.
type ItineraryUpdatedPayload struct {
	SessionID string    `json:"sessionId"`
	Itinerary Itinerary `json:"itinerary"`
	UpdatedBy string    `json:"updatedBy"`
	Timestamp time.Time `json:"timestamp"`
}

// CursorUpdatePayload carries an ephemeral pointer position.
type CursorUpdatePayload struct {
	SessionID string         `json:"sessionId"`
	UserID    string         `json:"userId"`
	Position  map[string]any `json:"position"`
	Timestamp time.Time      `json:"timestamp"`
}

// CommentAddedPayload carries a freshly appended comment.
type CommentAddedPayload struct {
	SessionID string  `json:"sessionId"`
	ItemID    string  `json:"itemId"`
	Comment   Comment `json:"comment"`
}
