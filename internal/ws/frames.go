package ws

import (
	"encoding/json"

	"github.com/example/trip-planner/internal/session"
)

// Connection guards. A client that trips the rate or decode limits is cut
// off so one misbehaving socket cannot starve the rest of the room.
const (
	maxFramePayloadBytes   = 16 * 1024
	maxFramesPerSecond     = 40
	maxDecodeErrorsPerConn = 3
)

// Inbound frame types clients may send.
const (
	frameJoinSession     = "join-session"
	frameLeaveSession    = "leave-session"
	frameVote            = "vote"
	frameUpdateItinerary = "update-itinerary"
	frameCursorMove      = "cursor-move"
	frameAddComment      = "add-comment"
)

// frameError carries a structured failure back to the sender.
const frameError = "error"

// Error codes surfaced inside error frames.
const (
	codeInvalidArgument    = "INVALID_ARGUMENT"
	codeNotFound           = "NOT_FOUND"
	codeForbidden          = "FORBIDDEN"
	codeFailedPrecondition = "FAILED_PRECONDITION"
	codeResourceExhausted  = "RESOURCE_EXHAUSTED"
	codeUnavailable        = "UNAVAILABLE"
)

// Frame is the wire envelope in both directions. RequestID echoes whatever
// the client sent so it can correlate replies with requests.
type Frame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"requestId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type joinSessionPayload struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
}

type leaveSessionPayload struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
}

type votePayload struct {
	SessionID string  `json:"sessionId"`
	ItemID    string  `json:"itemId"`
	UserID    string  `json:"userId"`
	Vote      *string `json:"vote"`
}

type updateItineraryPayload struct {
	SessionID string            `json:"sessionId"`
	UserID    string            `json:"userId"`
	Itinerary session.Itinerary `json:"itinerary"`
}

type cursorMovePayload struct {
	SessionID string         `json:"sessionId"`
	UserID    string         `json:"userId"`
	Position  map[string]any `json:"position"`
}

type addCommentPayload struct {
	SessionID string `json:"sessionId"`
	ItemID    string `json:"itemId"`
	UserID    string `json:"userId"`
	Text      string `json:"comment"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(p *peer, requestID, code, message string) error {
	payload, err := json.Marshal(errorEnvelope{Error: errorBody{Code: code, Message: message}})
	if err != nil {
		return err
	}
	return p.writeFrame(Frame{Type: frameError, RequestID: requestID, Payload: payload})
}
