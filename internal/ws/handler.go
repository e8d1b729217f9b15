// Package ws exposes the planning engine over a WebSocket frame protocol.
// Each frame is one JSON object; mutations arrive from clients and engine
// events fan back out through the Hub to every follower of a session.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/example/trip-planner/internal/session"
)

// sessionEngine captures the operations clients drive over the socket.
type sessionEngine interface {
	Join(ctx context.Context, params session.JoinParams) (session.SessionState, error)
	Leave(ctx context.Context, params session.LeaveParams) error
	CastVote(ctx context.Context, params session.VoteParams) (session.Tally, error)
	UpdateItinerary(ctx context.Context, params session.ItineraryParams) error
	MoveCursor(ctx context.Context, params session.CursorParams) error
	AddComment(ctx context.Context, params session.CommentParams) (session.Comment, error)
	CleanupDisconnected(ctx context.Context, handle string)
}

// Handler upgrades requests and speaks the frame protocol for one connection
// per goroutine. A dropped connection is reported to the engine so presence
// can be cleaned up across every session the user had joined.
type Handler struct {
	engine      sessionEngine
	hub         *Hub
	logger      *slog.Logger
	idGenerator func() string
}

// NewHandler constructs the WebSocket handler.
func NewHandler(engine sessionEngine, hub *Hub) *Handler {
	return NewHandlerWithLogger(engine, hub, nil)
}

// NewHandlerWithLogger constructs the WebSocket handler with a specified logger.
func NewHandlerWithLogger(engine sessionEngine, hub *Hub, logger *slog.Logger) *Handler {
	return &Handler{
		engine:      engine,
		hub:         hub,
		logger:      defaultLogger(logger),
		idGenerator: uuid.NewString,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	websocket.Handler(h.serve).ServeHTTP(w, r)
}

func (h *Handler) serve(conn *websocket.Conn) {
	defer func() { _ = conn.Close() }()

	handle := h.idGenerator()
	p := newPeer(handle, json.NewEncoder(conn))
	h.hub.register(p)

	ctx := context.Background()
	if r := conn.Request(); r != nil {
		ctx = r.Context()
	}
	logger := h.logger.With("service", "WSHandler", "conn_handle", handle)
	logger.InfoContext(ctx, "connection opened")

	defer func() {
		h.hub.drop(p)
		// The request context is gone once the socket closes.
		h.engine.CleanupDisconnected(context.Background(), handle)
		logger.Info("connection closed")
	}()

	decoder := json.NewDecoder(conn)
	windowStart := time.Now()
	framesInWindow := 0
	decodeErrors := 0
	for {
		var frame Frame
		if err := decoder.Decode(&frame); err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return
			}
			decodeErrors++
			_ = writeError(p, "", codeInvalidArgument, "frame is not valid JSON")
			if decodeErrors >= maxDecodeErrorsPerConn {
				logger.WarnContext(ctx, "closing connection after repeated decode failures")
				return
			}
			continue
		}
		decodeErrors = 0

		if len(frame.Payload) > maxFramePayloadBytes {
			_ = writeError(p, frame.RequestID, codeInvalidArgument, "frame payload too large")
			continue
		}

		now := time.Now()
		if now.Sub(windowStart) >= time.Second {
			windowStart = now
			framesInWindow = 0
		}
		framesInWindow++
		if framesInWindow > maxFramesPerSecond {
			logger.WarnContext(ctx, "closing connection after rate limit breach")
			_ = writeError(p, frame.RequestID, codeResourceExhausted, "frame rate limit exceeded")
			return
		}

		switch frame.Type {
		case frameJoinSession:
			h.handleJoin(ctx, p, frame)
		case frameLeaveSession:
			h.handleLeave(ctx, p, frame)
		case frameVote:
			h.handleVote(ctx, p, frame)
		case frameUpdateItinerary:
			h.handleUpdateItinerary(ctx, p, frame)
		case frameCursorMove:
			h.handleCursorMove(ctx, p, frame)
		case frameAddComment:
			h.handleAddComment(ctx, p, frame)
		default:
			_ = writeError(p, frame.RequestID, codeInvalidArgument, "unsupported frame type")
		}
	}
}

// handleJoin admits the user, binds the connection to them, and replies with
// the full session state so the client can render without a second round trip.
func (h *Handler) handleJoin(ctx context.Context, p *peer, frame Frame) {
	var payload joinSessionPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeError(p, frame.RequestID, codeInvalidArgument, "invalid join-session payload")
		return
	}
	state, err := h.engine.Join(ctx, session.JoinParams{
		SessionID:       payload.SessionID,
		UserID:          payload.UserID,
		UserName:        payload.UserName,
		TransportHandle: p.handle,
	})
	if err != nil {
		h.writeEngineError(ctx, p, frame.RequestID, err)
		return
	}
	p.bind(payload.UserID)
	h.hub.subscribe(payload.SessionID, p)

	stateJSON, err := json.Marshal(state)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to encode session state",
			"service", "WSHandler", "session_id", payload.SessionID, "error", err)
		_ = writeError(p, frame.RequestID, codeUnavailable, "operation unavailable")
		return
	}
	_ = p.writeFrame(Frame{Type: session.EventSessionState, RequestID: frame.RequestID, Payload: stateJSON})
}

func (h *Handler) handleLeave(ctx context.Context, p *peer, frame Frame) {
	var payload leaveSessionPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeError(p, frame.RequestID, codeInvalidArgument, "invalid leave-session payload")
		return
	}
	if err := h.engine.Leave(ctx, session.LeaveParams{
		SessionID: payload.SessionID,
		UserID:    payload.UserID,
	}); err != nil {
		h.writeEngineError(ctx, p, frame.RequestID, err)
		return
	}
	h.hub.unsubscribe(payload.SessionID, p)
}

func (h *Handler) handleVote(ctx context.Context, p *peer, frame Frame) {
	var payload votePayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeError(p, frame.RequestID, codeInvalidArgument, "invalid vote payload")
		return
	}
	var value *session.VoteValue
	if payload.Vote != nil {
		ballot := session.VoteValue(*payload.Vote)
		value = &ballot
	}
	if _, err := h.engine.CastVote(ctx, session.VoteParams{
		SessionID: payload.SessionID,
		ItemID:    payload.ItemID,
		UserID:    payload.UserID,
		Value:     value,
	}); err != nil {
		h.writeEngineError(ctx, p, frame.RequestID, err)
	}
}

func (h *Handler) handleUpdateItinerary(ctx context.Context, p *peer, frame Frame) {
	var payload updateItineraryPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeError(p, frame.RequestID, codeInvalidArgument, "invalid update-itinerary payload")
		return
	}
	if err := h.engine.UpdateItinerary(ctx, session.ItineraryParams{
		SessionID: payload.SessionID,
		UserID:    payload.UserID,
		Itinerary: payload.Itinerary,
	}); err != nil {
		h.writeEngineError(ctx, p, frame.RequestID, err)
	}
}

func (h *Handler) handleCursorMove(ctx context.Context, p *peer, frame Frame) {
	var payload cursorMovePayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeError(p, frame.RequestID, codeInvalidArgument, "invalid cursor-move payload")
		return
	}
	if err := h.engine.MoveCursor(ctx, session.CursorParams{
		SessionID: payload.SessionID,
		UserID:    payload.UserID,
		Position:  payload.Position,
	}); err != nil {
		h.writeEngineError(ctx, p, frame.RequestID, err)
	}
}

func (h *Handler) handleAddComment(ctx context.Context, p *peer, frame Frame) {
	var payload addCommentPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeError(p, frame.RequestID, codeInvalidArgument, "invalid add-comment payload")
		return
	}
	if _, err := h.engine.AddComment(ctx, session.CommentParams{
		SessionID: payload.SessionID,
		ItemID:    payload.ItemID,
		UserID:    payload.UserID,
		Text:      payload.Text,
	}); err != nil {
		h.writeEngineError(ctx, p, frame.RequestID, err)
	}
}

func (h *Handler) writeEngineError(ctx context.Context, p *peer, requestID string, err error) {
	var vErr *session.ValidationError
	switch {
	case errors.As(err, &vErr):
		_ = writeError(p, requestID, codeInvalidArgument, vErr.Error())
	case errors.Is(err, session.ErrNotFound):
		_ = writeError(p, requestID, codeNotFound, "session or participant not found")
	case errors.Is(err, session.ErrForbidden):
		_ = writeError(p, requestID, codeForbidden, "operation not allowed for this user")
	case errors.Is(err, session.ErrSessionEnded):
		_ = writeError(p, requestID, codeFailedPrecondition, "session has already ended")
	case errors.Is(err, session.ErrVotingDisabled):
		_ = writeError(p, requestID, codeFailedPrecondition, "voting is disabled for this session")
	default:
		h.logger.ErrorContext(ctx, "frame handling failed",
			"service", "WSHandler", "error", err, "error_kind", session.ErrorKind(err))
		_ = writeError(p, requestID, codeUnavailable, "operation unavailable")
	}
}

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
