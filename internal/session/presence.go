package session

import (
	"context"
	"fmt"
	"strings"
)

// Join registers (or refreshes) a participant and returns the full session
// snapshot for direct delivery to the joiner. Re-joining is idempotent: the
// name and transport handle are refreshed, joinedAt is kept, and exactly one
// participant entry exists per user. Other members are notified; the joiner
// is not.
func (s *Store) Join(ctx context.Context, params JoinParams) (state SessionState, err error) {
	if s == nil {
		err = fmt.Errorf("Store is nil")
		return
	}

	logger := s.loggerWith(ctx, "Join", "session_id", params.SessionID, "user_id", params.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to join session", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "participant joined")
	}()

	vErr := &ValidationError{}
	if strings.TrimSpace(params.UserID) == "" {
		vErr.add("userId", "user id is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.getActiveLocked(params.SessionID)
	if err != nil {
		return
	}

	joined := s.now().UTC()
	if existing, ok := current.Participants[params.UserID]; ok {
		joined = existing.JoinedAt
	}
	participant := Participant{
		ID:              params.UserID,
		Name:            params.UserName,
		JoinedAt:        joined,
		Presence:        PresenceActive,
		TransportHandle: params.TransportHandle,
	}
	current.Participants[params.UserID] = participant
	s.indexUserLocked(params.UserID, current.ID)

	state = s.stateLocked(current)
	s.commitLocked(Event{
		Name:          EventUserJoined,
		SessionID:     current.ID,
		ExcludeUserID: params.UserID,
		Payload: UserJoinedPayload{
			SessionID: current.ID,
			User: ParticipantView{
				ID:       participant.ID,
				Name:     participant.Name,
				JoinedAt: participant.JoinedAt,
				Presence: participant.Presence,
			},
			Timestamp: s.now().UTC(),
		},
	})
	return state, nil
}

// Leave removes a participant after an explicit departure. Leaving a session
// the user is not part of is a no-op.
func (s *Store) Leave(ctx context.Context, params LeaveParams) (err error) {
	if s == nil {
		return fmt.Errorf("Store is nil")
	}

	logger := s.loggerWith(ctx, "Leave", "session_id", params.SessionID, "user_id", params.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to leave session", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "participant left")
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.getActiveLocked(params.SessionID)
	if err != nil {
		return
	}
	if _, ok := current.Participants[params.UserID]; !ok {
		return nil
	}

	delete(current.Participants, params.UserID)
	s.unindexUserLocked(params.UserID, current.ID)

	s.commitLocked(Event{
		Name:      EventUserLeft,
		SessionID: current.ID,
		Payload: UserLeftPayload{
			SessionID: current.ID,
			UserID:    params.UserID,
			Timestamp: s.now().UTC(),
		},
	})
	return nil
}

// CleanupDisconnected removes every participant whose transport handle equals
// the dropped connection's handle. A participant who re-joined over a new
// connection carries a different handle and is left alone, so a stale
// disconnect cannot evict them. Ended sessions keep their final membership.
func (s *Store) CleanupDisconnected(ctx context.Context, handle string) {
	if s == nil || strings.TrimSpace(handle) == "" {
		return
	}

	logger := s.loggerWith(ctx, "CleanupDisconnected")

	s.mu.Lock()
	defer s.mu.Unlock()

	var events []Event
	for _, current := range s.sessions {
		if current.Status == StatusEnded {
			continue
		}
		for userID, participant := range current.Participants {
			if participant.TransportHandle != handle {
				continue
			}
			delete(current.Participants, userID)
			s.unindexUserLocked(userID, current.ID)
			events = append(events, Event{
				Name:      EventUserDisconnected,
				SessionID: current.ID,
				Payload: UserDisconnectedPayload{
					SessionID: current.ID,
					UserID:    userID,
					Timestamp: s.now().UTC(),
				},
			})
		}
	}
	if len(events) == 0 {
		return
	}

	s.commitLocked(events...)
	logger.With("removed_count", len(events)).InfoContext(ctx, "disconnected participant cleanup")
}

// MoveCursor records a participant's pointer position on the live record and
// relays it to the other members. Cursor state is ephemeral: it is never
// persisted and never appears in snapshots.
func (s *Store) MoveCursor(ctx context.Context, params CursorParams) error {
	if s == nil {
		return fmt.Errorf("Store is nil")
	}

	logger := s.loggerWith(ctx, "MoveCursor", "session_id", params.SessionID, "user_id", params.UserID)

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.getActiveLocked(params.SessionID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to move cursor", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	participant, ok := current.Participants[params.UserID]
	if !ok {
		logger.ErrorContext(ctx, "failed to move cursor", "error", ErrNotFound, "error_kind", ErrorKind(ErrNotFound))
		return ErrNotFound
	}

	position := make(map[string]any, len(params.Position))
	for key, value := range params.Position {
		position[key] = value
	}
	participant.Cursor = position
	current.Participants[params.UserID] = participant

	s.dispatchEffects(sideEffects{events: []Event{{
		Name:          EventCursorUpdate,
		SessionID:     current.ID,
		ExcludeUserID: params.UserID,
		Payload: CursorUpdatePayload{
			SessionID: current.ID,
			UserID:    params.UserID,
			Position:  position,
			Timestamp: s.now().UTC(),
		},
	}}})
	logger.DebugContext(ctx, "cursor moved")
	return nil
}
