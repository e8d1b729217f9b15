package session

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// CreateSession allocates a new active session, registers the creator as its
// first participant (with no live transport yet), persists, and announces the
// session to every connected client.
func (s *Store) CreateSession(ctx context.Context, params CreateSessionParams) (state SessionState, err error) {
	if s == nil {
		err = fmt.Errorf("Store is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateSession", "creator_id", params.CreatorID, "team_id", params.TeamID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create session", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("session_id", state.ID).InfoContext(ctx, "session created")
	}()

	vErr := &ValidationError{}
	if strings.TrimSpace(params.Name) == "" {
		vErr.add("name", "name is required")
	}
	if strings.TrimSpace(params.CreatorID) == "" {
		vErr.add("creatorId", "creator id is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	created := &Session{
		ID:        s.idGenerator(),
		Name:      strings.TrimSpace(params.Name),
		TeamID:    strings.TrimSpace(params.TeamID),
		CreatorID: params.CreatorID,
		CreatedAt: now,
		Status:    StatusActive,
		Settings:  defaultSettings(),
		Itinerary: Itinerary{Items: []Item{}},
		Comments:  make(map[string][]Comment),
		Participants: map[string]Participant{
			params.CreatorID: {
				ID:       params.CreatorID,
				Name:     params.CreatorName,
				JoinedAt: now,
				Presence: PresenceActive,
			},
		},
		Votes: make(map[string]map[string]VoteValue),
	}
	s.sessions[created.ID] = created
	s.indexUserLocked(params.CreatorID, created.ID)

	state = s.stateLocked(created)
	s.commitLocked(Event{
		Name:    EventSessionCreated,
		Payload: SessionCreatedPayload{Session: state},
	})
	return state, nil
}

// EndSession marks a session ended and announces it. The first return is
// false only when the session does not exist. Ending is deliberately not
// idempotent: a repeat call by the creator succeeds again and re-stamps
// endedAt.
func (s *Store) EndSession(ctx context.Context, params EndSessionParams) (ended bool, err error) {
	if s == nil {
		err = fmt.Errorf("Store is nil")
		return
	}

	logger := s.loggerWith(ctx, "EndSession", "session_id", params.SessionID, "ended_by", params.EndedBy)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to end session", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("ended", ended).InfoContext(ctx, "session end handled")
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.sessions[params.SessionID]
	if !ok {
		return false, nil
	}
	if !params.Privileged && current.CreatorID != params.EndedBy {
		err = ErrForbidden
		return
	}

	now := s.now().UTC()
	current.Status = StatusEnded
	current.EndedAt = &now

	s.commitLocked(Event{
		Name: EventSessionEnded,
		Payload: SessionEndedPayload{
			SessionID: current.ID,
			EndedBy:   params.EndedBy,
			EndedAt:   now,
		},
	})
	return true, nil
}

// ListSessions returns every session newest first.
func (s *Store) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	if s == nil {
		return nil, fmt.Errorf("Store is nil")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]SessionSummary, 0, len(s.sessions))
	for _, current := range s.sessions {
		summaries = append(summaries, summaryOf(current))
	}
	sortSummaries(summaries)
	return summaries, nil
}

// UserSessions returns the sessions the user currently participates in,
// newest first.
func (s *Store) UserSessions(ctx context.Context, userID string) ([]SessionSummary, error) {
	if s == nil {
		return nil, fmt.Errorf("Store is nil")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]SessionSummary, 0, len(s.userSessions[userID]))
	for sessionID := range s.userSessions[userID] {
		current, ok := s.sessions[sessionID]
		if !ok {
			continue
		}
		summaries = append(summaries, summaryOf(current))
	}
	sortSummaries(summaries)
	return summaries, nil
}

func sortSummaries(summaries []SessionSummary) {
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].ID < summaries[j].ID
		}
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
}

// GetSession returns the full serializable view of one session.
func (s *Store) GetSession(ctx context.Context, sessionID string) (SessionState, error) {
	if s == nil {
		return SessionState{}, fmt.Errorf("Store is nil")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current, err := s.getLocked(sessionID)
	if err != nil {
		return SessionState{}, err
	}
	return s.stateLocked(current), nil
}

// UpdateSettings applies a partial settings change. Only the creator (or a
// privileged caller) may change settings, and never after the session ended.
func (s *Store) UpdateSettings(ctx context.Context, params UpdateSettingsParams) (settings Settings, err error) {
	if s == nil {
		err = fmt.Errorf("Store is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateSettings", "session_id", params.SessionID, "user_id", params.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update settings", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "settings updated")
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.getActiveLocked(params.SessionID)
	if err != nil {
		return
	}
	if !params.Privileged && current.CreatorID != params.UserID {
		err = ErrForbidden
		return
	}

	if params.Patch.VotingEnabled != nil {
		current.Settings.VotingEnabled = *params.Patch.VotingEnabled
	}
	if params.Patch.AnonymousVoting != nil {
		current.Settings.AnonymousVoting = *params.Patch.AnonymousVoting
	}
	if params.Patch.RequireConsensus != nil {
		current.Settings.RequireConsensus = *params.Patch.RequireConsensus
	}
	if params.Patch.AutoSchedule != nil {
		current.Settings.AutoSchedule = *params.Patch.AutoSchedule
	}

	s.commitLocked()
	return current.Settings, nil
}

// ExportSession returns a point-in-time copy of the session annotated with
// the export timestamp and format version.
func (s *Store) ExportSession(ctx context.Context, sessionID string) (export SessionExport, err error) {
	if s == nil {
		err = fmt.Errorf("Store is nil")
		return
	}

	logger := s.loggerWith(ctx, "ExportSession", "session_id", sessionID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to export session", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "session exported")
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	current, err := s.getLocked(sessionID)
	if err != nil {
		return
	}
	return SessionExport{
		SessionState:  s.stateLocked(current),
		ExportedAt:    s.now().UTC(),
		FormatVersion: ExportFormatVersion,
	}, nil
}

// ShareableLink builds the public join URL for a session. Pure string
// construction; the session is not required to exist.
func (s *Store) ShareableLink(sessionID string) string {
	if s == nil {
		return ""
	}
	base := strings.TrimRight(s.shareBaseURL, "/")
	return fmt.Sprintf("%s/join/%s", base, sessionID)
}
