package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/example/trip-planner/internal/persistence"
)

// snapshotStore captures the durable operations needed by the store.
type snapshotStore interface {
	SaveAll(ctx context.Context, snapshots []persistence.SessionSnapshot) error
	LoadAll(ctx context.Context) ([]persistence.SessionSnapshot, error)
}

// Store is the authoritative in-memory table of planning sessions. Every
// mutation runs under its lock; persistence and broadcast side effects are
// captured during the mutation and executed afterwards on a single worker so
// they can never feed back into, or reorder against, the authoritative state.
type Store struct {
	mu           sync.RWMutex
	sessions     map[string]*Session
	userSessions map[string]map[string]struct{}

	snapshots    snapshotStore
	broadcast    broadcaster
	shareBaseURL string
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger

	queue    *taskQueue
	dispatch func(func())
}

// NewStore constructs the session store with the provided dependencies.
// Either snapshots or broadcast may be nil, disabling that side effect.
func NewStore(snapshots snapshotStore, broadcast broadcaster, shareBaseURL string, idGenerator func() string, now func() time.Time) *Store {
	return NewStoreWithLogger(snapshots, broadcast, shareBaseURL, idGenerator, now, nil)
}

// NewStoreWithLogger constructs the session store with a specified logger.
func NewStoreWithLogger(snapshots snapshotStore, broadcast broadcaster, shareBaseURL string, idGenerator func() string, now func() time.Time, logger *slog.Logger) *Store {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	store := &Store{
		sessions:     make(map[string]*Session),
		userSessions: make(map[string]map[string]struct{}),
		snapshots:    snapshots,
		broadcast:    broadcast,
		shareBaseURL: shareBaseURL,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
		queue:        newTaskQueue(),
	}
	store.dispatch = func(task func()) { store.queue.enqueue(task) }
	return store
}

func (s *Store) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SessionStore", operation, attrs...)
}

// Restore rehydrates the store from the durable snapshot and rebuilds the
// user-to-sessions index from each session's participant list. A read failure
// leaves the store empty; the caller logs and carries on.
func (s *Store) Restore(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("Store is nil")
	}
	logger := s.loggerWith(ctx, "Restore")

	if s.snapshots == nil {
		return nil
	}
	records, err := s.snapshots.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading snapshots: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range records {
		restored := fromSnapshot(record)
		s.sessions[restored.ID] = restored
		for userID := range restored.Participants {
			s.indexUserLocked(userID, restored.ID)
		}
	}
	logger.With("session_count", len(records)).InfoContext(ctx, "sessions restored")
	return nil
}

// Close flushes pending side effects and stops the worker. The snapshot
// store itself is closed by the owner that opened it.
func (s *Store) Close() {
	if s == nil || s.queue == nil {
		return
	}
	s.queue.close()
}

// getLocked returns the live record or ErrNotFound. Callers hold the lock.
func (s *Store) getLocked(sessionID string) (*Session, error) {
	current, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return current, nil
}

// getActiveLocked additionally rejects mutations on ended sessions.
func (s *Store) getActiveLocked(sessionID string) (*Session, error) {
	current, err := s.getLocked(sessionID)
	if err != nil {
		return nil, err
	}
	if current.Status == StatusEnded {
		return nil, ErrSessionEnded
	}
	return current, nil
}

func (s *Store) indexUserLocked(userID, sessionID string) {
	set, ok := s.userSessions[userID]
	if !ok {
		set = make(map[string]struct{})
		s.userSessions[userID] = set
	}
	set[sessionID] = struct{}{}
}

func (s *Store) unindexUserLocked(userID, sessionID string) {
	set, ok := s.userSessions[userID]
	if !ok {
		return
	}
	delete(set, sessionID)
	if len(set) == 0 {
		delete(s.userSessions, userID)
	}
}

// sideEffects is the work captured during a mutation: one full snapshot of
// every session plus the events to fan out, executed in that order.
type sideEffects struct {
	records []persistence.SessionSnapshot
	events  []Event
}

// commitLocked captures the current durable state and queues it with the
// given events. Must be called while still holding the write lock so the
// snapshot and the events agree.
func (s *Store) commitLocked(events ...Event) {
	effects := sideEffects{events: events}
	if s.snapshots != nil {
		effects.records = s.snapshotAllLocked()
	}
	s.dispatchEffects(effects)
}

func (s *Store) dispatchEffects(effects sideEffects) {
	if s.dispatch == nil {
		return
	}
	s.dispatch(func() {
		if s.snapshots != nil && effects.records != nil {
			if err := s.snapshots.SaveAll(context.Background(), effects.records); err != nil {
				s.logger.Error("failed to persist session snapshot",
					"service", "SessionStore", "error", err, "error_kind", "persistence")
			}
		}
		if s.broadcast == nil {
			return
		}
		for _, event := range effects.events {
			if event.SessionID == "" {
				s.broadcast.BroadcastGlobal(event)
				continue
			}
			s.broadcast.BroadcastToSession(event.SessionID, event)
		}
	})
}

func (s *Store) snapshotAllLocked() []persistence.SessionSnapshot {
	records := make([]persistence.SessionSnapshot, 0, len(s.sessions))
	for _, current := range s.sessions {
		records = append(records, toSnapshot(current))
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records
}

// stateLocked builds the serializable view of a session. Cursor positions and
// transport handles never appear in it.
func (s *Store) stateLocked(current *Session) SessionState {
	return SessionState{
		ID:            current.ID,
		Name:          current.Name,
		TeamID:        current.TeamID,
		CreatorID:     current.CreatorID,
		CreatedAt:     current.CreatedAt,
		EndedAt:       cloneTime(current.EndedAt),
		Status:        current.Status,
		Settings:      current.Settings,
		Itinerary:     cloneItinerary(current.Itinerary),
		LastUpdatedBy: current.LastUpdatedBy,
		LastUpdatedAt: cloneTime(current.LastUpdatedAt),
		Comments:      cloneComments(current.Comments),
		Participants:  participantViews(current),
		Votes:         allTallies(current),
	}
}

func participantViews(current *Session) []ParticipantView {
	views := make([]ParticipantView, 0, len(current.Participants))
	for _, participant := range current.Participants {
		views = append(views, ParticipantView{
			ID:       participant.ID,
			Name:     participant.Name,
			JoinedAt: participant.JoinedAt,
			Presence: participant.Presence,
		})
	}
	sort.Slice(views, func(i, j int) bool {
		if views[i].JoinedAt.Equal(views[j].JoinedAt) {
			return views[i].ID < views[j].ID
		}
		return views[i].JoinedAt.Before(views[j].JoinedAt)
	})
	return views
}

func summaryOf(current *Session) SessionSummary {
	return SessionSummary{
		ID:               current.ID,
		Name:             current.Name,
		TeamID:           current.TeamID,
		CreatorID:        current.CreatorID,
		Status:           current.Status,
		CreatedAt:        current.CreatedAt,
		EndedAt:          cloneTime(current.EndedAt),
		ParticipantCount: len(current.Participants),
	}
}

func toSnapshot(current *Session) persistence.SessionSnapshot {
	record := persistence.SessionSnapshot{
		ID:        current.ID,
		Name:      current.Name,
		TeamID:    current.TeamID,
		CreatorID: current.CreatorID,
		CreatedAt: current.CreatedAt,
		EndedAt:   cloneTime(current.EndedAt),
		Status:    string(current.Status),
		Settings: persistence.SettingsSnapshot{
			VotingEnabled:    current.Settings.VotingEnabled,
			AnonymousVoting:  current.Settings.AnonymousVoting,
			RequireConsensus: current.Settings.RequireConsensus,
			AutoSchedule:     current.Settings.AutoSchedule,
		},
		Itinerary: persistence.ItinerarySnapshot{
			StartDate: current.Itinerary.StartDate,
			EndDate:   current.Itinerary.EndDate,
		},
		LastUpdatedBy: current.LastUpdatedBy,
		LastUpdatedAt: cloneTime(current.LastUpdatedAt),
		Comments:      make(map[string][]persistence.CommentSnapshot, len(current.Comments)),
		Votes:         make(map[string]map[string]string, len(current.Votes)),
		Participants:  make([]persistence.ParticipantSnapshot, 0, len(current.Participants)),
	}
	if current.Itinerary.Items != nil {
		record.Itinerary.Items = make([]map[string]any, 0, len(current.Itinerary.Items))
		for _, item := range current.Itinerary.Items {
			record.Itinerary.Items = append(record.Itinerary.Items, cloneItem(item))
		}
	}
	for itemID, list := range current.Comments {
		stored := make([]persistence.CommentSnapshot, 0, len(list))
		for _, comment := range list {
			stored = append(stored, persistence.CommentSnapshot{
				ID:        comment.ID,
				UserID:    comment.UserID,
				Text:      comment.Text,
				Timestamp: comment.Timestamp,
			})
		}
		record.Comments[itemID] = stored
	}
	for itemID, ballots := range current.Votes {
		stored := make(map[string]string, len(ballots))
		for userID, value := range ballots {
			stored[userID] = string(value)
		}
		record.Votes[itemID] = stored
	}
	for _, view := range participantViews(current) {
		record.Participants = append(record.Participants, persistence.ParticipantSnapshot{
			ID:       view.ID,
			Name:     view.Name,
			JoinedAt: view.JoinedAt,
			Presence: view.Presence,
		})
	}
	return record
}

func fromSnapshot(record persistence.SessionSnapshot) *Session {
	restored := &Session{
		ID:        record.ID,
		Name:      record.Name,
		TeamID:    record.TeamID,
		CreatorID: record.CreatorID,
		CreatedAt: record.CreatedAt,
		EndedAt:   cloneTime(record.EndedAt),
		Status:    Status(record.Status),
		Settings: Settings{
			VotingEnabled:    record.Settings.VotingEnabled,
			AnonymousVoting:  record.Settings.AnonymousVoting,
			RequireConsensus: record.Settings.RequireConsensus,
			AutoSchedule:     record.Settings.AutoSchedule,
		},
		Itinerary: Itinerary{
			StartDate: record.Itinerary.StartDate,
			EndDate:   record.Itinerary.EndDate,
		},
		LastUpdatedBy: record.LastUpdatedBy,
		LastUpdatedAt: cloneTime(record.LastUpdatedAt),
		Comments:      make(map[string][]Comment),
		Participants:  make(map[string]Participant),
		Votes:         make(map[string]map[string]VoteValue),
	}
	if record.Itinerary.Items != nil {
		restored.Itinerary.Items = make([]Item, 0, len(record.Itinerary.Items))
		for _, item := range record.Itinerary.Items {
			restored.Itinerary.Items = append(restored.Itinerary.Items, cloneItem(Item(item)))
		}
	}
	for itemID, stored := range record.Comments {
		list := make([]Comment, 0, len(stored))
		for _, comment := range stored {
			list = append(list, Comment{
				ID:        comment.ID,
				UserID:    comment.UserID,
				Text:      comment.Text,
				Timestamp: comment.Timestamp,
			})
		}
		restored.Comments[itemID] = list
	}
	for itemID, stored := range record.Votes {
		ballots := make(map[string]VoteValue, len(stored))
		for userID, value := range stored {
			ballots[userID] = VoteValue(value)
		}
		restored.Votes[itemID] = ballots
	}
	for _, stored := range record.Participants {
		restored.Participants[stored.ID] = Participant{
			ID:       stored.ID,
			Name:     stored.Name,
			JoinedAt: stored.JoinedAt,
			Presence: stored.Presence,
		}
	}
	return restored
}
