// Package testfixtures provides deterministic building blocks for tests: a
// ticking clock, a sequential identifier generator, prebuilt session
// snapshots, and a temporary sqlite harness.
package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/trip-planner/internal/persistence"
)

var sessionCounter uint64

var referenceTime = time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// NextSessionID returns a process-unique session identifier for tests that
// need distinct sessions without caring about the exact value.
func NextSessionID() string {
	return fmt.Sprintf("session-%03d", atomic.AddUint64(&sessionCounter, 1))
}

// SnapshotOption configures a generated session snapshot.
type SnapshotOption func(*persistence.SessionSnapshot)

// SessionSnapshot returns a deterministic snapshot for the given session id:
// an active two-person planning session with a scheduled museum visit, one
// comment, and a split vote on it. Options override individual fields.
func SessionSnapshot(id string, opts ...SnapshotOption) persistence.SessionSnapshot {
	created := referenceTime
	updated := created.Add(30 * time.Minute)
	snapshot := persistence.SessionSnapshot{
		ID:        id,
		Name:      "Offsite",
		TeamID:    "team-1",
		CreatorID: "user-1",
		CreatedAt: created,
		Status:    "active",
		Settings:  persistence.SettingsSnapshot{VotingEnabled: true},
		Itinerary: persistence.ItinerarySnapshot{
			Items: []map[string]any{
				{"id": "item-1", "title": "Museum", "scheduledTime": "2025-07-01T10:00"},
			},
			StartDate: "2025-07-01",
			EndDate:   "2025-07-03",
		},
		LastUpdatedBy: "user-2",
		LastUpdatedAt: &updated,
		Comments: map[string][]persistence.CommentSnapshot{
			"item-1": {{ID: "comment-1", UserID: "user-1", Text: "Looks good", Timestamp: created}},
		},
		Votes: map[string]map[string]string{
			"item-1": {"user-1": "up", "user-2": "down"},
		},
		Participants: []persistence.ParticipantSnapshot{
			{ID: "user-1", Name: "Ann", JoinedAt: created, Presence: "active"},
			{ID: "user-2", Name: "Ben", JoinedAt: updated, Presence: "active"},
		},
	}
	for _, opt := range opts {
		opt(&snapshot)
	}
	return snapshot
}

// SnapshotName overrides the session name.
func SnapshotName(name string) SnapshotOption {
	return func(s *persistence.SessionSnapshot) {
		s.Name = name
	}
}

// SnapshotEnded marks the snapshot as a session ended by the given user.
func SnapshotEnded(endedBy string, at time.Time) SnapshotOption {
	return func(s *persistence.SessionSnapshot) {
		s.Status = "ended"
		s.EndedAt = &at
		s.LastUpdatedBy = endedBy
		s.LastUpdatedAt = &at
	}
}

// SnapshotParticipants replaces the participant set.
func SnapshotParticipants(participants ...persistence.ParticipantSnapshot) SnapshotOption {
	return func(s *persistence.SessionSnapshot) {
		s.Participants = participants
	}
}
