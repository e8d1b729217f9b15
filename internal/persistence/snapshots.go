package persistence

import (
	"context"
	"time"
)

// SnapshotStore durably records the full session set. SaveAll replaces the
// previous snapshot wholesale; there is no partial update or write-ahead log.
// Implementations are best effort: the in-memory store stays authoritative
// and callers log rather than propagate failures.
type SnapshotStore interface {
	SaveAll(ctx context.Context, snapshots []SessionSnapshot) error
	LoadAll(ctx context.Context) ([]SessionSnapshot, error)
	Close() error
}

// SessionSnapshot is the durable record for one session. Live-only fields
// (cursor positions, transport handles) are never written and come back empty
// after a restart.
type SessionSnapshot struct {
	ID            string                       `json:"id"`
	Name          string                       `json:"name"`
	TeamID        string                       `json:"teamId"`
	CreatorID     string                       `json:"creatorId"`
	CreatedAt     time.Time                    `json:"createdAt"`
	EndedAt       *time.Time                   `json:"endedAt"`
	Status        string                       `json:"status"`
	Settings      SettingsSnapshot             `json:"settings"`
	Itinerary     ItinerarySnapshot            `json:"itinerary"`
	LastUpdatedBy string                       `json:"lastUpdatedBy,omitempty"`
	LastUpdatedAt *time.Time                   `json:"lastUpdatedAt,omitempty"`
	Comments      map[string][]CommentSnapshot `json:"comments"`
	Votes         map[string]map[string]string `json:"votes"`
	Participants  []ParticipantSnapshot        `json:"participants"`
}

// SettingsSnapshot mirrors the session's toggles on disk.
type SettingsSnapshot struct {
	VotingEnabled    bool `json:"votingEnabled"`
	AnonymousVoting  bool `json:"anonymousVoting"`
	RequireConsensus bool `json:"requireConsensus"`
	AutoSchedule     bool `json:"autoSchedule"`
}

// ItinerarySnapshot stores the shared document verbatim.
type ItinerarySnapshot struct {
	Items     []map[string]any `json:"items"`
	StartDate string           `json:"startDate,omitempty"`
	EndDate   string           `json:"endDate,omitempty"`
}

// CommentSnapshot stores one comment on an itinerary item.
type CommentSnapshot struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ParticipantSnapshot stores a member without any live connection state.
type ParticipantSnapshot struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joinedAt"`
	Presence string    `json:"presence"`
}
