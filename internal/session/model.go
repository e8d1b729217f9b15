package session

import "time"

// Status identifies where a session is in its lifecycle.
type Status string

const (
	// StatusActive means the session accepts mutations.
	StatusActive Status = "active"
	// StatusEnded is terminal; only reads and exports are accepted afterwards.
	StatusEnded Status = "ended"
)

// PresenceActive is the only presence value currently modeled; a participant
// either appears with it or has been removed.
const PresenceActive = "active"

// VoteValue is a single ballot's direction.
type VoteValue string

const (
	// VoteUp counts toward a tally's upvotes.
	VoteUp VoteValue = "up"
	// VoteDown counts toward a tally's downvotes.
	VoteDown VoteValue = "down"
)

// Settings are the per-session toggles, each independently mutable by the creator.
type Settings struct {
	VotingEnabled    bool `json:"votingEnabled"`
	AnonymousVoting  bool `json:"anonymousVoting"`
	RequireConsensus bool `json:"requireConsensus"`
	AutoSchedule     bool `json:"autoSchedule"`
}

func defaultSettings() Settings {
	return Settings{VotingEnabled: true}
}

// SettingsPatch carries the subset of settings a caller wants to change.
type SettingsPatch struct {
	VotingEnabled    *bool `json:"votingEnabled"`
	AnonymousVoting  *bool `json:"anonymousVoting"`
	RequireConsensus *bool `json:"requireConsensus"`
	AutoSchedule     *bool `json:"autoSchedule"`
}

// Item is one itinerary entry. The engine stores and republishes it verbatim;
// only scheduling export reads individual fields.
type Item map[string]any

// Itinerary is the single shared document participants edit collaboratively.
type Itinerary struct {
	Items     []Item `json:"items"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

// Comment is an append-only remark attached to one itinerary item.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Tally is the derived vote summary for one itinerary item.
type Tally struct {
	Upvotes   int      `json:"upvotes"`
	Downvotes int      `json:"downvotes"`
	Total     int      `json:"total"`
	Voters    []string `json:"voters"`
}

// Participant is a user's live membership record within a session. Cursor and
// TransportHandle exist only in memory and never reach snapshots or exports.
type Participant struct {
	ID              string
	Name            string
	JoinedAt        time.Time
	Presence        string
	Cursor          map[string]any
	TransportHandle string
}

// Session is the authoritative in-memory record of one planning workspace.
type Session struct {
	ID            string
	Name          string
	TeamID        string
	CreatorID     string
	CreatedAt     time.Time
	EndedAt       *time.Time
	Status        Status
	Settings      Settings
	Itinerary     Itinerary
	LastUpdatedBy string
	LastUpdatedAt *time.Time
	Comments      map[string][]Comment
	Participants  map[string]Participant
	Votes         map[string]map[string]VoteValue
}

// ParticipantView is the serializable participant shape shared by snapshots,
// exports, and join notices.
type ParticipantView struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joinedAt"`
	Presence string    `json:"presence"`
}

// SessionState is the full serializable view of a session, sent to a joiner
// as session-state and reused by exports and admin reads.
type SessionState struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	TeamID        string               `json:"teamId"`
	CreatorID     string               `json:"creatorId"`
	CreatedAt     time.Time            `json:"createdAt"`
	EndedAt       *time.Time           `json:"endedAt"`
	Status        Status               `json:"status"`
	Settings      Settings             `json:"settings"`
	Itinerary     Itinerary            `json:"itinerary"`
	LastUpdatedBy string               `json:"lastUpdatedBy,omitempty"`
	LastUpdatedAt *time.Time           `json:"lastUpdatedAt,omitempty"`
	Comments      map[string][]Comment `json:"comments"`
	Participants  []ParticipantView    `json:"participants"`
	Votes         map[string]Tally     `json:"votes"`
}

// SessionSummary is the lobby-listing projection of a session.
type SessionSummary struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	TeamID           string     `json:"teamId"`
	CreatorID        string     `json:"creatorId"`
	Status           Status     `json:"status"`
	CreatedAt        time.Time  `json:"createdAt"`
	EndedAt          *time.Time `json:"endedAt"`
	ParticipantCount int        `json:"participantCount"`
}

// SessionExport is a point-in-time serializable copy for audit and
// calendar-scheduling integration.
type SessionExport struct {
	SessionState
	ExportedAt    time.Time `json:"exportedAt"`
	FormatVersion int       `json:"formatVersion"`
}

// ExportFormatVersion tags exports so downstream consumers can detect shape changes.
const ExportFormatVersion = 1

// CreateSessionParams wraps the data required to create a session.
type CreateSessionParams struct {
	CreatorID   string
	CreatorName string
	Name        string
	TeamID      string
}

// EndSessionParams wraps the data required to end a session.
type EndSessionParams struct {
	SessionID  string
	EndedBy    string
	Privileged bool
}

// UpdateSettingsParams wraps a creator's partial settings change.
type UpdateSettingsParams struct {
	SessionID  string
	UserID     string
	Privileged bool
	Patch      SettingsPatch
}

// JoinParams wraps the data required to register a participant.
type JoinParams struct {
	SessionID       string
	UserID          string
	UserName        string
	TransportHandle string
}

// LeaveParams wraps an explicit departure from a session.
type LeaveParams struct {
	SessionID string
	UserID    string
}

// CursorParams wraps an ephemeral cursor movement.
type CursorParams struct {
	SessionID string
	UserID    string
	Position  map[string]any
}

// VoteParams wraps one ballot. A nil Value clears the user's previous ballot.
type VoteParams struct {
	SessionID string
	ItemID    string
	UserID    string
	Value     *VoteValue
}

// ItineraryParams wraps a wholesale itinerary replacement.
type ItineraryParams struct {
	SessionID string
	UserID    string
	Itinerary Itinerary
}

// CommentParams wraps a new comment on an itinerary item.
type CommentParams struct {
	SessionID string
	ItemID    string
	UserID    string
	Text      string
}

func cloneItem(item Item) Item {
	if item == nil {
		return nil
	}
	clone := make(Item, len(item))
	for key, value := range item {
		clone[key] = value
	}
	return clone
}

func cloneItinerary(itinerary Itinerary) Itinerary {
	clone := Itinerary{StartDate: itinerary.StartDate, EndDate: itinerary.EndDate}
	if itinerary.Items != nil {
		clone.Items = make([]Item, 0, len(itinerary.Items))
		for _, item := range itinerary.Items {
			clone.Items = append(clone.Items, cloneItem(item))
		}
	}
	return clone
}

func cloneComments(comments map[string][]Comment) map[string][]Comment {
	clone := make(map[string][]Comment, len(comments))
	for itemID, list := range comments {
		clone[itemID] = append([]Comment(nil), list...)
	}
	return clone
}

func cloneVotes(votes map[string]map[string]VoteValue) map[string]map[string]VoteValue {
	clone := make(map[string]map[string]VoteValue, len(votes))
	for itemID, ballots := range votes {
		inner := make(map[string]VoteValue, len(ballots))
		for userID, value := range ballots {
			inner[userID] = value
		}
		clone[itemID] = inner
	}
	return clone
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
