package testfixtures

import (
	"testing"
	"time"

	"github.com/example/trip-planner/internal/persistence"
)

func TestSessionSnapshotDefaults(t *testing.T) {
	snapshot := SessionSnapshot("session-1")

	if snapshot.ID != "session-1" || snapshot.Status != "active" {
		t.Fatalf("unexpected identity fields %+v", snapshot)
	}
	if !snapshot.CreatedAt.Equal(ReferenceTime()) {
		t.Fatalf("expected creation at the reference time, got %v", snapshot.CreatedAt)
	}
	if len(snapshot.Participants) != 2 {
		t.Fatalf("expected two participants, got %d", len(snapshot.Participants))
	}
	if snapshot.Votes["item-1"]["user-2"] != "down" {
		t.Fatalf("expected the split vote, got %v", snapshot.Votes)
	}
	if len(snapshot.Comments["item-1"]) != 1 {
		t.Fatalf("expected one comment, got %v", snapshot.Comments)
	}
}

func TestSessionSnapshotOptions(t *testing.T) {
	endedAt := ReferenceTime().Add(2 * time.Hour)
	snapshot := SessionSnapshot("session-2",
		SnapshotName("Winter Retreat"),
		SnapshotEnded("user-1", endedAt),
		SnapshotParticipants(persistence.ParticipantSnapshot{ID: "user-9", Name: "Ida", JoinedAt: ReferenceTime(), Presence: "active"}),
	)

	if snapshot.Name != "Winter Retreat" {
		t.Fatalf("expected the override name, got %q", snapshot.Name)
	}
	if snapshot.Status != "ended" || snapshot.EndedAt == nil || !snapshot.EndedAt.Equal(endedAt) {
		t.Fatalf("expected an ended session, got %+v", snapshot)
	}
	if len(snapshot.Participants) != 1 || snapshot.Participants[0].ID != "user-9" {
		t.Fatalf("expected the replaced participant set, got %v", snapshot.Participants)
	}
}

func TestNextSessionIDIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		id := NextSessionID()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
