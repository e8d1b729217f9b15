package session

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// CastVote upserts or clears one user's ballot on one item and fans out the
// recomputed tally. The aggregator is itinerary-agnostic: the item id is not
// checked against the document, so a ballot for a removed item is simply
// orphaned. Only the latest ballot per user counts.
func (s *Store) CastVote(ctx context.Context, params VoteParams) (tally Tally, err error) {
	if s == nil {
		err = fmt.Errorf("Store is nil")
		return
	}

	logger := s.loggerWith(ctx, "CastVote", "session_id", params.SessionID, "item_id", params.ItemID, "user_id", params.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to cast vote", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "vote recorded")
	}()

	vErr := &ValidationError{}
	if strings.TrimSpace(params.ItemID) == "" {
		vErr.add("itemId", "item id is required")
	}
	if strings.TrimSpace(params.UserID) == "" {
		vErr.add("userId", "user id is required")
	}
	if params.Value != nil && *params.Value != VoteUp && *params.Value != VoteDown {
		vErr.add("vote", "vote must be up or down")
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
	if !current.Settings.VotingEnabled {
		err = ErrVotingDisabled
		return
	}

	if params.Value == nil {
		ballots := current.Votes[params.ItemID]
		delete(ballots, params.UserID)
		if len(ballots) == 0 {
			delete(current.Votes, params.ItemID)
		}
	} else {
		ballots, ok := current.Votes[params.ItemID]
		if !ok {
			ballots = make(map[string]VoteValue)
			current.Votes[params.ItemID] = ballots
		}
		ballots[params.UserID] = *params.Value
	}

	tally = tallyFor(current, params.ItemID)
	s.commitLocked(Event{
		Name:      EventVoteUpdate,
		SessionID: current.ID,
		Payload: VoteUpdatePayload{
			SessionID: current.ID,
			ItemID:    params.ItemID,
			Votes:     tally,
			Timestamp: s.now().UTC(),
		},
	})
	return tally, nil
}

// Tally recomputes the vote summary for one item from the raw ballots.
func (s *Store) Tally(ctx context.Context, sessionID, itemID string) (Tally, error) {
	if s == nil {
		return Tally{}, fmt.Errorf("Store is nil")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current, err := s.getLocked(sessionID)
	if err != nil {
		return Tally{}, err
	}
	return tallyFor(current, itemID), nil
}

// TallyAll recomputes summaries for every item carrying at least one ballot.
func (s *Store) TallyAll(ctx context.Context, sessionID string) (map[string]Tally, error) {
	if s == nil {
		return nil, fmt.Errorf("Store is nil")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current, err := s.getLocked(sessionID)
	if err != nil {
		return nil, err
	}
	return allTallies(current), nil
}

// tallyFor derives the summary for one item. When the session votes
// anonymously, voter identities are withheld and only the counts leave the
// store; the raw ballots stay intact underneath.
func tallyFor(current *Session, itemID string) Tally {
	tally := Tally{Voters: []string{}}
	for userID, value := range current.Votes[itemID] {
		switch value {
		case VoteUp:
			tally.Upvotes++
		case VoteDown:
			tally.Downvotes++
		default:
			continue
		}
		tally.Voters = append(tally.Voters, userID)
	}
	tally.Total = tally.Upvotes - tally.Downvotes
	if current.Settings.AnonymousVoting {
		tally.Voters = []string{}
		return tally
	}
	sort.Strings(tally.Voters)
	return tally
}

func allTallies(current *Session) map[string]Tally {
	tallies := make(map[string]Tally, len(current.Votes))
	for itemID, ballots := range current.Votes {
		if len(ballots) == 0 {
			continue
		}
		tallies[itemID] = tallyFor(current, itemID)
	}
	return tallies
}
