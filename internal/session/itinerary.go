package session

import (
	"context"
	"fmt"
)

// UpdateItinerary replaces the shared document wholesale and stamps the
// attribution. This is last-writer-wins: of two overlapping edits the later
// arrival fully replaces the earlier one, with no field-level merge.
func (s *Store) UpdateItinerary(ctx context.Context, params ItineraryParams) (err error) {
	if s == nil {
		return fmt.Errorf("Store is nil")
	}

	logger := s.loggerWith(ctx, "UpdateItinerary", "session_id", params.SessionID, "user_id", params.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update itinerary", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "itinerary updated")
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.getActiveLocked(params.SessionID)
	if err != nil {
		return
	}

	now := s.now().UTC()
	current.Itinerary = cloneItinerary(params.Itinerary)
	current.LastUpdatedBy = params.UserID
	current.LastUpdatedAt = &now

	s.commitLocked(Event{
		Name:      EventItineraryUpdated,
		SessionID: current.ID,
		Payload: ItineraryUpdatedPayload{
			SessionID: current.ID,
			Itinerary: cloneItinerary(current.Itinerary),
			UpdatedBy: params.UserID,
			Timestamp: now,
		},
	})
	return nil
}
