package session

import (
	"context"
	"fmt"

	"github.com/example/trip-planner/internal/schedule"
)

// CalendarConnector is the external calendar collaborator. The engine builds
// event descriptors; the connector is responsible for creating them upstream.
type CalendarConnector interface {
	CreateEvents(ctx context.Context, credential string, events []schedule.Event) error
}

// SchedulePlan is the outcome of exporting a session's scheduled items.
type SchedulePlan struct {
	SessionID string             `json:"sessionId"`
	Events    []schedule.Event   `json:"events"`
	Warnings  []schedule.Overlap `json:"warnings,omitempty"`
	Delivered bool               `json:"delivered"`
}

// ScheduleActivities builds a calendar event for every itinerary item
// carrying a scheduled time, with the current participants as attendees, and
// hands them to the connector when one is provided. Overlapping events are
// reported as warnings, not failures. ErrNoActivities is returned when the
// itinerary is empty or nothing in it is scheduled.
func (s *Store) ScheduleActivities(ctx context.Context, sessionID string, connector CalendarConnector, credential string) (plan SchedulePlan, err error) {
	if s == nil {
		err = fmt.Errorf("Store is nil")
		return
	}

	logger := s.loggerWith(ctx, "ScheduleActivities", "session_id", sessionID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to schedule activities", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("event_count", len(plan.Events), "delivered", plan.Delivered).InfoContext(ctx, "activities scheduled")
	}()

	s.mu.RLock()
	current, lookupErr := s.getLocked(sessionID)
	if lookupErr != nil {
		s.mu.RUnlock()
		err = lookupErr
		return
	}
	name := current.Name
	items := make([]schedule.Item, 0, len(current.Itinerary.Items))
	for _, raw := range current.Itinerary.Items {
		items = append(items, schedule.ItemFromMap(raw))
	}
	attendees := make([]string, 0, len(current.Participants))
	for _, view := range participantViews(current) {
		attendee := view.Name
		if attendee == "" {
			attendee = view.ID
		}
		attendees = append(attendees, attendee)
	}
	s.mu.RUnlock()

	events := schedule.BuildEvents(name, items, attendees)
	if len(events) == 0 {
		err = ErrNoActivities
		return
	}

	plan = SchedulePlan{
		SessionID: sessionID,
		Events:    events,
		Warnings:  schedule.DetectOverlaps(events),
	}
	if connector == nil {
		return plan, nil
	}
	if err = connector.CreateEvents(ctx, credential, events); err != nil {
		err = fmt.Errorf("creating calendar events: %w", err)
		return SchedulePlan{}, err
	}
	plan.Delivered = true
	return plan, nil
}
