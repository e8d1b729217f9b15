// Package schedule turns itinerary items into calendar-event descriptors for
// an external calendar collaborator and flags time overlaps between them.
package schedule

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DefaultDuration is assumed for items that carry a scheduled time but no
// usable duration of their own.
const DefaultDuration = time.Hour

// Event is one calendar-event descriptor built from a scheduled itinerary item.
type Event struct {
	ItemID    string    `json:"itemId,omitempty"`
	Subject   string    `json:"subject"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Location  string    `json:"location,omitempty"`
	Body      string    `json:"body,omitempty"`
	Attendees []string  `json:"attendees"`
}

// Item is the subset of an itinerary entry the builder reads. Everything else
// in the entry is opaque to scheduling.
type Item struct {
	ID            string
	Title         string
	ScheduledTime string
	DurationMin   int
	Location      string
	Description   string
}

// ItemFromMap extracts the scheduling fields out of a raw itinerary entry.
func ItemFromMap(raw map[string]any) Item {
	item := Item{
		ID:            stringField(raw, "id"),
		Title:         stringField(raw, "title"),
		ScheduledTime: stringField(raw, "scheduledTime"),
		Location:      stringField(raw, "location"),
		Description:   stringField(raw, "description"),
	}
	switch value := raw["duration"].(type) {
	case float64:
		item.DurationMin = int(value)
	case int:
		item.DurationMin = value
	case string:
		var minutes int
		if _, err := fmt.Sscanf(value, "%d", &minutes); err == nil {
			item.DurationMin = minutes
		}
	}
	return item
}

func stringField(raw map[string]any, key string) string {
	value, _ := raw[key].(string)
	return value
}

// BuildEvents converts every item with a parseable scheduled time into an
// event descriptor, attendees included, sorted by start time. Items without a
// scheduled time are skipped; the caller decides whether none at all is an
// error.
func BuildEvents(sessionName string, items []Item, attendees []string) []Event {
	events := make([]Event, 0, len(items))
	for _, item := range items {
		start, ok := parseScheduledTime(item.ScheduledTime)
		if !ok {
			continue
		}
		duration := DefaultDuration
		if item.DurationMin > 0 {
			duration = time.Duration(item.DurationMin) * time.Minute
		}
		subject := item.Title
		if subject == "" {
			subject = fmt.Sprintf("%s activity", sessionName)
		}
		events = append(events, Event{
			ItemID:    item.ID,
			Subject:   subject,
			Start:     start,
			End:       start.Add(duration),
			Location:  item.Location,
			Body:      buildBody(sessionName, item),
			Attendees: append([]string(nil), attendees...),
		})
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].Start.Equal(events[j].Start) {
			return events[i].Subject < events[j].Subject
		}
		return events[i].Start.Before(events[j].Start)
	})
	return events
}

func buildBody(sessionName string, item Item) string {
	lines := []string{fmt.Sprintf("Planned in %q.", sessionName)}
	if item.Description != "" {
		lines = append(lines, item.Description)
	}
	if item.Location != "" {
		lines = append(lines, fmt.Sprintf("Location: %s", item.Location))
	}
	return strings.Join(lines, "\n")
}

// parseScheduledTime accepts the formats clients have been observed to send.
func parseScheduledTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}
