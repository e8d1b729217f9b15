package schedule

// OverlapType describes the kind of clash detected between built events.
type OverlapType string

const (
	// OverlapTypeTime indicates two events occupy overlapping time ranges.
	OverlapTypeTime OverlapType = "time"
	// OverlapTypeLocation indicates overlapping events also share a location.
	OverlapTypeLocation OverlapType = "location"
)

// Overlap details an overlapping pair that callers can present to users.
// Overlaps are warnings only; scheduling still proceeds.
type Overlap struct {
	Subject     string      `json:"subject"`
	WithSubject string      `json:"withSubject"`
	Type        OverlapType `json:"type"`
	Location    string      `json:"location,omitempty"`
}

// DetectOverlaps compares every pair of events and reports the clashes.
// Events are expected sorted by start time, as BuildEvents returns them.
func DetectOverlaps(events []Event) []Overlap {
	var overlaps []Overlap
	for i := 0; i < len(events); i++ {
		for j := i + 1; j < len(events); j++ {
			first, second := events[i], events[j]
			if !second.Start.Before(first.End) {
				break
			}
			overlap := Overlap{
				Subject:     first.Subject,
				WithSubject: second.Subject,
				Type:        OverlapTypeTime,
			}
			if first.Location != "" && first.Location == second.Location {
				overlap.Type = OverlapTypeLocation
				overlap.Location = first.Location
			}
			overlaps = append(overlaps, overlap)
		}
	}
	return overlaps
}
