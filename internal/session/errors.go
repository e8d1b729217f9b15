package session

import "errors"

var (
	// ErrNotFound is returned when the requested session does not exist.
	ErrNotFound = errors.New("session: not found")
	// ErrForbidden is returned when the acting user may not perform a creator-only operation.
	ErrForbidden = errors.New("session: forbidden")
	// ErrSessionEnded is returned when a mutation targets a session that has already ended.
	ErrSessionEnded = errors.New("session: already ended")
	// ErrVotingDisabled is returned when a ballot is cast while the session has voting turned off.
	ErrVotingDisabled = errors.New("session: voting disabled")
	// ErrNoActivities is returned when scheduling finds no itinerary item with a scheduled time.
	ErrNoActivities = errors.New("session: no activities to schedule")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
