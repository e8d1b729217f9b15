package testfixtures

import (
	"sync"
	"time"
)

// TickingClock returns a time source that reports start on the first call and
// moves forward by step on every subsequent one. Stores stamp session
// timestamps from this seam, so strictly increasing reads keep list ordering
// stable across runs. A zero start begins at ReferenceTime; a zero step
// freezes the clock.
func TickingClock(start time.Time, step time.Duration) func() time.Time {
	if start.IsZero() {
		start = ReferenceTime()
	}
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current := next
		next = next.Add(step)
		return current
	}
}
