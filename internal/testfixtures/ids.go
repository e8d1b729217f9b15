package testfixtures

import (
	"fmt"
	"sync/atomic"
)

// SequentialIDs returns an identifier generator for the store's id seam.
// Values look like "session-001", "session-002", so failures read in creation
// order. Each generator counts independently; an empty prefix yields "id".
func SequentialIDs(prefix string) func() string {
	if prefix == "" {
		prefix = "id"
	}
	var counter atomic.Uint64
	return func() string {
		return fmt.Sprintf("%s-%03d", prefix, counter.Add(1))
	}
}
