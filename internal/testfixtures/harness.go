package testfixtures

import (
	"path/filepath"
	"testing"

	"github.com/example/trip-planner/internal/persistence/sqlite"
)

// SQLiteHarness provides a snapshot store backed by a temporary sqlite file
// for integration-style persistence tests.
type SQLiteHarness struct {
	Snapshots *sqlite.Store

	cleanup func()
}

// NewSQLiteHarness opens a snapshot store on a temporary file that is removed
// with the test. Callers may invoke Close early; the helper also registers a
// cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "planner.db")
	store, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to open snapshot store: %v", err)
	}

	harness := &SQLiteHarness{
		Snapshots: store,
		cleanup: func() {
			_ = store.Close()
		},
	}
	tb.Cleanup(harness.Close)
	return harness
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}
