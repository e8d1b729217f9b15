// Package sqlite persists session snapshots in a single-file SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/trip-planner/internal/persistence"
	"github.com/example/trip-planner/internal/persistence/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store keeps one row per session, the snapshot serialized as JSON. SaveAll
// replaces the whole set in a single transaction, so the table always mirrors
// the engine's last committed state.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if missing) the database at path and applies the
// embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveAll replaces the stored snapshot set with records in one transaction.
func (s *Store) SaveAll(ctx context.Context, records []persistence.SessionSnapshot) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot save: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM planning_sessions`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear snapshots: %w", err)
	}

	savedAt := s.now().UTC().UnixMilli()
	for _, record := range records {
		payload, err := json.Marshal(record)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("encode session %s: %w", record.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO planning_sessions (id, status, payload, saved_at) VALUES (?, ?, ?, ?)`,
			record.ID, record.Status, string(payload), savedAt,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert session %s: %w", record.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot save: %w", err)
	}
	return nil
}

// LoadAll reads every stored snapshot, oldest ID first.
func (s *Store) LoadAll(ctx context.Context) ([]persistence.SessionSnapshot, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM planning_sessions ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("load snapshots: %w", err)
	}
	defer rows.Close()

	var records []persistence.SessionSnapshot
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("load snapshots: %w", err)
		}
		var record persistence.SessionSnapshot
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			return nil, fmt.Errorf("decode session payload: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load snapshots: %w", err)
	}
	return records, nil
}

var _ persistence.SnapshotStore = (*Store)(nil)
