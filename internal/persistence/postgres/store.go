// Package postgres persists session snapshots in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/example/trip-planner/internal/persistence"
)

// Store keeps one row per session with the snapshot as JSONB. SaveAll
// replaces the whole set in a single transaction, mirroring the engine's last
// committed state.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New wraps an existing database handle. The caller remains responsible for
// the schema; Open is the usual entry point.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Open connects to PostgreSQL with the given DSN and ensures the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres db: %w", err)
	}
	store := New(db)
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS planning_sessions (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			payload JSONB NOT NULL,
			saved_at TIMESTAMP WITH TIME ZONE NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("creating planning_sessions table: %w", err)
	}
	return nil
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
		return fmt.Errorf("beginning snapshot save: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM planning_sessions`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clearing snapshots: %w", err)
	}

	savedAt := s.now().UTC()
	for _, record := range records {
		payload, err := json.Marshal(record)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("encoding session %s: %w", record.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO planning_sessions (id, status, payload, saved_at) VALUES ($1, $2, $3, $4)`,
			record.ID, record.Status, payload, savedAt,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("inserting session %s: %w", record.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot save: %w", err)
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
		return nil, fmt.Errorf("loading snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []persistence.SessionSnapshot
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		var record persistence.SessionSnapshot
		if err := json.Unmarshal(payload, &record); err != nil {
			return nil, fmt.Errorf("decoding session payload: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshot rows: %w", err)
	}
	return records, nil
}

var _ persistence.SnapshotStore = (*Store)(nil)
