package activity

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is the relational sink for activity records. Each Append
// opens the database, inserts one row, and closes it again — no connection
// is held between events. The supervisor is the only writer, so the
// per-call overhead buys freedom from any cross-call state.
type SQLiteStore struct {
	path string
}

// NewSQLiteStore creates the activity table if it does not exist yet.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open activity db: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("create activity table: %w", err)
	}
	return &SQLiteStore{path: path}, nil
}

// Append inserts one record. Timestamps are stored as UTC ISO-8601 text
// and the raw payload as a JSON blob.
func (s *SQLiteStore) Append(rec Record) error {
	raw, err := json.Marshal(rec.Raw)
	if err != nil {
		return fmt.Errorf("serialize raw data: %w", err)
	}

	db, err := sql.Open("sqlite3", s.path)
	if err != nil {
		return fmt.Errorf("open activity db: %w", err)
	}
	defer db.Close()

	_, err = db.Exec(
		`INSERT INTO activity (timestamp, event_type, description, raw_data) VALUES (?, ?, ?, ?)`,
		rec.Timestamp.UTC().Format(time.RFC3339Nano),
		string(rec.Type),
		rec.Description,
		string(raw),
	)
	if err != nil {
		return fmt.Errorf("insert activity row: %w", err)
	}
	return nil
}
