// Package history records batch entry outcomes in a SQLite database so the
// collaborating frontend can show past runs. Recording is optional and
// never sits on the pipeline's hot path.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS entries (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	recorded_at TEXT NOT NULL,
	entry      TEXT NOT NULL,
	status     TEXT NOT NULL CHECK (status IN ('succeeded', 'failed')),
	output     TEXT NOT NULL DEFAULT '',
	error      TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_entries_entry ON entries(entry);
`

// Store is a run-history database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect history database: %w", err)
	}

	// SQLite allows one writer at a time; keep a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply history pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordEntry implements batch.Recorder.
func (s *Store) RecordEntry(name, status, output, errMsg string) error {
	_, err := s.db.Exec(`
		INSERT INTO entries (recorded_at, entry, status, output, error)
		VALUES (?, ?, ?, ?, ?)
	`, s.now().UTC().Format(time.RFC3339), name, status, output, errMsg)
	if err != nil {
		return fmt.Errorf("record entry outcome: %w", err)
	}
	return nil
}

// Entry is one recorded outcome.
type Entry struct {
	RecordedAt time.Time
	Name       string
	Status     string
	Output     string
	Error      string
}

// Recent returns up to limit most recent outcomes, newest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT recorded_at, entry, status, output, error
		FROM entries
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var recordedAt string
		if err := rows.Scan(&recordedAt, &e.Name, &e.Status, &e.Output, &e.Error); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, recordedAt); err == nil {
			e.RecordedAt = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
