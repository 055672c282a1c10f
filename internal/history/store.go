// Package history records executed preview statements in a local
// SQLite database.
package history

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Entry is one executed preview
type Entry struct {
	ID             int64
	ConnectionID   string
	ConnectionName string
	Object         string
	Statement      string
	ExecutedAt     time.Time
	Duration       time.Duration
	RowCount       int
	Success        bool
	ErrorMessage   string
}

// Store manages preview history persistence
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the history database at path
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Add records an entry. A zero ExecutedAt means now.
func (s *Store) Add(entry Entry) error {
	if entry.ExecutedAt.IsZero() {
		entry.ExecutedAt = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO preview_history
		(connection_id, connection_name, object, statement, executed_at,
		 duration_ms, row_count, success, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ConnectionID,
		entry.ConnectionName,
		entry.Object,
		entry.Statement,
		entry.ExecutedAt.UnixMilli(),
		entry.Duration.Milliseconds(),
		entry.RowCount,
		entry.Success,
		entry.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to record history: %w", err)
	}
	return nil
}

const selectEntries = `
	SELECT id, connection_id, connection_name, object, statement,
	       executed_at, duration_ms, row_count, success, error_message
	FROM preview_history`

// Recent returns the newest entries first
func (s *Store) Recent(limit int) ([]Entry, error) {
	return s.query(selectEntries+` ORDER BY executed_at DESC, id DESC LIMIT ?`, limit)
}

// ForConnection returns the newest entries of one connection
func (s *Store) ForConnection(connectionID string, limit int) ([]Entry, error) {
	return s.query(selectEntries+`
		WHERE connection_id = ?
		ORDER BY executed_at DESC, id DESC
		LIMIT ?`, connectionID, limit)
}

// Search matches statement text
func (s *Store) Search(text string, limit int) ([]Entry, error) {
	return s.query(selectEntries+`
		WHERE statement LIKE ?
		ORDER BY executed_at DESC, id DESC
		LIMIT ?`, "%"+text+"%", limit)
}

// DeleteConnection drops the entries of a deleted connection
func (s *Store) DeleteConnection(connectionID string) error {
	if _, err := s.db.Exec(`DELETE FROM preview_history WHERE connection_id = ?`, connectionID); err != nil {
		return fmt.Errorf("failed to delete history: %w", err)
	}
	return nil
}

func (s *Store) query(query string, args ...interface{}) ([]Entry, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var executedAt, durationMs int64

		err := rows.Scan(
			&e.ID,
			&e.ConnectionID,
			&e.ConnectionName,
			&e.Object,
			&e.Statement,
			&executedAt,
			&durationMs,
			&e.RowCount,
			&e.Success,
			&e.ErrorMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}

		e.ExecutedAt = time.UnixMilli(executedAt)
		e.Duration = time.Duration(durationMs) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
