package connection

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rebeliceyang/lazyexplorer/internal/models"
)

// SQLiteDB wraps a database/sql handle on a SQLite file
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLite opens the database file named by config.Database
func NewSQLite(ctx context.Context, config models.ConnectionConfig) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite3", config.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &SQLiteDB{db: db}, nil
}

// WrapSQLite adapts an already opened handle
func WrapSQLite(db *sql.DB) *SQLiteDB {
	return &SQLiteDB{db: db}
}

func (s *SQLiteDB) Close() {
	_ = s.db.Close()
}

func (s *SQLiteDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteDB) Query(ctx context.Context, query string, args ...interface{}) ([]map[string]interface{}, error) {
	res, err := s.QueryWithColumns(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}

func (s *SQLiteDB) QueryWithColumns(ctx context.Context, query string, args ...interface{}) (*QueryResult, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]interface{}, len(columns))
		for i, name := range columns {
			// TEXT columns come back as []byte
			if b, ok := values[i].([]byte); ok {
				row[name] = string(b)
			} else {
				row[name] = values[i]
			}
		}
		results = append(results, row)
	}

	return &QueryResult{
		Columns: columns,
		Rows:    results,
	}, rows.Err()
}

func (s *SQLiteDB) QueryRow(ctx context.Context, query string, args ...interface{}) (map[string]interface{}, error) {
	return firstRow(s.Query(ctx, query, args...))
}
