package connection

import (
	"context"
	"errors"
	"fmt"

	"github.com/rebeliceyang/lazyexplorer/internal/models"
)

var (
	// ErrNotConnected is returned for an id with no open connection
	ErrNotConnected = errors.New("not connected")
	// ErrNoRows is returned by QueryRow when the query yields nothing
	ErrNoRows = errors.New("no rows returned")
)

// Querier is the query surface shared by every driver.
// Rows are returned as column name to value maps.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) ([]map[string]interface{}, error)
	QueryWithColumns(ctx context.Context, sql string, args ...interface{}) (*QueryResult, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) (map[string]interface{}, error)
	Ping(ctx context.Context) error
	Close()
}

// QueryResult represents a query result with columns and rows
type QueryResult struct {
	Columns []string
	Rows    []map[string]interface{}
}

// Opener opens a Querier for a connection config
type Opener func(ctx context.Context, config models.ConnectionConfig) (Querier, error)

// Open dispatches on the config driver
func Open(ctx context.Context, config models.ConnectionConfig) (Querier, error) {
	switch config.Driver {
	case models.DriverPostgres:
		return NewPool(ctx, config)
	case models.DriverSQLite:
		return NewSQLite(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported driver %q", config.Driver)
	}
}

func firstRow(rows []map[string]interface{}, err error) (map[string]interface{}, error) {
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows[0], nil
}
