// Package metadata reads catalog information for the explorer tree.
package metadata

import (
	"context"
	"fmt"

	"github.com/rebeliceyang/lazyexplorer/internal/db/connection"
	"github.com/rebeliceyang/lazyexplorer/internal/models"
)

// Executor fetches the metadata of one connection
type Executor interface {
	Schemas(ctx context.Context) ([]models.Schema, error)
	Tables(ctx context.Context, schema string) ([]models.Table, error)
	Columns(ctx context.Context, schema, table string) ([]models.Column, error)
	Views(ctx context.Context, schema string) ([]models.View, error)
	Functions(ctx context.Context, schema string) ([]models.Function, error)
	Triggers(ctx context.Context, schema string) ([]models.Trigger, error)
	Sequences(ctx context.Context, schema string) ([]models.Sequence, error)
	Indexes(ctx context.Context, schema string) ([]models.Index, error)
	ObjectCounts(ctx context.Context, schema string) (models.ObjectCounts, error)
}

// For returns the executor matching driver
func For(driver models.Driver, q connection.Querier) (Executor, error) {
	switch driver {
	case models.DriverPostgres:
		return NewPostgres(q), nil
	case models.DriverSQLite:
		return NewSQLite(q), nil
	default:
		return nil, fmt.Errorf("no metadata support for driver %q", driver)
	}
}
