package controller

import (
	"context"
	"fmt"

	"github.com/rebeliceyang/lazyexplorer/internal/db/metadata"
	"github.com/rebeliceyang/lazyexplorer/internal/explorer"
	"github.com/rebeliceyang/lazyexplorer/internal/models"
)

// executorFor resolves the executor of an open connection
func (c *Controller) executorFor(id string) (metadata.Executor, error) {
	conn, err := c.manager.Get(id)
	if err != nil {
		return nil, err
	}
	return c.executors(conn.Config.Driver, conn.DB)
}

// A failed fetch applies nothing, leaving the cache entry absent; the
// next expansion of the row asks again.

func (c *Controller) tablesJob(f explorer.TableFetch) Job {
	return Job{
		Name:         "tables",
		ConnectionID: f.ConnectionID,
		run: func(ctx context.Context) Result {
			exec, err := c.executorFor(f.ConnectionID)
			if err != nil {
				return Result{Err: err}
			}
			tables, err := exec.Tables(ctx, f.Schema)
			if err != nil {
				return Result{Err: fmt.Errorf("failed to load tables of %s: %w", f.Schema, err)}
			}
			return Result{apply: func(c *Controller) {
				c.tree.SetTables(f.ConnectionID, f.Schema, tables)
			}}
		},
	}
}

func (c *Controller) columnsJob(f explorer.ColumnFetch) Job {
	return Job{
		Name:         "columns",
		ConnectionID: f.ConnectionID,
		run: func(ctx context.Context) Result {
			exec, err := c.executorFor(f.ConnectionID)
			if err != nil {
				return Result{Err: err}
			}
			columns, err := exec.Columns(ctx, f.Schema, f.Table)
			if err != nil {
				return Result{Err: fmt.Errorf("failed to load columns of %s.%s: %w", f.Schema, f.Table, err)}
			}
			return Result{apply: func(c *Controller) {
				c.tree.SetColumns(f.ConnectionID, f.Schema, f.Table, columns)
			}}
		},
	}
}

func (c *Controller) objectsJob(f explorer.ObjectFetch) Job {
	return Job{
		Name:         "objects:" + f.Category.String(),
		ConnectionID: f.ConnectionID,
		run: func(ctx context.Context) Result {
			exec, err := c.executorFor(f.ConnectionID)
			if err != nil {
				return Result{Err: err}
			}
			apply, err := fetchCategory(ctx, exec, f)
			if err != nil {
				return Result{Err: fmt.Errorf("failed to load %s of %s: %w", f.Category, f.Schema, err)}
			}
			return Result{apply: apply}
		},
	}
}

// fetchCategory loads one category and returns the matching setter call
func fetchCategory(ctx context.Context, exec metadata.Executor, f explorer.ObjectFetch) (func(c *Controller), error) {
	id, schema := f.ConnectionID, f.Schema
	switch f.Category {
	case models.CategoryTables:
		tables, err := exec.Tables(ctx, schema)
		if err != nil {
			return nil, err
		}
		return func(c *Controller) { c.tree.SetTables(id, schema, tables) }, nil
	case models.CategoryViews:
		views, err := exec.Views(ctx, schema)
		if err != nil {
			return nil, err
		}
		return func(c *Controller) { c.tree.SetViews(id, schema, views) }, nil
	case models.CategoryFunctions:
		functions, err := exec.Functions(ctx, schema)
		if err != nil {
			return nil, err
		}
		return func(c *Controller) { c.tree.SetFunctions(id, schema, functions) }, nil
	case models.CategoryTriggers:
		triggers, err := exec.Triggers(ctx, schema)
		if err != nil {
			return nil, err
		}
		return func(c *Controller) { c.tree.SetTriggers(id, schema, triggers) }, nil
	case models.CategorySequences:
		sequences, err := exec.Sequences(ctx, schema)
		if err != nil {
			return nil, err
		}
		return func(c *Controller) { c.tree.SetSequences(id, schema, sequences) }, nil
	case models.CategoryIndexes:
		indexes, err := exec.Indexes(ctx, schema)
		if err != nil {
			return nil, err
		}
		return func(c *Controller) { c.tree.SetIndexes(id, schema, indexes) }, nil
	default:
		// the system catalog has no backing list
		return nil, nil
	}
}
