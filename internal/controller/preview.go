package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rebeliceyang/lazyexplorer/internal/db/connection"
	"github.com/rebeliceyang/lazyexplorer/internal/db/query"
	"github.com/rebeliceyang/lazyexplorer/internal/export"
	"github.com/rebeliceyang/lazyexplorer/internal/history"
)

// ErrNothingToPreview is returned when the selection has no preview query
var ErrNothingToPreview = errors.New("select a table, view or column to preview")

// ErrNoPreview is returned when exporting before any preview ran
var ErrNoPreview = errors.New("no preview to export")

// ErrEmptyQuery is returned when running a blank statement
var ErrEmptyQuery = errors.New("query is empty")

// queryObject names ad-hoc statements in the history and export files
const queryObject = "query"

// Preview returns the job that runs the preview query of the selected
// table, view or column and records it in the history
func (c *Controller) Preview() (Job, error) {
	item, ok := c.tree.SelectedItem()
	if !ok {
		return Job{}, ErrNothingToPreview
	}
	sql, ok := c.tree.SQLForSelected(c.cfg.General.PreviewLimit)
	if !ok {
		return Job{}, ErrNothingToPreview
	}
	conn, err := c.manager.Get(item.ConnectionID)
	if err != nil {
		return Job{}, err
	}

	object := item.Schema + "." + item.Name
	if item.Table != "" {
		object = item.Schema + "." + item.Table + "." + item.Name
	}
	return c.queryJob("preview", conn, object, sql), nil
}

// RunQuery returns the job that runs a statement typed by the user
// against an open connection. The result replaces the last preview, so
// it is shown and exported the same way.
func (c *Controller) RunQuery(connectionID, sql string) (Job, error) {
	sql = strings.TrimSpace(sql)
	if sql == "" {
		return Job{}, ErrEmptyQuery
	}
	conn, err := c.manager.Get(connectionID)
	if err != nil {
		return Job{}, err
	}
	return c.queryJob("query", conn, queryObject, sql), nil
}

func (c *Controller) queryJob(name string, conn *connection.Connection, object, sql string) Job {
	return Job{
		Name:         name,
		ConnectionID: conn.ID,
		run: func(ctx context.Context) Result {
			res := query.Execute(ctx, conn.DB, sql)
			c.record(history.Entry{
				ConnectionID:   conn.ID,
				ConnectionName: conn.Config.Name,
				Object:         object,
				Statement:      sql,
				Duration:       res.Duration,
				RowCount:       len(res.Rows),
				Success:        res.Error == nil,
				ErrorMessage:   errorText(res.Error),
			})

			var err error
			if res.Error != nil {
				err = fmt.Errorf("%s of %s failed: %w", name, object, res.Error)
			}
			return Result{Err: err, apply: func(c *Controller) {
				c.preview = &res
				c.previewObject = object
				if err == nil {
					c.status = fmt.Sprintf("%d rows from %s", len(res.Rows), object)
				}
			}}
		},
	}
}

// RecentStatements returns distinct statements from the history of
// connectionID, newest first
func (c *Controller) RecentStatements(connectionID string, limit int) ([]string, error) {
	if c.history == nil {
		return nil, nil
	}
	entries, err := c.history.ForConnection(connectionID, limit)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, e := range entries {
		if seen[e.Statement] {
			continue
		}
		seen[e.Statement] = true
		out = append(out, e.Statement)
	}
	return out, nil
}

// LastPreview returns the most recent preview result
func (c *Controller) LastPreview() (query.Result, bool) {
	if c.preview == nil {
		return query.Result{}, false
	}
	return *c.preview, true
}

// ExportPreview writes the last preview into dir and returns the path
func (c *Controller) ExportPreview(dir string, format export.Format) (string, error) {
	if c.preview == nil {
		return "", ErrNoPreview
	}
	path, err := export.ToFile(dir, c.previewObject, format, *c.preview)
	if err != nil {
		return "", fmt.Errorf("failed to export %s: %w", c.previewObject, err)
	}
	c.status = fmt.Sprintf("Exported %d rows to %s", len(c.preview.Rows), path)
	c.logger.Info("exported preview", "object", c.previewObject, "path", path)
	return path, nil
}

// History returns recent previews and queries, newest first
func (c *Controller) History(limit int) ([]history.Entry, error) {
	if c.history == nil {
		return nil, nil
	}
	return c.history.Recent(limit)
}

func (c *Controller) record(e history.Entry) {
	if c.history == nil || !c.cfg.History.Enabled {
		return
	}
	if err := c.history.Add(e); err != nil {
		c.logger.Warn("failed to record statement", "error", err)
	}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
