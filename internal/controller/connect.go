package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/rebeliceyang/lazyexplorer/internal/db/metadata"
	"github.com/rebeliceyang/lazyexplorer/internal/models"
	"github.com/rebeliceyang/lazyexplorer/internal/settings"
)

// ConnectConfig returns the job that opens cfg and loads its schema
// list with per-schema object counts. On success the connection is
// added to the tree, expanded and saved if it was not saved before.
func (c *Controller) ConnectConfig(cfg models.ConnectionConfig) Job {
	c.tree.SetLoading(true)
	c.status = fmt.Sprintf("Connecting to %s...", cfg.Name)

	connectTimeout := c.cfg.Performance.ConnectTimeoutDuration()
	return Job{
		Name:         "connect",
		ConnectionID: cfg.ID,
		timeout:      connectTimeout + c.cfg.Performance.QueryTimeoutDuration(),
		run: func(ctx context.Context) Result {
			cctx, cancel := context.WithTimeout(ctx, connectTimeout)
			conn, err := c.manager.Connect(cctx, cfg)
			cancel()
			if err != nil {
				return connectFailed(cfg.ID, err)
			}

			exec, err := c.executors(cfg.Driver, conn.DB)
			if err != nil {
				_ = c.manager.Disconnect(cfg.ID)
				return connectFailed(cfg.ID, err)
			}

			schemas, err := exec.Schemas(ctx)
			if err != nil {
				_ = c.manager.Disconnect(cfg.ID)
				return connectFailed(cfg.ID, fmt.Errorf("failed to load schemas: %w", err))
			}

			counts := c.loadCounts(ctx, exec, cfg, schemas)
			return Result{apply: func(c *Controller) {
				c.connected(cfg, schemas, counts)
			}}
		},
	}
}

// connectFailed leaves a live connection with its old cache and rows;
// one the attempt tore down is dropped from the tree.
func connectFailed(id string, err error) Result {
	return Result{
		Err: err,
		apply: func(c *Controller) {
			c.tree.SetLoading(false)
			if c.manager.IsConnected(id) {
				c.reopen(id)
				return
			}
			delete(c.reopened, id)
			c.tree.RemoveConnection(id)
		},
	}
}

// loadCounts fetches object counts per schema. Failures only cost the
// badge, so they are logged and skipped.
func (c *Controller) loadCounts(ctx context.Context, exec metadata.Executor, cfg models.ConnectionConfig, schemas []models.Schema) map[string]models.ObjectCounts {
	counts := make(map[string]models.ObjectCounts, len(schemas))
	for _, s := range schemas {
		n, err := exec.ObjectCounts(ctx, s.Name)
		if err != nil {
			c.logger.Warn("failed to load object counts",
				"connection", cfg.Name,
				"schema", s.Name,
				"error", err)
			continue
		}
		counts[s.Name] = n
	}
	return counts
}

func (c *Controller) connected(cfg models.ConnectionConfig, schemas []models.Schema, counts map[string]models.ObjectCounts) {
	c.tree.AddConnection(cfg.ID, cfg.Name)
	c.tree.SetConnectionStatus(cfg.ID, true)
	c.tree.SetSchemas(cfg.ID, schemas)
	for schema, n := range counts {
		c.tree.SetObjectCounts(cfg.ID, schema, n)
	}

	if _, err := c.store.Get(cfg.ID); errors.Is(err, settings.ErrNotFound) {
		if err := c.store.Add(cfg); err != nil {
			c.fail(fmt.Errorf("connected but failed to save connection: %w", err))
		}
	}
	if err := c.store.MarkUsed(cfg.ID); err != nil && !errors.Is(err, settings.ErrNotFound) {
		c.logger.Warn("failed to record last connection", "connection", cfg.Name, "error", err)
	}
	c.tree.RefreshSavedConnections(c.store.All())

	c.tree.SetExpanded(models.ConnectionItem(cfg.ID), true)
	for _, saved := range c.tree.SavedConnections() {
		if saved.ID == cfg.ID {
			c.tree.SetExpanded(models.SavedConnectionItem(cfg.ID), true)
			break
		}
	}
	c.reopen(cfg.ID)

	c.status = fmt.Sprintf("Connected to %s", cfg.Name)
	c.logger.Info("connected", "connection", cfg.Name, "driver", cfg.Driver, "schemas", len(schemas))
}

// reopen expands the rows that were open before a refresh. The cache
// was replaced, so each one queues its fetch again.
func (c *Controller) reopen(id string) {
	items := c.reopened[id]
	delete(c.reopened, id)
	node, ok := c.tree.Connection(id)
	if !ok {
		return
	}
	live := make(map[string]bool)
	for _, s := range node.Schemas() {
		live[s.Name] = true
	}
	for _, item := range items {
		if live[item.Schema] {
			c.tree.SetExpanded(item, true)
		}
	}
}
