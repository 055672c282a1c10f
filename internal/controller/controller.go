// Package controller owns the explorer tree and turns its fetch requests
// and connection actions into database work.
//
// The tree is only touched by Step, Apply and the action helpers, all
// of which run on the owner's goroutine. Run is the only method that
// blocks and it never touches the tree.
package controller

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/atotto/clipboard"

	"github.com/rebeliceyang/lazyexplorer/internal/config"
	"github.com/rebeliceyang/lazyexplorer/internal/db/connection"
	"github.com/rebeliceyang/lazyexplorer/internal/db/metadata"
	"github.com/rebeliceyang/lazyexplorer/internal/db/query"
	"github.com/rebeliceyang/lazyexplorer/internal/explorer"
	"github.com/rebeliceyang/lazyexplorer/internal/history"
	"github.com/rebeliceyang/lazyexplorer/internal/logging"
	"github.com/rebeliceyang/lazyexplorer/internal/models"
)

// ErrUnknownConnection is returned for an action on an id that is
// neither saved nor active
var ErrUnknownConnection = errors.New("unknown connection")

// ConnectionStore is the saved connection list
type ConnectionStore interface {
	All() []models.ConnectionConfig
	Get(id string) (models.ConnectionConfig, error)
	FindByName(name string) (models.ConnectionConfig, error)
	Add(cfg models.ConnectionConfig) error
	Update(cfg models.ConnectionConfig) error
	Remove(id string) (models.ConnectionConfig, error)
	Duplicate(id string) (models.ConnectionConfig, error)
	LastUsed() string
	MarkUsed(id string) error
}

// ExecutorFactory picks the metadata executor for a driver
type ExecutorFactory func(driver models.Driver, q connection.Querier) (metadata.Executor, error)

// Options configures a Controller. Store and Manager are required.
type Options struct {
	Config    *config.Config
	Store     ConnectionStore
	Manager   *connection.Manager
	Executors ExecutorFactory
	History   *history.Store
	Clipboard func(string) error
	Logger    *slog.Logger
}

// Controller drives the explorer tree
type Controller struct {
	tree      *explorer.MetadataTree
	store     ConnectionStore
	manager   *connection.Manager
	executors ExecutorFactory
	history   *history.Store
	clipboard func(string) error
	logger    *slog.Logger
	cfg       *config.Config

	lastErr       error
	status        string
	pendingDelete string
	editRequest   *models.ConnectionConfig
	preview       *query.Result
	previewObject string
	reopened      map[string][]models.TreeItem // rows to expand once a refresh lands
}

// New creates a controller with an empty tree populated with the saved
// connections
func New(opts Options) *Controller {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.GetDefaults()
	}
	executors := opts.Executors
	if executors == nil {
		executors = metadata.For
	}
	copyFn := opts.Clipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	c := &Controller{
		tree:      explorer.New(),
		store:     opts.Store,
		manager:   opts.Manager,
		executors: executors,
		history:   opts.History,
		clipboard: copyFn,
		logger:    logging.OrDiscard(opts.Logger),
		cfg:       cfg,
		reopened:  make(map[string][]models.TreeItem),
	}
	c.tree.SetSavedConnections(c.store.All())
	return c
}

// Tree returns the owned tree
func (c *Controller) Tree() *explorer.MetadataTree {
	return c.tree
}

// LastError returns the most recent failure, or nil
func (c *Controller) LastError() error {
	return c.lastErr
}

// ClearError dismisses the last failure
func (c *Controller) ClearError() {
	c.lastErr = nil
}

// Status returns the last informational message
func (c *Controller) Status() string {
	return c.status
}

func (c *Controller) fail(err error) {
	c.logger.Error("action failed", "error", err)
	c.lastErr = err
}

// Sync replaces the saved list shown in the tree
func (c *Controller) Sync(saved []models.ConnectionConfig) {
	c.tree.RefreshSavedConnections(saved)
}

// Step drains the pending actions and the fetch queues. Actions that
// need no I/O take effect immediately; the rest come back as jobs.
func (c *Controller) Step() []Job {
	var jobs []Job
	for {
		pa, ok := c.tree.TakePendingAction()
		if !ok {
			break
		}
		if job, ok := c.handleAction(pa); ok {
			jobs = append(jobs, job)
		}
	}

	for _, f := range c.tree.SchemasNeedingTables() {
		jobs = append(jobs, c.tablesJob(f))
	}
	for _, f := range c.tree.SchemasNeedingObjects() {
		if f.Category == models.CategorySystemCatalog {
			continue
		}
		jobs = append(jobs, c.objectsJob(f))
	}
	for _, f := range c.tree.TablesNeedingColumns() {
		jobs = append(jobs, c.columnsJob(f))
	}
	return jobs
}

func (c *Controller) handleAction(pa models.PendingAction) (Job, bool) {
	c.logger.Debug("action", "action", pa.Action, "connection", pa.ConnectionID)

	switch pa.Action {
	case models.ActionConnect:
		cfg, err := c.lookup(pa.ConnectionID)
		if err != nil {
			c.fail(err)
			return Job{}, false
		}
		return c.ConnectConfig(cfg), true
	case models.ActionEdit:
		c.requestEdit(pa.ConnectionID)
	case models.ActionDuplicate:
		c.duplicate(pa.ConnectionID)
	case models.ActionDelete:
		c.requestDelete(pa.ConnectionID)
	case models.ActionCopyURL:
		c.copyURL(pa.ConnectionID)
	}
	return Job{}, false
}

// lookup finds a config among saved connections, then active ones
func (c *Controller) lookup(id string) (models.ConnectionConfig, error) {
	cfg, err := c.store.Get(id)
	if err == nil {
		return cfg, nil
	}
	if conn, cerr := c.manager.Get(id); cerr == nil {
		return conn.Config, nil
	}
	return models.ConnectionConfig{}, fmt.Errorf("connection %s: %w", id, ErrUnknownConnection)
}

// ConnectByName queues a connect for the saved connection called name
func (c *Controller) ConnectByName(name string) error {
	cfg, err := c.store.FindByName(name)
	if err != nil {
		return err
	}
	c.tree.RequestAction(models.ActionConnect, cfg.ID)
	return nil
}

// ConnectLastUsed queues a connect for the most recently used
// connection; it reports false when there is none
func (c *Controller) ConnectLastUsed() bool {
	id := c.store.LastUsed()
	if id == "" {
		return false
	}
	c.tree.RequestAction(models.ActionConnect, id)
	return true
}

// Disconnect closes a connection and drops its cached metadata. The
// saved entry, if any, stays in the tree.
func (c *Controller) Disconnect(id string) error {
	if err := c.manager.Disconnect(id); err != nil {
		return err
	}
	c.tree.RemoveConnection(id)
	c.status = "Disconnected"
	return nil
}

// Refresh drops the cache of an active connection and reconnects. Open
// schema, category and table rows are collapsed for the reconnect and
// expanded again once it lands, which reloads them.
func (c *Controller) Refresh(id string) error {
	if !c.manager.IsConnected(id) {
		return fmt.Errorf("connection %s: %w", id, connection.ErrNotConnected)
	}
	open := c.tree.OpenItems(id)
	for i := len(open) - 1; i >= 0; i-- {
		c.tree.SetExpanded(open[i], false)
	}
	c.reopened[id] = append(c.reopened[id], open...)
	c.tree.RequestAction(models.ActionConnect, id)
	return nil
}

// Close releases every open connection and the history database
func (c *Controller) Close() {
	c.manager.CloseAll()
	if c.history != nil {
		if err := c.history.Close(); err != nil {
			c.logger.Warn("failed to close history", "error", err)
		}
	}
}
