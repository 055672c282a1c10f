package controller

import (
	"errors"
	"fmt"

	"github.com/rebeliceyang/lazyexplorer/internal/db/connection"
	"github.com/rebeliceyang/lazyexplorer/internal/models"
	"github.com/rebeliceyang/lazyexplorer/internal/settings"
)

func (c *Controller) requestEdit(id string) {
	cfg, err := c.store.Get(id)
	if err != nil {
		c.fail(fmt.Errorf("connection %s: %w", id, ErrUnknownConnection))
		return
	}
	c.editRequest = &cfg
}

// TakeEditRequest returns the config the user asked to edit, once
func (c *Controller) TakeEditRequest() (models.ConnectionConfig, bool) {
	if c.editRequest == nil {
		return models.ConnectionConfig{}, false
	}
	cfg := *c.editRequest
	c.editRequest = nil
	return cfg, true
}

// SaveConnection stores a config from the connection dialog, updating
// an existing entry or adding a new one
func (c *Controller) SaveConnection(cfg models.ConnectionConfig) error {
	var err error
	if _, gerr := c.store.Get(cfg.ID); gerr == nil {
		err = c.store.Update(cfg)
	} else {
		err = c.store.Add(cfg)
	}
	if err != nil {
		return err
	}
	c.tree.RefreshSavedConnections(c.store.All())
	c.status = fmt.Sprintf("Saved %s", cfg.Name)
	return nil
}

func (c *Controller) duplicate(id string) {
	dup, err := c.store.Duplicate(id)
	if err != nil {
		if errors.Is(err, settings.ErrNotFound) {
			err = fmt.Errorf("connection %s: %w", id, ErrUnknownConnection)
		}
		c.fail(err)
		return
	}
	c.tree.RefreshSavedConnections(c.store.All())
	c.status = fmt.Sprintf("Created %s", dup.Name)
}

func (c *Controller) requestDelete(id string) {
	if _, err := c.store.Get(id); err != nil {
		c.fail(fmt.Errorf("connection %s: %w", id, ErrUnknownConnection))
		return
	}
	if !c.cfg.General.ConfirmDestructiveOps {
		if err := c.deleteConnection(id); err != nil {
			c.fail(err)
		}
		return
	}
	c.pendingDelete = id
}

// PendingDelete returns the connection awaiting delete confirmation
func (c *Controller) PendingDelete() (models.ConnectionConfig, bool) {
	if c.pendingDelete == "" {
		return models.ConnectionConfig{}, false
	}
	cfg, err := c.store.Get(c.pendingDelete)
	if err != nil {
		c.pendingDelete = ""
		return models.ConnectionConfig{}, false
	}
	return cfg, true
}

// ConfirmDelete deletes the connection awaiting confirmation
func (c *Controller) ConfirmDelete() error {
	id := c.pendingDelete
	c.pendingDelete = ""
	if id == "" {
		return nil
	}
	if err := c.deleteConnection(id); err != nil {
		c.fail(err)
		return err
	}
	return nil
}

// CancelDelete drops the pending confirmation
func (c *Controller) CancelDelete() {
	c.pendingDelete = ""
}

// deleteConnection disconnects, forgets the cache and removes the saved
// entry with its password and history
func (c *Controller) deleteConnection(id string) error {
	if err := c.manager.Disconnect(id); err != nil && !errors.Is(err, connection.ErrNotConnected) {
		return err
	}
	c.tree.RemoveConnection(id)

	removed, err := c.store.Remove(id)
	if err != nil {
		return err
	}
	if c.history != nil {
		if err := c.history.DeleteConnection(id); err != nil {
			c.logger.Warn("failed to delete history", "connection", removed.Name, "error", err)
		}
	}
	c.tree.RefreshSavedConnections(c.store.All())
	c.status = fmt.Sprintf("Deleted %s", removed.Name)
	return nil
}

func (c *Controller) copyURL(id string) {
	cfg, err := c.lookup(id)
	if err != nil {
		c.fail(err)
		return
	}
	if err := c.clipboard(cfg.URL()); err != nil {
		c.fail(fmt.Errorf("failed to copy to clipboard: %w", err))
		return
	}
	c.status = fmt.Sprintf("Copied URL of %s", cfg.Name)
}
