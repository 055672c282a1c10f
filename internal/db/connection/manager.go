package connection

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rebeliceyang/lazyexplorer/internal/models"
)

// Manager owns the open connections, keyed by connection config id
type Manager struct {
	connections map[string]*Connection
	open        Opener
	mu          sync.RWMutex
}

// Connection wraps a Querier with metadata
type Connection struct {
	ID          string
	Config      models.ConnectionConfig
	DB          Querier
	ConnectedAt time.Time
	LastPing    time.Time
	Error       error
}

// NewManager creates a manager. A nil opener uses Open.
func NewManager(open Opener) *Manager {
	if open == nil {
		open = Open
	}
	return &Manager{
		connections: make(map[string]*Connection),
		open:        open,
	}
}

// Connect opens config and registers it under config.ID, closing any
// previous connection with the same id
func (m *Manager) Connect(ctx context.Context, config models.ConnectionConfig) (*Connection, error) {
	db, err := m.open(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", config.Name, err)
	}

	now := time.Now()
	conn := &Connection{
		ID:          config.ID,
		Config:      config,
		DB:          db,
		ConnectedAt: now,
		LastPing:    now,
	}

	m.mu.Lock()
	old := m.connections[config.ID]
	m.connections[config.ID] = conn
	m.mu.Unlock()

	if old != nil && old.DB != nil {
		old.DB.Close()
	}
	return conn, nil
}

// Disconnect closes a connection
func (m *Manager) Disconnect(id string) error {
	m.mu.Lock()
	conn, ok := m.connections[id]
	delete(m.connections, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("connection %s: %w", id, ErrNotConnected)
	}
	if conn.DB != nil {
		conn.DB.Close()
	}
	return nil
}

// Get returns the open connection for id
func (m *Manager) Get(id string) (*Connection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	conn, ok := m.connections[id]
	if !ok {
		return nil, fmt.Errorf("connection %s: %w", id, ErrNotConnected)
	}
	return conn, nil
}

// IsConnected reports whether id has an open connection
func (m *Manager) IsConnected(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.connections[id]
	return ok
}

// IDs returns the open connection ids, sorted
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.connections))
	for id := range m.connections {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Ping tests one connection and records the outcome
func (m *Manager) Ping(ctx context.Context, id string) error {
	conn, err := m.Get(id)
	if err != nil {
		return err
	}

	err = conn.DB.Ping(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		conn.Error = err
		return err
	}
	conn.LastPing = time.Now()
	conn.Error = nil
	return nil
}

// CloseAll disconnects everything
func (m *Manager) CloseAll() {
	m.mu.Lock()
	conns := m.connections
	m.connections = make(map[string]*Connection)
	m.mu.Unlock()

	for _, conn := range conns {
		if conn.DB != nil {
			conn.DB.Close()
		}
	}
}
