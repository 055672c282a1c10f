// Package settings persists the saved connection list.
package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/rebeliceyang/lazyexplorer/internal/models"
)

var (
	// ErrNotFound is returned for an unknown connection id
	ErrNotFound = errors.New("connection not found")
	// ErrDuplicateName is returned when another connection already uses the name
	ErrDuplicateName = errors.New("connection name already exists")
)

// FileName is the saved connection file inside the config directory
const FileName = "connections.yaml"

type fileFormat struct {
	LastConnection string                    `yaml:"last_connection,omitempty"`
	Connections    []models.ConnectionConfig `yaml:"connections"`
}

// Store is the saved connection list backed by a YAML file. Passwords
// go to the keyring when a PasswordStore is configured.
type Store struct {
	path        string
	connections []models.ConnectionConfig
	last        string
	passwords   *PasswordStore
	logger      *slog.Logger
	mu          sync.RWMutex
}

// NewStore opens the store in configDir, loading the file if it exists.
// passwords may be nil to keep passwords in memory only.
func NewStore(configDir string, passwords *PasswordStore, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Store{
		path:      filepath.Join(configDir, FileName),
		passwords: passwords,
		logger:    logger,
	}

	if _, err := os.Stat(s.path); err == nil {
		if err := s.Load(); err != nil {
			return nil, fmt.Errorf("failed to load saved connections: %w", err)
		}
	}
	return s, nil
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}

// Load re-reads the file, replacing the in-memory list
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read saved connections file: %w", err)
	}

	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse saved connections: %w", err)
	}

	s.mu.Lock()
	s.connections = f.Connections
	s.last = f.LastConnection
	s.mu.Unlock()
	return nil
}

// save writes the list; callers hold the lock
func (s *Store) save() error {
	data, err := yaml.Marshal(fileFormat{LastConnection: s.last, Connections: s.connections})
	if err != nil {
		return fmt.Errorf("failed to marshal saved connections: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write saved connections file: %w", err)
	}
	return nil
}

// All returns the saved connections in file order, without passwords
func (s *Store) All() []models.ConnectionConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ConnectionConfig(nil), s.connections...)
}

// Get returns a saved connection with its password filled in
func (s *Store) Get(id string) (models.ConnectionConfig, error) {
	s.mu.RLock()
	i := s.indexOf(id)
	var cfg models.ConnectionConfig
	if i >= 0 {
		cfg = s.connections[i]
	}
	s.mu.RUnlock()

	if i < 0 {
		return models.ConnectionConfig{}, fmt.Errorf("connection %s: %w", id, ErrNotFound)
	}
	if s.passwords != nil {
		password, err := s.passwords.Get(id)
		switch {
		case err == nil:
			cfg.Password = password
		case !errors.Is(err, ErrPasswordNotFound):
			s.logger.Warn("failed to read password", "connection", cfg.Name, "error", err)
		}
	}
	return cfg, nil
}

// FindByName returns the saved connection called name
func (s *Store) FindByName(name string) (models.ConnectionConfig, error) {
	s.mu.RLock()
	var id string
	for _, c := range s.connections {
		if c.Name == name {
			id = c.ID
			break
		}
	}
	s.mu.RUnlock()

	if id == "" {
		return models.ConnectionConfig{}, fmt.Errorf("connection %q: %w", name, ErrNotFound)
	}
	return s.Get(id)
}

// Add validates and stores cfg. A connection with the same id is
// replaced; another connection with the same name is an error.
func (s *Store) Add(cfg models.ConnectionConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameTaken(cfg.Name, cfg.ID) {
		return fmt.Errorf("%q: %w", cfg.Name, ErrDuplicateName)
	}
	if i := s.indexOf(cfg.ID); i >= 0 {
		s.connections = append(s.connections[:i], s.connections[i+1:]...)
	}
	s.storePassword(cfg)
	cfg.Password = ""
	s.connections = append(s.connections, cfg)
	return s.save()
}

// Update replaces an existing connection in place
func (s *Store) Update(cfg models.ConnectionConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameTaken(cfg.Name, cfg.ID) {
		return fmt.Errorf("%q: %w", cfg.Name, ErrDuplicateName)
	}
	i := s.indexOf(cfg.ID)
	if i < 0 {
		return fmt.Errorf("connection %s: %w", cfg.ID, ErrNotFound)
	}
	s.storePassword(cfg)
	cfg.Password = ""
	s.connections[i] = cfg
	return s.save()
}

// Remove deletes a connection and its password
func (s *Store) Remove(id string) (models.ConnectionConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.ConnectionConfig{}, fmt.Errorf("connection %s: %w", id, ErrNotFound)
	}
	removed := s.connections[i]
	s.connections = append(s.connections[:i], s.connections[i+1:]...)
	if s.passwords != nil {
		if err := s.passwords.Delete(id); err != nil {
			s.logger.Warn("failed to delete password", "connection", removed.Name, "error", err)
		}
	}
	return removed, s.save()
}

// Duplicate copies a connection under a new id. The copy is named
// "<name> (Copy)", with " (n)" appended until the name is unique.
func (s *Store) Duplicate(id string) (models.ConnectionConfig, error) {
	original, err := s.Get(id)
	if err != nil {
		return models.ConnectionConfig{}, err
	}
	dup := original.Duplicate("")

	s.mu.Lock()
	defer s.mu.Unlock()

	base := dup.Name
	for n := 1; s.nameTaken(dup.Name, ""); n++ {
		dup.Name = fmt.Sprintf("%s (%d)", base, n)
	}
	s.storePassword(dup)
	stored := dup
	stored.Password = ""
	s.connections = append(s.connections, stored)
	if err := s.save(); err != nil {
		return models.ConnectionConfig{}, err
	}
	return dup, nil
}

// LastUsed returns the id of the most recently connected saved
// connection, or "" when unknown
func (s *Store) LastUsed() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.indexOf(s.last) < 0 {
		return ""
	}
	return s.last
}

// MarkUsed records id as the most recently connected connection
func (s *Store) MarkUsed(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(id) < 0 {
		return fmt.Errorf("connection %s: %w", id, ErrNotFound)
	}
	if s.last == id {
		return nil
	}
	s.last = id
	return s.save()
}

// NameExists reports whether a connection other than excludeID uses name
func (s *Store) NameExists(name, excludeID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nameTaken(name, excludeID)
}

func (s *Store) nameTaken(name, excludeID string) bool {
	for _, c := range s.connections {
		if c.Name == name && c.ID != excludeID {
			return true
		}
	}
	return false
}

func (s *Store) indexOf(id string) int {
	for i, c := range s.connections {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// storePassword moves the password into the keyring; failures are not fatal
func (s *Store) storePassword(cfg models.ConnectionConfig) {
	if s.passwords == nil || cfg.Password == "" {
		return
	}
	if err := s.passwords.Save(cfg.ID, cfg.Password); err != nil {
		s.logger.Warn("failed to save password", "connection", cfg.Name, "error", err)
	}
}
