package models

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidConfig is returned by Validate for an incomplete connection.
var ErrInvalidConfig = errors.New("invalid connection config")

// Driver identifies the database engine behind a connection
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// DefaultPort returns the conventional port for the driver, 0 when not applicable
func (d Driver) DefaultPort() int {
	switch d {
	case DriverPostgres:
		return 5432
	default:
		return 0
	}
}

func (d Driver) String() string {
	switch d {
	case DriverPostgres:
		return "PostgreSQL"
	case DriverSQLite:
		return "SQLite"
	default:
		return string(d)
	}
}

// ConnectionConfig represents a saved database connection.
// The password is kept in the system keyring, never in the settings file.
type ConnectionConfig struct {
	ID             string `yaml:"id"`
	Name           string `yaml:"name"`
	Driver         Driver `yaml:"driver"`
	Host           string `yaml:"host,omitempty"`
	Port           int    `yaml:"port,omitempty"`
	Database       string `yaml:"database"`
	User           string `yaml:"user,omitempty"`
	Password       string `yaml:"-"`
	SSLMode        string `yaml:"ssl_mode,omitempty"`
	ConnectTimeout int    `yaml:"connect_timeout,omitempty"` // seconds
}

// NewConnectionConfig creates a config with a fresh ID and driver defaults
func NewConnectionConfig(name string, driver Driver) ConnectionConfig {
	cfg := ConnectionConfig{
		ID:             uuid.New().String(),
		Name:           name,
		Driver:         driver,
		Port:           driver.DefaultPort(),
		ConnectTimeout: 30,
	}
	if driver == DriverPostgres {
		cfg.Host = "localhost"
		cfg.Database = "postgres"
		cfg.User = "postgres"
		cfg.SSLMode = "prefer"
	}
	return cfg
}

// Duplicate returns a copy with a new ID. An empty name yields "<name> (Copy)".
func (c ConnectionConfig) Duplicate(name string) ConnectionConfig {
	if name == "" {
		name = fmt.Sprintf("%s (Copy)", c.Name)
	}
	dup := c
	dup.ID = uuid.New().String()
	dup.Name = name
	return dup
}

// Validate checks that the config has everything needed to connect
func (c ConnectionConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: connection name cannot be empty", ErrInvalidConfig)
	}
	switch c.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.Database) == "" {
			return fmt.Errorf("%w: database file cannot be empty", ErrInvalidConfig)
		}
	case DriverPostgres:
		if strings.TrimSpace(c.Host) == "" {
			return fmt.Errorf("%w: host cannot be empty", ErrInvalidConfig)
		}
		if strings.TrimSpace(c.Database) == "" {
			return fmt.Errorf("%w: database name cannot be empty", ErrInvalidConfig)
		}
		if strings.TrimSpace(c.User) == "" {
			return fmt.Errorf("%w: username cannot be empty", ErrInvalidConfig)
		}
		if c.Port <= 0 || c.Port > 65535 {
			return fmt.Errorf("%w: port must be between 1 and 65535", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unsupported driver %q", ErrInvalidConfig, c.Driver)
	}
	return nil
}

// DisplayString is the label shown for the connection in lists
func (c ConnectionConfig) DisplayString() string {
	if c.Driver == DriverSQLite {
		return fmt.Sprintf("%s (SQLite: %s)", c.Name, c.Database)
	}
	return fmt.Sprintf("%s (%s@%s:%d)", c.Name, c.User, c.Host, c.Port)
}

// Info is a short location summary without the name
func (c ConnectionConfig) Info() string {
	if c.Driver == DriverSQLite {
		return fmt.Sprintf("SQLite: %s", c.Database)
	}
	return fmt.Sprintf("%s@%s:%d/%s", c.User, c.Host, c.Port, c.Database)
}

// URL returns the connection URL copied to the clipboard.
// The password is included only when one is set.
func (c ConnectionConfig) URL() string {
	if c.Driver == DriverSQLite {
		return "sqlite:///" + strings.TrimLeft(c.Database, "/")
	}
	u := url.URL{
		Scheme: "postgresql",
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.Database,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else {
		u.User = url.User(c.User)
	}
	return u.String()
}

// DSN returns the driver-specific string used to open the connection
func (c ConnectionConfig) DSN() string {
	if c.Driver == DriverSQLite {
		return c.Database
	}
	parts := []string{
		fmt.Sprintf("host=%s", c.Host),
		fmt.Sprintf("port=%d", c.Port),
		fmt.Sprintf("dbname=%s", c.Database),
		fmt.Sprintf("user=%s", c.User),
	}
	if c.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", c.Password))
	}
	if c.SSLMode != "" {
		parts = append(parts, fmt.Sprintf("sslmode=%s", c.SSLMode))
	}
	if c.ConnectTimeout > 0 {
		parts = append(parts, fmt.Sprintf("connect_timeout=%d", c.ConnectTimeout))
	}
	return strings.Join(parts, " ")
}

// Connection represents an active database connection
type Connection struct {
	Config      ConnectionConfig
	ConnectedAt time.Time
	LastPing    time.Time
	Error       error
}
