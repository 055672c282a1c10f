// Package discovery finds PostgreSQL servers the user can probably reach,
// to prefill the new connection dialog.
package discovery

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/rebeliceyang/lazyexplorer/internal/models"
)

// Source tells where an instance was found. Lower values win when the
// same address is found twice.
type Source int

const (
	SourceEnvironment Source = iota
	SourcePgPass
	SourcePortScan
)

func (s Source) String() string {
	switch s {
	case SourceEnvironment:
		return "environment"
	case SourcePgPass:
		return ".pgpass"
	case SourcePortScan:
		return "port scan"
	default:
		return "unknown"
	}
}

// Instance is a reachable (or advertised) server address
type Instance struct {
	Host         string
	Port         int
	Source       Source
	ResponseTime time.Duration
}

// Address is host:port
func (i Instance) Address() string {
	return i.Host + ":" + strconv.Itoa(i.Port)
}

// Discoverer coordinates all discovery methods
type Discoverer struct {
	scanner *Scanner
	pgpass  string
}

// NewDiscoverer creates a discoverer using ~/.pgpass
func NewDiscoverer() *Discoverer {
	return &Discoverer{
		scanner: NewScanner(),
		pgpass:  DefaultPgPassPath(),
	}
}

// DiscoverAll runs every method and returns unique addresses, best
// source first
func (d *Discoverer) DiscoverAll(ctx context.Context) []Instance {
	var instances []Instance

	if env := ParseEnvironment(); env != nil {
		instances = append(instances, *env)
	}
	instances = append(instances, d.scanner.ScanLocalhost(ctx)...)
	instances = append(instances, PgPassInstances(d.pgpass)...)

	return deduplicate(instances)
}

// Suggest builds a connection config for inst, filling user, database
// and password from the environment and .pgpass
func (d *Discoverer) Suggest(inst Instance) models.ConnectionConfig {
	cfg := models.NewConnectionConfig(fmt.Sprintf("%s:%d", inst.Host, inst.Port), models.DriverPostgres)
	cfg.Host = inst.Host
	cfg.Port = inst.Port

	if env := EnvironmentConfig(); env != nil && env.Host == inst.Host && env.Port == inst.Port {
		cfg.Database = env.Database
		cfg.User = env.User
		cfg.Password = env.Password
		cfg.SSLMode = env.SSLMode
	} else if user := os.Getenv("USER"); user != "" {
		cfg.User = user
	}

	if cfg.Password == "" {
		cfg.Password = FindPassword(d.pgpass, cfg.Host, cfg.Port, cfg.Database, cfg.User)
	}
	return cfg
}

// deduplicate keeps one instance per address, preferring the better
// source, ordered by source then address
func deduplicate(instances []Instance) []Instance {
	seen := make(map[string]Instance)
	for _, inst := range instances {
		key := inst.Address()
		if existing, ok := seen[key]; !ok || inst.Source < existing.Source {
			seen[key] = inst
		}
	}

	result := make([]Instance, 0, len(seen))
	for _, inst := range seen {
		result = append(result, inst)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Source != result[j].Source {
			return result[i].Source < result[j].Source
		}
		return result[i].Address() < result[j].Address()
	})
	return result
}
