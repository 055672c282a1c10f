package discovery

import (
	"os"
	"strconv"

	"github.com/rebeliceyang/lazyexplorer/internal/models"
)

func envPort() int {
	if p, err := strconv.Atoi(os.Getenv("PGPORT")); err == nil && p > 0 && p <= 65535 {
		return p
	}
	return models.DriverPostgres.DefaultPort()
}

// ParseEnvironment returns the server named by PGHOST/PGPORT, if any
func ParseEnvironment() *Instance {
	host := os.Getenv("PGHOST")
	if host == "" {
		return nil
	}
	return &Instance{Host: host, Port: envPort(), Source: SourceEnvironment}
}

// EnvironmentConfig builds a config from the libpq environment
// variables, or nil when none of them are set
func EnvironmentConfig() *models.ConnectionConfig {
	host := os.Getenv("PGHOST")
	database := os.Getenv("PGDATABASE")
	user := os.Getenv("PGUSER")
	if host == "" && database == "" && user == "" {
		return nil
	}

	if host == "" {
		host = "localhost"
	}
	if user == "" {
		user = os.Getenv("USER")
	}
	if database == "" {
		database = user
	}
	sslMode := os.Getenv("PGSSLMODE")
	if sslMode == "" {
		sslMode = "prefer"
	}

	cfg := models.NewConnectionConfig("Environment", models.DriverPostgres)
	cfg.Host = host
	cfg.Port = envPort()
	cfg.Database = database
	cfg.User = user
	cfg.Password = os.Getenv("PGPASSWORD")
	cfg.SSLMode = sslMode
	return &cfg
}
