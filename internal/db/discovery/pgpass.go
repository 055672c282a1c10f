package discovery

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/rebeliceyang/lazyexplorer/internal/models"
)

var errMalformedLine = errors.New("malformed .pgpass line")

// PgPassEntry is one line of a .pgpass file. "*" fields match anything.
type PgPassEntry struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

// DefaultPgPassPath honors PGPASSFILE, then ~/.pgpass
func DefaultPgPassPath() string {
	if p := os.Getenv("PGPASSFILE"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".pgpass")
}

// ParsePgPass reads a .pgpass file. A missing file yields no entries;
// libpq ignores files readable by others, and so do we.
func ParsePgPass(path string) ([]PgPassEntry, error) {
	if path == "" {
		return nil, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0077 != 0 {
		return nil, fmt.Errorf("%s has insecure permissions %v, must be 0600", path, info.Mode().Perm())
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	var entries []PgPassEntry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entry, err := parsePgPassLine(line)
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, scanner.Err()
}

// parsePgPassLine splits host:port:database:user:password, honoring
// the \: and \\ escapes
func parsePgPassLine(line string) (PgPassEntry, error) {
	fields := make([]string, 0, 5)
	var current strings.Builder
	escaped := false

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case escaped:
			current.WriteByte(ch)
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == ':':
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}
	fields = append(fields, current.String())

	if len(fields) != 5 {
		return PgPassEntry{}, errMalformedLine
	}
	if fields[1] != "*" {
		p, err := strconv.Atoi(fields[1])
		if err != nil || p < 1 || p > 65535 {
			return PgPassEntry{}, fmt.Errorf("%w: invalid port %q", errMalformedLine, fields[1])
		}
	}

	return PgPassEntry{
		Host:     fields[0],
		Port:     fields[1],
		Database: fields[2],
		User:     fields[3],
		Password: fields[4],
	}, nil
}

// PgPassInstances lists the concrete hosts named in a .pgpass file
func PgPassInstances(path string) []Instance {
	entries, err := ParsePgPass(path)
	if err != nil {
		return nil
	}

	var instances []Instance
	seen := make(map[string]bool)
	for _, e := range entries {
		if e.Host == "*" {
			continue
		}
		port := models.DriverPostgres.DefaultPort()
		if e.Port != "*" {
			port, _ = strconv.Atoi(e.Port)
		}
		inst := Instance{Host: e.Host, Port: port, Source: SourcePgPass}
		if seen[inst.Address()] {
			continue
		}
		seen[inst.Address()] = true
		instances = append(instances, inst)
	}
	return instances
}

// FindPassword returns the first matching .pgpass password, or ""
func FindPassword(path, host string, port int, database, user string) string {
	entries, err := ParsePgPass(path)
	if err != nil {
		return ""
	}
	for _, e := range entries {
		if matches(e.Host, host) &&
			matches(e.Port, strconv.Itoa(port)) &&
			matches(e.Database, database) &&
			matches(e.User, user) {
			return e.Password
		}
	}
	return ""
}

func matches(pattern, value string) bool {
	return pattern == "*" || pattern == value
}
