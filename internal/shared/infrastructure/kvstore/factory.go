package kvstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Driver represents a store backend type.
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverFile     Driver = "file"
	DriverSQLite   Driver = "sqlite"
	DriverRedis    Driver = "redis"
	DriverPostgres Driver = "postgres"
)

// String returns the string representation of the driver.
func (d Driver) String() string {
	return string(d)
}

// IsValid returns true if the driver is a known type.
func (d Driver) IsValid() bool {
	switch d {
	case DriverMemory, DriverFile, DriverSQLite, DriverRedis, DriverPostgres:
		return true
	default:
		return false
	}
}

// Config holds store configuration.
type Config struct {
	// Driver selects the backend. Empty means auto-detect from URL.
	Driver Driver

	// Path is the file location for the file and sqlite drivers.
	Path string

	// URL is the connection string for the redis and postgres drivers.
	URL string

	// Namespace partitions shared backends (redis, postgres) between installs.
	Namespace string
}

// DetectDriver picks a backend from a connection string.
// An empty URL selects SQLite for zero-config local mode.
func DetectDriver(url string) Driver {
	switch {
	case url == "":
		return DriverSQLite
	case strings.HasPrefix(url, "redis://"), strings.HasPrefix(url, "rediss://"):
		return DriverRedis
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres
	case strings.HasSuffix(url, ".json"):
		return DriverFile
	default:
		return DriverSQLite
	}
}

// Open creates a store for the configured driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	driver := cfg.Driver
	if driver == "" || driver == "auto" {
		driver = DetectDriver(cfg.URL)
	}

	switch driver {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverFile:
		path := cfg.Path
		if path == "" {
			path = defaultFilePath()
		}
		return NewFileStore(path), nil
	case DriverSQLite:
		return NewSQLiteStore(ctx, cfg.Path)
	case DriverRedis:
		return NewRedisStore(ctx, cfg.URL, cfg.Namespace)
	case DriverPostgres:
		return NewPostgresStore(ctx, cfg.URL, cfg.Namespace)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", driver)
	}
}

func defaultFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".lingua", "store.json")
}
