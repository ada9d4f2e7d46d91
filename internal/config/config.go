// Package config provides configuration loading for costbase.
package config

import "path/filepath"

// Defaults applied before any other configuration source.
const (
	// DefaultDataDir is where the embedded database file lives when no
	// explicit path is configured.
	DefaultDataDir = "data"

	// DefaultDatabaseFile is the embedded database file name.
	DefaultDatabaseFile = "costbase.db"

	// DefaultMaxConns bounds the client-server connection pool.
	DefaultMaxConns = 10
)

// Config holds the resolved application configuration.
type Config struct {
	// DatabaseURL is the client-server connection string. Its presence
	// selects the postgres backend; its absence selects the embedded one.
	DatabaseURL string `koanf:"database_url"`

	// DataDir is the directory for the embedded database file, created if
	// missing.
	DataDir string `koanf:"data_dir"`

	// DatabasePath overrides the embedded database file path.
	DatabasePath string `koanf:"database_path"`

	// CatalogPath is an explicit catalog seed file path, tried before the
	// default candidate locations.
	CatalogPath string `koanf:"catalog_path"`

	// MaxConns bounds the postgres connection pool.
	MaxConns int `koanf:"max_conns"`

	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`
}

// BackendType returns the driver name selected by this configuration.
func (c *Config) BackendType() string {
	if c.DatabaseURL != "" {
		return "postgres"
	}
	return "sqlite"
}

// ResolveDatabasePath returns the embedded database file path, falling back
// to the default location under the data directory.
func (c *Config) ResolveDatabasePath() string {
	if c.DatabasePath != "" {
		return c.DatabasePath
	}
	dir := c.DataDir
	if dir == "" {
		dir = DefaultDataDir
	}
	return filepath.Join(dir, DefaultDatabaseFile)
}
