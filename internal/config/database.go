package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/Veraticus/punchlist/internal/common"
	"github.com/Veraticus/punchlist/internal/storage"
	"github.com/Veraticus/punchlist/internal/trade"
)

// DefaultDatabasePath is where the SQLite database lives unless configured otherwise.
const DefaultDatabasePath = "~/.config/punch/punch.db"

// LoadDatabaseConfig resolves the storage backend. DATABASE_URL selects
// Postgres unless database.type says otherwise.
func LoadDatabaseConfig() (storage.Options, error) {
	url := viper.GetString("database.url")
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}

	driver := viper.GetString("database.type")
	if driver == "" {
		driver = storage.DriverSQLite
		if url != "" {
			driver = storage.DriverPostgres
		}
	}

	opts := storage.Options{Driver: driver, URL: url}
	switch driver {
	case storage.DriverSQLite:
		path := viper.GetString("database.path")
		if path == "" {
			path = DefaultDatabasePath
		}
		opts.Path = ExpandPath(path)
	case storage.DriverPostgres:
		if url == "" {
			return opts, fmt.Errorf("%w: database.url or DATABASE_URL is required for postgres", common.ErrMissingConfig)
		}
	default:
		return opts, fmt.Errorf("%w: unknown database type %q", common.ErrInvalidConfig, driver)
	}

	return opts, nil
}

// EnsureDatabaseDir creates the parent directory of a SQLite database file.
func EnsureDatabaseDir(opts storage.Options) error {
	if opts.Driver != storage.DriverSQLite || opts.Path == "" || opts.Path == ":memory:" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0750); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}

// LoadMappingTable reads the master mapping file named by mapping.path.
// It returns nil when no file is configured.
func LoadMappingTable() (*trade.Table, error) {
	path := viper.GetString("mapping.path")
	if path == "" {
		return nil, nil
	}
	return trade.LoadFile(ExpandPath(path))
}
