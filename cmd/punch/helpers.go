package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Veraticus/punchlist/internal/config"
	"github.com/Veraticus/punchlist/internal/engine"
	"github.com/Veraticus/punchlist/internal/service"
	"github.com/Veraticus/punchlist/internal/storage"
	"github.com/Veraticus/punchlist/internal/trade"
)

// initStorage opens the configured backend and brings its schema up to date.
func initStorage(ctx context.Context) (service.Storage, error) {
	opts, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, err
	}
	if err := config.EnsureDatabaseDir(opts); err != nil {
		return nil, err
	}

	store, err := storage.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// newEngine builds an engine over store using the configured master mapping file.
func newEngine(store service.Storage) (*engine.Engine, error) {
	mapping, err := config.LoadMappingTable()
	if err != nil {
		return nil, err
	}
	return engine.NewWithConfig(store, engine.Config{Mapping: mapping}), nil
}

// loadMappingFlag reads a per-run mapping override, if one was given.
func loadMappingFlag(path string) (*trade.Table, error) {
	if path == "" {
		return nil, nil
	}
	return trade.LoadFile(config.ExpandPath(path))
}

func closeStorage(store service.Storage) {
	if err := store.Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}

func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path) // #nosec G304 - user-supplied export path
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
