// Package testutil provides shared fixtures for punchlist tests: a migrated
// in-memory database and a builder for wide inspection exports.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/punchlist/internal/model"
	"github.com/Veraticus/punchlist/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup    func(context.Context, *storage.SQLiteStorage) error
	TradeMappings  []model.TradeMapping
	SkipMigrations bool
}

// SetupTestDB creates a new migrated in-memory database that is closed when
// the test ends.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{})
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	ctx := context.Background()

	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	if len(opts.TradeMappings) > 0 {
		if err := store.SaveTradeMappings(ctx, opts.TradeMappings); err != nil {
			t.Fatalf("failed to seed trade mappings: %v", err)
		}
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage: store,
		t:       t,
	}
}

// MustCount returns the number of rows in table or fails the test.
func (db *TestDB) MustCount(table string) int {
	db.t.Helper()
	var n int
	// #nosec G202 - test helper with fixed table names
	if err := db.Storage.DB().QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		db.t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}
