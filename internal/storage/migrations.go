package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 4

// Migration represents a database schema migration. Statements must be valid
// for both SQLite and PostgreSQL.
type Migration struct {
	Description string
	Statements  []string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS inspector_buildings (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				address TEXT,
				inspection_date DATE,
				total_units INTEGER DEFAULT 0,
				total_defects INTEGER DEFAULT 0,
				defect_rate REAL DEFAULT 0,
				ready_units INTEGER DEFAULT 0,
				ready_pct REAL DEFAULT 0,
				unit_types TEXT,
				status TEXT DEFAULT 'active',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX IF NOT EXISTS idx_inspector_buildings_name ON inspector_buildings(name)`,

			`CREATE TABLE IF NOT EXISTS inspector_inspections (
				id TEXT PRIMARY KEY,
				building_id TEXT NOT NULL REFERENCES inspector_buildings(id),
				inspection_date DATE,
				inspector_name TEXT,
				total_units INTEGER DEFAULT 0,
				total_defects INTEGER DEFAULT 0,
				defect_rate REAL DEFAULT 0,
				ready_units INTEGER DEFAULT 0,
				ready_pct REAL DEFAULT 0,
				urgent_defects INTEGER DEFAULT 0,
				high_priority_defects INTEGER DEFAULT 0,
				avg_defects_per_unit REAL DEFAULT 0,
				original_filename TEXT,
				status TEXT DEFAULT 'completed',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX IF NOT EXISTS idx_inspector_inspections_building ON inspector_inspections(building_id)`,
			`CREATE INDEX IF NOT EXISTS idx_inspector_inspections_created ON inspector_inspections(created_at)`,

			`CREATE TABLE IF NOT EXISTS inspector_inspection_items (
				id TEXT PRIMARY KEY,
				inspection_id TEXT NOT NULL REFERENCES inspector_inspections(id) ON DELETE CASCADE,
				position INTEGER NOT NULL,
				unit TEXT NOT NULL,
				unit_type TEXT,
				inspection_date DATE,
				room TEXT,
				component TEXT,
				trade TEXT,
				status_class TEXT NOT NULL CHECK (status_class IN ('OK', 'Not OK', 'Blank')),
				urgency TEXT NOT NULL CHECK (urgency IN ('Normal', 'High Priority', 'Urgent')),
				planned_completion DATE,
				owner_signoff_timestamp TIMESTAMP,
				original_status TEXT,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX IF NOT EXISTS idx_inspector_items_inspection ON inspector_inspection_items(inspection_id, position)`,
			`CREATE INDEX IF NOT EXISTS idx_inspector_items_status ON inspector_inspection_items(status_class)`,

			`CREATE TABLE IF NOT EXISTS inspector_trade_mappings (
				id TEXT PRIMARY KEY,
				room TEXT NOT NULL,
				component TEXT NOT NULL,
				trade TEXT NOT NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				UNIQUE (room, component)
			)`,
		},
	},
	{
		Version:     2,
		Description: "Add builder work orders",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS inspector_work_orders (
				id TEXT PRIMARY KEY,
				inspection_id TEXT NOT NULL REFERENCES inspector_inspections(id) ON DELETE CASCADE,
				unit TEXT NOT NULL,
				trade TEXT NOT NULL,
				component TEXT,
				room TEXT,
				urgency TEXT NOT NULL CHECK (urgency IN ('Normal', 'High Priority', 'Urgent')),
				status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'in_progress', 'waiting_approval', 'approved', 'rejected', 'completed', 'cancelled')),
				planned_date DATE,
				estimated_hours REAL DEFAULT 0,
				notes TEXT,
				photos_required BOOLEAN DEFAULT FALSE,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX IF NOT EXISTS idx_inspector_work_orders_inspection ON inspector_work_orders(inspection_id)`,
			`CREATE INDEX IF NOT EXISTS idx_inspector_work_orders_trade_status ON inspector_work_orders(trade, status)`,
		},
	},
	{
		Version:     3,
		Description: "Add CSV processing log",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS inspector_csv_processing_log (
				id TEXT PRIMARY KEY,
				original_filename TEXT NOT NULL,
				file_checksum TEXT NOT NULL,
				file_size INTEGER DEFAULT 0,
				inspector_name TEXT,
				building_name TEXT,
				total_rows INTEGER DEFAULT 0,
				processed_rows INTEGER DEFAULT 0,
				defects_found INTEGER DEFAULT 0,
				mapping_success_rate REAL DEFAULT 0,
				work_orders_created INTEGER DEFAULT 0,
				status TEXT NOT NULL CHECK (status IN ('processing', 'completed', 'failed')),
				error_message TEXT,
				inspection_id TEXT,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				completed_at TIMESTAMP
			)`,
			`CREATE INDEX IF NOT EXISTS idx_inspector_csv_log_checksum ON inspector_csv_processing_log(file_checksum)`,
			`CREATE INDEX IF NOT EXISTS idx_inspector_csv_log_filename ON inspector_csv_processing_log(original_filename)`,
		},
	},
	{
		Version:     4,
		Description: "Track work order status history",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS inspector_work_order_history (
				id TEXT PRIMARY KEY,
				work_order_id TEXT NOT NULL REFERENCES inspector_work_orders(id) ON DELETE CASCADE,
				previous_status TEXT,
				new_status TEXT NOT NULL CHECK (new_status IN ('pending', 'in_progress', 'waiting_approval', 'approved', 'rejected', 'completed', 'cancelled')),
				notes TEXT,
				changed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX IF NOT EXISTS idx_inspector_work_order_history_order ON inspector_work_order_history(work_order_id)`,
		},
	},
}

// Migrate applies all pending database migrations.
func (s *sqlStore) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if err := s.dialect.ensureVersionTable(ctx, s.db); err != nil {
		return err
	}

	currentVersion, err := s.dialect.schemaVersion(ctx, s.db)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		if err := s.applyMigration(ctx, migration); err != nil {
			return err
		}

		slog.Info("Applied migration",
			"dialect", s.dialect.name(),
			"version", migration.Version,
			"description", migration.Description)
	}

	// Verify we're at the expected schema version
	finalVersion, err := s.dialect.schemaVersion(ctx, s.db)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

func (s *sqlStore) applyMigration(ctx context.Context, migration Migration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := runStatements(ctx, tx, migration.Statements); err != nil {
		return fmt.Errorf("migration %d failed: %w", migration.Version, err)
	}

	if err := s.dialect.setSchemaVersion(ctx, tx, migration.Version); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
	}
	return nil
}

func runStatements(ctx context.Context, tx *sql.Tx, statements []string) error {
	for _, query := range statements {
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// SchemaVersion reports the highest migration applied to the database.
func (s *sqlStore) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return s.dialect.schemaVersion(ctx, s.db)
}
