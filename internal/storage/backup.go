package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Backup errors.
var (
	ErrBackupExists      = errors.New("backup already exists")
	ErrBackupUnsupported = errors.New("backups require a file-backed SQLite database")
)

// BackupInfo describes a SQLite backup written next to the database file.
type BackupInfo struct {
	CreatedAt     time.Time      `json:"created_at"`
	RowCounts     map[string]int `json:"row_counts"`
	ID            string         `json:"id"`
	Path          string         `json:"path"`
	FileSize      int64          `json:"file_size"`
	SchemaVersion int            `json:"schema_version"`
}

var backupTables = []string{
	"inspector_buildings",
	"inspector_inspections",
	"inspector_inspection_items",
	"inspector_work_orders",
	"inspector_csv_processing_log",
	"inspector_trade_mappings",
}

func (s *SQLiteStorage) backupsDir() string {
	return filepath.Join(filepath.Dir(s.dbPath), "backups")
}

// Backup copies the database into backups/<tag>.db with VACUUM INTO and
// writes a JSON sidecar with row counts. An empty tag is derived from the clock.
func (s *SQLiteStorage) Backup(ctx context.Context, tag string) (*BackupInfo, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if s.dbPath == ":memory:" {
		return nil, ErrBackupUnsupported
	}

	if tag == "" {
		tag = "backup-" + s.now().Format("2006-01-02-150405")
	}
	if strings.ContainsAny(tag, `/\'";`) || strings.Contains(tag, "..") {
		return nil, fmt.Errorf("invalid backup tag %q", tag)
	}

	dir := s.backupsDir()
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create backups directory: %w", err)
	}
	dest, err := filepath.Abs(filepath.Join(dir, tag+".db"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve backup path: %w", err)
	}
	if _, err := os.Stat(dest); err == nil {
		return nil, ErrBackupExists
	}
	if strings.ContainsAny(dest, `'";`) {
		return nil, fmt.Errorf("invalid backup path %q", dest)
	}

	version, err := s.dialect.schemaVersion(ctx, s.db)
	if err != nil {
		return nil, err
	}
	counts := s.rowCounts(ctx)

	// #nosec G201 - dest is validated above
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", dest)); err != nil {
		return nil, fmt.Errorf("failed to back up database: %w", err)
	}

	stat, err := os.Stat(dest)
	if err != nil {
		return nil, fmt.Errorf("failed to stat backup: %w", err)
	}

	info := &BackupInfo{
		ID:            tag,
		Path:          dest,
		CreatedAt:     s.now(),
		FileSize:      stat.Size(),
		RowCounts:     counts,
		SchemaVersion: version,
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, tag+".meta.json"), data, 0600); err != nil {
		_ = os.Remove(dest)
		return nil, fmt.Errorf("failed to save backup metadata: %w", err)
	}

	return info, nil
}

// ListBackups returns known backups, newest first.
func (s *SQLiteStorage) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(s.backupsDir())
	if errors.Is(err, os.ErrNotExist) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backups directory: %w", err)
	}

	backups := make([]BackupInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".meta.json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.backupsDir(), entry.Name())) // #nosec G304 - listing our own directory
		if err != nil {
			return nil, fmt.Errorf("failed to read backup metadata: %w", err)
		}
		var info BackupInfo
		if err := json.Unmarshal(data, &info); err != nil {
			return nil, fmt.Errorf("failed to decode backup metadata %s: %w", entry.Name(), err)
		}
		backups = append(backups, info)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// rowCounts counts rows per table, skipping tables that do not exist yet.
func (s *SQLiteStorage) rowCounts(ctx context.Context) map[string]int {
	counts := make(map[string]int, len(backupTables))
	for _, table := range backupTables {
		var n int
		// #nosec G202 - table names come from a fixed list
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err == nil {
			counts[table] = n
		}
	}
	return counts
}
