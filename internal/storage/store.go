// Package storage provides the data persistence layer for punchlist.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/punchlist/internal/common"
	"github.com/Veraticus/punchlist/internal/service"
)

// insertBatchSize is the number of rows written per multi-row INSERT.
const insertBatchSize = 50

// Backend names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options selects and configures a backend.
type Options struct {
	Driver string
	Path   string
	URL    string
}

// Open constructs the backend named by opts.Driver.
func Open(opts Options) (service.Storage, error) {
	switch opts.Driver {
	case DriverSQLite, "":
		return NewSQLiteStorage(opts.Path)
	case DriverPostgres:
		return NewPostgresStorage(opts.URL)
	default:
		return nil, fmt.Errorf("%w: unknown database type %q", common.ErrInvalidConfig, opts.Driver)
	}
}

// sqlStore is the dialect-agnostic implementation shared by every backend.
type sqlStore struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

func newSQLStore(db *sql.DB, d dialect) *sqlStore {
	return &sqlStore{
		db:      db,
		dialect: d,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Close closes the database connection.
func (s *sqlStore) Close() error {
	return s.db.Close()
}

// DB exposes the underlying pool for diagnostics.
func (s *sqlStore) DB() *sql.DB {
	return s.db
}

// Dialect names the SQL backend in use.
func (s *sqlStore) Dialect() string {
	return s.dialect.name()
}

func (s *sqlStore) q(query string) string {
	return s.dialect.rebind(query)
}

// insertRows writes rows into table with multi-row INSERT statements of at
// most insertBatchSize rows each.
func (s *sqlStore) insertRows(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) error {
	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	prefix := "INSERT INTO " + table + " (" + strings.Join(columns, ", ") + ") VALUES "

	for start := 0; start < len(rows); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]

		values := make([]string, len(batch))
		args := make([]any, 0, len(batch)*len(columns))
		for i, row := range batch {
			values[i] = placeholder
			args = append(args, row...)
		}

		if _, err := tx.ExecContext(ctx, s.q(prefix+strings.Join(values, ", ")), args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}
	return nil
}

// nullTime converts an optional time for insertion.
func nullTime(t *time.Time) sql.NullTime {
	if t == nil || t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
