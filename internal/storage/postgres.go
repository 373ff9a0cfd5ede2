package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresStorage implements the Storage interface using PostgreSQL.
type PostgresStorage struct {
	*sqlStore
}

// NewPostgresStorage connects to the database at url.
func NewPostgresStorage(url string) (*PostgresStorage, error) {
	if err := validateString(url, "url"); err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewPostgresStorageFromDB(db), nil
}

// NewPostgresStorageFromDB wraps an already-open connection pool.
func NewPostgresStorageFromDB(db *sql.DB) *PostgresStorage {
	return &PostgresStorage{sqlStore: newSQLStore(db, postgresDialect{})}
}
