// Package sqlite implements a SQLite sink using the pure-Go modernc.org/sqlite
// driver. SQLite has no bulk-load API; rows go through a prepared INSERT
// inside the replacement transaction.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"stageload/internal/storage/sqldb"
)

// Config holds SQLite sink configuration.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:stage.db?_pragma=busy_timeout(5000)"
	//   "stage.db"
	//   ":memory:"
	DSN       string
	BatchSize int
}

// NewRepository opens the database at cfg.DSN on a single connection.
func NewRepository(ctx context.Context, cfg Config) (*sqldb.Repository, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	return sqldb.Open(ctx, db, Dialect, cfg.BatchSize)
}
