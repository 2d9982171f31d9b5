// Package mysql implements a MySQL sink with go-sql-driver/mysql. Rows are
// written with multi-row INSERT statements.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"stageload/internal/storage/sqldb"
)

// Config holds MySQL sink configuration.
type Config struct {
	DSN       string // go-sql-driver DSN, e.g. "user:pass@tcp(localhost:3306)/de_demo"
	BatchSize int
}

// driverConfig parses dsn and pins time handling to UTC.
func driverConfig(dsn string) (*mysql.Config, error) {
	mc, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql dsn: %w", err)
	}
	mc.ParseTime = true
	mc.Loc = time.UTC
	return mc, nil
}

// NewRepository parses the DSN, connects and pings.
func NewRepository(ctx context.Context, cfg Config) (*sqldb.Repository, error) {
	mc, err := driverConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}
	connector, err := mysql.NewConnector(mc)
	if err != nil {
		return nil, fmt.Errorf("mysql connector: %w", err)
	}
	return sqldb.Open(ctx, sql.OpenDB(connector), Dialect, cfg.BatchSize)
}
