// Package postgres implements a Postgres sink using pgx v5. Replacement runs
// in one transaction: TRUNCATE (or DROP + CREATE) followed by COPY.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	gddl "stageload/internal/ddl"
	"stageload/internal/storage"
	pgddl "stageload/internal/storage/postgres/ddl"
)

// Config holds Postgres sink configuration.
type Config struct {
	DSN       string // postgres:// URL or key=value connection string
	BatchSize int    // rows per COPY call
}

// Repository is a Postgres-backed sink holding a single connection.
type Repository struct {
	conn      *pgx.Conn
	batchSize int
}

// NewRepository connects and pings, returning the Repository and a Close
// function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	conn, err := pgx.Connect(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgx connect: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(context.Background())
		return nil, nil, fmt.Errorf("pgx ping: %w", err)
	}
	bs := cfg.BatchSize
	if bs <= 0 {
		bs = storage.DefaultBatchSize
	}
	closeFn := func() { _ = conn.Close(context.Background()) }
	return &Repository{conn: conn, batchSize: bs}, closeFn, nil
}

// EnsureTable issues CREATE TABLE IF NOT EXISTS for def.
func (r *Repository) EnsureTable(ctx context.Context, def gddl.TableDef) error {
	stmt, err := pgddl.BuildCreateTableSQL(def)
	if err != nil {
		return err
	}
	if _, err := r.conn.Exec(ctx, stmt); err != nil {
		return describe(err)
	}
	return nil
}

// ReplaceTable truncates (or drops and re-creates) def and COPYs rows into
// it, all inside one transaction.
func (r *Repository) ReplaceTable(ctx context.Context, def gddl.TableDef, recreate bool, rows [][]any) (int64, error) {
	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	// No-op once committed.
	defer func() { _ = tx.Rollback(ctx) }()

	if recreate {
		create, err := pgddl.BuildCreateTableSQL(def)
		if err != nil {
			return 0, err
		}
		if _, err := tx.Exec(ctx, pgddl.BuildDropTableSQL(def.FQN)); err != nil {
			return 0, fmt.Errorf("drop: %w", describe(err))
		}
		if _, err := tx.Exec(ctx, create); err != nil {
			return 0, fmt.Errorf("create: %w", describe(err))
		}
	} else {
		if _, err := tx.Exec(ctx, "TRUNCATE TABLE "+pgddl.QuoteFQN(def.FQN)); err != nil {
			return 0, fmt.Errorf("truncate: %w", describe(err))
		}
	}

	table := splitFQN(def.FQN)
	n, err := storage.CopyInBatches(ctx, def.ColumnNames(), rows, r.batchSize,
		func(ctx context.Context, columns []string, batch [][]any) (int64, error) {
			return tx.CopyFrom(ctx, table, columns, pgx.CopyFromRows(batch))
		})
	if err != nil {
		return 0, fmt.Errorf("copy: %w", describe(err))
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	log.Printf("postgres: replaced table=%s rows=%d recreate=%t", def.FQN, n, recreate)
	return n, nil
}

// CountRows returns SELECT COUNT(*) for relation.
func (r *Repository) CountRows(ctx context.Context, relation string) (int64, error) {
	var n int64
	if err := r.conn.QueryRow(ctx, "SELECT COUNT(*) FROM "+pgddl.QuoteFQN(relation)).Scan(&n); err != nil {
		return 0, describe(err)
	}
	return n, nil
}

// Columns reads relation's column names from information_schema. An
// unqualified name is resolved against current_schema().
func (r *Repository) Columns(ctx context.Context, relation string) ([]string, error) {
	schemaName, table := "", relation
	if i := strings.LastIndexByte(relation, '.'); i >= 0 {
		schemaName, table = relation[:i], relation[i+1:]
	}
	rows, err := r.conn.Query(ctx, `
SELECT column_name
FROM information_schema.columns
WHERE table_schema = COALESCE(NULLIF($1, ''), current_schema())
  AND table_name = $2
ORDER BY ordinal_position`, schemaName, table)
	if err != nil {
		return nil, describe(err)
	}
	cols, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, describe(err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("relation %s not found in catalog", relation)
	}
	return cols, nil
}

// describe surfaces the server's detail and SQLSTATE for Postgres errors.
func describe(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		return fmt.Errorf("%w (%s; SQLSTATE %s)", err, pgErr.Detail, pgErr.SQLState())
	}
	return err
}

// splitFQN converts "schema.table" into a pgx.Identifier {"schema","table"}.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}
