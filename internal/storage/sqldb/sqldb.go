// Package sqldb implements storage.Sink on top of database/sql. Each
// database/sql backend (sqlite, mysql, mssql) supplies a Dialect describing
// its DDL, catalog query and bulk-insert primitive; the replace/count logic
// is shared here.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	gddl "stageload/internal/ddl"
	"stageload/internal/storage"
)

// InsertFn writes one batch of rows into table inside tx and returns the
// number of rows written. table is the raw (unquoted) FQN.
type InsertFn func(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) (int64, error)

// Dialect is what a database/sql backend contributes.
type Dialect struct {
	// DDL renders CREATE TABLE and quotes identifiers. DDL.Name also
	// prefixes error messages.
	DDL gddl.Dialect

	// Drop returns a statement dropping quotedFQN if it exists.
	Drop func(quotedFQN string) string

	// Clear returns a statement removing all rows. Nil means DELETE FROM.
	Clear func(quotedFQN string) string

	// ColumnsQuery selects the column names of one table, in order, with the
	// table name bound as its only argument.
	ColumnsQuery string

	// Insert is the bulk-write primitive.
	Insert InsertFn
}

func (d Dialect) quote(fqn string) string { return gddl.QuoteFQN(fqn, d.DDL.QuoteIdent) }

// Repository is a database/sql-backed sink using a single connection.
type Repository struct {
	db        *sql.DB
	d         Dialect
	batchSize int
}

var _ storage.Sink = (*Repository)(nil)

// Open pins db to one connection, pings it and returns the Repository. db is
// closed when Open fails.
func Open(ctx context.Context, db *sql.DB, d Dialect, batchSize int) (*Repository, error) {
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: ping: %w", d.DDL.Name, err)
	}
	if batchSize <= 0 {
		batchSize = storage.DefaultBatchSize
	}
	return &Repository{db: db, d: d, batchSize: batchSize}, nil
}

// DB exposes the underlying handle for backend-specific setup and tests.
func (r *Repository) DB() *sql.DB { return r.db }

// EnsureTable executes the dialect's create-if-absent statement for def.
func (r *Repository) EnsureTable(ctx context.Context, def gddl.TableDef) error {
	stmt, err := gddl.BuildCreateTableSQL(def, r.d.DDL)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("%s: create %s: %w", r.d.DDL.Name, def.FQN, err)
	}
	return nil
}

// ReplaceTable clears (or drops and re-creates) def and bulk-writes rows in
// one transaction. Dialects whose DDL commits implicitly (MySQL) leave the
// table dropped or re-created even if the write later fails.
func (r *Repository) ReplaceTable(ctx context.Context, def gddl.TableDef, recreate bool, rows [][]any) (int64, error) {
	name := r.d.DDL.Name
	quoted := r.d.quote(def.FQN)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: begin tx: %w", name, err)
	}
	rollback := func() { _ = tx.Rollback() }

	if recreate {
		create, err := gddl.BuildCreateTableSQL(def, r.d.DDL)
		if err != nil {
			rollback()
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, r.d.Drop(quoted)); err != nil {
			rollback()
			return 0, fmt.Errorf("%s: drop %s: %w", name, def.FQN, err)
		}
		if _, err := tx.ExecContext(ctx, create); err != nil {
			rollback()
			return 0, fmt.Errorf("%s: create %s: %w", name, def.FQN, err)
		}
	} else {
		stmt := "DELETE FROM " + quoted
		if r.d.Clear != nil {
			stmt = r.d.Clear(quoted)
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			rollback()
			return 0, fmt.Errorf("%s: clear %s: %w", name, def.FQN, err)
		}
	}

	n, err := storage.CopyInBatches(ctx, def.ColumnNames(), rows, r.batchSize,
		func(ctx context.Context, columns []string, batch [][]any) (int64, error) {
			return r.d.Insert(ctx, tx, def.FQN, columns, batch)
		})
	if err != nil {
		rollback()
		return 0, fmt.Errorf("%s: insert %s: %w", name, def.FQN, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: commit: %w", name, err)
	}
	log.Printf("%s: replaced table=%s rows=%d recreate=%t", name, def.FQN, n, recreate)
	return n, nil
}

// CountRows returns SELECT COUNT(*) for relation.
func (r *Repository) CountRows(ctx context.Context, relation string) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+r.d.quote(relation)).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: count %s: %w", r.d.DDL.Name, relation, err)
	}
	return n, nil
}

// Columns returns relation's column names using the dialect's catalog query.
func (r *Repository) Columns(ctx context.Context, relation string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, r.d.ColumnsQuery, tableName(relation))
	if err != nil {
		return nil, fmt.Errorf("%s: columns %s: %w", r.d.DDL.Name, relation, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("%s: columns %s: %w", r.d.DDL.Name, relation, err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: columns %s: %w", r.d.DDL.Name, relation, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%s: relation %s not found in catalog", r.d.DDL.Name, relation)
	}
	return cols, nil
}

// Close closes the underlying connection pool.
func (r *Repository) Close() { _ = r.db.Close() }

// tableName strips any schema qualifier from fqn.
func tableName(fqn string) string {
	if i := strings.LastIndexByte(fqn, '.'); i >= 0 {
		return fqn[i+1:]
	}
	return fqn
}
