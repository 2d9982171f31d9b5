package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"

	gddl "stageload/internal/ddl"
	"stageload/internal/records"
	"stageload/internal/storage/sqldb"
)

// MapType maps a logical kind onto a SQL Server column type.
func MapType(kind records.Kind) string {
	switch kind {
	case records.KindInteger:
		return "BIGINT"
	case records.KindFloat:
		return "FLOAT"
	case records.KindTimestamp:
		return "DATETIME2"
	default:
		return "NVARCHAR(MAX)"
	}
}

// quoteIdent quotes a SQL Server identifier using [brackets], escaping ].
func quoteIdent(id string) string { return "[" + strings.ReplaceAll(id, "]", "]]") + "]" }

// objectID renders OBJECT_ID(N'<quoted>', N'U') with the name escaped as a
// string literal.
func objectID(quoted string) string {
	return fmt.Sprintf("OBJECT_ID(N'%s', N'U')", strings.ReplaceAll(quoted, "'", "''"))
}

// guard wraps CREATE TABLE since T-SQL has no CREATE TABLE IF NOT EXISTS.
func guard(quoted, create string) string {
	return fmt.Sprintf("IF %s IS NULL\nBEGIN\n  %s\nEND;", objectID(quoted), create)
}

// bulkCopy streams one batch through the TDS bulk-load protocol.
func bulkCopy(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(gddl.QuoteFQN(table, quoteIdent), mssql.BulkOptions{}, columns...))
	if err != nil {
		return 0, fmt.Errorf("prepare bulk: %w", err)
	}
	for i := range rows {
		if _, err := stmt.ExecContext(ctx, rows[i]...); err != nil {
			_ = stmt.Close()
			return 0, fmt.Errorf("bulk row %d: %w", i, err)
		}
	}
	res, err := stmt.ExecContext(ctx)
	if cerr := stmt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("bulk finalize: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// Dialect wires SQL Server syntax and bulk copy into the shared
// database/sql sink.
var Dialect = sqldb.Dialect{
	DDL: gddl.Dialect{
		Name:       "mssql",
		QuoteIdent: quoteIdent,
		MapType:    MapType,
		Guard:      guard,
	},
	Drop: func(q string) string {
		return fmt.Sprintf("IF %s IS NOT NULL DROP TABLE %s;", objectID(q), q)
	},
	ColumnsQuery: "SELECT COLUMN_NAME FROM INFORMATION_SCHEMA.COLUMNS " +
		"WHERE TABLE_NAME = @p1 ORDER BY ORDINAL_POSITION",
	Insert: bulkCopy,
}
