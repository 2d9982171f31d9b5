package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	gddl "stageload/internal/ddl"
)

// QuestionMark is the "?" placeholder style used by SQLite and MySQL.
func QuestionMark(int) string { return "?" }

// PreparedInsert prepares one single-row INSERT per batch and executes it
// for every row.
func PreparedInsert(quote func(string) string, placeholder func(int) string) InsertFn {
	return func(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) (int64, error) {
		if len(columns) == 0 {
			return 0, fmt.Errorf("columns must not be empty")
		}
		stmt, err := tx.PrepareContext(ctx, insertPrefix(quote, table, columns)+valuesGroup(placeholder, 0, len(columns)))
		if err != nil {
			return 0, fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		var inserted int64
		for _, row := range rows {
			if len(row) != len(columns) {
				return inserted, fmt.Errorf("row length %d != columns length %d", len(row), len(columns))
			}
			if _, err := stmt.ExecContext(ctx, row...); err != nil {
				return inserted, fmt.Errorf("insert row %d: %w", inserted+1, err)
			}
			inserted++
		}
		return inserted, nil
	}
}

// MultiRowInsert writes rows with INSERT ... VALUES (...), (...), keeping
// each statement under maxParams bound parameters.
func MultiRowInsert(quote func(string) string, placeholder func(int) string, maxParams int) InsertFn {
	return func(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) (int64, error) {
		if len(columns) == 0 {
			return 0, fmt.Errorf("columns must not be empty")
		}
		perStmt := max(maxParams/len(columns), 1)
		prefix := insertPrefix(quote, table, columns)

		var inserted int64
		for lo := 0; lo < len(rows); lo += perStmt {
			chunk := rows[lo:min(lo+perStmt, len(rows))]

			var sb strings.Builder
			sb.WriteString(prefix)
			args := make([]any, 0, len(chunk)*len(columns))
			for i, row := range chunk {
				if len(row) != len(columns) {
					return inserted, fmt.Errorf("row length %d != columns length %d", len(row), len(columns))
				}
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(valuesGroup(placeholder, len(args), len(columns)))
				args = append(args, row...)
			}
			res, err := tx.ExecContext(ctx, sb.String(), args...)
			if err != nil {
				return inserted, fmt.Errorf("insert rows %d-%d: %w", lo+1, lo+len(chunk), err)
			}
			if n, err := res.RowsAffected(); err == nil {
				inserted += n
			} else {
				inserted += int64(len(chunk))
			}
		}
		return inserted, nil
	}
}

func insertPrefix(quote func(string) string, table string, columns []string) string {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = quote(c)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES ", gddl.QuoteFQN(table, quote), strings.Join(cols, ", "))
}

// valuesGroup renders "(p, p, ...)" for n parameters starting at offset.
func valuesGroup(placeholder func(int) string, offset, n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = placeholder(offset + i + 1)
	}
	return "(" + strings.Join(ps, ", ") + ")"
}
