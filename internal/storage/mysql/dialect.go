package mysql

import (
	"strings"

	gddl "stageload/internal/ddl"
	"stageload/internal/records"
	"stageload/internal/storage/sqldb"
)

// maxParams is MySQL's prepared-statement placeholder limit.
const maxParams = 65535

// MapType maps a logical kind onto a MySQL column type.
func MapType(kind records.Kind) string {
	switch kind {
	case records.KindInteger:
		return "BIGINT"
	case records.KindFloat:
		return "DOUBLE"
	case records.KindTimestamp:
		return "DATETIME(6)"
	default:
		return "TEXT"
	}
}

// quoteIdent quotes an identifier with backticks, doubling embedded ones.
func quoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}

// Dialect wires MySQL syntax into the shared database/sql sink. DDL
// statements commit implicitly in MySQL, so a recreate is not rolled back
// when the following write fails.
var Dialect = sqldb.Dialect{
	DDL: gddl.Dialect{
		Name:       "mysql",
		QuoteIdent: quoteIdent,
		MapType:    MapType,
	},
	Drop: func(q string) string { return "DROP TABLE IF EXISTS " + q },
	ColumnsQuery: "SELECT COLUMN_NAME FROM information_schema.COLUMNS " +
		"WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? ORDER BY ORDINAL_POSITION",
	Insert: sqldb.MultiRowInsert(quoteIdent, sqldb.QuestionMark, maxParams),
}
