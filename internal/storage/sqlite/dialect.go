package sqlite

import (
	gddl "stageload/internal/ddl"
	"stageload/internal/records"
	"stageload/internal/storage/sqldb"
)

// MapType maps a logical kind onto a SQLite column affinity. Timestamps are
// stored as ISO-8601 TEXT.
func MapType(kind records.Kind) string {
	switch kind {
	case records.KindInteger:
		return "INTEGER"
	case records.KindFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}

// Dialect wires SQLite syntax into the shared database/sql sink.
var Dialect = sqldb.Dialect{
	DDL: gddl.Dialect{
		Name:       "sqlite",
		QuoteIdent: gddl.DoubleQuote,
		MapType:    MapType,
	},
	Drop:         func(q string) string { return "DROP TABLE IF EXISTS " + q },
	ColumnsQuery: "SELECT name FROM pragma_table_info(?) ORDER BY cid",
	Insert:       sqldb.PreparedInsert(gddl.DoubleQuote, sqldb.QuestionMark),
}
