package ddl

import (
	gddl "stageload/internal/ddl"
)

// Dialect renders Postgres DDL: double-quoted identifiers and
// CREATE TABLE IF NOT EXISTS.
var Dialect = gddl.Dialect{
	Name:       "postgres ddl",
	QuoteIdent: gddl.DoubleQuote,
	MapType:    MapType,
}

// BuildCreateTableSQL returns a Postgres CREATE TABLE IF NOT EXISTS
// statement for t.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.BuildCreateTableSQL(t, Dialect)
}

// BuildDropTableSQL returns DROP TABLE IF EXISTS for fqn.
func BuildDropTableSQL(fqn string) string {
	return "DROP TABLE IF EXISTS " + QuoteFQN(fqn)
}

// QuoteFQN quotes "schema.table" as "schema"."table".
func QuoteFQN(fqn string) string {
	return gddl.QuoteFQN(fqn, gddl.DoubleQuote)
}
