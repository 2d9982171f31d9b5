// Package ddl defines a small, backend-agnostic model for SQL DDL and a
// renderer that backends parameterize with their own quoting, type mapping
// and create-if-absent guard.
package ddl

import (
	"fmt"
	"strings"

	"stageload/internal/records"
)

// Dialect is what a backend contributes to DDL rendering.
type Dialect struct {
	// Name prefixes error messages, e.g. "postgres ddl".
	Name string

	// QuoteIdent quotes one identifier segment.
	QuoteIdent func(string) string

	// MapType maps a logical kind onto a column type.
	MapType func(records.Kind) string

	// Guard wraps the bare CREATE TABLE statement to make it idempotent.
	// Nil renders CREATE TABLE IF NOT EXISTS.
	Guard func(quotedFQN, create string) string
}

// BuildCreateTableSQL renders an idempotent CREATE TABLE statement:
//
//	CREATE TABLE IF NOT EXISTS "table" (
//	  "col1" TYPE [NOT NULL],
//	  "col2" TYPE,
//	  PRIMARY KEY ("pk1")
//	);
//
// or whatever d.Guard makes of the bare statement.
func BuildCreateTableSQL(t TableDef, d Dialect) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s: table FQN must not be empty", d.Name)
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s: at least one column is required", d.Name)
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, len(t.Columns))

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("%s: column with empty name in table %s", d.Name, fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			typ = d.MapType(c.Kind)
		}

		var sb strings.Builder
		sb.WriteString(d.QuoteIdent(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, d.QuoteIdent(name))
		}
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	quoted := QuoteFQN(fqn, d.QuoteIdent)
	if d.Guard == nil {
		return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", quoted, strings.Join(cols, ",\n  ")), nil
	}
	create := fmt.Sprintf("CREATE TABLE %s (\n    %s\n  );", quoted, strings.Join(cols, ",\n    "))
	return d.Guard(quoted, create), nil
}

// QuoteFQN quotes each dot-separated segment of fqn with quote.
func QuoteFQN(fqn string, quote func(string) string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, quote(p))
	}
	return strings.Join(out, ".")
}

// DoubleQuote is ANSI identifier quoting: name -> "name", a"b -> "a""b".
func DoubleQuote(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
