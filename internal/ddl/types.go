package ddl

import "stageload/internal/records"

// ColumnDef describes a single column in a table definition.
//
// Fields:
//   - Name: column name (unquoted; quoting happens at render time)
//   - Kind: logical type, mapped to a SQL type by the dialect
//   - SQLType: explicit SQL type; when set it wins over Kind
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
type ColumnDef struct {
	Name       string
	Kind       records.Kind
	SQLType    string
	Nullable   bool
	PrimaryKey bool
}

// TableDef holds the table name (FQN, optionally "schema.table") and an
// ordered list of columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// ColumnNames returns the column names in definition order.
func (t TableDef) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}
