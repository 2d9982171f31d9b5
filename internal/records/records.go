// Package records holds the in-memory tabular model shared by every stage of
// a staging load: a Dataset is an ordered list of Records read from one file.
package records

import (
	"fmt"
	"strings"
)

// Kind is the logical type of a column. Storage backends map kinds onto
// their own SQL types.
type Kind string

const (
	KindText      Kind = "text"
	KindInteger   Kind = "integer"
	KindFloat     Kind = "float"
	KindTimestamp Kind = "timestamp"
)

// ParseKind maps loosely spelled type names onto a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "string", "":
		return KindText, nil
	case "integer", "int", "bigint", "int64":
		return KindInteger, nil
	case "float", "double", "real", "float64":
		return KindFloat, nil
	case "timestamp", "datetime", "date", "timestamptz":
		return KindTimestamp, nil
	default:
		return "", fmt.Errorf("unknown column kind %q", s)
	}
}

// Record is a single row keyed by column name. Values are string, int64,
// float64, time.Time or nil (null).
type Record map[string]any

// Dataset is a named, ordered sequence of rows loaded from one source file.
// All rows share the column set in Columns.
type Dataset struct {
	Name    string
	Columns []string
	Rows    []Record
}

// Len returns the number of rows.
func (d Dataset) Len() int { return len(d.Rows) }

// HasColumn reports whether name is part of the dataset header.
func (d Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Values returns the rows as positional slices aligned to columns. Keys
// missing from a row yield nil.
func (d Dataset) Values(columns []string) [][]any {
	out := make([][]any, len(d.Rows))
	for i, r := range d.Rows {
		row := make([]any, len(columns))
		for j, c := range columns {
			row[j] = r[c]
		}
		out[i] = row
	}
	return out
}

// Clone returns a deep copy of the row maps; values themselves are immutable.
func (d Dataset) Clone() Dataset {
	out := Dataset{
		Name:    d.Name,
		Columns: append([]string(nil), d.Columns...),
		Rows:    make([]Record, len(d.Rows)),
	}
	for i, r := range d.Rows {
		cp := make(Record, len(r))
		for k, v := range r {
			cp[k] = v
		}
		out.Rows[i] = cp
	}
	return out
}
