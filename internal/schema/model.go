// Package schema describes the three staging datasets: where each one is
// read from, which columns carry dates, and the fixed relation layout used
// when the schema is declared up front.
package schema

import (
	"fmt"

	"stageload/internal/records"
)

// Naming selects the relation-name prefix.
type Naming string

const (
	NamingStg     Naming = "stg"     // stg_transactions, stg_users, stg_products
	NamingStaging Naming = "staging" // staging_transactions, ...
)

// ParseNaming validates s as a Naming. Empty means NamingStg.
func ParseNaming(s string) (Naming, error) {
	switch Naming(s) {
	case "", NamingStg:
		return NamingStg, nil
	case NamingStaging:
		return NamingStaging, nil
	}
	return "", fmt.Errorf("unknown table naming %q", s)
}

// RelationName returns the staging relation name for dataset.
func (n Naming) RelationName(dataset string) string {
	if n == "" {
		n = NamingStg
	}
	return string(n) + "_" + dataset
}

type Column struct {
	Name string
	Kind records.Kind
}

// Relation is a named table in the sink that holds one dataset.
type Relation struct {
	Dataset string
	Name    string
	Columns []Column
}

// ColumnNames returns the column names in layout order.
func (r Relation) ColumnNames() []string {
	out := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		out[i] = c.Name
	}
	return out
}

// Kinds returns the relation layout as a column -> kind map.
func (r Relation) Kinds() map[string]records.Kind {
	out := make(map[string]records.Kind, len(r.Columns))
	for _, c := range r.Columns {
		out[c.Name] = c.Kind
	}
	return out
}

// DatasetSpec ties a dataset name to its source file and layout.
type DatasetSpec struct {
	Name        string
	File        string
	DateColumns []string
	Columns     []Column
}

// DateKinds returns the rules used when the relation is inferred from data: only
// the date columns are forced, everything else is left to inference.
func (d DatasetSpec) DateKinds() map[string]records.Kind {
	out := make(map[string]records.Kind, len(d.DateColumns))
	for _, c := range d.DateColumns {
		out[c] = records.KindTimestamp
	}
	return out
}

// Relation returns the declared relation for d under naming n.
func (d DatasetSpec) Relation(n Naming) Relation {
	return Relation{
		Dataset: d.Name,
		Name:    n.RelationName(d.Name),
		Columns: append([]Column(nil), d.Columns...),
	}
}

var datasets = []DatasetSpec{
	{
		Name:        "transactions",
		File:        "transactions.csv",
		DateColumns: []string{"TransactionDate"},
		Columns: []Column{
			{"TransactionID", records.KindText},
			{"CustomerID", records.KindText},
			{"ProductID", records.KindText},
			{"Category", records.KindText},
			{"Quantity", records.KindInteger},
			{"Price", records.KindFloat},
			{"TransactionDate", records.KindTimestamp},
		},
	},
	{
		Name:        "users",
		File:        "users.csv",
		DateColumns: []string{"SignupDate"},
		Columns: []Column{
			{"CustomerID", records.KindText},
			{"Name", records.KindText},
			{"Email", records.KindText},
			{"Age", records.KindInteger},
			{"Country", records.KindText},
			{"SignupDate", records.KindTimestamp},
		},
	},
	{
		Name: "products",
		File: "products.csv",
		Columns: []Column{
			{"ProductID", records.KindText},
			{"ProductName", records.KindText},
			{"Category", records.KindText},
			{"Brand", records.KindText},
			{"Price", records.KindFloat},
			{"StockQuantity", records.KindInteger},
		},
	},
}

// Datasets returns the staged datasets in load order.
func Datasets() []DatasetSpec {
	out := make([]DatasetSpec, len(datasets))
	copy(out, datasets)
	return out
}

// Staging returns the declared relations in load order.
func Staging(n Naming) []Relation {
	out := make([]Relation, 0, len(datasets))
	for _, d := range datasets {
		out = append(out, d.Relation(n))
	}
	return out
}
