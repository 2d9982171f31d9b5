package ddl

import (
	"stageload/internal/records"
	"stageload/internal/schema"
	"stageload/internal/transformer/builtin"
)

// FromRelation converts a declared staging relation into a TableDef. All
// columns are nullable since any cell may be empty or fail to parse.
func FromRelation(r schema.Relation) TableDef {
	t := TableDef{FQN: r.Name, Columns: make([]ColumnDef, len(r.Columns))}
	for i, c := range r.Columns {
		t.Columns[i] = ColumnDef{Name: c.Name, Kind: c.Kind, Nullable: true}
	}
	return t
}

// Infer derives a TableDef for relation name from the dataset header and the
// Go types of its (normalized) values. Kinds in fixed override the inferred
// ones, so a column keeps its kind even when it holds no values.
func Infer(name string, ds records.Dataset, fixed map[string]records.Kind) TableDef {
	kinds := builtin.InferKinds(ds)
	for c, k := range fixed {
		if _, ok := kinds[c]; ok {
			kinds[c] = k
		}
	}
	t := TableDef{FQN: name, Columns: make([]ColumnDef, len(ds.Columns))}
	for i, c := range ds.Columns {
		t.Columns[i] = ColumnDef{Name: c, Kind: kinds[c], Nullable: true}
	}
	return t
}
