// Package loader writes a normalized dataset into its staging relation.
package loader

import (
	"context"
	"fmt"
	"log"

	"stageload/internal/ddl"
	"stageload/internal/failure"
	"stageload/internal/records"
	"stageload/internal/schema"
	"stageload/internal/storage"
)

// Mode is the write disposition for a relation that already exists.
type Mode string

// ModeReplace discards existing rows before writing. It is the only mode
// LoadToStaging accepts.
const ModeReplace Mode = "replace"

// Target names the relation a dataset is written to.
type Target struct {
	Relation schema.Relation

	// Declared means the relation was created up front with a fixed layout
	// and must keep it. Otherwise the relation is re-created from the data.
	Declared bool

	// Kinds pins column kinds when the relation is re-created from the data.
	// Ignored for a declared relation.
	Kinds map[string]records.Kind
}

// LoadToStaging replaces the contents of target's relation with ds and
// returns the number of rows written. Every failure, including an
// unsupported mode, is a failure.ErrWriteFailed naming the relation.
//
// For a declared relation the rows are written in the relation's column
// order; dataset columns the relation lacks are dropped, and relation
// columns the dataset lacks fail the write before the sink is touched.
func LoadToStaging(ctx context.Context, sink storage.Sink, ds records.Dataset, target Target, mode Mode) (int64, error) {
	rel := target.Relation
	fail := func(err error) (int64, error) {
		return 0, failure.Wrap(failure.ErrWriteFailed, ds.Name, rel.Name, err)
	}

	if mode != ModeReplace {
		return fail(fmt.Errorf("unsupported write mode %q", mode))
	}
	if rel.Name == "" {
		return fail(fmt.Errorf("relation name must not be empty"))
	}

	var def ddl.TableDef
	if target.Declared {
		if err := checkColumns(ds, rel); err != nil {
			return fail(err)
		}
		def = ddl.FromRelation(rel)
	} else {
		if len(ds.Columns) == 0 {
			return fail(fmt.Errorf("dataset has no columns"))
		}
		def = ddl.Infer(rel.Name, ds, target.Kinds)
	}

	n, err := sink.ReplaceTable(ctx, def, !target.Declared, ds.Values(def.ColumnNames()))
	if err != nil {
		return fail(err)
	}
	log.Printf("loader: dataset=%s relation=%s mode=%s declared=%t rows=%d", ds.Name, rel.Name, mode, target.Declared, n)
	return n, nil
}

// checkColumns reports relation columns missing from ds and logs dataset
// columns the relation will not store.
func checkColumns(ds records.Dataset, rel schema.Relation) error {
	var missing []string
	for _, c := range rel.Columns {
		if !ds.HasColumn(c.Name) {
			missing = append(missing, c.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("dataset %s lacks relation columns %v", ds.Name, missing)
	}

	known := make(map[string]bool, len(rel.Columns))
	for _, c := range rel.Columns {
		known[c.Name] = true
	}
	for _, c := range ds.Columns {
		if !known[c] {
			log.Printf("loader: relation=%s ignoring dataset column %q", rel.Name, c)
		}
	}
	return nil
}
