// Package transformer applies row-level rewrites to a dataset between
// reading and writing. Transformers mutate the records they are given;
// Normalize copies the dataset first so callers keep their input intact.
package transformer

import (
	"stageload/internal/records"
	"stageload/internal/transformer/builtin"
)

type Transformer interface{ Apply([]records.Record) []records.Record }

// Chain is an ordered list of transformers.
type Chain []Transformer

func (c Chain) Apply(in []records.Record) []records.Record {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}

// Normalize returns a copy of ds with text cleaned up and the columns named
// in rules converted to their kind. Values that fail to convert become null.
// Row count, row order and the column set are preserved.
func Normalize(ds records.Dataset, rules map[string]records.Kind) records.Dataset {
	out := ds.Clone()
	out.Rows = Chain{
		builtin.Normalize{},
		builtin.Coerce{Kinds: rules},
	}.Apply(out.Rows)
	return out
}
