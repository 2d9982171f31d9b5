// Package validate checks staged relations after a load by reading back
// their row counts and, optionally, their column lists.
package validate

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/zeebo/xxh3"

	"stageload/internal/failure"
	"stageload/internal/storage"
)

// Target is one relation to check.
type Target struct {
	Dataset  string
	Relation string
}

type Options struct {
	// SchemaFacts also reads each relation's column list.
	SchemaFacts bool

	// Expected holds the source row count per relation. With StrictCounts a
	// mismatch fails the run; otherwise it is only logged.
	Expected     map[string]int64
	StrictCounts bool
}

// Entry is the result for a single relation.
type Entry struct {
	Dataset  string
	Relation string
	Rows     int64

	// Columns and Fingerprint are set only when schema facts were requested.
	// Fingerprint is the xxh3 hash of the comma-joined column list.
	Columns     []string
	Fingerprint uint64
}

// Report lists entries in the order the targets were given.
type Report struct {
	Entries []Entry
}

// Counts returns relation -> row count.
func (r Report) Counts() map[string]int64 {
	out := make(map[string]int64, len(r.Entries))
	for _, e := range r.Entries {
		out[e.Relation] = e.Rows
	}
	return out
}

// Lines renders one "relation: N rows" line per entry.
func (r Report) Lines() []string {
	out := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		line := fmt.Sprintf("%s: %d rows", e.Relation, e.Rows)
		if e.Columns != nil {
			line += fmt.Sprintf(" (%d columns, %016x)", len(e.Columns), e.Fingerprint)
		}
		out = append(out, line)
	}
	return out
}

// Run reads back every target and stops at the first failure, which is
// returned as failure.ErrValidationFailed naming the relation.
func Run(ctx context.Context, sink storage.Sink, targets []Target, opt Options) (Report, error) {
	var rep Report
	for _, t := range targets {
		e, err := check(ctx, sink, t, opt)
		if err != nil {
			return rep, failure.Wrap(failure.ErrValidationFailed, t.Dataset, t.Relation, err)
		}
		log.Printf("validate: relation=%s rows=%d", e.Relation, e.Rows)
		rep.Entries = append(rep.Entries, e)
	}
	return rep, nil
}

func check(ctx context.Context, sink storage.Sink, t Target, opt Options) (Entry, error) {
	e := Entry{Dataset: t.Dataset, Relation: t.Relation}

	n, err := sink.CountRows(ctx, t.Relation)
	if err != nil {
		return e, fmt.Errorf("count rows: %w", err)
	}
	e.Rows = n

	if want, ok := opt.Expected[t.Relation]; ok && want != n {
		if opt.StrictCounts {
			return e, fmt.Errorf("row count %d does not match source count %d", n, want)
		}
		log.Printf("validate: relation=%s rows=%d source_rows=%d mismatch", t.Relation, n, want)
	}

	if opt.SchemaFacts {
		cols, err := sink.Columns(ctx, t.Relation)
		if err != nil {
			return e, fmt.Errorf("read columns: %w", err)
		}
		e.Columns = cols
		e.Fingerprint = Fingerprint(cols)
	}
	return e, nil
}

// Fingerprint hashes a column list so layouts can be compared across runs.
// Order matters; case does not.
func Fingerprint(columns []string) uint64 {
	lower := make([]string, len(columns))
	for i, c := range columns {
		lower[i] = strings.ToLower(c)
	}
	return xxh3.HashString(strings.Join(lower, ","))
}
