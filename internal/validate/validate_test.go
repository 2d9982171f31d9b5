package validate

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"stageload/internal/ddl"
	"stageload/internal/failure"
	"stageload/internal/records"
	"stageload/internal/storage"
	_ "stageload/internal/storage/sqlite"
)

func seed(t *testing.T, counts map[string]int) storage.Sink {
	t.Helper()
	ctx := context.Background()
	sink, err := storage.New(ctx, storage.Config{Kind: "sqlite", DSN: filepath.Join(t.TempDir(), "v.db")})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(sink.Close)

	for name, n := range counts {
		def := ddl.TableDef{FQN: name, Columns: []ddl.ColumnDef{
			{Name: "ID", Kind: records.KindText, Nullable: true},
			{Name: "Qty", Kind: records.KindInteger, Nullable: true},
		}}
		rows := make([][]any, n)
		for i := range rows {
			rows[i] = []any{"x", int64(i)}
		}
		if _, err := sink.ReplaceTable(ctx, def, true, rows); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}
	return sink
}

var targets = []Target{
	{Dataset: "transactions", Relation: "stg_transactions"},
	{Dataset: "users", Relation: "stg_users"},
	{Dataset: "products", Relation: "stg_products"},
}

func TestRun_ReportsCountsInOrder(t *testing.T) {
	t.Parallel()

	sink := seed(t, map[string]int{"stg_transactions": 3, "stg_users": 5, "stg_products": 2})
	rep, err := Run(context.Background(), sink, targets, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"stg_transactions: 3 rows", "stg_users: 5 rows", "stg_products: 2 rows"}
	got := rep.Lines()
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("Lines() = %v; want %v", got, want)
	}
	if rep.Counts()["stg_users"] != 5 {
		t.Fatalf("Counts() = %v", rep.Counts())
	}
}

func TestRun_MissingRelationFailsFast(t *testing.T) {
	t.Parallel()

	sink := seed(t, map[string]int{"stg_transactions": 3})
	rep, err := Run(context.Background(), sink, targets, Options{})
	if !errors.Is(err, failure.ErrValidationFailed) {
		t.Fatalf("err = %v; want ErrValidationFailed", err)
	}
	if !strings.Contains(err.Error(), "stg_users") {
		t.Fatalf("error should name the relation: %v", err)
	}
	if len(rep.Entries) != 1 {
		t.Fatalf("entries before failure = %d; want 1", len(rep.Entries))
	}
}

func TestRun_ExpectedCounts(t *testing.T) {
	t.Parallel()

	sink := seed(t, map[string]int{"stg_transactions": 3, "stg_users": 5, "stg_products": 2})
	expected := map[string]int64{"stg_transactions": 3, "stg_users": 4, "stg_products": 2}

	if _, err := Run(context.Background(), sink, targets, Options{Expected: expected}); err != nil {
		t.Fatalf("lenient mismatch should only log: %v", err)
	}
	_, err := Run(context.Background(), sink, targets, Options{Expected: expected, StrictCounts: true})
	if !errors.Is(err, failure.ErrValidationFailed) || !strings.Contains(err.Error(), "source count 4") {
		t.Fatalf("err = %v", err)
	}
}

func TestRun_SchemaFacts(t *testing.T) {
	t.Parallel()

	sink := seed(t, map[string]int{"stg_users": 1})
	rep, err := Run(context.Background(), sink, targets[1:2], Options{SchemaFacts: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	e := rep.Entries[0]
	if strings.Join(e.Columns, ",") != "ID,Qty" {
		t.Fatalf("Columns = %v", e.Columns)
	}
	if e.Fingerprint != Fingerprint([]string{"id", "qty"}) {
		t.Fatalf("fingerprint should ignore case")
	}
	if !strings.HasSuffix(rep.Lines()[0], ")") || !strings.Contains(rep.Lines()[0], "2 columns") {
		t.Fatalf("line = %q", rep.Lines()[0])
	}
}

func TestFingerprint_OrderSensitive(t *testing.T) {
	if Fingerprint([]string{"a", "b"}) == Fingerprint([]string{"b", "a"}) {
		t.Fatalf("fingerprint ignored column order")
	}
}
