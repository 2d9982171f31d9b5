package storage

import (
	"context"
	"testing"

	"stageload/internal/ddl"
)

// fakeSink is a minimal Sink implementation for tests.
type fakeSink struct {
	closed bool
}

func (f *fakeSink) EnsureTable(context.Context, ddl.TableDef) error { return nil }
func (f *fakeSink) ReplaceTable(_ context.Context, _ ddl.TableDef, _ bool, rows [][]any) (int64, error) {
	return int64(len(rows)), nil
}
func (f *fakeSink) CountRows(context.Context, string) (int64, error)  { return 0, nil }
func (f *fakeSink) Columns(context.Context, string) ([]string, error) { return nil, nil }
func (f *fakeSink) Close()                                            { f.closed = true }

// TestRegisterAndNew_Success verifies that registering a backend enables New()
// to return the corresponding sink.
func TestRegisterAndNew_Success(t *testing.T) {
	t.Parallel()

	kind := "fake"
	var got Config
	Register(kind, func(ctx context.Context, cfg Config) (Sink, error) {
		got = cfg
		return &fakeSink{}, nil
	})

	sink, err := New(context.Background(), Config{Kind: kind, DSN: "x", BatchSize: 10})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if sink == nil {
		t.Fatalf("New returned nil sink")
	}
	if got.DSN != "x" || got.BatchSize != 10 {
		t.Fatalf("factory saw cfg %+v", got)
	}

	found := false
	for _, k := range ListKinds() {
		if k == kind {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("registered kind %q not present in ListKinds: %v", kind, ListKinds())
	}
}

// TestNew_Unsupported verifies that unsupported kinds return a helpful error.
func TestNew_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{Kind: "does-not-exist"})
	if err == nil {
		t.Fatalf("expected error for unsupported kind")
	}
	if got, want := err.Error(), "unsupported storage.kind=does-not-exist"; got != want {
		t.Fatalf("error = %q, want %q", got, want)
	}
}

// TestRegister_Override verifies that re-registering a kind replaces the
// previous factory.
func TestRegister_Override(t *testing.T) {
	t.Parallel()

	kind := "override"
	calls := 0
	Register(kind, func(ctx context.Context, cfg Config) (Sink, error) {
		calls++
		return &fakeSink{}, nil
	})
	Register(kind, func(ctx context.Context, cfg Config) (Sink, error) {
		calls += 10
		return &fakeSink{}, nil
	})
	if _, err := New(context.Background(), Config{Kind: kind}); err != nil {
		t.Fatalf("New error: %v", err)
	}
	if calls != 10 {
		t.Fatalf("calls = %d, want 10 (second factory only)", calls)
	}
}

func TestConfig_EffectiveBatchSize(t *testing.T) {
	t.Parallel()

	if got := (Config{}).EffectiveBatchSize(); got != DefaultBatchSize {
		t.Fatalf("zero batch = %d; want %d", got, DefaultBatchSize)
	}
	if got := (Config{BatchSize: 7}).EffectiveBatchSize(); got != 7 {
		t.Fatalf("batch = %d; want 7", got)
	}
}
