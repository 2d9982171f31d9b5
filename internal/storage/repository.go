// Package storage defines the sink contract shared by every database backend
// and a registry that lets callers open a backend by kind. Backends register
// themselves from init(); import internal/storage/all to link them in.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"stageload/internal/ddl"
)

// DefaultBatchSize is the number of rows handed to one bulk-write call.
const DefaultBatchSize = 5000

// Sink is one open connection to a destination store.
type Sink interface {
	// EnsureTable creates def if it does not exist. It never alters or
	// truncates an existing table.
	EnsureTable(ctx context.Context, def ddl.TableDef) error

	// ReplaceTable removes every row of def and writes rows (aligned to
	// def's column order) in their place. With recreate the table is dropped
	// and created from def first. Backends run the whole replacement in one
	// transaction where the dialect allows it.
	ReplaceTable(ctx context.Context, def ddl.TableDef, recreate bool, rows [][]any) (int64, error)

	// CountRows returns SELECT COUNT(*) for relation.
	CountRows(ctx context.Context, relation string) (int64, error)

	// Columns returns the column names of relation in catalog order.
	Columns(ctx context.Context, relation string) ([]string, error)

	Close()
}

// Config selects and parameterizes a backend.
type Config struct {
	Kind      string // postgres | sqlite | mysql | mssql
	DSN       string
	BatchSize int // rows per bulk-write call; <= 0 means DefaultBatchSize
}

// EffectiveBatchSize returns BatchSize or DefaultBatchSize when unset.
func (c Config) EffectiveBatchSize() int {
	if c.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return c.BatchSize
}

// Factory opens a Sink for cfg.
type Factory func(ctx context.Context, cfg Config) (Sink, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = f
}

// New opens a Sink using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Sink, error) {
	regMu.RLock()
	f, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
