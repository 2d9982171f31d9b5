package pipeline

import (
	"context"
	"time"

	"stageload/internal/ddl"
	"stageload/internal/storage"
)

// deadlineSink gives every blocking call on the wrapped sink its own timeout.
type deadlineSink struct {
	storage.Sink
	timeout time.Duration
}

func (d deadlineSink) EnsureTable(ctx context.Context, def ddl.TableDef) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.Sink.EnsureTable(ctx, def)
}

func (d deadlineSink) ReplaceTable(ctx context.Context, def ddl.TableDef, recreate bool, rows [][]any) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.Sink.ReplaceTable(ctx, def, recreate, rows)
}

func (d deadlineSink) CountRows(ctx context.Context, relation string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.Sink.CountRows(ctx, relation)
}

func (d deadlineSink) Columns(ctx context.Context, relation string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.Sink.Columns(ctx, relation)
}
