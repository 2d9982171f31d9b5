package mssql

import (
	"context"

	"stageload/internal/storage"
)

// newRepository is a test hook that points to NewRepository by default.
var newRepository = NewRepository

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Sink, error) {
		r, err := newRepository(ctx, Config{DSN: cfg.DSN, BatchSize: cfg.EffectiveBatchSize()})
		if err != nil {
			return nil, err
		}
		return r, nil
	})
}
