package postgres

import (
	"context"

	"stageload/internal/storage"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

// wrappedRepo implements storage.Sink by delegating to the concrete
// *Repository while providing a Close method that calls the close function
// returned by NewRepository.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

var _ storage.Sink = (*wrappedRepo)(nil)

// Close implements storage.Sink.Close.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Sink, error) {
		r, closeFn, err := newRepository(ctx, Config{
			DSN:       cfg.DSN,
			BatchSize: cfg.EffectiveBatchSize(),
		})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
}
