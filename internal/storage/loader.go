package storage

import (
	"context"
	"fmt"
	"log"
	"time"
)

// CopyFn abstracts a backend's bulk insert capability. Implementations insert
// the provided rows (aligned to columns) and return the number of rows
// reported as inserted.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// CopyInBatches slices rows into batches of batchSize and calls copyFn for
// each one in order. It returns the running total and the first error.
//
// A progress line is logged after every successful batch.
func CopyInBatches(
	ctx context.Context,
	columns []string,
	rows [][]any,
	batchSize int,
	copyFn CopyFn,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}

	var (
		total   int64
		batches int64
		start   = time.Now()
	)
	for lo := 0; lo < len(rows); lo += batchSize {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		hi := min(lo+batchSize, len(rows))

		n, err := copyFn(ctx, columns, rows[lo:hi])
		total += n
		if err != nil {
			log.Printf("loader: copy failed batch=%d after=%d total=%d err=%v", batches+1, n, total, err)
			return total, err
		}
		batches++

		elapsed := time.Since(start)
		rps := float64(0)
		if elapsed > 0 {
			rps = float64(total) / elapsed.Seconds()
		}
		log.Printf("batch #%d: rps=%.0f inserted=%d total_inserted=%d elapsed=%s",
			batches, rps, n, total, elapsed.Truncate(time.Millisecond))
	}
	return total, nil
}
