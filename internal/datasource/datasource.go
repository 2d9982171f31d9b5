package datasource

import (
	"context"
	"io"
)

// Source opens the raw bytes of one input file.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
