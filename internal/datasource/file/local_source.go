// Package file implements a local filesystem-backed data source.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"stageload/internal/failure"
)

var errIsDir = errors.New("is a directory")

// Local is a filesystem data source that opens one file from the local disk.
type Local struct{ path string }

// NewLocal returns a Local data source bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Path returns the configured filesystem path.
func (l *Local) Path() string { return l.path }

// Open opens the configured path for reading.
//
// Behavior:
//   - A canceled or expired context returns the context error without
//     touching the filesystem.
//   - Any failure to open the path matches failure.ErrSourceNotFound while
//     still permitting errors.Is checks on the cause (e.g. os.ErrNotExist).
//   - A path naming a directory also matches failure.ErrSourceNotFound.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", failure.ErrSourceNotFound, err)
	}
	st, err := f.Stat()
	if err == nil && st.IsDir() {
		err = &fs.PathError{Op: "open", Path: l.path, Err: errIsDir}
	}
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %w", failure.ErrSourceNotFound, err)
	}
	return f, nil
}
