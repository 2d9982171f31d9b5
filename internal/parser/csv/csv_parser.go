// Package csv reads a delimited text file into a records.Dataset: the first
// row is the header, every following row becomes one Record keyed by header
// name. Empty cells are null. Values stay text; typing happens later in the
// transformer stage.
package csv

import (
	"context"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"strings"

	"github.com/zeebo/xxh3"

	"stageload/internal/datasource"
	"stageload/internal/datasource/file"
	"stageload/internal/failure"
	"stageload/internal/records"
)

// Options configures the CSV reader.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing whitespace from each field value.
	// A value that is blank after trimming becomes null.
	TrimSpace bool
}

// DefaultOptions returns comma-delimited parsing with trimming enabled.
func DefaultOptions() Options {
	return Options{Comma: ',', TrimSpace: true}
}

// LoadFile reads the CSV file at path as the dataset called name.
func LoadFile(ctx context.Context, name, path string, opt Options) (records.Dataset, error) {
	return ReadDataset(ctx, name, file.NewLocal(path), opt)
}

// ReadDataset opens src and parses its whole content.
//
// Errors:
//   - the source cannot be opened: matches failure.ErrSourceNotFound
//   - missing, empty or duplicate header names, a row whose field count
//     differs from the header, or broken quoting: failure.ErrMalformedInput
func ReadDataset(ctx context.Context, name string, src datasource.Source, opt Options) (records.Dataset, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		if errors.Is(err, failure.ErrSourceNotFound) {
			cause := err
			var pe *fs.PathError
			if errors.As(err, &pe) {
				cause = pe
			}
			return records.Dataset{}, failure.Wrap(failure.ErrSourceNotFound, name, "", cause)
		}
		return records.Dataset{}, fmt.Errorf("open dataset %s: %w", name, err)
	}
	defer rc.Close()

	h := xxh3.New()
	cnt := &countingWriter{}
	r := withoutBOM(io.TeeReader(rc, io.MultiWriter(h, cnt)))

	ds, err := parse(name, r, opt)
	if err != nil {
		return records.Dataset{}, failure.Wrap(failure.ErrMalformedInput, name, "", err)
	}
	log.Printf("csv: dataset=%s rows=%d cols=%d bytes=%d xxh3=%016x", name, ds.Len(), len(ds.Columns), cnt.n, h.Sum64())
	return ds, nil
}

func parse(name string, r io.Reader, opt Options) (records.Dataset, error) {
	cr := stdcsv.NewReader(r)
	cr.Comma = ','
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	// Width is enforced below so the error can name the offending line.
	cr.FieldsPerRecord = -1

	head, err := cr.Read()
	if err == io.EOF {
		return records.Dataset{}, errors.New("missing header row")
	}
	if err != nil {
		return records.Dataset{}, fmt.Errorf("read header: %w", err)
	}
	headers, err := normalizeHeaders(head)
	if err != nil {
		return records.Dataset{}, err
	}

	ds := records.Dataset{Name: name, Columns: headers}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return records.Dataset{}, fmt.Errorf("read row: %w", err)
		}
		if len(row) != len(headers) {
			line, _ := cr.FieldPos(0)
			return records.Dataset{}, fmt.Errorf("line %d: incorrect number of fields (expected %d, got %d)", line, len(headers), len(row))
		}
		rec := make(records.Record, len(row))
		for i, val := range row {
			if opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[headers[i]] = emptyToNil(val)
		}
		ds.Rows = append(ds.Rows, rec)
	}
	return ds, nil
}

// normalizeHeaders trims header cells and rejects empty or repeated names.
func normalizeHeaders(h []string) ([]string, error) {
	res := make([]string, len(h))
	seen := make(map[string]int, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if c == "" {
			return nil, fmt.Errorf("header column %d is empty", i+1)
		}
		if j, dup := seen[c]; dup {
			return nil, fmt.Errorf("header column %q repeated at positions %d and %d", c, j+1, i+1)
		}
		seen[c] = i
		res[i] = c
	}
	return res, nil
}

// emptyToNil converts an empty string to nil; all other values are returned as-is.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type countingWriter struct{ n int64 }

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}
