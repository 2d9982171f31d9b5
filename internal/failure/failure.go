// Package failure defines the error kinds a staging load can end with and
// maps them onto process exit codes.
//
// Every stage wraps its cause in an *Error carrying one of the sentinel kinds
// below, so callers can branch with errors.Is on either the kind or the
// underlying cause:
//
//	if errors.Is(err, failure.ErrSourceNotFound) { ... }
//	if errors.Is(err, os.ErrNotExist) { ... } // still matches
package failure

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds. All of them are fatal to a run.
var (
	// ErrSourceNotFound indicates an input file path did not resolve.
	ErrSourceNotFound = errors.New("source not found")

	// ErrMalformedInput indicates a row/header mismatch or unreadable CSV.
	ErrMalformedInput = errors.New("malformed input")

	// ErrConnectionFailed indicates the sink was unreachable or rejected credentials.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrSchemaDefinitionFailed indicates the sink rejected a create-if-absent directive.
	ErrSchemaDefinitionFailed = errors.New("schema definition failed")

	// ErrWriteFailed indicates a bulk write into a staging relation failed.
	ErrWriteFailed = errors.New("write failed")

	// ErrValidationFailed indicates the post-load row count check failed.
	ErrValidationFailed = errors.New("validation failed")
)

// Exit codes returned by the stageload binary.
const (
	ExitSuccess         = 0
	ExitGeneralError    = 1
	ExitConfigError     = 2
	ExitSourceError     = 3
	ExitConnectionError = 4
	ExitSchemaError     = 5
	ExitWriteError      = 6
	ExitValidationError = 7
)

// Error attaches a kind and the dataset/relation being processed to a cause.
type Error struct {
	Kind     error
	Dataset  string
	Relation string
	Err      error
}

// Wrap builds an *Error. A nil cause returns nil.
func Wrap(kind error, dataset, relation string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Dataset: dataset, Relation: relation, Err: err}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	switch {
	case e.Relation != "":
		fmt.Fprintf(&b, " (relation=%s)", e.Relation)
	case e.Dataset != "":
		fmt.Fprintf(&b, " (dataset=%s)", e.Dataset)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// KindOf returns the sentinel kind carried by err, or nil when err was not
// produced by this package.
func KindOf(err error) error {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	for _, k := range []error{
		ErrSourceNotFound,
		ErrMalformedInput,
		ErrConnectionFailed,
		ErrSchemaDefinitionFailed,
		ErrWriteFailed,
		ErrValidationFailed,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	switch KindOf(err) {
	case ErrSourceNotFound, ErrMalformedInput:
		return ExitSourceError
	case ErrConnectionFailed:
		return ExitConnectionError
	case ErrSchemaDefinitionFailed:
		return ExitSchemaError
	case ErrWriteFailed:
		return ExitWriteError
	case ErrValidationFailed:
		return ExitValidationError
	}
	return ExitGeneralError
}
