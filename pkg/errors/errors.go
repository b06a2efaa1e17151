// Package errors defines the sentinel errors shared across the indexer and
// query engine, plus a small AppError wrapper for attaching context.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrCorpusRead signals the corpus file or source could not be read.
	// It is fatal: the build aborts.
	ErrCorpusRead = errors.New("corpus unreadable")

	// ErrMalformedRecord signals a source record with too few fields.
	// Ingestion skips the record and continues.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrInvalidQuery signals a query rejected before any lookup: zero
	// terms, or a term with more than one wildcard marker.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrTermNotFound signals a literal query term absent from the
	// dictionary. Recoverable: the query resolves to an empty result.
	ErrTermNotFound = errors.New("term not found")

	// ErrWildcardNoMatch signals a wildcard pattern whose expansion
	// matched no indexed term. Recoverable, same as ErrTermNotFound.
	ErrWildcardNoMatch = errors.New("wildcard matched no terms")
)

// AppError pairs a sentinel with a human-readable message.
type AppError struct {
	Err     error
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New wraps a sentinel with a message.
func New(sentinel error, message string) *AppError {
	return &AppError{
		Err:     sentinel,
		Message: message,
	}
}

// Newf wraps a sentinel with a formatted message.
func Newf(sentinel error, format string, args ...any) *AppError {
	return &AppError{
		Err:     sentinel,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsRecoverable reports whether err is a query-time anomaly that resolves
// to an empty result rather than aborting the caller.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrTermNotFound) || errors.Is(err, ErrWildcardNoMatch)
}
