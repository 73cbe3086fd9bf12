package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nfrund/propdesk/internal/domain"
)

// Common database errors that can be checked using errors.Is(). ErrNotFound
// and ErrAlreadyExists are the domain sentinels so callers above the store
// layer never import this package to inspect failures.
var (
	ErrNotFound        = domain.ErrNotFound
	ErrAlreadyExists   = domain.ErrAlreadyExists
	ErrNotConnected    = errors.New("database not connected")
	ErrInvalidID       = errors.New("invalid ID format")
	ErrInvalidInput    = errors.New("invalid input data")
	ErrQueryFailed     = errors.New("query execution failed")
	ErrMultipleResults = errors.New("multiple results found when one was expected")
)

// DBError represents a database error with additional context.
type DBError struct {
	err     error
	context string
	query   string
	params  map[string]any
}

// NewDBError creates a new DBError with the given error and context.
// The context should describe what operation was being performed when the error occurred.
func NewDBError(err error, context string) *DBError {
	return &DBError{
		err:     err,
		context: context,
	}
}

// WithQuery adds query information to the error.
func (e *DBError) WithQuery(query string) *DBError {
	e.query = query
	return e
}

// WithParams adds query parameters to the error.
func (e *DBError) WithParams(params map[string]any) *DBError {
	e.params = params
	return e
}

func (e *DBError) Error() string {
	msg := e.context
	if e.query != "" {
		msg = fmt.Sprintf("%s\nQuery: %s", msg, e.query)
	}
	if len(e.params) > 0 {
		keys := make([]string, 0, len(e.params))
		for k := range e.params {
			keys = append(keys, k)
		}
		// Parameter values may hold password hashes; only names are logged.
		msg = fmt.Sprintf("%s\nParams: %s", msg, strings.Join(keys, ","))
	}
	if e.err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.err)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *DBError) Unwrap() error {
	return e.err
}

// Is checks whether the wrapped error matches one of the common database errors.
func (e *DBError) Is(target error) bool {
	if target == nil {
		return e == nil
	}

	switch target {
	case ErrNotFound, ErrAlreadyExists, ErrNotConnected, ErrInvalidID, ErrInvalidInput, ErrQueryFailed, ErrMultipleResults:
		return errors.Is(e.err, target)
	}

	return false
}

// WrapError wraps an error with additional context.
// If the error is already a DBError, it prefixes the existing context.
func WrapError(err error, context string) error {
	if err == nil {
		return nil
	}

	var dbErr *DBError
	if errors.As(err, &dbErr) {
		if dbErr.context != "" {
			context = fmt.Sprintf("%s: %s", context, dbErr.context)
		}
		dbErr.context = context
		return dbErr
	}

	return NewDBError(err, context)
}

// classifyError maps raw SurrealDB failures onto the package sentinels.
func classifyError(err error) *DBError {
	if err == nil {
		return nil
	}
	var dbErr *DBError
	if errors.As(err, &dbErr) {
		return dbErr
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "already contains"),
		strings.Contains(msg, "already exists"),
		strings.Contains(msg, "duplicate"):
		return NewDBError(fmt.Errorf("%w: %v", ErrAlreadyExists, err), "unique constraint violated")
	default:
		return NewDBError(fmt.Errorf("%w: %v", ErrQueryFailed, err), "query failed")
	}
}
