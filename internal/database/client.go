package database

import (
	"context"
	"time"

	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// Client is a type-safe client for records of type T addressed by record ID.
type Client[T any] interface {
	// Create inserts data under rid and returns the stored record.
	Create(ctx context.Context, rid models.RecordID, data any) (*T, error)
	// Select returns the record, or ErrNotFound.
	Select(ctx context.Context, rid models.RecordID) (*T, error)
	// Replace overwrites every field of an existing record, or returns ErrNotFound.
	Replace(ctx context.Context, rid models.RecordID, data any) (*T, error)
	// Delete removes the record, or returns ErrNotFound.
	Delete(ctx context.Context, rid models.RecordID) error

	Query(ctx context.Context, query string, params map[string]any) ([]T, error)
	QueryOne(ctx context.Context, query string, params map[string]any) (*T, error)
	Execute(ctx context.Context, query string, params map[string]any) error
}

// ClientOption defines a function that configures a Client.
type ClientOption[T any] func(*client[T])

// WithExecutor configures the client to use a custom QueryExecutor.
// Tests use it to run stores without a live database.
func WithExecutor[T any](executor QueryExecutor[T]) ClientOption[T] {
	return func(c *client[T]) {
		c.executor = executor
	}
}

type client[T any] struct {
	executor       QueryExecutor[T]
	queryTimeout   time.Duration
	executeTimeout time.Duration
}

// NewClient creates a new type-safe database client
func NewClient[T any](conn DBConnection, opts ...ClientOption[T]) (Client[T], error) {
	if conn == nil {
		return nil, NewDBError(ErrInvalidInput, "connection cannot be nil")
	}

	queryTimeout := conn.GetDBQueryTimeout()
	if queryTimeout <= 0 {
		return nil, NewDBError(ErrInvalidInput, "DB_QUERY_TIMEOUT must be a positive duration")
	}
	executeTimeout := conn.GetDBExecuteTimeout()
	if executeTimeout <= 0 {
		return nil, NewDBError(ErrInvalidInput, "DB_EXECUTE_TIMEOUT must be a positive duration")
	}

	c := &client[T]{
		executor:       NewSurrealExecutor[T](conn),
		queryTimeout:   queryTimeout,
		executeTimeout: executeTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *client[T]) Query(ctx context.Context, query string, params map[string]any) ([]T, error) {
	ctx, cancel := getTimeoutFromContext(ctx, c.queryTimeout, ContextKeyQueryTimeout)
	defer cancel()
	return c.executor.Query(ctx, query, params)
}

func (c *client[T]) QueryOne(ctx context.Context, query string, params map[string]any) (*T, error) {
	ctx, cancel := getTimeoutFromContext(ctx, c.queryTimeout, ContextKeyQueryTimeout)
	defer cancel()
	return c.executor.QueryOne(ctx, query, params)
}

func (c *client[T]) Execute(ctx context.Context, query string, params map[string]any) error {
	ctx, cancel := getTimeoutFromContext(ctx, c.executeTimeout, ContextKeyExecuteTimeout)
	defer cancel()
	return c.executor.Execute(ctx, query, params)
}

func (c *client[T]) Create(ctx context.Context, rid models.RecordID, data any) (*T, error) {
	if rid.Table == "" || rid.ID == nil {
		return nil, NewDBError(ErrInvalidID, "record id is incomplete")
	}
	if data == nil {
		return nil, NewDBError(ErrInvalidInput, "data cannot be nil")
	}

	ctx, cancel := getTimeoutFromContext(ctx, c.executeTimeout, ContextKeyExecuteTimeout)
	defer cancel()

	result, err := c.executor.QueryOne(ctx, "CREATE $rid CONTENT $data", map[string]any{"rid": rid, "data": data})
	if err != nil {
		return nil, WrapError(err, "create operation failed")
	}
	if result == nil {
		return nil, NewDBError(ErrQueryFailed, "create returned no record")
	}
	return result, nil
}

func (c *client[T]) Select(ctx context.Context, rid models.RecordID) (*T, error) {
	if rid.Table == "" || rid.ID == nil {
		return nil, NewDBError(ErrInvalidID, "record id is incomplete")
	}

	result, err := c.QueryOne(ctx, "SELECT * FROM $rid", map[string]any{"rid": rid})
	if err != nil {
		return nil, WrapError(err, "select operation failed")
	}
	if result == nil {
		return nil, NewDBError(ErrNotFound, "record not found")
	}
	return result, nil
}

func (c *client[T]) Replace(ctx context.Context, rid models.RecordID, data any) (*T, error) {
	if rid.Table == "" || rid.ID == nil {
		return nil, NewDBError(ErrInvalidID, "record id is incomplete")
	}
	if data == nil {
		return nil, NewDBError(ErrInvalidInput, "data cannot be nil")
	}

	ctx, cancel := getTimeoutFromContext(ctx, c.executeTimeout, ContextKeyExecuteTimeout)
	defer cancel()

	// UPDATE on a missing record id yields no rows instead of creating it.
	result, err := c.executor.QueryOne(ctx, "UPDATE $rid CONTENT $data", map[string]any{"rid": rid, "data": data})
	if err != nil {
		return nil, WrapError(err, "update operation failed")
	}
	if result == nil {
		return nil, NewDBError(ErrNotFound, "record not found")
	}
	return result, nil
}

func (c *client[T]) Delete(ctx context.Context, rid models.RecordID) error {
	if rid.Table == "" || rid.ID == nil {
		return NewDBError(ErrInvalidID, "record id is incomplete")
	}

	ctx, cancel := getTimeoutFromContext(ctx, c.executeTimeout, ContextKeyExecuteTimeout)
	defer cancel()

	before, err := c.executor.QueryOne(ctx, "DELETE $rid RETURN BEFORE", map[string]any{"rid": rid})
	if err != nil {
		return WrapError(err, "delete operation failed")
	}
	if before == nil {
		return NewDBError(ErrNotFound, "record not found")
	}
	return nil
}
