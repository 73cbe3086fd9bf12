package database

import (
	"context"
	"strings"

	"github.com/surrealdb/surrealdb.go"
)

// QueryExecutor handles the execution of database queries.
// This interface is used internally by the Client implementation.
type QueryExecutor[T any] interface {
	// Query executes a query and returns the rows of its first statement.
	Query(ctx context.Context, query string, params map[string]any) ([]T, error)
	// QueryOne executes a query and returns a single result, or (nil, nil).
	QueryOne(ctx context.Context, query string, params map[string]any) (*T, error)
	// Execute runs a query whose rows are discarded.
	Execute(ctx context.Context, query string, params map[string]any) error
}

type surrealExecutor[T any] struct {
	conn DBConnection
}

// NewSurrealExecutor returns an executor that runs queries through conn,
// reconnecting when the socket has dropped.
func NewSurrealExecutor[T any](conn DBConnection) QueryExecutor[T] {
	return &surrealExecutor[T]{conn: conn}
}

func (e *surrealExecutor[T]) Query(ctx context.Context, query string, params map[string]any) ([]T, error) {
	var rows []T
	err := e.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		results, err := surrealdb.Query[[]T](ctx, db, query, params)
		if err != nil {
			return err
		}
		if results == nil || len(*results) == 0 {
			rows = nil
			return nil
		}
		rows = (*results)[0].Result
		return nil
	})
	if err != nil {
		return nil, classifyError(err).WithQuery(query).WithParams(params)
	}
	return rows, nil
}

func (e *surrealExecutor[T]) QueryOne(ctx context.Context, query string, params map[string]any) (*T, error) {
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "SELECT") && !hasLimitClause(query) {
		query += " LIMIT 1"
	}

	rows, err := e.Query(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (e *surrealExecutor[T]) Execute(ctx context.Context, query string, params map[string]any) error {
	err := e.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		_, err := surrealdb.Query[any](ctx, db, query, params)
		return err
	})
	if err != nil {
		return classifyError(err).WithQuery(query).WithParams(params)
	}
	return nil
}

// hasLimitClause checks if the query already has a LIMIT clause
func hasLimitClause(query string) bool {
	query = " " + strings.ToUpper(query) + " "
	return strings.Contains(query, " LIMIT ")
}
