package database

import (
	"context"
	"time"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	// ContextKeyQueryTimeout allows overriding the default timeout for read queries.
	ContextKeyQueryTimeout ContextKey = "db_query_timeout"
	// ContextKeyExecuteTimeout allows overriding the default timeout for write operations.
	ContextKeyExecuteTimeout ContextKey = "db_execute_timeout"
)

// WithQueryTimeout returns a context whose read queries use d instead of
// DB_QUERY_TIMEOUT. Bulk jobs such as seeding use it.
func WithQueryTimeout(ctx context.Context, d time.Duration) context.Context {
	return context.WithValue(ctx, ContextKeyQueryTimeout, d)
}

// WithExecuteTimeout is the write counterpart of WithQueryTimeout.
func WithExecuteTimeout(ctx context.Context, d time.Duration) context.Context {
	return context.WithValue(ctx, ContextKeyExecuteTimeout, d)
}

// getTimeoutFromContext retrieves a timeout override from the context or falls
// back to defaultTimeout, returning a derived context with that deadline.
func getTimeoutFromContext(ctx context.Context, defaultTimeout time.Duration, key ContextKey) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := defaultTimeout
	if v, ok := ctx.Value(key).(time.Duration); ok && v > 0 {
		timeout = v
	}
	return context.WithTimeout(ctx, timeout)
}
