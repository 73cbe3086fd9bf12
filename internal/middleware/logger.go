package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
)

type contextKey string

const loggerKey = contextKey("logger")

// Logger injects a request-scoped logger carrying the request ID into the
// request context and logs one line per completed request. It must run after
// echo's RequestID middleware.
func Logger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := c.Response().Header().Get(echo.HeaderXRequestID)
		requestLogger := slog.Default().With("request_id", reqID)

		req := c.Request()
		c.SetRequest(req.WithContext(context.WithValue(req.Context(), loggerKey, requestLogger)))

		start := time.Now()
		err := next(c)
		if err != nil {
			// Let the error handler write the response so the status is final.
			c.Error(err)
		}

		FromContext(c.Request().Context()).Info("request",
			slog.String("method", req.Method),
			slog.String("path", c.Path()),
			slog.Int("status", c.Response().Status),
			slog.Duration("latency", time.Since(start)),
		)
		return nil
	}
}

// FromContext returns the request logger, or the default logger outside a request.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}
