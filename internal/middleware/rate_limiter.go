package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RateLimiter limits each client IP to perMinute requests per minute on the
// routes it is applied to, allowing short bursts of the same size.
func RateLimiter(perMinute int) echo.MiddlewareFunc {
	if perMinute < 1 {
		perMinute = 1
	}
	config := middleware.RateLimiterConfig{
		// In-memory store suitable for single-instance deployments.
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Every(time.Minute / time.Duration(perMinute)),
			Burst:     perMinute,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "Unable to identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			FromContext(c.Request().Context()).Warn("Rate limit exceeded", "client", identifier, "path", c.Path())
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests. Please try again later.")
		},
	}
	return middleware.RateLimiterWithConfig(config)
}
