package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter(t *testing.T) {
	e := echo.New()
	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	}
	const limit = 5
	e.POST("/login", handler, RateLimiter(limit))

	send := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	t.Run("allows requests within the limit", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, send("192.0.2.1:1234").Code)
	})

	t.Run("blocks requests exceeding the limit", func(t *testing.T) {
		for i := 0; i < limit; i++ {
			require.Equal(t, http.StatusOK, send("192.0.2.2:1234").Code, "request %d should be allowed", i+1)
		}

		rec := send("192.0.2.2:1234")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Contains(t, rec.Body.String(), "Too many requests")

		// Other clients keep their own budget.
		assert.Equal(t, http.StatusOK, send("192.0.2.3:1234").Code)
	})
}
