package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/propdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator map[string]*domain.User

func (f fakeAuthenticator) Authenticate(_ context.Context, token string) (*domain.User, error) {
	if u, ok := f[token]; ok {
		return u, nil
	}
	return nil, errors.New("unknown token")
}

func TestAuthMiddleware(t *testing.T) {
	admin := &domain.User{ID: "u-admin", Email: "admin@example.com", Role: domain.RoleAdmin, Active: true}
	agent := &domain.User{ID: "u-agent", Email: "agent@example.com", Role: domain.RoleAgent, Active: true}
	authn := fakeAuthenticator{"admin-token": admin, "agent-token": agent}

	e := echo.New()
	e.Use(session.Middleware(sessions.NewCookieStore([]byte("test-session-secret"))))
	// Simulates a browser whose session already carries a token.
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if tok := c.Request().Header.Get("X-Test-Session-Token"); tok != "" {
				sess, err := session.Get(SessionName, c)
				require.NoError(t, err)
				sess.Values[SessionTokenKey] = tok
			}
			return next(c)
		}
	})

	whoami := func(c echo.Context) error {
		user, ok := CurrentUser(c)
		require.True(t, ok)
		assert.Equal(t, user.ID, domain.ActorID(c.Request().Context()))
		return c.String(http.StatusOK, "Welcome "+user.Email)
	}
	e.GET("/api/auth/me", whoami, Auth(authn))
	e.GET("/api/users", whoami, Auth(authn), RequireRole(domain.RoleAdmin))

	get := func(path string, headers map[string]string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	t.Run("missing token is unauthorized", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get("/api/auth/me", nil).Code)
	})

	t.Run("bearer token", func(t *testing.T) {
		rec := get("/api/auth/me", map[string]string{"Authorization": "Bearer agent-token"})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), agent.Email)
	})

	t.Run("session token", func(t *testing.T) {
		rec := get("/api/auth/me", map[string]string{"X-Test-Session-Token": "admin-token"})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), admin.Email)
	})

	t.Run("invalid token", func(t *testing.T) {
		rec := get("/api/auth/me", map[string]string{"Authorization": "Bearer forged"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non bearer scheme is ignored", func(t *testing.T) {
		rec := get("/api/auth/me", map[string]string{"Authorization": "Basic agent-token"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("role check", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, get("/api/users", map[string]string{"Authorization": "Bearer agent-token"}).Code)
		assert.Equal(t, http.StatusOK, get("/api/users", map[string]string{"Authorization": "bearer admin-token"}).Code)
	})
}

func TestLoggerMiddleware(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Response().Header().Set(echo.HeaderXRequestID, "req-123")

	var got bool
	err := Logger(func(c echo.Context) error {
		got = FromContext(c.Request().Context()) != nil
		return nil
	})(c)
	require.NoError(t, err)
	assert.True(t, got)
	assert.NotNil(t, FromContext(context.Background()))
}
