package server_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/propdesk/internal/app"
	"github.com/nfrund/propdesk/internal/config"
	"github.com/nfrund/propdesk/internal/domain"
	"github.com/nfrund/propdesk/internal/handlers"
	"github.com/nfrund/propdesk/internal/server"
	"github.com/nfrund/propdesk/internal/storage"
	"github.com/nfrund/propdesk/internal/testutils"
	"github.com/nfrund/propdesk/internal/testutils/apitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *server.Server {
	t.Helper()
	testutils.ConfigForTests(t)
	t.Setenv("STORAGE_DIR", t.TempDir())
	cfg, err := config.FromEnv()
	require.NoError(t, err)

	srv, err := server.New(t.Context(), cfg, app.NewModules())
	require.NoError(t, err)
	return srv
}

func serve(srv *server.Server, method, path, body, token string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	srv.E.ServeHTTP(rec, req)
	return rec
}

func TestServer(t *testing.T) {
	srv := newTestServer(t)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	admin := testutils.CreateUser(t, srv.Repos.Users, domain.RoleAdmin)
	agent := testutils.CreateUser(t, srv.Repos.Users, domain.RoleAgent)

	t.Run("health", func(t *testing.T) {
		rec := serve(srv, http.MethodGet, "/health", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK", rec.Body.String())
		assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	})

	t.Run("registers every module service", func(t *testing.T) {
		names := srv.Registry.Names()
		assert.Contains(t, names, "core.domain.Repositories")
		assert.Greater(t, len(names), 6)
	})

	t.Run("login then session", func(t *testing.T) {
		rec := serve(srv, http.MethodPost, "/api/auth/login",
			`{"email":"`+admin.Email+`","password":"`+testutils.DefaultPassword+`"}`, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var cookie *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == "propdesk-session" {
				cookie = c
			}
		}
		require.NotNil(t, cookie)

		rec = serve(srv, http.MethodGet, "/api/auth/me", "", "", cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		me := apitest.Decode[domain.User](t, rec)
		assert.Equal(t, admin.ID, me.ID)

		rec = serve(srv, http.MethodGet, "/api/users", "", "", cookie)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("bad credentials", func(t *testing.T) {
		rec := serve(srv, http.MethodPost, "/api/auth/login",
			`{"email":"`+admin.Email+`","password":"wrong-password"}`, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("protected routes", func(t *testing.T) {
		rec := serve(srv, http.MethodGet, "/api/properties", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		token := login(t, srv, agent.Email)
		rec = serve(srv, http.MethodGet, "/api/properties", "", token)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = serve(srv, http.MethodGet, "/api/users", "", token)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown route renders json error", func(t *testing.T) {
		rec := serve(srv, http.MethodGet, "/nowhere", "", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		body := apitest.Decode[handlers.ErrorResponse](t, rec)
		assert.NotEmpty(t, body.Code)
	})

	t.Run("serves stored files", func(t *testing.T) {
		f, err := srv.Uploader.Save(context.Background(), storage.Upload{
			OwnerType: domain.OwnerProperty,
			OwnerID:   uuid.NewString(),
			Filename:  "fachada.png",
			Size:      -1,
			Content:   bytes.NewReader(apitest.PNG),
		})
		require.NoError(t, err)

		token := login(t, srv, agent.Email)
		rec := serve(srv, http.MethodGet, storage.URL(f.ID), "", token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, apitest.PNG, rec.Body.Bytes())

		rec = serve(srv, http.MethodGet, storage.URL(uuid.NewString()), "", token)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("cors preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/properties", nil)
		req.Header.Set(echo.HeaderOrigin, "http://localhost:5173")
		req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodGet)
		rec := httptest.NewRecorder()
		srv.E.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	})
}

func TestServer_Shutdown(t *testing.T) {
	srv := newTestServer(t)
	require.NoError(t, srv.Shutdown(context.Background()))
}

func TestNew_UnknownDriver(t *testing.T) {
	testutils.ConfigForTests(t)
	cfg, err := config.FromEnv()
	require.NoError(t, err)

	cfg.DBDriver = "oracle"
	_, err = server.New(t.Context(), cfg, nil)
	assert.ErrorContains(t, err, "oracle")
}

func login(t *testing.T, srv *server.Server, email string) string {
	t.Helper()
	session, err := srv.Auth.Login(context.Background(), email, testutils.DefaultPassword)
	require.NoError(t, err)
	return session.Token
}
