// Package apitest assembles an in-process API around the real handlers,
// services and an in-memory database for module tests.
package apitest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/propdesk/internal/auth"
	"github.com/nfrund/propdesk/internal/domain"
	"github.com/nfrund/propdesk/internal/handlers"
	"github.com/nfrund/propdesk/internal/middleware"
	"github.com/nfrund/propdesk/internal/module"
	"github.com/nfrund/propdesk/internal/pubsub"
	"github.com/nfrund/propdesk/internal/registry"
	"github.com/nfrund/propdesk/internal/storage"
	"github.com/nfrund/propdesk/internal/testutils"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// PNG is the smallest content the uploader recognizes as an image.
var PNG = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

// App is a booted API with direct access to its collaborators.
type App struct {
	E        *echo.Echo
	API      *echo.Group
	Repos    *domain.Repositories
	Mailer   *testutils.RecordingSender
	Bus      *pubsub.WatermillBridge
	Fs       afero.Fs
	Uploader *storage.Uploader
	Tokens   *auth.Tokens
	Auth     *auth.Service
	Registry *registry.Registry
}

// New builds the core services and registers them, without any module.
func New(t *testing.T) *App {
	t.Helper()

	cfg := testutils.ConfigForTests(t)
	repos := testutils.NewRepositories(t)
	mailer := &testutils.RecordingSender{}
	bus := pubsub.NewWatermillBridge()
	t.Cleanup(func() { _ = bus.Close() })

	fs := afero.NewMemMapFs()
	uploader := storage.NewUploader(storage.NewAferoStore(fs), repos.Files, cfg.GetMaxUploadSize(), cfg.GetAllowedImageTypes())

	tokens, err := auth.NewTokens(cfg.GetJWTSecret(), cfg.GetJWTTTL())
	require.NoError(t, err)
	authSvc := auth.NewService(repos.Users, tokens, mailer, cfg.GetAppBaseURL())

	reg := registry.New(cfg)
	registry.Set(reg, registry.KeyRepositories, repos)
	registry.Set[pubsub.Publisher](reg, registry.KeyPublisher, bus)
	registry.Set[pubsub.Subscriber](reg, registry.KeySubscriber, bus)
	registry.Set(reg, registry.KeyUploader, uploader)
	registry.Set[domain.EmailSender](reg, registry.KeyEmailSender, mailer)
	registry.Set(reg, registry.KeyAuthService, authSvc)

	e := echo.New()
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = handlers.ErrorHandler
	e.Use(middleware.Logger)
	api := e.Group("/api", middleware.Auth(authSvc))

	return &App{
		E:        e,
		API:      api,
		Repos:    repos,
		Mailer:   mailer,
		Bus:      bus,
		Fs:       fs,
		Uploader: uploader,
		Tokens:   tokens,
		Auth:     authSvc,
		Registry: reg,
	}
}

// Boot registers then boots modules the way the server does.
func (a *App) Boot(t *testing.T, mods ...module.Module) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	for _, m := range mods {
		require.NoError(t, m.Register(a.Registry), "register %s", m.Name())
	}
	for _, m := range mods {
		require.NoError(t, m.Boot(ctx, a.API, a.Registry), "boot %s", m.Name())
	}
	t.Cleanup(func() {
		for _, m := range mods {
			_ = m.Shutdown(context.Background())
		}
	})
}

// Login creates an active user with role and returns it with a valid token.
func (a *App) Login(t *testing.T, role domain.Role) (*domain.User, string) {
	t.Helper()
	user := testutils.CreateUser(t, a.Repos.Users, role)
	token, _, err := a.Tokens.Issue(user)
	require.NoError(t, err)
	return user, token
}

// Do sends a JSON request. A nil body sends no body; a string is sent as is.
func (a *App) Do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.E.ServeHTTP(rec, req)
	return rec
}

// Upload posts content as a multipart file under field.
func (a *App) Upload(t *testing.T, path, field, filename string, content []byte, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.E.ServeHTTP(rec, req)
	return rec
}

// Decode unmarshals a JSON response body.
func Decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// WaitFor polls cond until it holds or the timeout elapses.
func WaitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 10*time.Millisecond)
}
