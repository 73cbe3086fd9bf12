package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/nfrund/propdesk/internal/auth"
	"github.com/nfrund/propdesk/internal/config"
	"github.com/nfrund/propdesk/internal/database"
	"github.com/nfrund/propdesk/internal/domain"
	"github.com/nfrund/propdesk/internal/email"
	"github.com/nfrund/propdesk/internal/handlers"
	"github.com/nfrund/propdesk/internal/middleware"
	"github.com/nfrund/propdesk/internal/module"
	"github.com/nfrund/propdesk/internal/pubsub"
	"github.com/nfrund/propdesk/internal/registry"
	"github.com/nfrund/propdesk/internal/sqlstore"
	"github.com/nfrund/propdesk/internal/storage"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	E        *echo.Echo
	Cfg      config.Provider
	Repos    *domain.Repositories
	Bus      pubsub.Bus
	Uploader *storage.Uploader
	Auth     *auth.Service
	Registry *registry.Registry

	modules     []module.Module
	stopTracing func(context.Context) error
	cancel      context.CancelFunc
}

// OpenRepositories connects to the backend selected by DB_DRIVER.
func OpenRepositories(ctx context.Context, cfg config.Provider) (*domain.Repositories, error) {
	switch cfg.GetDBDriver() {
	case config.DriverSurreal:
		return database.Open(ctx, cfg)
	case config.DriverPostgres, config.DriverSQLite:
		return sqlstore.OpenRepositories(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.GetDBDriver())
	}
}

// New builds every core service, registers and boots the modules and
// mounts the routes. Background work started by modules lives until Shutdown.
func New(ctx context.Context, cfg config.Provider, mods []module.Module) (*Server, error) {
	repos, err := OpenRepositories(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Server{Cfg: cfg, Repos: repos, modules: mods}
	if err := s.setup(ctx); err != nil {
		if closeErr := s.close(context.Background()); closeErr != nil {
			slog.Error("Failed to release resources after setup error", "error", closeErr)
		}
		return nil, err
	}
	return s, nil
}

func (s *Server) setup(ctx context.Context) error {
	cfg := s.Cfg

	disk, err := storage.NewDiskStore(cfg.GetStorageDir())
	if err != nil {
		return err
	}
	s.Uploader = storage.NewUploader(disk, s.Repos.Files, cfg.GetMaxUploadSize(), cfg.GetAllowedImageTypes())

	emailer, err := email.NewEmailService(cfg)
	if err != nil {
		return fmt.Errorf("initialize email service: %w", err)
	}

	tracer, stopTracing, err := pubsub.SetupOTel(ctx, pubsub.TracingConfigFrom(cfg))
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	s.stopTracing = stopTracing
	s.Bus = pubsub.NewWatermillBridgeWithTracer(tracer)

	tokens, err := auth.NewTokens(cfg.GetJWTSecret(), cfg.GetJWTTTL())
	if err != nil {
		return err
	}
	s.Auth = auth.NewService(s.Repos.Users, tokens, emailer, cfg.GetAppBaseURL())

	s.Registry = registry.New(cfg)
	registry.Set(s.Registry, registry.KeyRepositories, s.Repos)
	registry.Set[pubsub.Publisher](s.Registry, registry.KeyPublisher, s.Bus)
	registry.Set[pubsub.Subscriber](s.Registry, registry.KeySubscriber, s.Bus)
	registry.Set(s.Registry, registry.KeyUploader, s.Uploader)
	registry.Set(s.Registry, registry.KeyEmailSender, emailer)
	registry.Set(s.Registry, registry.KeyAuthService, s.Auth)

	s.E = newEcho(cfg)
	api := s.registerRoutes(int(cfg.GetJWTTTL().Seconds()))

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	return s.bootModules(runCtx, api)
}

func newEcho(cfg config.Provider) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = handlers.ErrorHandler

	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(middleware.Logger)

	store := sessions.NewCookieStore([]byte(cfg.GetSessionSecret()))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.GetJWTTTL().Seconds()),
		HttpOnly: true,
	}
	e.Use(session.Middleware(store))
	e.Use(echomw.CORSWithConfig(corsConfig(cfg.GetCORSOrigins())))
	return e
}

// corsConfig allows credentials only for an explicit origin list; browsers
// reject credentialed responses to a wildcard.
func corsConfig(origins []string) echomw.CORSConfig {
	wildcard := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
	}
	if wildcard {
		return echomw.CORSConfig{AllowOrigins: []string{"*"}}
	}
	return echomw.CORSConfig{
		AllowOrigins:     origins,
		AllowCredentials: true,
	}
}

// close releases everything New acquired, in reverse order.
func (s *Server) close(ctx context.Context) error {
	var errs []error
	if s.cancel != nil {
		s.cancel()
	}
	if s.Bus != nil {
		if err := s.Bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close event bus: %w", err))
		}
	}
	if s.stopTracing != nil {
		if err := s.stopTracing(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop tracing: %w", err))
		}
	}
	if s.Repos != nil && s.Repos.Close != nil {
		if err := s.Repos.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
