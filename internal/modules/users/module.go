package users

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/propdesk/internal/domain"
	"github.com/nfrund/propdesk/internal/middleware"
	"github.com/nfrund/propdesk/internal/module"
	"github.com/nfrund/propdesk/internal/registry"
)

// KeyService resolves the user service from the registry.
var KeyService = registry.Key[*Service]("users.Service")

// UsersModule implements the module.Module interface for account administration.
type UsersModule struct {
	module.BaseModule
	svc *Service
}

// New creates a new instance of the UsersModule.
func New() *UsersModule {
	return &UsersModule{}
}

// Name returns the module's unique identifier.
func (m *UsersModule) Name() string {
	return "users"
}

// Register builds the service from the core services.
func (m *UsersModule) Register(reg *registry.Registry) error {
	repos := registry.MustGet(reg, registry.KeyRepositories)
	m.svc = NewService(
		repos.Users,
		registry.MustGet(reg, registry.KeyEmailSender),
		registry.MustGet(reg, registry.KeyPublisher),
		reg.Config().GetAppBaseURL(),
	)
	registry.Set(reg, KeyService, m.svc)
	return nil
}

// Boot mounts the admin-only routes under /api/users.
func (m *UsersModule) Boot(ctx context.Context, api *echo.Group, reg *registry.Registry) error {
	slog.Info("Booting UsersModule: Setting up routes...")
	h := NewHandler(m.svc)

	g := api.Group("/users", middleware.RequireRole(domain.RoleAdmin))
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/reset-password", h.SetPassword)
	return nil
}
