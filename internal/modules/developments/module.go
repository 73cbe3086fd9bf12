package developments

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/propdesk/internal/module"
	"github.com/nfrund/propdesk/internal/registry"
)

// KeyService resolves the development service from the registry.
var KeyService = registry.Key[*Service]("developments.Service")

// DevelopmentsModule implements the module.Module interface for developments.
type DevelopmentsModule struct {
	module.BaseModule
	svc *Service
}

// New creates a new instance of the DevelopmentsModule.
func New() *DevelopmentsModule {
	return &DevelopmentsModule{}
}

// Name returns the module's unique identifier.
func (m *DevelopmentsModule) Name() string {
	return "developments"
}

// Register builds the service from the core services.
func (m *DevelopmentsModule) Register(reg *registry.Registry) error {
	repos := registry.MustGet(reg, registry.KeyRepositories)
	m.svc = NewService(
		repos.Developments,
		repos.Properties,
		registry.MustGet(reg, registry.KeyUploader),
		registry.MustGet(reg, registry.KeyPublisher),
	)
	registry.Set(reg, KeyService, m.svc)
	return nil
}

// Boot mounts the routes under /api/developments.
func (m *DevelopmentsModule) Boot(ctx context.Context, api *echo.Group, reg *registry.Registry) error {
	slog.Info("Booting DevelopmentsModule: Setting up routes...")
	h := NewHandler(m.svc)

	g := api.Group("/developments")
	g.GET("/wizard", h.Wizard)
	g.POST("/wizard/validate", h.ValidateStep)
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/images", h.AddImage)
	g.DELETE("/:id/images/:fileId", h.RemoveImage)
	return nil
}
