package properties

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/propdesk/internal/module"
	"github.com/nfrund/propdesk/internal/registry"
)

// KeyService resolves the property service from the registry.
var KeyService = registry.Key[*Service]("properties.Service")

// PropertiesModule implements the module.Module interface for listings and favorites.
type PropertiesModule struct {
	module.BaseModule
	svc *Service
}

// New creates a new instance of the PropertiesModule.
func New() *PropertiesModule {
	return &PropertiesModule{}
}

// Name returns the module's unique identifier.
func (m *PropertiesModule) Name() string {
	return "properties"
}

// Register builds the service from the core services.
func (m *PropertiesModule) Register(reg *registry.Registry) error {
	m.svc = NewService(
		registry.MustGet(reg, registry.KeyRepositories),
		registry.MustGet(reg, registry.KeyUploader),
		registry.MustGet(reg, registry.KeyPublisher),
	)
	registry.Set(reg, KeyService, m.svc)
	return nil
}

// Boot mounts /api/properties and /api/favorites.
func (m *PropertiesModule) Boot(ctx context.Context, api *echo.Group, reg *registry.Registry) error {
	slog.Info("Booting PropertiesModule: Setting up routes...")
	h := NewHandler(m.svc)

	g := api.Group("/properties")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/favorite", h.AddFavorite)
	g.DELETE("/:id/favorite", h.RemoveFavorite)
	g.POST("/:id/images", h.AddImage)
	g.DELETE("/:id/images/:fileId", h.RemoveImage)

	api.GET("/favorites", h.Favorites)
	return nil
}
