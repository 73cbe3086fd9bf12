package professionals

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/propdesk/internal/module"
	"github.com/nfrund/propdesk/internal/registry"
)

// KeyService resolves the professional service from the registry.
var KeyService = registry.Key[*Service]("professionals.Service")

// ProfessionalsModule implements the module.Module interface for the
// professional directory and its service types.
type ProfessionalsModule struct {
	module.BaseModule
	svc *Service
}

// New creates a new instance of the ProfessionalsModule.
func New() *ProfessionalsModule {
	return &ProfessionalsModule{}
}

// Name returns the module's unique identifier.
func (m *ProfessionalsModule) Name() string {
	return "professionals"
}

// Register builds the service from the core services.
func (m *ProfessionalsModule) Register(reg *registry.Registry) error {
	repos := registry.MustGet(reg, registry.KeyRepositories)
	m.svc = NewService(
		repos.ServiceTypes,
		repos.Professionals,
		registry.MustGet(reg, registry.KeyUploader),
		registry.MustGet(reg, registry.KeyPublisher),
	)
	registry.Set(reg, KeyService, m.svc)
	return nil
}

// Boot mounts /api/service-types and /api/professionals.
func (m *ProfessionalsModule) Boot(ctx context.Context, api *echo.Group, reg *registry.Registry) error {
	slog.Info("Booting ProfessionalsModule: Setting up routes...")
	h := NewHandler(m.svc)

	st := api.Group("/service-types")
	st.GET("", h.ListServiceTypes)
	st.POST("", h.CreateServiceType)
	st.GET("/:id", h.GetServiceType)
	st.PUT("/:id", h.UpdateServiceType)
	st.DELETE("/:id", h.DeleteServiceType)

	g := api.Group("/professionals")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/upload-photo", h.UploadPhoto)
	return nil
}
