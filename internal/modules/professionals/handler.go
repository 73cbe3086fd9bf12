package professionals

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/propdesk/internal/domain"
	"github.com/nfrund/propdesk/internal/handlers"
)

// ServiceTypeRequest is the body of POST and PUT /api/service-types.
type ServiceTypeRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// ProfessionalRequest is the body of POST and PUT /api/professionals.
type ProfessionalRequest struct {
	Name           string   `json:"name" validate:"required"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	Company        string   `json:"company"`
	City           string   `json:"city"`
	Website        string   `json:"website"`
	Description    string   `json:"description"`
	ServiceTypeIDs []string `json:"service_type_ids"`
	Active         *bool    `json:"active"`
}

// Handler serves the professional and service type endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// ListServiceTypes handles GET /api/service-types.
func (h *Handler) ListServiceTypes(c echo.Context) error {
	items, err := h.svc.ListServiceTypes(c.Request().Context())
	if err != nil {
		return err
	}
	if items == nil {
		items = []*domain.ServiceType{}
	}
	return c.JSON(http.StatusOK, items)
}

// GetServiceType handles GET /api/service-types/:id.
func (h *Handler) GetServiceType(c echo.Context) error {
	st, err := h.svc.GetServiceType(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, st)
}

// CreateServiceType handles POST /api/service-types.
func (h *Handler) CreateServiceType(c echo.Context) error {
	var req ServiceTypeRequest
	if err := handlers.BindAndValidate(c, &req); err != nil {
		return err
	}
	st, err := h.svc.CreateServiceType(c.Request().Context(), ServiceTypeInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, st)
}

// UpdateServiceType handles PUT /api/service-types/:id.
func (h *Handler) UpdateServiceType(c echo.Context) error {
	var req ServiceTypeRequest
	if err := handlers.BindAndValidate(c, &req); err != nil {
		return err
	}
	st, err := h.svc.UpdateServiceType(c.Request().Context(), c.Param("id"), ServiceTypeInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, st)
}

// DeleteServiceType handles DELETE /api/service-types/:id.
func (h *Handler) DeleteServiceType(c echo.Context) error {
	if err := h.svc.DeleteServiceType(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// List handles GET /api/professionals.
func (h *Handler) List(c echo.Context) error {
	page, err := handlers.QueryPage(c)
	if err != nil {
		return err
	}
	active, err := handlers.QueryBool(c, "active")
	if err != nil {
		return err
	}

	items, total, err := h.svc.List(c.Request().Context(), domain.ProfessionalFilter{
		Search:        handlers.QueryString(c, "search"),
		ServiceTypeID: handlers.QueryString(c, "service_type_id"),
		City:          handlers.QueryString(c, "city"),
		Active:        active,
		Page:          page,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, handlers.NewListResponse(items, total, page))
}

// Get handles GET /api/professionals/:id.
func (h *Handler) Get(c echo.Context) error {
	p, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Create handles POST /api/professionals.
func (h *Handler) Create(c echo.Context) error {
	var req ProfessionalRequest
	if err := handlers.BindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := h.svc.Create(c.Request().Context(), ProfessionalInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// Update handles PUT /api/professionals/:id.
func (h *Handler) Update(c echo.Context) error {
	var req ProfessionalRequest
	if err := handlers.BindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := h.svc.Update(c.Request().Context(), c.Param("id"), ProfessionalInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /api/professionals/:id.
func (h *Handler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadPhoto handles POST /api/professionals/:id/upload-photo.
func (h *Handler) UploadPhoto(c echo.Context) error {
	fh, err := handlers.UploadedFile(c, "photo", "file", "image")
	if err != nil {
		return err
	}
	p, err := h.svc.UploadPhoto(c.Request().Context(), c.Param("id"), fh)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}
