package users

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/propdesk/internal/domain"
	"github.com/nfrund/propdesk/internal/handlers"
)

// CreateUserRequest is the body of POST /api/users.
type CreateUserRequest struct {
	Name     string      `json:"name" validate:"required"`
	Email    string      `json:"email" validate:"required"`
	Role     domain.Role `json:"role" validate:"required"`
	Phone    string      `json:"phone"`
	Password string      `json:"password"`
	Active   *bool       `json:"active"`
}

// UpdateUserRequest is the body of PUT /api/users/:id. Omitted fields keep their value.
type UpdateUserRequest struct {
	Name   *string      `json:"name"`
	Email  *string      `json:"email"`
	Role   *domain.Role `json:"role"`
	Phone  *string      `json:"phone"`
	Active *bool        `json:"active"`
}

// SetPasswordRequest is the body of POST /api/users/:id/reset-password.
type SetPasswordRequest struct {
	Password string `json:"password"`
}

// Handler serves the user administration endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List handles GET /api/users.
func (h *Handler) List(c echo.Context) error {
	page, err := handlers.QueryPage(c)
	if err != nil {
		return err
	}
	active, err := handlers.QueryBool(c, "active")
	if err != nil {
		return err
	}
	role := domain.Role(handlers.QueryString(c, "role"))
	if role != "" && !role.Valid() {
		return domain.FieldError("role", "must be one of: admin, agent")
	}

	items, total, err := h.svc.List(c.Request().Context(), domain.UserFilter{
		Search: handlers.QueryString(c, "search"),
		Role:   role,
		Active: active,
		Page:   page,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, handlers.NewListResponse(items, total, page))
}

// Get handles GET /api/users/:id.
func (h *Handler) Get(c echo.Context) error {
	user, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Create handles POST /api/users.
func (h *Handler) Create(c echo.Context) error {
	var req CreateUserRequest
	if err := handlers.BindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.svc.Create(c.Request().Context(), CreateInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// Update handles PUT /api/users/:id.
func (h *Handler) Update(c echo.Context) error {
	var req UpdateUserRequest
	if err := handlers.BindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.svc.Update(c.Request().Context(), c.Param("id"), UpdateInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Delete handles DELETE /api/users/:id.
func (h *Handler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// SetPassword handles POST /api/users/:id/reset-password.
func (h *Handler) SetPassword(c echo.Context) error {
	var req SetPasswordRequest
	if err := handlers.BindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.svc.SetPassword(c.Request().Context(), c.Param("id"), req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, handlers.MessageResponse{Message: "The password was updated and the user was notified."})
}
