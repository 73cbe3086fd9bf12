package developments

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/propdesk/internal/domain"
	"github.com/nfrund/propdesk/internal/handlers"
)

// WizardResponse describes the wizard for one development type.
type WizardResponse struct {
	Type     domain.DevelopmentType     `json:"type"`
	Steps    []StepDefinition           `json:"steps"`
	Types    []domain.DevelopmentType   `json:"types"`
	Statuses []domain.DevelopmentStatus `json:"statuses"`
}

// ValidateStepRequest is the body of POST /api/developments/wizard/validate.
type ValidateStepRequest struct {
	Step Step `json:"step" validate:"required"`
	Form Form `json:"form"`
}

// ValidateStepResponse reports the outcome of validating one step.
type ValidateStepResponse struct {
	Valid        bool        `json:"valid"`
	Errors       FieldErrors `json:"errors"`
	NextStep     Step        `json:"next_step,omitempty"`
	PreviousStep Step        `json:"previous_step,omitempty"`
}

// Handler serves the development endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Wizard handles GET /api/developments/wizard?type=.
func (h *Handler) Wizard(c echo.Context) error {
	t := domain.DevelopmentType(handlers.QueryString(c, "type"))
	return c.JSON(http.StatusOK, WizardResponse{
		Type:     t,
		Steps:    StepDefinitions(t),
		Types:    domain.DevelopmentTypes,
		Statuses: domain.DevelopmentStatuses,
	})
}

// ValidateStep handles POST /api/developments/wizard/validate.
func (h *Handler) ValidateStep(c echo.Context) error {
	var req ValidateStepRequest
	if err := handlers.BindAndValidate(c, &req); err != nil {
		return err
	}

	errs, err := ValidateStep(req.Form, req.Step)
	if errors.Is(err, ErrUnknownStep) {
		return domain.FieldError("step", "unknown step for this development type")
	}
	if err != nil {
		return err
	}

	resp := ValidateStepResponse{Valid: len(errs) == 0, Errors: errs}
	if next, ok := Next(req.Form.Type, req.Step); ok {
		resp.NextStep = next
	}
	if prev, ok := Previous(req.Form.Type, req.Step); ok {
		resp.PreviousStep = prev
	}
	return c.JSON(http.StatusOK, resp)
}

// List handles GET /api/developments.
func (h *Handler) List(c echo.Context) error {
	page, err := handlers.QueryPage(c)
	if err != nil {
		return err
	}
	filter := domain.DevelopmentFilter{
		Search: handlers.QueryString(c, "search"),
		Type:   domain.DevelopmentType(handlers.QueryString(c, "type")),
		Status: domain.DevelopmentStatus(handlers.QueryString(c, "status")),
		City:   handlers.QueryString(c, "city"),
		Page:   page,
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return domain.FieldError("type", "is not a known development type")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return domain.FieldError("status", "is not a known development status")
	}

	items, total, err := h.svc.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, handlers.NewListResponse(items, total, page))
}

// Get handles GET /api/developments/:id. The response includes the wizard
// form so the frontend can open it for editing.
func (h *Handler) Get(c echo.Context) error {
	d, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, struct {
		*domain.Development
		Form Form `json:"form"`
	}{d, FormFromDevelopment(d)})
}

// Create handles POST /api/developments.
func (h *Handler) Create(c echo.Context) error {
	var form Form
	if err := handlers.BindAndValidate(c, &form); err != nil {
		return err
	}
	d, err := h.svc.Create(c.Request().Context(), form)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, d)
}

// Update handles PUT /api/developments/:id.
func (h *Handler) Update(c echo.Context) error {
	var form Form
	if err := handlers.BindAndValidate(c, &form); err != nil {
		return err
	}
	d, err := h.svc.Update(c.Request().Context(), c.Param("id"), form)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// Delete handles DELETE /api/developments/:id.
func (h *Handler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AddImage handles POST /api/developments/:id/images.
func (h *Handler) AddImage(c echo.Context) error {
	fh, err := handlers.UploadedFile(c, "image", "file")
	if err != nil {
		return err
	}
	d, err := h.svc.AddImage(c.Request().Context(), c.Param("id"), fh)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, d)
}

// RemoveImage handles DELETE /api/developments/:id/images/:fileId.
func (h *Handler) RemoveImage(c echo.Context) error {
	d, err := h.svc.RemoveImage(c.Request().Context(), c.Param("id"), c.Param("fileId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}
