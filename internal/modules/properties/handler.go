package properties

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/propdesk/internal/domain"
	"github.com/nfrund/propdesk/internal/handlers"
)

// PropertyRequest is the body of POST and PUT /api/properties.
type PropertyRequest struct {
	Title         string                `json:"title" validate:"required"`
	Description   string                `json:"description"`
	Type          domain.PropertyType   `json:"type" validate:"required"`
	Operation     domain.Operation      `json:"operation" validate:"required"`
	Status        domain.PropertyStatus `json:"status"`
	Price         float64               `json:"price"`
	Currency      string                `json:"currency" validate:"required"`
	Address       string                `json:"address"`
	Neighborhood  string                `json:"neighborhood"`
	City          string                `json:"city" validate:"required"`
	State         string                `json:"state"`
	Bedrooms      int                   `json:"bedrooms"`
	Bathrooms     float64               `json:"bathrooms"`
	ParkingSpaces int                   `json:"parking_spaces"`
	BuiltArea     float64               `json:"built_area"`
	LotArea       float64               `json:"lot_area"`
	Features      []string              `json:"features"`
	DevelopmentID string                `json:"development_id"`
	AgentID       string                `json:"agent_id"`
	Featured      bool                  `json:"featured"`
}

// Handler serves the property and favorite endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List handles GET /api/properties.
func (h *Handler) List(c echo.Context) error {
	q, page, err := parseQuery(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	items, total, err := h.svc.List(ctx, domain.ActorID(ctx), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, handlers.NewListResponse(items, total, page))
}

func parseQuery(c echo.Context) (Query, domain.Page, error) {
	verr := &domain.ValidationError{}
	page, err := handlers.QueryPage(c)
	collect(verr, err)

	f := domain.PropertyFilter{
		Type:          domain.PropertyType(handlers.QueryString(c, "type")),
		Operation:     domain.Operation(handlers.QueryString(c, "operation")),
		Status:        domain.PropertyStatus(handlers.QueryString(c, "status")),
		City:          handlers.QueryString(c, "city"),
		DevelopmentID: handlers.QueryString(c, "development_id"),
		Sort:          domain.PropertySort(handlers.QueryString(c, "sort")),
		Page:          page,
	}
	if f.Type != "" && !f.Type.Valid() {
		verr.Merge(domain.FieldError("type", "is not a known property type"))
	}
	if f.Operation != "" && !f.Operation.Valid() {
		verr.Merge(domain.FieldError("operation", "must be one of: sale, rent"))
	}
	if f.Status != "" && !f.Status.Valid() {
		verr.Merge(domain.FieldError("status", "is not a known property status"))
	}
	if f.Sort != "" && !f.Sort.Valid() {
		verr.Merge(domain.FieldError("sort", "must be one of: newest, price_asc, price_desc, relevance"))
	}

	f.MinPrice, err = handlers.QueryFloat(c, "min_price")
	collect(verr, err)
	f.MaxPrice, err = handlers.QueryFloat(c, "max_price")
	collect(verr, err)
	f.MinBedrooms, err = handlers.QueryInt(c, "min_bedrooms")
	collect(verr, err)
	f.MinBathrooms, err = handlers.QueryFloat(c, "min_bathrooms")
	collect(verr, err)
	f.Featured, err = handlers.QueryBool(c, "featured")
	collect(verr, err)
	favorites, err := handlers.QueryBool(c, "favorites")
	collect(verr, err)

	if err := verr.OrNil(); err != nil {
		return Query{}, page, err
	}
	return Query{
		Filter:        f,
		Search:        handlers.QueryString(c, "search"),
		FavoritesOnly: favorites != nil && *favorites,
	}, page, nil
}

func collect(verr *domain.ValidationError, err error) {
	if fe, ok := err.(*domain.ValidationError); ok {
		verr.Merge(fe)
	}
}

// Get handles GET /api/properties/:id.
func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	item, err := h.svc.Get(ctx, domain.ActorID(ctx), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// Create handles POST /api/properties.
func (h *Handler) Create(c echo.Context) error {
	var req PropertyRequest
	if err := handlers.BindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := h.svc.Create(c.Request().Context(), Input(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// Update handles PUT /api/properties/:id.
func (h *Handler) Update(c echo.Context) error {
	var req PropertyRequest
	if err := handlers.BindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := h.svc.Update(c.Request().Context(), c.Param("id"), Input(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /api/properties/:id.
func (h *Handler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AddFavorite handles POST /api/properties/:id/favorite.
func (h *Handler) AddFavorite(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.svc.AddFavorite(ctx, domain.ActorID(ctx), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// RemoveFavorite handles DELETE /api/properties/:id/favorite.
func (h *Handler) RemoveFavorite(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.svc.RemoveFavorite(ctx, domain.ActorID(ctx), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Favorites handles GET /api/favorites.
func (h *Handler) Favorites(c echo.Context) error {
	page, err := handlers.QueryPage(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	items, total, err := h.svc.Favorites(ctx, domain.ActorID(ctx), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, handlers.NewListResponse(items, total, page))
}

// AddImage handles POST /api/properties/:id/images.
func (h *Handler) AddImage(c echo.Context) error {
	fh, err := handlers.UploadedFile(c, "image", "file")
	if err != nil {
		return err
	}
	p, err := h.svc.AddImage(c.Request().Context(), c.Param("id"), fh)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// RemoveImage handles DELETE /api/properties/:id/images/:fileId.
func (h *Handler) RemoveImage(c echo.Context) error {
	p, err := h.svc.RemoveImage(c.Request().Context(), c.Param("id"), c.Param("fileId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}
