package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/propdesk/internal/domain"
)

// CustomValidator wraps the domain validator to implement Echo's Validator
// interface, so request DTOs and entities share one rule set.
type CustomValidator struct{}

// NewValidator creates a new CustomValidator.
func NewValidator() *CustomValidator {
	return &CustomValidator{}
}

// Validate implements the echo.Validator interface.
func (cv *CustomValidator) Validate(i any) error {
	return domain.ValidateStruct(i)
}

// BindAndValidate decodes the request body into dst and validates it.
func BindAndValidate(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if c.Echo().Validator == nil {
		return domain.ValidateStruct(dst)
	}
	return c.Validate(dst)
}

// UploadedFile returns the first multipart file found under one of fields.
func UploadedFile(c echo.Context, fields ...string) (*multipart.FileHeader, error) {
	for _, field := range fields {
		fh, err := c.FormFile(field)
		if err == nil {
			return fh, nil
		}
		if !errors.Is(err, http.ErrMissingFile) {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid file upload request")
		}
	}
	return nil, echo.NewHTTPError(http.StatusBadRequest, "A file is required in the \""+fields[0]+"\" field")
}

// QueryPage reads page and page_size, normalized to the listing limits.
func QueryPage(c echo.Context) (domain.Page, error) {
	number, err := QueryInt(c, "page")
	if err != nil {
		return domain.Page{}, err
	}
	size, err := QueryInt(c, "page_size")
	if err != nil {
		return domain.Page{}, err
	}
	p := domain.Page{}
	if number != nil {
		p.Number = *number
	}
	if size != nil {
		p.Size = *size
	}
	return p.Normalize(), nil
}

// QueryString returns the trimmed value of a query parameter.
func QueryString(c echo.Context, name string) string {
	return strings.TrimSpace(c.QueryParam(name))
}

// QueryInt parses an optional integer parameter.
func QueryInt(c echo.Context, name string) (*int, error) {
	raw := QueryString(c, name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, domain.FieldError(name, "must be an integer")
	}
	return &v, nil
}

// QueryFloat parses an optional number parameter.
func QueryFloat(c echo.Context, name string) (*float64, error) {
	raw := QueryString(c, name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, domain.FieldError(name, "must be a number")
	}
	return &v, nil
}

// QueryBool parses an optional boolean parameter.
func QueryBool(c echo.Context, name string) (*bool, error) {
	raw := QueryString(c, name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, domain.FieldError(name, "must be true or false")
	}
	return &v, nil
}
