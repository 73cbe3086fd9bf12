package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/propdesk/internal/auth"
	"github.com/nfrund/propdesk/internal/domain"
	"github.com/nfrund/propdesk/internal/middleware"
	"github.com/nfrund/propdesk/internal/storage"
)

// ErrorResponse is the standard format for API error responses.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// HTTPError maps an error returned by a handler or service to a status code
// and response body.
func HTTPError(err error) (int, ErrorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, ErrorResponse{Code: codeFor(he.Code), Message: messageOf(he)}
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusUnprocessableEntity, ErrorResponse{
			Code:    "validation_failed",
			Message: "Some fields are invalid",
			Fields:  verr.Fields,
		}
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Code: "not_found", Message: "The requested resource was not found"}
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, ErrorResponse{Code: "already_exists", Message: "A record with the same unique value already exists"}
	case errors.Is(err, domain.ErrInUse):
		return http.StatusConflict, ErrorResponse{Code: "in_use", Message: "The resource is still referenced by other records"}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrorResponse{Code: "invalid_credentials", Message: "Invalid email or password"}
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, ErrorResponse{Code: "unauthorized", Message: "Invalid or expired session"}
	case errors.Is(err, domain.ErrInvalidResetToken):
		return http.StatusBadRequest, ErrorResponse{Code: "invalid_reset_token", Message: "The password reset link is invalid or has expired"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, ErrorResponse{Code: "forbidden", Message: forbiddenMessage(err)}
	case errors.Is(err, storage.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, ErrorResponse{Code: "file_too_large", Message: "The file exceeds the maximum upload size"}
	case errors.Is(err, storage.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType, ErrorResponse{Code: "unsupported_type", Message: "Only image files are accepted"}
	case errors.Is(err, storage.ErrEmptyFile):
		return http.StatusBadRequest, ErrorResponse{Code: "empty_file", Message: "The uploaded file is empty"}
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, ErrorResponse{Code: "validation_failed", Message: err.Error()}
	}
	return http.StatusInternalServerError, ErrorResponse{Code: "internal_error", Message: "An unexpected error occurred"}
}

// ErrorHandler renders every error as an ErrorResponse. It is installed as
// echo's HTTPErrorHandler.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status, body := HTTPError(err)

	logger := middleware.FromContext(c.Request().Context())
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", slog.String("path", c.Path()), slog.String("error", err.Error()))
	} else {
		logger.Debug("Request rejected", slog.Int("status", status), slog.String("error", err.Error()))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		logger.Error("Failed to write error response", slog.String("error", err.Error()))
	}
}

func codeFor(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "error"
	}
	return strings.ReplaceAll(strings.ToLower(text), " ", "_")
}

func messageOf(he *echo.HTTPError) string {
	if msg, ok := he.Message.(string); ok {
		return msg
	}
	if he.Message == nil {
		return http.StatusText(he.Code)
	}
	return fmt.Sprint(he.Message)
}

// forbiddenMessage keeps the explanation of why an action was refused.
func forbiddenMessage(err error) string {
	msg := err.Error()
	if suffix := ": " + domain.ErrForbidden.Error(); strings.HasSuffix(msg, suffix) {
		return strings.TrimSuffix(msg, suffix)
	}
	return "You do not have permission to perform this action"
}
