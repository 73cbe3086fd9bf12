package storage

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/propdesk/internal/middleware"
)

// FileHandler serves stored files over HTTP.
type FileHandler struct {
	uploader *Uploader
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(u *Uploader) *FileHandler {
	return &FileHandler{uploader: u}
}

// Download streams a file's content: GET /api/files/:id
func (h *FileHandler) Download(c echo.Context) error {
	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)

	fileID := c.Param("id")
	if fileID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "File ID is required")
	}

	meta, content, err := h.uploader.Open(ctx, fileID)
	if err != nil {
		logger.Warn("Failed to open file for download", slog.String("file_id", fileID), slog.String("error", err.Error()))
		return err
	}
	defer content.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", meta.Filename))
	c.Response().Header().Set("Cache-Control", "private, max-age=86400")
	return c.Stream(http.StatusOK, meta.MIMEType, content)
}
