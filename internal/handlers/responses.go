package handlers

import (
	"time"

	"github.com/nfrund/propdesk/internal/domain"
	"github.com/nfrund/propdesk/internal/storage"
)

// ListResponse is the envelope of every paginated listing.
type ListResponse[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewListResponse builds the envelope for one page of items.
func NewListResponse[T any](items []T, total int64, page domain.Page) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if page.Size > 0 {
		pages = int((total + int64(page.Size) - 1) / int64(page.Size))
	}
	return ListResponse[T]{
		Items:      items,
		Total:      total,
		Page:       page.Number,
		PageSize:   page.Size,
		TotalPages: pages,
	}
}

// FileResponse is the DTO for a single stored file.
type FileResponse struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	MIMEType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// NewFileResponse creates a new FileResponse DTO from a domain.File model.
func NewFileResponse(file *domain.File) FileResponse {
	return FileResponse{
		ID:        file.ID,
		Filename:  file.Filename,
		MIMEType:  file.MIMEType,
		Size:      file.Size,
		URL:       storage.URL(file.ID),
		CreatedAt: file.CreatedAt,
	}
}

// MessageResponse carries a human readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}
