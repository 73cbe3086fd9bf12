package domain

import (
	"context"
	"time"
)

// OwnerType names the kind of record a stored file belongs to.
type OwnerType string

const (
	OwnerDevelopment  OwnerType = "development"
	OwnerProfessional OwnerType = "professional"
	OwnerProperty     OwnerType = "property"
)

// File represents the metadata for a stored file.
// The actual file content is stored on a filesystem (e.g., local disk)
// and referenced by the StoragePath.
type File struct {
	ID          string    `json:"id"`
	OwnerType   OwnerType `json:"owner_type" validate:"required,oneof=development professional property"`
	OwnerID     string    `json:"owner_id" validate:"required"`
	Filename    string    `json:"filename" validate:"required,min=1,max=255"`
	MIMEType    string    `json:"mime_type" validate:"required"`
	Size        int64     `json:"size" validate:"gte=0"`
	StoragePath string    `json:"storage_path" validate:"required,safepath"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate runs validation checks on the File struct using the defined tags.
// This ensures that the domain model is always in a valid state.
func (f *File) Validate() error {
	return ValidateStruct(f)
}

// Image is the public reference to an uploaded picture embedded in the
// owning record.
type Image struct {
	FileID string `json:"file_id"`
	URL    string `json:"url"`
}

// RemoveImage returns images without the entry for fileID and whether it was present.
func RemoveImage(images []Image, fileID string) ([]Image, bool) {
	out := make([]Image, 0, len(images))
	found := false
	for _, img := range images {
		if img.FileID == fileID {
			found = true
			continue
		}
		out = append(out, img)
	}
	return out, found
}

// FileRepository defines the interface for interacting with file metadata storage.
type FileRepository interface {
	Create(ctx context.Context, file *File) (*File, error)
	FindByID(ctx context.Context, id string) (*File, error)
	// ListByOwner returns the files of one record, newest first.
	ListByOwner(ctx context.Context, ownerType OwnerType, ownerID string) ([]*File, error)
	Delete(ctx context.Context, id string) error
}
