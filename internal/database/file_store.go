package database

import (
	"context"
	"time"

	"github.com/nfrund/propdesk/internal/domain"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// var _ ensures that FileStore implements the domain.FileRepository interface at compile time.
var _ domain.FileRepository = (*FileStore)(nil)

type fileRow struct {
	ID          *models.RecordID      `json:"id,omitempty"`
	OwnerType   string                `json:"owner_type"`
	OwnerID     string                `json:"owner_id"`
	Filename    string                `json:"filename"`
	MIMEType    string                `json:"mime_type"`
	Size        int64                 `json:"size"`
	StoragePath string                `json:"storage_path"`
	CreatedAt   models.CustomDateTime `json:"created_at"`
}

func (r *fileRow) toDomain() *domain.File {
	return &domain.File{
		ID:          recordKey(r.ID),
		OwnerType:   domain.OwnerType(r.OwnerType),
		OwnerID:     r.OwnerID,
		Filename:    r.Filename,
		MIMEType:    r.MIMEType,
		Size:        r.Size,
		StoragePath: r.StoragePath,
		CreatedAt:   r.CreatedAt.Time,
	}
}

// FileStore implements operations for managing file metadata in the database.
type FileStore struct {
	client Client[fileRow]
}

// NewFileStore creates a new FileStore.
func NewFileStore(conn DBConnection) (*FileStore, error) {
	c, err := NewClient[fileRow](conn)
	if err != nil {
		return nil, err
	}
	return &FileStore{client: c}, nil
}

// Create inserts a new file metadata record into the database.
func (s *FileStore) Create(ctx context.Context, file *domain.File) (*domain.File, error) {
	if file == nil {
		return nil, NewDBError(ErrInvalidInput, "file to create cannot be nil")
	}
	if err := file.Validate(); err != nil {
		return nil, err
	}
	file.CreatedAt = time.Now().UTC()

	rid, _ := newRecordID(fileTable)
	row, err := s.client.Create(ctx, rid, fileRow{
		OwnerType:   string(file.OwnerType),
		OwnerID:     file.OwnerID,
		Filename:    file.Filename,
		MIMEType:    file.MIMEType,
		Size:        file.Size,
		StoragePath: file.StoragePath,
		CreatedAt:   toDateTime(file.CreatedAt),
	})
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

// FindByID retrieves file metadata by its unique ID.
func (s *FileStore) FindByID(ctx context.Context, id string) (*domain.File, error) {
	rid, err := recordID(fileTable, id)
	if err != nil {
		return nil, err
	}
	row, err := s.client.Select(ctx, rid)
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (s *FileStore) ListByOwner(ctx context.Context, ownerType domain.OwnerType, ownerID string) ([]*domain.File, error) {
	rows, err := s.client.Query(ctx,
		"SELECT * FROM file WHERE owner_type = $owner_type AND owner_id = $owner_id ORDER BY created_at DESC",
		map[string]any{"owner_type": string(ownerType), "owner_id": ownerID})
	if err != nil {
		return nil, err
	}
	out := make([]*domain.File, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

// Delete removes a file record from the database.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	rid, err := recordID(fileTable, id)
	if err != nil {
		return err
	}
	return s.client.Delete(ctx, rid)
}
