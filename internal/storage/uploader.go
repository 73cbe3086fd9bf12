package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/nfrund/propdesk/internal/domain"
	"github.com/nfrund/propdesk/internal/middleware"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds the maximum upload size")
	ErrUnsupportedType = errors.New("file type is not allowed")
	ErrEmptyFile       = errors.New("file is empty")
)

// sniffLen is how many leading bytes are inspected to detect the content type.
const sniffLen = 3072

// FileURLPrefix is the public path under which stored files are served.
const FileURLPrefix = "/api/files/"

// URL returns the public URL of a stored file.
func URL(fileID string) string {
	return FileURLPrefix + fileID
}

// ImageOf converts file metadata into the reference embedded in owning records.
func ImageOf(f *domain.File) domain.Image {
	return domain.Image{FileID: f.ID, URL: URL(f.ID)}
}

// Upload describes one incoming file.
type Upload struct {
	OwnerType domain.OwnerType
	OwnerID   string
	Filename  string
	// Size is the size announced by the client, or -1 when unknown.
	Size    int64
	Content io.Reader
}

// Uploader stores image uploads and their metadata.
type Uploader struct {
	store   Store
	files   domain.FileRepository
	maxSize int64
	allowed []string
}

// NewUploader creates an Uploader accepting files up to maxSize bytes whose
// detected MIME type is one of allowedTypes.
func NewUploader(store Store, files domain.FileRepository, maxSize int64, allowedTypes []string) *Uploader {
	allowed := make([]string, 0, len(allowedTypes))
	for _, t := range allowedTypes {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			allowed = append(allowed, t)
		}
	}
	return &Uploader{store: store, files: files, maxSize: maxSize, allowed: allowed}
}

// MaxSize returns the largest accepted upload in bytes.
func (u *Uploader) MaxSize() int64 {
	return u.maxSize
}

// SaveMultipart stores a file received from a multipart form.
func (u *Uploader) SaveMultipart(ctx context.Context, ownerType domain.OwnerType, ownerID string, fh *multipart.FileHeader) (*domain.File, error) {
	if fh.Size > u.maxSize {
		return nil, ErrFileTooLarge
	}
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	return u.Save(ctx, Upload{
		OwnerType: ownerType,
		OwnerID:   ownerID,
		Filename:  fh.Filename,
		Size:      fh.Size,
		Content:   src,
	})
}

// Save validates the upload, writes the blob, and records its metadata.
// The blob is removed again when the metadata cannot be persisted.
func (u *Uploader) Save(ctx context.Context, up Upload) (*domain.File, error) {
	logger := middleware.FromContext(ctx)

	if up.Size > u.maxSize {
		return nil, ErrFileTooLarge
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(up.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return nil, ErrEmptyFile
	}

	mime := mimetype.Detect(head)
	if !u.accepts(mime) {
		logger.Warn("Rejected upload with unsupported type",
			slog.String("mime_type", mime.String()),
			slog.String("filename", up.Filename))
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mime.String())
	}

	meta := &domain.File{
		OwnerType:   up.OwnerType,
		OwnerID:     up.OwnerID,
		Filename:    cleanFilename(up.Filename, mime.Extension()),
		MIMEType:    mime.String(),
		StoragePath: string(up.OwnerType) + "/" + up.OwnerID + "/" + uuid.NewString() + mime.Extension(),
	}
	if strings.ContainsAny(up.OwnerID, "/\\") {
		return nil, domain.FieldError("owner_id", "is invalid")
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}

	// One byte past the limit is enough to know the upload is too large.
	content := io.LimitReader(io.MultiReader(bytes.NewReader(head), up.Content), u.maxSize+1)
	written, err := u.store.Save(ctx, meta.StoragePath, content)
	if err != nil {
		logger.Error("Failed to save file to storage", slog.String("path", meta.StoragePath), slog.String("error", err.Error()))
		_ = u.store.Delete(ctx, meta.StoragePath)
		return nil, fmt.Errorf("save file: %w", err)
	}
	if written > u.maxSize {
		_ = u.store.Delete(ctx, meta.StoragePath)
		return nil, ErrFileTooLarge
	}
	meta.Size = written

	created, err := u.files.Create(ctx, meta)
	if err != nil {
		logger.Error("Failed to save file metadata", slog.String("path", meta.StoragePath), slog.String("error", err.Error()))
		if delErr := u.store.Delete(ctx, meta.StoragePath); delErr != nil {
			logger.Error("Failed to clean up stored file", slog.String("path", meta.StoragePath), slog.String("error", delErr.Error()))
		}
		return nil, err
	}
	return created, nil
}

// Open returns the metadata and content of a stored file. Callers close the reader.
func (u *Uploader) Open(ctx context.Context, fileID string) (*domain.File, io.ReadCloser, error) {
	meta, err := u.files.FindByID(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	content, err := u.store.Get(ctx, meta.StoragePath)
	if err != nil {
		return nil, nil, err
	}
	return meta, content, nil
}

// Remove deletes a file's blob and its metadata. A blob that cannot be
// removed is logged and the metadata is deleted anyway.
func (u *Uploader) Remove(ctx context.Context, fileID string) error {
	logger := middleware.FromContext(ctx)

	meta, err := u.files.FindByID(ctx, fileID)
	if err != nil {
		return err
	}
	if err := u.store.Delete(ctx, meta.StoragePath); err != nil {
		logger.Error("Failed to delete physical file from storage",
			slog.String("path", meta.StoragePath),
			slog.String("error", err.Error()))
	}
	return u.files.Delete(ctx, fileID)
}

// RemoveOwned deletes every file belonging to one record.
func (u *Uploader) RemoveOwned(ctx context.Context, ownerType domain.OwnerType, ownerID string) error {
	files, err := u.files.ListByOwner(ctx, ownerType, ownerID)
	if err != nil {
		return err
	}
	var errs []error
	for _, f := range files {
		if err := u.Remove(ctx, f.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (u *Uploader) accepts(mime *mimetype.MIME) bool {
	for _, allowed := range u.allowed {
		if mime.Is(allowed) {
			return true
		}
	}
	return false
}

const maxFilenameBytes = 255

// cleanFilename keeps only the base name of what the client sent.
func cleanFilename(name, ext string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "upload" + ext
	}
	if len(name) > maxFilenameBytes {
		// Keep the tail so the extension survives, starting on a rune boundary.
		start := len(name) - maxFilenameBytes
		for start < len(name) && !utf8.RuneStart(name[start]) {
			start++
		}
		name = name[start:]
	}
	return name
}
