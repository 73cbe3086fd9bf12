package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/nfrund/propdesk/internal/domain"
	"github.com/spf13/afero"
)

// Store holds upload blobs. Paths are relative and slash separated, shaped
// "<owner_type>/<owner_id>/<uuid><ext>" by the Uploader, which also rejects
// unsafe segments before they reach a Store.
type Store interface {
	// Save writes reader to path and returns the number of bytes written.
	Save(ctx context.Context, path string, reader io.Reader) (int64, error)
	// Get opens path; a missing blob is domain.ErrNotFound.
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete removes path; a missing blob is not an error.
	Delete(ctx context.Context, path string) error
}

var _ Store = (*AferoStore)(nil)

// AferoStore implements Store over an afero filesystem. Production code
// roots it at a directory on disk; tests hand it a MemMapFs.
type AferoStore struct {
	fs afero.Fs
}

// NewAferoStore creates a new AferoStore.
func NewAferoStore(fs afero.Fs) *AferoStore {
	return &AferoStore{fs: fs}
}

// NewDiskStore returns a store rooted at dir, creating the directory if needed.
// The base path filesystem keeps every stored path inside dir.
func NewDiskStore(dir string) (*AferoStore, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir %q: %w", dir, err)
	}
	return NewAferoStore(afero.NewBasePathFs(osFs, dir)), nil
}

// Save writes the content of the reader to path, creating parent directories.
func (s *AferoStore) Save(ctx context.Context, p string, reader io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := s.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return 0, err
	}
	f, err := s.fs.Create(p)
	if err != nil {
		return 0, err
	}
	n, copyErr := io.Copy(f, reader)
	if closeErr := f.Close(); copyErr == nil {
		copyErr = closeErr
	}
	return n, copyErr
}

// Get opens the file at path for reading. A missing file yields domain.ErrNotFound.
func (s *AferoStore) Get(ctx context.Context, p string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := s.fs.OpenFile(p, os.O_RDONLY, 0)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", p, domain.ErrNotFound)
		}
		return nil, err
	}
	return f, nil
}

// Delete removes the file at path. Deleting a missing file is not an error.
func (s *AferoStore) Delete(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.fs.Remove(p)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
