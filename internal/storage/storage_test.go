package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/propdesk/internal/domain"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngBytes starts with the PNG signature, which is all detection needs.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

type memFileRepo struct {
	mu        sync.Mutex
	files     map[string]*domain.File
	createErr error
}

func newMemFileRepo() *memFileRepo {
	return &memFileRepo{files: map[string]*domain.File{}}
}

func (r *memFileRepo) Create(_ context.Context, f *domain.File) (*domain.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	cp := *f
	cp.ID = uuid.NewString()
	r.files[cp.ID] = &cp
	return &cp, nil
}

func (r *memFileRepo) FindByID(_ context.Context, id string) (*domain.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return f, nil
}

func (r *memFileRepo) ListByOwner(_ context.Context, ownerType domain.OwnerType, ownerID string) ([]*domain.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.File
	for _, f := range r.files {
		if f.OwnerType == ownerType && f.OwnerID == ownerID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *memFileRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.files, id)
	return nil
}

func TestAferoStore(t *testing.T) {
	memFs := afero.NewMemMapFs()
	store := NewAferoStore(memFs)
	ctx := context.Background()

	filePath := "test/dir/my-file.txt"
	fileContent := "hello world, this is a test"

	t.Run("Save", func(t *testing.T) {
		n, err := store.Save(ctx, filePath, strings.NewReader(fileContent))
		require.NoError(t, err)
		assert.Equal(t, int64(len(fileContent)), n)

		data, err := afero.ReadFile(memFs, filePath)
		require.NoError(t, err)
		assert.Equal(t, fileContent, string(data))
	})

	t.Run("Get", func(t *testing.T) {
		rc, err := store.Get(ctx, filePath)
		require.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, fileContent, string(data))
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, filePath))
		exists, err := afero.Exists(memFs, filePath)
		require.NoError(t, err)
		assert.False(t, exists)

		// Deleting twice is fine.
		assert.NoError(t, store.Delete(ctx, filePath))
	})

	t.Run("Get missing file", func(t *testing.T) {
		_, err := store.Get(ctx, "nope.txt")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func newTestUploader(maxSize int64) (*Uploader, afero.Fs, *memFileRepo) {
	memFs := afero.NewMemMapFs()
	repo := newMemFileRepo()
	return NewUploader(NewAferoStore(memFs), repo, maxSize, []string{"image/png", " image/jpeg "}), memFs, repo
}

func TestUploader_Save(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.NewString()

	t.Run("stores blob and metadata", func(t *testing.T) {
		u, fs, repo := newTestUploader(1024)

		f, err := u.Save(ctx, Upload{
			OwnerType: domain.OwnerProperty,
			OwnerID:   ownerID,
			Filename:  "../../etc/fachada.png",
			Size:      -1,
			Content:   bytes.NewReader(pngBytes),
		})
		require.NoError(t, err)

		assert.Equal(t, "fachada.png", f.Filename)
		assert.Equal(t, "image/png", f.MIMEType)
		assert.Equal(t, int64(len(pngBytes)), f.Size)
		assert.True(t, strings.HasPrefix(f.StoragePath, "property/"+ownerID+"/"))
		assert.True(t, strings.HasSuffix(f.StoragePath, ".png"))

		data, err := afero.ReadFile(fs, f.StoragePath)
		require.NoError(t, err)
		assert.Equal(t, pngBytes, data)
		assert.Len(t, repo.files, 1)
	})

	t.Run("rejects unsupported type", func(t *testing.T) {
		u, _, repo := newTestUploader(1024)

		_, err := u.Save(ctx, Upload{
			OwnerType: domain.OwnerProperty,
			OwnerID:   ownerID,
			Filename:  "notes.txt",
			Size:      -1,
			Content:   strings.NewReader("just some text"),
		})
		assert.ErrorIs(t, err, ErrUnsupportedType)
		assert.Empty(t, repo.files)
	})

	t.Run("rejects announced size over the limit", func(t *testing.T) {
		u, _, _ := newTestUploader(10)

		_, err := u.Save(ctx, Upload{
			OwnerType: domain.OwnerProperty,
			OwnerID:   ownerID,
			Filename:  "big.png",
			Size:      11,
			Content:   bytes.NewReader(pngBytes),
		})
		assert.ErrorIs(t, err, ErrFileTooLarge)
	})

	t.Run("rejects streamed size over the limit", func(t *testing.T) {
		u, fs, repo := newTestUploader(16)

		_, err := u.Save(ctx, Upload{
			OwnerType: domain.OwnerProperty,
			OwnerID:   ownerID,
			Filename:  "big.png",
			Size:      -1,
			Content:   bytes.NewReader(pngBytes),
		})
		assert.ErrorIs(t, err, ErrFileTooLarge)
		assert.Empty(t, repo.files)

		entries, err := afero.ReadDir(fs, "property/"+ownerID)
		require.NoError(t, err)
		assert.Empty(t, entries, "oversized blob should be removed")
	})

	t.Run("rejects empty file", func(t *testing.T) {
		u, _, _ := newTestUploader(1024)

		_, err := u.Save(ctx, Upload{
			OwnerType: domain.OwnerProperty,
			OwnerID:   ownerID,
			Filename:  "empty.png",
			Size:      0,
			Content:   bytes.NewReader(nil),
		})
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("rejects unsafe owner id", func(t *testing.T) {
		u, _, _ := newTestUploader(1024)

		_, err := u.Save(ctx, Upload{
			OwnerType: domain.OwnerProperty,
			OwnerID:   "../escape",
			Filename:  "x.png",
			Size:      -1,
			Content:   bytes.NewReader(pngBytes),
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("removes blob when metadata fails", func(t *testing.T) {
		u, fs, repo := newTestUploader(1024)
		repo.createErr = errors.New("db down")

		_, err := u.Save(ctx, Upload{
			OwnerType: domain.OwnerDevelopment,
			OwnerID:   ownerID,
			Filename:  "render.png",
			Size:      -1,
			Content:   bytes.NewReader(pngBytes),
		})
		require.Error(t, err)

		entries, err := afero.ReadDir(fs, "development/"+ownerID)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestUploader_RemoveAndOpen(t *testing.T) {
	ctx := context.Background()
	u, fs, repo := newTestUploader(1024)
	ownerID := uuid.NewString()

	var ids []string
	for i := 0; i < 2; i++ {
		f, err := u.Save(ctx, Upload{
			OwnerType: domain.OwnerDevelopment,
			OwnerID:   ownerID,
			Filename:  "plano.png",
			Size:      -1,
			Content:   bytes.NewReader(pngBytes),
		})
		require.NoError(t, err)
		ids = append(ids, f.ID)
	}

	meta, rc, err := u.Open(ctx, ids[0])
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, pngBytes, data)

	require.NoError(t, u.Remove(ctx, ids[0]))
	exists, err := afero.Exists(fs, meta.StoragePath)
	require.NoError(t, err)
	assert.False(t, exists)
	_, _, err = u.Open(ctx, ids[0])
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, u.RemoveOwned(ctx, domain.OwnerDevelopment, ownerID))
	assert.Empty(t, repo.files)
}

func TestFileHandler_Download(t *testing.T) {
	ctx := context.Background()
	u, _, _ := newTestUploader(1024)
	h := NewFileHandler(u)
	e := echo.New()

	f, err := u.Save(ctx, Upload{
		OwnerType: domain.OwnerProfessional,
		OwnerID:   uuid.NewString(),
		Filename:  "retrato.png",
		Size:      -1,
		Content:   bytes.NewReader(pngBytes),
	})
	require.NoError(t, err)

	t.Run("streams content", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, URL(f.ID), nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(f.ID)

		require.NoError(t, h.Download(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
		assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "retrato.png")
		assert.Equal(t, pngBytes, rec.Body.Bytes())
	})

	t.Run("unknown file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, URL("missing"), nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("missing")

		assert.ErrorIs(t, h.Download(c), domain.ErrNotFound)
	})
}

func TestCleanFilename(t *testing.T) {
	assert.Equal(t, "plano.pdf", cleanFilename(` C:\docs\plano.pdf `, ".pdf"))
	assert.Equal(t, "upload.png", cleanFilename("", ".png"))
	assert.Equal(t, "upload.png", cleanFilename("/", ".png"))

	long := strings.Repeat("ñ", 200) + ".jpg"
	got := cleanFilename(long, ".jpg")
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), maxFilenameBytes)
	assert.True(t, strings.HasSuffix(got, "ñ.jpg"))
}
