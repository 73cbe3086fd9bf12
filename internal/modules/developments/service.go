package developments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"

	"github.com/nfrund/propdesk/internal/domain"
	"github.com/nfrund/propdesk/internal/middleware"
	"github.com/nfrund/propdesk/internal/pubsub"
	"github.com/nfrund/propdesk/internal/storage"
)

const entityName = "development"

// Service manages developments captured through the wizard.
type Service struct {
	developments domain.DevelopmentRepository
	properties   domain.PropertyRepository
	uploader     *storage.Uploader
	publisher    pubsub.Publisher
}

// NewService creates a new development service.
func NewService(developments domain.DevelopmentRepository, properties domain.PropertyRepository, uploader *storage.Uploader, publisher pubsub.Publisher) *Service {
	return &Service{
		developments: developments,
		properties:   properties,
		uploader:     uploader,
		publisher:    publisher,
	}
}

// List returns one page of developments.
func (s *Service) List(ctx context.Context, filter domain.DevelopmentFilter) ([]*domain.Development, int64, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	filter.City = strings.TrimSpace(filter.City)
	filter.Page = filter.Page.Normalize()
	return s.developments.List(ctx, filter)
}

// Get returns a development by ID.
func (s *Service) Get(ctx context.Context, id string) (*domain.Development, error) {
	return s.developments.FindByID(ctx, id)
}

// Create validates every applicable step of the form and stores the result.
func (s *Service) Create(ctx context.Context, form Form) (*domain.Development, error) {
	if errs := Validate(form); len(errs) > 0 {
		return nil, domain.NewValidationError(errs)
	}
	d := BuildPayload(form)
	if err := d.Validate(); err != nil {
		return nil, err
	}

	created, err := s.developments.Create(ctx, d)
	if err != nil {
		return nil, err
	}
	middleware.FromContext(ctx).Info("Development created", slog.String("development_id", created.ID))
	pubsub.Announce(ctx, s.publisher, entityName, domain.ActionCreated, created.ID, created.Name)
	return created, nil
}

// Update replaces the captured data of a development. Images are kept.
func (s *Service) Update(ctx context.Context, id string, form Form) (*domain.Development, error) {
	existing, err := s.developments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if errs := Validate(form); len(errs) > 0 {
		return nil, domain.NewValidationError(errs)
	}

	d := BuildPayload(form)
	d.ID = existing.ID
	d.Images = existing.Images
	d.CreatedAt = existing.CreatedAt
	if err := d.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.developments.Update(ctx, d)
	if err != nil {
		return nil, err
	}
	pubsub.Announce(ctx, s.publisher, entityName, domain.ActionUpdated, updated.ID, updated.Name)
	return updated, nil
}

// Delete removes a development and its images. A development that still
// groups properties cannot be deleted.
func (s *Service) Delete(ctx context.Context, id string) error {
	d, err := s.developments.FindByID(ctx, id)
	if err != nil {
		return err
	}

	_, linked, err := s.properties.List(ctx, domain.PropertyFilter{DevelopmentID: id, Page: domain.Page{Number: 1, Size: 1}})
	if err != nil {
		return err
	}
	if linked > 0 {
		return fmt.Errorf("development %s has %d properties: %w", id, linked, domain.ErrInUse)
	}

	if err := s.developments.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.uploader.RemoveOwned(ctx, domain.OwnerDevelopment, id); err != nil {
		middleware.FromContext(ctx).Error("Failed to remove development images",
			slog.String("development_id", id), slog.String("error", err.Error()))
	}
	pubsub.Announce(ctx, s.publisher, entityName, domain.ActionDeleted, id, d.Name)
	return nil
}

// AddImage stores an uploaded image and appends it to the gallery.
func (s *Service) AddImage(ctx context.Context, id string, fh *multipart.FileHeader) (*domain.Development, error) {
	d, err := s.developments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	file, err := s.uploader.SaveMultipart(ctx, domain.OwnerDevelopment, id, fh)
	if err != nil {
		return nil, err
	}
	d.Images = append(d.Images, storage.ImageOf(file))

	updated, err := s.developments.Update(ctx, d)
	if err != nil {
		if rmErr := s.uploader.Remove(ctx, file.ID); rmErr != nil {
			middleware.FromContext(ctx).Error("Failed to roll back image upload",
				slog.String("file_id", file.ID), slog.String("error", rmErr.Error()))
		}
		return nil, err
	}
	pubsub.Announce(ctx, s.publisher, entityName, domain.ActionUpdated, updated.ID, updated.Name)
	return updated, nil
}

// RemoveImage drops an image from the gallery and deletes the file.
func (s *Service) RemoveImage(ctx context.Context, id, fileID string) (*domain.Development, error) {
	d, err := s.developments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	images, found := domain.RemoveImage(d.Images, fileID)
	if !found {
		return nil, fmt.Errorf("image %s: %w", fileID, domain.ErrNotFound)
	}
	d.Images = images

	updated, err := s.developments.Update(ctx, d)
	if err != nil {
		return nil, err
	}
	if err := s.uploader.Remove(ctx, fileID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		middleware.FromContext(ctx).Error("Failed to delete development image",
			slog.String("file_id", fileID), slog.String("error", err.Error()))
	}
	pubsub.Announce(ctx, s.publisher, entityName, domain.ActionUpdated, updated.ID, updated.Name)
	return updated, nil
}
