package professionals

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

const (
	professionalEntity = "professional"
	serviceTypeEntity  = "service_type"
)

// ServiceTypeInput is the editable part of a service type.
type ServiceTypeInput struct {
	Name        string
	Description string
}

// ProfessionalInput is the editable part of a professional.
type ProfessionalInput struct {
	Name           string
	Email          string
	Phone          string
	Company        string
	City           string
	Website        string
	Description    string
	ServiceTypeIDs []string
	// Active defaults to true on create and is kept on update when nil.
	Active *bool
}

// Service manages professionals and the service types they offer.
type Service struct {
	serviceTypes  domain.ServiceTypeRepository
	professionals domain.ProfessionalRepository
	uploader      *storage.Uploader
	publisher     pubsub.Publisher
}

// NewService creates a new professional service.
func NewService(serviceTypes domain.ServiceTypeRepository, professionals domain.ProfessionalRepository, uploader *storage.Uploader, publisher pubsub.Publisher) *Service {
	return &Service{
		serviceTypes:  serviceTypes,
		professionals: professionals,
		uploader:      uploader,
		publisher:     publisher,
	}
}

// ListServiceTypes returns every service type ordered by name.
func (s *Service) ListServiceTypes(ctx context.Context) ([]*domain.ServiceType, error) {
	return s.serviceTypes.List(ctx)
}

// GetServiceType returns a service type by ID.
func (s *Service) GetServiceType(ctx context.Context, id string) (*domain.ServiceType, error) {
	return s.serviceTypes.FindByID(ctx, id)
}

// CreateServiceType stores a service type with a unique name.
func (s *Service) CreateServiceType(ctx context.Context, in ServiceTypeInput) (*domain.ServiceType, error) {
	st := &domain.ServiceType{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, st.Name, ""); err != nil {
		return nil, err
	}

	created, err := s.serviceTypes.Create(ctx, st)
	if err != nil {
		return nil, err
	}
	pubsub.Announce(ctx, s.publisher, serviceTypeEntity, domain.ActionCreated, created.ID, created.Name)
	return created, nil
}

// UpdateServiceType renames or redescribes a service type.
func (s *Service) UpdateServiceType(ctx context.Context, id string, in ServiceTypeInput) (*domain.ServiceType, error) {
	st, err := s.serviceTypes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	st.Name = strings.TrimSpace(in.Name)
	st.Description = strings.TrimSpace(in.Description)
	if err := st.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, st.Name, st.ID); err != nil {
		return nil, err
	}

	updated, err := s.serviceTypes.Update(ctx, st)
	if err != nil {
		return nil, err
	}
	pubsub.Announce(ctx, s.publisher, serviceTypeEntity, domain.ActionUpdated, updated.ID, updated.Name)
	return updated, nil
}

// DeleteServiceType removes a service type no professional offers.
func (s *Service) DeleteServiceType(ctx context.Context, id string) error {
	st, err := s.serviceTypes.FindByID(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.professionals.CountByServiceType(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("service type %s is offered by %d professionals: %w", id, n, domain.ErrInUse)
	}
	if err := s.serviceTypes.Delete(ctx, id); err != nil {
		return err
	}
	pubsub.Announce(ctx, s.publisher, serviceTypeEntity, domain.ActionDeleted, id, st.Name)
	return nil
}

func (s *Service) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.serviceTypes.FindByName(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != selfID {
		return fmt.Errorf("service type %q: %w", name, domain.ErrAlreadyExists)
	}
	return nil
}

// List returns one page of professionals.
func (s *Service) List(ctx context.Context, filter domain.ProfessionalFilter) ([]*domain.Professional, int64, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	filter.City = strings.TrimSpace(filter.City)
	filter.Page = filter.Page.Normalize()
	return s.professionals.List(ctx, filter)
}

// Get returns a professional by ID.
func (s *Service) Get(ctx context.Context, id string) (*domain.Professional, error) {
	return s.professionals.FindByID(ctx, id)
}

// Create stores a professional.
func (s *Service) Create(ctx context.Context, in ProfessionalInput) (*domain.Professional, error) {
	p := &domain.Professional{Active: true}
	if err := s.apply(ctx, p, in); err != nil {
		return nil, err
	}

	created, err := s.professionals.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	middleware.FromContext(ctx).Info("Professional created", slog.String("professional_id", created.ID))
	pubsub.Announce(ctx, s.publisher, professionalEntity, domain.ActionCreated, created.ID, created.Name)
	return created, nil
}

// Update replaces a professional's data. The photo is kept.
func (s *Service) Update(ctx context.Context, id string, in ProfessionalInput) (*domain.Professional, error) {
	p, err := s.professionals.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, p, in); err != nil {
		return nil, err
	}

	updated, err := s.professionals.Update(ctx, p)
	if err != nil {
		return nil, err
	}
	pubsub.Announce(ctx, s.publisher, professionalEntity, domain.ActionUpdated, updated.ID, updated.Name)
	return updated, nil
}

// Delete removes a professional and its photo.
func (s *Service) Delete(ctx context.Context, id string) error {
	p, err := s.professionals.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.professionals.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.uploader.RemoveOwned(ctx, domain.OwnerProfessional, id); err != nil {
		middleware.FromContext(ctx).Error("Failed to remove professional photo",
			slog.String("professional_id", id), slog.String("error", err.Error()))
	}
	pubsub.Announce(ctx, s.publisher, professionalEntity, domain.ActionDeleted, id, p.Name)
	return nil
}

// UploadPhoto replaces the professional's photo with the uploaded image.
func (s *Service) UploadPhoto(ctx context.Context, id string, fh *multipart.FileHeader) (*domain.Professional, error) {
	logger := middleware.FromContext(ctx)

	p, err := s.professionals.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	file, err := s.uploader.SaveMultipart(ctx, domain.OwnerProfessional, id, fh)
	if err != nil {
		return nil, err
	}

	previous := p.PhotoFileID
	p.PhotoFileID = file.ID
	p.PhotoURL = storage.URL(file.ID)
	updated, err := s.professionals.Update(ctx, p)
	if err != nil {
		if rmErr := s.uploader.Remove(ctx, file.ID); rmErr != nil {
			logger.Error("Failed to roll back photo upload", slog.String("file_id", file.ID), slog.String("error", rmErr.Error()))
		}
		return nil, err
	}

	if previous != "" {
		if err := s.uploader.Remove(ctx, previous); err != nil && !errors.Is(err, domain.ErrNotFound) {
			logger.Error("Failed to delete previous photo", slog.String("file_id", previous), slog.String("error", err.Error()))
		}
	}
	pubsub.Announce(ctx, s.publisher, professionalEntity, domain.ActionUpdated, updated.ID, updated.Name)
	return updated, nil
}

// apply copies the input into p and validates the result, including that
// every referenced service type exists.
func (s *Service) apply(ctx context.Context, p *domain.Professional, in ProfessionalInput) error {
	p.Name = strings.TrimSpace(in.Name)
	p.Email = strings.ToLower(strings.TrimSpace(in.Email))
	p.Phone = strings.TrimSpace(in.Phone)
	p.Company = strings.TrimSpace(in.Company)
	p.City = strings.TrimSpace(in.City)
	p.Website = strings.TrimSpace(in.Website)
	p.Description = strings.TrimSpace(in.Description)
	if in.Active != nil {
		p.Active = *in.Active
	}

	verr := &domain.ValidationError{}
	if err := p.Validate(); err != nil {
		var fieldErrs *domain.ValidationError
		if !errors.As(err, &fieldErrs) {
			return err
		}
		verr.Merge(fieldErrs)
	}

	ids, err := s.resolveServiceTypes(ctx, in.ServiceTypeIDs)
	if err != nil {
		var fieldErrs *domain.ValidationError
		if !errors.As(err, &fieldErrs) {
			return err
		}
		verr.Merge(fieldErrs)
	}
	p.ServiceTypeIDs = ids
	return verr.OrNil()
}

// resolveServiceTypes trims and de-duplicates ids and checks they exist.
func (s *Service) resolveServiceTypes(ctx context.Context, ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if _, err := s.serviceTypes.FindByID(ctx, id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return out, domain.FieldError("service_type_ids", fmt.Sprintf("unknown service type %q", id))
			}
			return out, err
		}
		out = append(out, id)
	}
	return out, nil
}
