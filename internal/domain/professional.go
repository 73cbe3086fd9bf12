package domain

import (
	"context"
	"time"
)

// ServiceType is a category of service offered by professionals
// (notaries, appraisers, architects...).
type ServiceType struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required,max=120"`
	Description string    `json:"description,omitempty" validate:"max=1000"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate runs validation checks on the ServiceType struct.
func (s *ServiceType) Validate() error {
	return ValidateStruct(s)
}

// ServiceTypeRepository defines storage operations for service types.
type ServiceTypeRepository interface {
	Create(ctx context.Context, st *ServiceType) (*ServiceType, error)
	FindByID(ctx context.Context, id string) (*ServiceType, error)
	// FindByName matches case-insensitively.
	FindByName(ctx context.Context, name string) (*ServiceType, error)
	List(ctx context.Context) ([]*ServiceType, error)
	Update(ctx context.Context, st *ServiceType) (*ServiceType, error)
	Delete(ctx context.Context, id string) error
}

// Professional is an external service provider the office works with.
type Professional struct {
	ID             string    `json:"id"`
	Name           string    `json:"name" validate:"required,max=200"`
	Email          string    `json:"email,omitempty" validate:"omitempty,email"`
	Phone          string    `json:"phone,omitempty" validate:"max=30"`
	Company        string    `json:"company,omitempty" validate:"max=200"`
	City           string    `json:"city,omitempty" validate:"max=120"`
	Website        string    `json:"website,omitempty" validate:"omitempty,http_url"`
	Description    string    `json:"description,omitempty"`
	ServiceTypeIDs []string  `json:"service_type_ids"`
	PhotoURL       string    `json:"photo_url,omitempty"`
	PhotoFileID    string    `json:"photo_file_id,omitempty"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Validate runs validation checks on the Professional struct.
func (p *Professional) Validate() error {
	return ValidateStruct(p)
}

// ProfessionalFilter narrows a professional listing.
type ProfessionalFilter struct {
	Search        string
	ServiceTypeID string
	City          string
	Active        *bool
	Page          Page
}

// ProfessionalRepository defines storage operations for professionals.
type ProfessionalRepository interface {
	Create(ctx context.Context, p *Professional) (*Professional, error)
	FindByID(ctx context.Context, id string) (*Professional, error)
	List(ctx context.Context, filter ProfessionalFilter) ([]*Professional, int64, error)
	Update(ctx context.Context, p *Professional) (*Professional, error)
	Delete(ctx context.Context, id string) error
	CountByServiceType(ctx context.Context, serviceTypeID string) (int64, error)
}
