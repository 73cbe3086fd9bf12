package domain

import (
	"context"
	"time"
)

// DevelopmentType classifies a real-estate development. The type decides which
// wizard steps apply when the development is captured.
type DevelopmentType string

const (
	DevelopmentResidentialBuilding DevelopmentType = "residential_building"
	DevelopmentGatedCommunity      DevelopmentType = "gated_community"
	DevelopmentLots                DevelopmentType = "lots"
	DevelopmentCommercial          DevelopmentType = "commercial"
	DevelopmentMixedUse            DevelopmentType = "mixed_use"
)

// DevelopmentTypes lists every known type in display order.
var DevelopmentTypes = []DevelopmentType{
	DevelopmentResidentialBuilding,
	DevelopmentGatedCommunity,
	DevelopmentLots,
	DevelopmentCommercial,
	DevelopmentMixedUse,
}

// Valid reports whether t is a known development type.
func (t DevelopmentType) Valid() bool {
	for _, known := range DevelopmentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// DevelopmentStatus tracks where a development is in its lifecycle.
type DevelopmentStatus string

const (
	DevelopmentPlanning     DevelopmentStatus = "planning"
	DevelopmentPresale      DevelopmentStatus = "presale"
	DevelopmentConstruction DevelopmentStatus = "construction"
	DevelopmentDelivered    DevelopmentStatus = "delivered"
)

// DevelopmentStatuses lists every known status.
var DevelopmentStatuses = []DevelopmentStatus{
	DevelopmentPlanning,
	DevelopmentPresale,
	DevelopmentConstruction,
	DevelopmentDelivered,
}

// Valid reports whether s is a known development status.
func (s DevelopmentStatus) Valid() bool {
	for _, known := range DevelopmentStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Currencies accepted for prices.
const (
	CurrencyMXN = "MXN"
	CurrencyUSD = "USD"
)

// Development is a real-estate project (a tower, a gated community, a lot
// subdivision...) that groups properties.
type Development struct {
	ID           string            `json:"id"`
	Name         string            `json:"name" validate:"required,max=200"`
	Type         DevelopmentType   `json:"type" validate:"required,oneof=residential_building gated_community lots commercial mixed_use"`
	Status       DevelopmentStatus `json:"status" validate:"required,oneof=planning presale construction delivered"`
	Developer    string            `json:"developer" validate:"required,max=200"`
	Description  string            `json:"description" validate:"required"`
	Address      string            `json:"address" validate:"required"`
	City         string            `json:"city" validate:"required"`
	State        string            `json:"state" validate:"required"`
	PostalCode   string            `json:"postal_code,omitempty"`
	Latitude     *float64          `json:"latitude,omitempty"`
	Longitude    *float64          `json:"longitude,omitempty"`
	Towers       int               `json:"towers,omitempty" validate:"gte=0"`
	Floors       int               `json:"floors,omitempty" validate:"gte=0"`
	TotalUnits   int               `json:"total_units,omitempty" validate:"gte=0"`
	HouseModels  int               `json:"house_models,omitempty" validate:"gte=0"`
	TotalLots    int               `json:"total_lots,omitempty" validate:"gte=0"`
	LotAreaMin   float64           `json:"lot_area_min,omitempty" validate:"gte=0"`
	LotAreaMax   float64           `json:"lot_area_max,omitempty" validate:"gte=0"`
	Currency     string            `json:"currency" validate:"required,oneof=MXN USD"`
	PriceFrom    float64           `json:"price_from" validate:"gt=0"`
	PriceTo      float64           `json:"price_to" validate:"gt=0"`
	Amenities    []string          `json:"amenities"`
	DeliveryDate *time.Time        `json:"delivery_date,omitempty"`
	VideoURL     string            `json:"video_url,omitempty"`
	BrochureURL  string            `json:"brochure_url,omitempty"`
	Images       []Image           `json:"images"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Validate runs validation checks on the Development struct using the defined tags.
// The capture wizard applies the richer, type-dependent rules.
func (d *Development) Validate() error {
	return ValidateStruct(d)
}

// DevelopmentFilter narrows a development listing.
type DevelopmentFilter struct {
	Search string
	Type   DevelopmentType
	Status DevelopmentStatus
	City   string
	Page   Page
}

// DevelopmentRepository defines storage operations for developments.
type DevelopmentRepository interface {
	Create(ctx context.Context, d *Development) (*Development, error)
	FindByID(ctx context.Context, id string) (*Development, error)
	List(ctx context.Context, filter DevelopmentFilter) ([]*Development, int64, error)
	Update(ctx context.Context, d *Development) (*Development, error)
	Delete(ctx context.Context, id string) error
}
