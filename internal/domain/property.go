package domain

import (
	"context"
	"time"
)

// PropertyType is the kind of real estate being listed.
type PropertyType string

const (
	PropertyHouse      PropertyType = "house"
	PropertyApartment  PropertyType = "apartment"
	PropertyLot        PropertyType = "lot"
	PropertyOffice     PropertyType = "office"
	PropertyCommercial PropertyType = "commercial"
	PropertyWarehouse  PropertyType = "warehouse"
)

// propertyTypeLabels are the searchable words for each type, so "casa" or
// "departamento" in a query match the type field.
var propertyTypeLabels = map[PropertyType]string{
	PropertyHouse:      "house casa",
	PropertyApartment:  "apartment departamento depa",
	PropertyLot:        "lot terreno lote",
	PropertyOffice:     "office oficina",
	PropertyCommercial: "commercial local comercial",
	PropertyWarehouse:  "warehouse bodega nave",
}

// PropertyTypes lists every property type.
var PropertyTypes = []PropertyType{PropertyHouse, PropertyApartment, PropertyLot, PropertyOffice, PropertyCommercial, PropertyWarehouse}

// Valid reports whether t is a known property type.
func (t PropertyType) Valid() bool {
	_, ok := propertyTypeLabels[t]
	return ok
}

// Label returns the searchable words describing the type.
func (t PropertyType) Label() string {
	if label, ok := propertyTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

// Operation says whether a property is offered for sale or rent.
type Operation string

const (
	OperationSale Operation = "sale"
	OperationRent Operation = "rent"
)

// Valid reports whether o is sale or rent.
func (o Operation) Valid() bool {
	return o == OperationSale || o == OperationRent
}

// PropertyStatus tracks the availability of a property.
type PropertyStatus string

const (
	PropertyAvailable PropertyStatus = "available"
	PropertyReserved  PropertyStatus = "reserved"
	PropertySold      PropertyStatus = "sold"
	PropertyRented    PropertyStatus = "rented"
)

// Valid reports whether s is a known status.
func (s PropertyStatus) Valid() bool {
	switch s {
	case PropertyAvailable, PropertyReserved, PropertySold, PropertyRented:
		return true
	}
	return false
}

// Property is a single listing managed by the office.
type Property struct {
	ID            string         `json:"id"`
	Title         string         `json:"title" validate:"required,max=200"`
	Description   string         `json:"description,omitempty"`
	Type          PropertyType   `json:"type" validate:"required,oneof=house apartment lot office commercial warehouse"`
	Operation     Operation      `json:"operation" validate:"required,oneof=sale rent"`
	Status        PropertyStatus `json:"status" validate:"required,oneof=available reserved sold rented"`
	Price         float64        `json:"price" validate:"gt=0"`
	Currency      string         `json:"currency" validate:"required,oneof=MXN USD"`
	Address       string         `json:"address,omitempty"`
	Neighborhood  string         `json:"neighborhood,omitempty"`
	City          string         `json:"city" validate:"required,max=120"`
	State         string         `json:"state,omitempty"`
	Bedrooms      int            `json:"bedrooms" validate:"gte=0"`
	Bathrooms     float64        `json:"bathrooms" validate:"gte=0"`
	ParkingSpaces int            `json:"parking_spaces" validate:"gte=0"`
	BuiltArea     float64        `json:"built_area,omitempty" validate:"gte=0"`
	LotArea       float64        `json:"lot_area,omitempty" validate:"gte=0"`
	Features      []string       `json:"features"`
	Images        []Image        `json:"images"`
	DevelopmentID string         `json:"development_id,omitempty"`
	AgentID       string         `json:"agent_id,omitempty"`
	Featured      bool           `json:"featured"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Validate runs validation checks on the Property struct.
func (p *Property) Validate() error {
	return ValidateStruct(p)
}

// PropertySort selects the order of a property listing.
type PropertySort string

const (
	SortNewest    PropertySort = "newest"
	SortPriceAsc  PropertySort = "price_asc"
	SortPriceDesc PropertySort = "price_desc"
	// SortRelevance is applied by the search ranking, never by a repository.
	SortRelevance PropertySort = "relevance"
)

// Valid reports whether s is a known sort order.
func (s PropertySort) Valid() bool {
	switch s {
	case SortNewest, SortPriceAsc, SortPriceDesc, SortRelevance:
		return true
	}
	return false
}

// PropertyFilter narrows a property listing. A non-nil IDs restricts results
// to those identifiers; an empty non-nil slice matches nothing.
type PropertyFilter struct {
	Type          PropertyType
	Operation     Operation
	Status        PropertyStatus
	City          string
	MinPrice      *float64
	MaxPrice      *float64
	MinBedrooms   *int
	MinBathrooms  *float64
	DevelopmentID string
	Featured      *bool
	IDs           []string
	Sort          PropertySort
	Page          Page
}

// PropertyRepository defines storage operations for properties.
type PropertyRepository interface {
	Create(ctx context.Context, p *Property) (*Property, error)
	FindByID(ctx context.Context, id string) (*Property, error)
	List(ctx context.Context, filter PropertyFilter) ([]*Property, int64, error)
	Update(ctx context.Context, p *Property) (*Property, error)
	Delete(ctx context.Context, id string) error
}

// Favorite marks a property as a favorite of a user.
type Favorite struct {
	UserID     string    `json:"user_id"`
	PropertyID string    `json:"property_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// FavoriteRepository stores user favorites. Add is idempotent.
type FavoriteRepository interface {
	Add(ctx context.Context, userID, propertyID string) error
	Remove(ctx context.Context, userID, propertyID string) error
	Exists(ctx context.Context, userID, propertyID string) (bool, error)
	// ListPropertyIDs returns the favorite property IDs of a user, newest first.
	ListPropertyIDs(ctx context.Context, userID string) ([]string, error)
	// RemoveProperty drops every favorite pointing at a property.
	RemoveProperty(ctx context.Context, propertyID string) error
}
