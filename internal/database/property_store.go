package database

import (
	"context"
	"time"

	"github.com/nfrund/propdesk/internal/domain"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

var _ domain.PropertyRepository = (*PropertyStore)(nil)

type propertyRow struct {
	ID            *models.RecordID      `json:"id,omitempty"`
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Type          string                `json:"type"`
	Operation     string                `json:"operation"`
	Status        string                `json:"status"`
	Price         float64               `json:"price"`
	Currency      string                `json:"currency"`
	Address       string                `json:"address"`
	Neighborhood  string                `json:"neighborhood"`
	City          string                `json:"city"`
	State         string                `json:"state"`
	Bedrooms      int                   `json:"bedrooms"`
	Bathrooms     float64               `json:"bathrooms"`
	ParkingSpaces int                   `json:"parking_spaces"`
	BuiltArea     float64               `json:"built_area"`
	LotArea       float64               `json:"lot_area"`
	Features      []string              `json:"features"`
	Images        []domain.Image        `json:"images"`
	DevelopmentID string                `json:"development_id"`
	AgentID       string                `json:"agent_id"`
	Featured      bool                  `json:"featured"`
	CreatedAt     models.CustomDateTime `json:"created_at"`
	UpdatedAt     models.CustomDateTime `json:"updated_at"`
}

func propertyToRow(p *domain.Property) propertyRow {
	return propertyRow{
		Title:         p.Title,
		Description:   p.Description,
		Type:          string(p.Type),
		Operation:     string(p.Operation),
		Status:        string(p.Status),
		Price:         p.Price,
		Currency:      p.Currency,
		Address:       p.Address,
		Neighborhood:  p.Neighborhood,
		City:          p.City,
		State:         p.State,
		Bedrooms:      p.Bedrooms,
		Bathrooms:     p.Bathrooms,
		ParkingSpaces: p.ParkingSpaces,
		BuiltArea:     p.BuiltArea,
		LotArea:       p.LotArea,
		Features:      nonNilStrings(p.Features),
		Images:        nonNilImages(p.Images),
		DevelopmentID: p.DevelopmentID,
		AgentID:       p.AgentID,
		Featured:      p.Featured,
		CreatedAt:     toDateTime(p.CreatedAt),
		UpdatedAt:     toDateTime(p.UpdatedAt),
	}
}

func (r *propertyRow) toDomain() *domain.Property {
	return &domain.Property{
		ID:            recordKey(r.ID),
		Title:         r.Title,
		Description:   r.Description,
		Type:          domain.PropertyType(r.Type),
		Operation:     domain.Operation(r.Operation),
		Status:        domain.PropertyStatus(r.Status),
		Price:         r.Price,
		Currency:      r.Currency,
		Address:       r.Address,
		Neighborhood:  r.Neighborhood,
		City:          r.City,
		State:         r.State,
		Bedrooms:      r.Bedrooms,
		Bathrooms:     r.Bathrooms,
		ParkingSpaces: r.ParkingSpaces,
		BuiltArea:     r.BuiltArea,
		LotArea:       r.LotArea,
		Features:      nonNilStrings(r.Features),
		Images:        nonNilImages(r.Images),
		DevelopmentID: r.DevelopmentID,
		AgentID:       r.AgentID,
		Featured:      r.Featured,
		CreatedAt:     r.CreatedAt.Time,
		UpdatedAt:     r.UpdatedAt.Time,
	}
}

// PropertyStore implements domain.PropertyRepository on SurrealDB.
type PropertyStore struct {
	client  Client[propertyRow]
	counter Client[countRow]
}

// NewPropertyStore creates a new PropertyStore.
func NewPropertyStore(conn DBConnection) (*PropertyStore, error) {
	c, err := NewClient[propertyRow](conn)
	if err != nil {
		return nil, err
	}
	counter, err := newCounter(conn)
	if err != nil {
		return nil, err
	}
	return &PropertyStore{client: c, counter: counter}, nil
}

func (s *PropertyStore) Create(ctx context.Context, p *domain.Property) (*domain.Property, error) {
	if p == nil {
		return nil, NewDBError(ErrInvalidInput, "property cannot be nil")
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	rid, _ := newRecordID(propertyTable)
	row, err := s.client.Create(ctx, rid, propertyToRow(p))
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (s *PropertyStore) FindByID(ctx context.Context, id string) (*domain.Property, error) {
	rid, err := recordID(propertyTable, id)
	if err != nil {
		return nil, err
	}
	row, err := s.client.Select(ctx, rid)
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (s *PropertyStore) List(ctx context.Context, filter domain.PropertyFilter) ([]*domain.Property, int64, error) {
	if filter.IDs != nil && len(filter.IDs) == 0 {
		return []*domain.Property{}, 0, nil
	}

	w := newWhere()
	if filter.Type != "" {
		w.add("type = $type", "type", string(filter.Type))
	}
	if filter.Operation != "" {
		w.add("operation = $operation", "operation", string(filter.Operation))
	}
	if filter.Status != "" {
		w.add("status = $status", "status", string(filter.Status))
	}
	if filter.City != "" {
		w.add("string::lowercase(city) = $city", "city", toLowerTrim(filter.City))
	}
	if filter.MinPrice != nil {
		w.add("price >= $min_price", "min_price", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		w.add("price <= $max_price", "max_price", *filter.MaxPrice)
	}
	if filter.MinBedrooms != nil {
		w.add("bedrooms >= $min_bedrooms", "min_bedrooms", *filter.MinBedrooms)
	}
	if filter.MinBathrooms != nil {
		w.add("bathrooms >= $min_bathrooms", "min_bathrooms", *filter.MinBathrooms)
	}
	if filter.DevelopmentID != "" {
		w.add("development_id = $development", "development", filter.DevelopmentID)
	}
	if filter.Featured != nil {
		w.add("featured = $featured", "featured", *filter.Featured)
	}
	if filter.IDs != nil {
		ids := make([]models.RecordID, 0, len(filter.IDs))
		for _, id := range filter.IDs {
			rid, err := recordID(propertyTable, id)
			if err != nil {
				continue
			}
			ids = append(ids, rid)
		}
		w.add("id IN $ids", "ids", ids)
	}

	total, err := w.count(ctx, s.counter, propertyTable)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM property" + w.String() + propertyOrder(filter.Sort) + w.pageClause(filter.Page)
	rows, err := s.client.Query(ctx, query, w.params)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*domain.Property, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, total, nil
}

func propertyOrder(sort domain.PropertySort) string {
	switch sort {
	case domain.SortPriceAsc:
		return " ORDER BY price ASC, created_at DESC"
	case domain.SortPriceDesc:
		return " ORDER BY price DESC, created_at DESC"
	default:
		return " ORDER BY created_at DESC"
	}
}

func (s *PropertyStore) Update(ctx context.Context, p *domain.Property) (*domain.Property, error) {
	if p == nil || p.ID == "" {
		return nil, NewDBError(ErrInvalidInput, "property and ID are required for update")
	}
	rid, err := recordID(propertyTable, p.ID)
	if err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now().UTC()
	row, err := s.client.Replace(ctx, rid, propertyToRow(p))
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (s *PropertyStore) Delete(ctx context.Context, id string) error {
	rid, err := recordID(propertyTable, id)
	if err != nil {
		return err
	}
	return s.client.Delete(ctx, rid)
}
