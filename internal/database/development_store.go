package database

import (
	"context"
	"time"

	"github.com/nfrund/propdesk/internal/domain"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

var _ domain.DevelopmentRepository = (*DevelopmentStore)(nil)

type developmentRow struct {
	ID           *models.RecordID       `json:"id,omitempty"`
	Name         string                 `json:"name"`
	Type         string                 `json:"type"`
	Status       string                 `json:"status"`
	Developer    string                 `json:"developer"`
	Description  string                 `json:"description"`
	Address      string                 `json:"address"`
	City         string                 `json:"city"`
	State        string                 `json:"state"`
	PostalCode   string                 `json:"postal_code"`
	Latitude     *float64               `json:"latitude,omitempty"`
	Longitude    *float64               `json:"longitude,omitempty"`
	Towers       int                    `json:"towers"`
	Floors       int                    `json:"floors"`
	TotalUnits   int                    `json:"total_units"`
	HouseModels  int                    `json:"house_models"`
	TotalLots    int                    `json:"total_lots"`
	LotAreaMin   float64                `json:"lot_area_min"`
	LotAreaMax   float64                `json:"lot_area_max"`
	Currency     string                 `json:"currency"`
	PriceFrom    float64                `json:"price_from"`
	PriceTo      float64                `json:"price_to"`
	Amenities    []string               `json:"amenities"`
	DeliveryDate *models.CustomDateTime `json:"delivery_date,omitempty"`
	VideoURL     string                 `json:"video_url"`
	BrochureURL  string                 `json:"brochure_url"`
	Images       []domain.Image         `json:"images"`
	CreatedAt    models.CustomDateTime  `json:"created_at"`
	UpdatedAt    models.CustomDateTime  `json:"updated_at"`
}

func developmentToRow(d *domain.Development) developmentRow {
	return developmentRow{
		Name:         d.Name,
		Type:         string(d.Type),
		Status:       string(d.Status),
		Developer:    d.Developer,
		Description:  d.Description,
		Address:      d.Address,
		City:         d.City,
		State:        d.State,
		PostalCode:   d.PostalCode,
		Latitude:     d.Latitude,
		Longitude:    d.Longitude,
		Towers:       d.Towers,
		Floors:       d.Floors,
		TotalUnits:   d.TotalUnits,
		HouseModels:  d.HouseModels,
		TotalLots:    d.TotalLots,
		LotAreaMin:   d.LotAreaMin,
		LotAreaMax:   d.LotAreaMax,
		Currency:     d.Currency,
		PriceFrom:    d.PriceFrom,
		PriceTo:      d.PriceTo,
		Amenities:    nonNilStrings(d.Amenities),
		DeliveryDate: toDateTimePtr(d.DeliveryDate),
		VideoURL:     d.VideoURL,
		BrochureURL:  d.BrochureURL,
		Images:       nonNilImages(d.Images),
		CreatedAt:    toDateTime(d.CreatedAt),
		UpdatedAt:    toDateTime(d.UpdatedAt),
	}
}

func (r *developmentRow) toDomain() *domain.Development {
	return &domain.Development{
		ID:           recordKey(r.ID),
		Name:         r.Name,
		Type:         domain.DevelopmentType(r.Type),
		Status:       domain.DevelopmentStatus(r.Status),
		Developer:    r.Developer,
		Description:  r.Description,
		Address:      r.Address,
		City:         r.City,
		State:        r.State,
		PostalCode:   r.PostalCode,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		Towers:       r.Towers,
		Floors:       r.Floors,
		TotalUnits:   r.TotalUnits,
		HouseModels:  r.HouseModels,
		TotalLots:    r.TotalLots,
		LotAreaMin:   r.LotAreaMin,
		LotAreaMax:   r.LotAreaMax,
		Currency:     r.Currency,
		PriceFrom:    r.PriceFrom,
		PriceTo:      r.PriceTo,
		Amenities:    nonNilStrings(r.Amenities),
		DeliveryDate: fromDateTimePtr(r.DeliveryDate),
		VideoURL:     r.VideoURL,
		BrochureURL:  r.BrochureURL,
		Images:       nonNilImages(r.Images),
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
	}
}

// DevelopmentStore implements domain.DevelopmentRepository on SurrealDB.
type DevelopmentStore struct {
	client  Client[developmentRow]
	counter Client[countRow]
}

// NewDevelopmentStore creates a new DevelopmentStore.
func NewDevelopmentStore(conn DBConnection) (*DevelopmentStore, error) {
	c, err := NewClient[developmentRow](conn)
	if err != nil {
		return nil, err
	}
	counter, err := newCounter(conn)
	if err != nil {
		return nil, err
	}
	return &DevelopmentStore{client: c, counter: counter}, nil
}

func (s *DevelopmentStore) Create(ctx context.Context, d *domain.Development) (*domain.Development, error) {
	if d == nil {
		return nil, NewDBError(ErrInvalidInput, "development cannot be nil")
	}
	now := time.Now().UTC()
	d.CreatedAt, d.UpdatedAt = now, now

	rid, _ := newRecordID(developmentTable)
	row, err := s.client.Create(ctx, rid, developmentToRow(d))
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (s *DevelopmentStore) FindByID(ctx context.Context, id string) (*domain.Development, error) {
	rid, err := recordID(developmentTable, id)
	if err != nil {
		return nil, err
	}
	row, err := s.client.Select(ctx, rid)
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (s *DevelopmentStore) List(ctx context.Context, filter domain.DevelopmentFilter) ([]*domain.Development, int64, error) {
	w := newWhere()
	if filter.Search != "" {
		w.add("(string::lowercase(name) CONTAINS $search OR string::lowercase(developer) CONTAINS $search OR string::lowercase(city) CONTAINS $search)",
			"search", toLowerTrim(filter.Search))
	}
	if filter.Type != "" {
		w.add("type = $type", "type", string(filter.Type))
	}
	if filter.Status != "" {
		w.add("status = $status", "status", string(filter.Status))
	}
	if filter.City != "" {
		w.add("string::lowercase(city) = $city", "city", toLowerTrim(filter.City))
	}

	total, err := w.count(ctx, s.counter, developmentTable)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM development" + w.String() + " ORDER BY created_at DESC" + w.pageClause(filter.Page)
	rows, err := s.client.Query(ctx, query, w.params)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*domain.Development, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, total, nil
}

func (s *DevelopmentStore) Update(ctx context.Context, d *domain.Development) (*domain.Development, error) {
	if d == nil || d.ID == "" {
		return nil, NewDBError(ErrInvalidInput, "development and development ID are required for update")
	}
	rid, err := recordID(developmentTable, d.ID)
	if err != nil {
		return nil, err
	}
	d.UpdatedAt = time.Now().UTC()

	row, err := s.client.Replace(ctx, rid, developmentToRow(d))
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (s *DevelopmentStore) Delete(ctx context.Context, id string) error {
	rid, err := recordID(developmentTable, id)
	if err != nil {
		return err
	}
	return s.client.Delete(ctx, rid)
}
