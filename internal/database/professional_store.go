package database

import (
	"context"
	"strings"
	"time"

	"github.com/nfrund/propdesk/internal/domain"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

var (
	_ domain.ServiceTypeRepository  = (*ServiceTypeStore)(nil)
	_ domain.ProfessionalRepository = (*ProfessionalStore)(nil)
)

type serviceTypeRow struct {
	ID          *models.RecordID      `json:"id,omitempty"`
	Name        string                `json:"name"`
	NameKey     string                `json:"name_key"`
	Description string                `json:"description"`
	CreatedAt   models.CustomDateTime `json:"created_at"`
	UpdatedAt   models.CustomDateTime `json:"updated_at"`
}

func serviceTypeToRow(st *domain.ServiceType) serviceTypeRow {
	return serviceTypeRow{
		Name:        st.Name,
		NameKey:     toLowerTrim(st.Name),
		Description: st.Description,
		CreatedAt:   toDateTime(st.CreatedAt),
		UpdatedAt:   toDateTime(st.UpdatedAt),
	}
}

func (r *serviceTypeRow) toDomain() *domain.ServiceType {
	return &domain.ServiceType{
		ID:          recordKey(r.ID),
		Name:        r.Name,
		Description: r.Description,
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
	}
}

// ServiceTypeStore implements domain.ServiceTypeRepository. Names are unique
// case-insensitively through the service_type_name index on name_key.
type ServiceTypeStore struct {
	client Client[serviceTypeRow]
}

// NewServiceTypeStore creates a new ServiceTypeStore.
func NewServiceTypeStore(conn DBConnection) (*ServiceTypeStore, error) {
	c, err := NewClient[serviceTypeRow](conn)
	if err != nil {
		return nil, err
	}
	return &ServiceTypeStore{client: c}, nil
}

func (s *ServiceTypeStore) Create(ctx context.Context, st *domain.ServiceType) (*domain.ServiceType, error) {
	if st == nil {
		return nil, NewDBError(ErrInvalidInput, "service type cannot be nil")
	}
	now := time.Now().UTC()
	st.CreatedAt, st.UpdatedAt = now, now

	rid, _ := newRecordID(serviceTypeTable)
	row, err := s.client.Create(ctx, rid, serviceTypeToRow(st))
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (s *ServiceTypeStore) FindByID(ctx context.Context, id string) (*domain.ServiceType, error) {
	rid, err := recordID(serviceTypeTable, id)
	if err != nil {
		return nil, err
	}
	row, err := s.client.Select(ctx, rid)
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (s *ServiceTypeStore) FindByName(ctx context.Context, name string) (*domain.ServiceType, error) {
	row, err := s.client.QueryOne(ctx, "SELECT * FROM service_type WHERE name_key = $key", map[string]any{"key": toLowerTrim(name)})
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, NewDBError(ErrNotFound, "service type not found")
	}
	return row.toDomain(), nil
}

func (s *ServiceTypeStore) List(ctx context.Context) ([]*domain.ServiceType, error) {
	rows, err := s.client.Query(ctx, "SELECT * FROM service_type ORDER BY name_key ASC", nil)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.ServiceType, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (s *ServiceTypeStore) Update(ctx context.Context, st *domain.ServiceType) (*domain.ServiceType, error) {
	if st == nil || st.ID == "" {
		return nil, NewDBError(ErrInvalidInput, "service type and ID are required for update")
	}
	rid, err := recordID(serviceTypeTable, st.ID)
	if err != nil {
		return nil, err
	}
	st.UpdatedAt = time.Now().UTC()
	row, err := s.client.Replace(ctx, rid, serviceTypeToRow(st))
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (s *ServiceTypeStore) Delete(ctx context.Context, id string) error {
	rid, err := recordID(serviceTypeTable, id)
	if err != nil {
		return err
	}
	return s.client.Delete(ctx, rid)
}

type professionalRow struct {
	ID             *models.RecordID      `json:"id,omitempty"`
	Name           string                `json:"name"`
	Email          string                `json:"email"`
	Phone          string                `json:"phone"`
	Company        string                `json:"company"`
	City           string                `json:"city"`
	Website        string                `json:"website"`
	Description    string                `json:"description"`
	ServiceTypeIDs []string              `json:"service_type_ids"`
	PhotoURL       string                `json:"photo_url"`
	PhotoFileID    string                `json:"photo_file_id"`
	Active         bool                  `json:"active"`
	CreatedAt      models.CustomDateTime `json:"created_at"`
	UpdatedAt      models.CustomDateTime `json:"updated_at"`
}

func professionalToRow(p *domain.Professional) professionalRow {
	return professionalRow{
		Name:           p.Name,
		Email:          p.Email,
		Phone:          p.Phone,
		Company:        p.Company,
		City:           p.City,
		Website:        p.Website,
		Description:    p.Description,
		ServiceTypeIDs: nonNilStrings(p.ServiceTypeIDs),
		PhotoURL:       p.PhotoURL,
		PhotoFileID:    p.PhotoFileID,
		Active:         p.Active,
		CreatedAt:      toDateTime(p.CreatedAt),
		UpdatedAt:      toDateTime(p.UpdatedAt),
	}
}

func (r *professionalRow) toDomain() *domain.Professional {
	return &domain.Professional{
		ID:             recordKey(r.ID),
		Name:           r.Name,
		Email:          r.Email,
		Phone:          r.Phone,
		Company:        r.Company,
		City:           r.City,
		Website:        r.Website,
		Description:    r.Description,
		ServiceTypeIDs: nonNilStrings(r.ServiceTypeIDs),
		PhotoURL:       r.PhotoURL,
		PhotoFileID:    r.PhotoFileID,
		Active:         r.Active,
		CreatedAt:      r.CreatedAt.Time,
		UpdatedAt:      r.UpdatedAt.Time,
	}
}

// ProfessionalStore implements domain.ProfessionalRepository on SurrealDB.
type ProfessionalStore struct {
	client  Client[professionalRow]
	counter Client[countRow]
}

// NewProfessionalStore creates a new ProfessionalStore.
func NewProfessionalStore(conn DBConnection) (*ProfessionalStore, error) {
	c, err := NewClient[professionalRow](conn)
	if err != nil {
		return nil, err
	}
	counter, err := newCounter(conn)
	if err != nil {
		return nil, err
	}
	return &ProfessionalStore{client: c, counter: counter}, nil
}

func (s *ProfessionalStore) Create(ctx context.Context, p *domain.Professional) (*domain.Professional, error) {
	if p == nil {
		return nil, NewDBError(ErrInvalidInput, "professional cannot be nil")
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	rid, _ := newRecordID(professionalTable)
	row, err := s.client.Create(ctx, rid, professionalToRow(p))
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (s *ProfessionalStore) FindByID(ctx context.Context, id string) (*domain.Professional, error) {
	rid, err := recordID(professionalTable, id)
	if err != nil {
		return nil, err
	}
	row, err := s.client.Select(ctx, rid)
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (s *ProfessionalStore) List(ctx context.Context, filter domain.ProfessionalFilter) ([]*domain.Professional, int64, error) {
	w := newWhere()
	if filter.Search != "" {
		w.add("(string::lowercase(name) CONTAINS $search OR string::lowercase(company) CONTAINS $search OR string::lowercase(email) CONTAINS $search)",
			"search", toLowerTrim(filter.Search))
	}
	if filter.ServiceTypeID != "" {
		w.add("service_type_ids CONTAINS $service_type", "service_type", strings.TrimSpace(filter.ServiceTypeID))
	}
	if filter.City != "" {
		w.add("string::lowercase(city) = $city", "city", toLowerTrim(filter.City))
	}
	if filter.Active != nil {
		w.add("active = $active", "active", *filter.Active)
	}

	total, err := w.count(ctx, s.counter, professionalTable)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM professional" + w.String() + " ORDER BY name ASC" + w.pageClause(filter.Page)
	rows, err := s.client.Query(ctx, query, w.params)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*domain.Professional, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, total, nil
}

func (s *ProfessionalStore) Update(ctx context.Context, p *domain.Professional) (*domain.Professional, error) {
	if p == nil || p.ID == "" {
		return nil, NewDBError(ErrInvalidInput, "professional and ID are required for update")
	}
	rid, err := recordID(professionalTable, p.ID)
	if err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now().UTC()
	row, err := s.client.Replace(ctx, rid, professionalToRow(p))
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (s *ProfessionalStore) Delete(ctx context.Context, id string) error {
	rid, err := recordID(professionalTable, id)
	if err != nil {
		return err
	}
	return s.client.Delete(ctx, rid)
}

func (s *ProfessionalStore) CountByServiceType(ctx context.Context, serviceTypeID string) (int64, error) {
	w := newWhere()
	w.add("service_type_ids CONTAINS $service_type", "service_type", strings.TrimSpace(serviceTypeID))
	return w.count(ctx, s.counter, professionalTable)
}
