package sqlstore

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nfrund/propdesk/internal/domain"
	"gorm.io/gorm"
)

// ServiceTypeStore implements domain.ServiceTypeRepository with gorm. The
// unique index on name_key makes names unique regardless of case.
type ServiceTypeStore struct{ base }

var _ domain.ServiceTypeRepository = (*ServiceTypeStore)(nil)

func (s *ServiceTypeStore) Create(ctx context.Context, st *domain.ServiceType) (*domain.ServiceType, error) {
	db, cancel := s.write(ctx)
	defer cancel()

	now := time.Now().UTC()
	m := serviceTypeModel{
		ID:          uuid.NewString(),
		Name:        st.Name,
		NameKey:     lowerTrim(st.Name),
		Description: st.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.Create(&m).Error; err != nil {
		return nil, translate(err, "create service type")
	}
	return m.toDomain(), nil
}

func (s *ServiceTypeStore) FindByID(ctx context.Context, id string) (*domain.ServiceType, error) {
	return s.first(ctx, "find service type", "id = ?", id)
}

func (s *ServiceTypeStore) FindByName(ctx context.Context, name string) (*domain.ServiceType, error) {
	return s.first(ctx, "find service type by name", "name_key = ?", lowerTrim(name))
}

func (s *ServiceTypeStore) first(ctx context.Context, op, cond string, arg any) (*domain.ServiceType, error) {
	db, cancel := s.read(ctx)
	defer cancel()

	var m serviceTypeModel
	if err := db.Where(cond, arg).First(&m).Error; err != nil {
		return nil, translate(err, op)
	}
	return m.toDomain(), nil
}

func (s *ServiceTypeStore) List(ctx context.Context) ([]*domain.ServiceType, error) {
	db, cancel := s.read(ctx)
	defer cancel()

	var rows []serviceTypeModel
	if err := db.Order("name_key ASC").Find(&rows).Error; err != nil {
		return nil, translate(err, "list service types")
	}
	out := make([]*domain.ServiceType, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (s *ServiceTypeStore) Update(ctx context.Context, st *domain.ServiceType) (*domain.ServiceType, error) {
	db, cancel := s.write(ctx)
	defer cancel()

	m := serviceTypeModel{
		Name:        st.Name,
		NameKey:     lowerTrim(st.Name),
		Description: st.Description,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := replace(db, &serviceTypeModel{}, st.ID, &m); err != nil {
		return nil, translate(err, "update service type")
	}
	return s.FindByID(ctx, st.ID)
}

func (s *ServiceTypeStore) Delete(ctx context.Context, id string) error {
	db, cancel := s.write(ctx)
	defer cancel()
	return translate(remove(db, &serviceTypeModel{}, id), "delete service type")
}

// ProfessionalStore implements domain.ProfessionalRepository with gorm.
type ProfessionalStore struct{ base }

var _ domain.ProfessionalRepository = (*ProfessionalStore)(nil)

// serviceTypeMatch finds a service type id inside the JSON-encoded id list.
func serviceTypeMatch(id string) string {
	return `%"` + strings.TrimSpace(id) + `"%`
}

func (s *ProfessionalStore) Create(ctx context.Context, p *domain.Professional) (*domain.Professional, error) {
	db, cancel := s.write(ctx)
	defer cancel()

	now := time.Now().UTC()
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = now, now
	m := professionalFromDomain(p)
	if err := db.Create(&m).Error; err != nil {
		return nil, translate(err, "create professional")
	}
	return m.toDomain(), nil
}

func (s *ProfessionalStore) FindByID(ctx context.Context, id string) (*domain.Professional, error) {
	db, cancel := s.read(ctx)
	defer cancel()

	var m professionalModel
	if err := db.First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err, "find professional")
	}
	return m.toDomain(), nil
}

func (s *ProfessionalStore) List(ctx context.Context, filter domain.ProfessionalFilter) ([]*domain.Professional, int64, error) {
	db, cancel := s.read(ctx)
	defer cancel()

	scope := func(q *gorm.DB) *gorm.DB {
		if filter.Search != "" {
			p := likePattern(filter.Search)
			q = q.Where("(LOWER(name)"+likeClause+" OR LOWER(company)"+likeClause+" OR LOWER(email)"+likeClause+")", p, p, p)
		}
		if filter.ServiceTypeID != "" {
			q = q.Where("service_type_ids LIKE ?", serviceTypeMatch(filter.ServiceTypeID))
		}
		if filter.City != "" {
			q = q.Where("LOWER(city) = ?", lowerTrim(filter.City))
		}
		if filter.Active != nil {
			q = q.Where("active = ?", *filter.Active)
		}
		return q
	}

	var total int64
	if err := db.Model(&professionalModel{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count professionals")
	}
	var rows []professionalModel
	if err := db.Scopes(scope, paginate(filter.Page)).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, 0, translate(err, "list professionals")
	}
	out := make([]*domain.Professional, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, total, nil
}

func (s *ProfessionalStore) Update(ctx context.Context, p *domain.Professional) (*domain.Professional, error) {
	db, cancel := s.write(ctx)
	defer cancel()

	p.UpdatedAt = time.Now().UTC()
	m := professionalFromDomain(p)
	if err := replace(db, &professionalModel{}, p.ID, &m); err != nil {
		return nil, translate(err, "update professional")
	}
	return s.FindByID(ctx, p.ID)
}

func (s *ProfessionalStore) Delete(ctx context.Context, id string) error {
	db, cancel := s.write(ctx)
	defer cancel()
	return translate(remove(db, &professionalModel{}, id), "delete professional")
}

func (s *ProfessionalStore) CountByServiceType(ctx context.Context, serviceTypeID string) (int64, error) {
	db, cancel := s.read(ctx)
	defer cancel()

	var n int64
	err := db.Model(&professionalModel{}).Where("service_type_ids LIKE ?", serviceTypeMatch(serviceTypeID)).Count(&n).Error
	return n, translate(err, "count professionals by service type")
}
