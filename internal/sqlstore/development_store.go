package sqlstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nfrund/propdesk/internal/domain"
	"gorm.io/gorm"
)

// DevelopmentStore implements domain.DevelopmentRepository with gorm.
type DevelopmentStore struct{ base }

var _ domain.DevelopmentRepository = (*DevelopmentStore)(nil)

func (s *DevelopmentStore) Create(ctx context.Context, d *domain.Development) (*domain.Development, error) {
	db, cancel := s.write(ctx)
	defer cancel()

	now := time.Now().UTC()
	d.ID = uuid.NewString()
	d.CreatedAt, d.UpdatedAt = now, now
	m := developmentFromDomain(d)
	if err := db.Create(&m).Error; err != nil {
		return nil, translate(err, "create development")
	}
	return m.toDomain(), nil
}

func (s *DevelopmentStore) FindByID(ctx context.Context, id string) (*domain.Development, error) {
	db, cancel := s.read(ctx)
	defer cancel()

	var m developmentModel
	if err := db.First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err, "find development")
	}
	return m.toDomain(), nil
}

func (s *DevelopmentStore) List(ctx context.Context, filter domain.DevelopmentFilter) ([]*domain.Development, int64, error) {
	db, cancel := s.read(ctx)
	defer cancel()

	scope := func(q *gorm.DB) *gorm.DB {
		if filter.Search != "" {
			p := likePattern(filter.Search)
			q = q.Where("(LOWER(name)"+likeClause+" OR LOWER(developer)"+likeClause+" OR LOWER(city)"+likeClause+")", p, p, p)
		}
		if filter.Type != "" {
			q = q.Where("type = ?", string(filter.Type))
		}
		if filter.Status != "" {
			q = q.Where("status = ?", string(filter.Status))
		}
		if filter.City != "" {
			q = q.Where("LOWER(city) = ?", lowerTrim(filter.City))
		}
		return q
	}

	var total int64
	if err := db.Model(&developmentModel{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count developments")
	}
	var rows []developmentModel
	if err := db.Scopes(scope, paginate(filter.Page)).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, 0, translate(err, "list developments")
	}
	out := make([]*domain.Development, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, total, nil
}

func (s *DevelopmentStore) Update(ctx context.Context, d *domain.Development) (*domain.Development, error) {
	db, cancel := s.write(ctx)
	defer cancel()

	d.UpdatedAt = time.Now().UTC()
	m := developmentFromDomain(d)
	if err := replace(db, &developmentModel{}, d.ID, &m); err != nil {
		return nil, translate(err, "update development")
	}
	return s.FindByID(ctx, d.ID)
}

func (s *DevelopmentStore) Delete(ctx context.Context, id string) error {
	db, cancel := s.write(ctx)
	defer cancel()
	return translate(remove(db, &developmentModel{}, id), "delete development")
}
