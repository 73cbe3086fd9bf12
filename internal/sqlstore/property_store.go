package sqlstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nfrund/propdesk/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PropertyStore implements domain.PropertyRepository with gorm.
type PropertyStore struct{ base }

var _ domain.PropertyRepository = (*PropertyStore)(nil)

func (s *PropertyStore) Create(ctx context.Context, p *domain.Property) (*domain.Property, error) {
	db, cancel := s.write(ctx)
	defer cancel()

	now := time.Now().UTC()
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = now, now
	m := propertyFromDomain(p)
	if err := db.Create(&m).Error; err != nil {
		return nil, translate(err, "create property")
	}
	return m.toDomain(), nil
}

func (s *PropertyStore) FindByID(ctx context.Context, id string) (*domain.Property, error) {
	db, cancel := s.read(ctx)
	defer cancel()

	var m propertyModel
	if err := db.First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err, "find property")
	}
	return m.toDomain(), nil
}

func propertyScope(filter domain.PropertyFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if filter.Type != "" {
			q = q.Where("type = ?", string(filter.Type))
		}
		if filter.Operation != "" {
			q = q.Where("operation = ?", string(filter.Operation))
		}
		if filter.Status != "" {
			q = q.Where("status = ?", string(filter.Status))
		}
		if filter.City != "" {
			q = q.Where("LOWER(city) = ?", lowerTrim(filter.City))
		}
		if filter.MinPrice != nil {
			q = q.Where("price >= ?", *filter.MinPrice)
		}
		if filter.MaxPrice != nil {
			q = q.Where("price <= ?", *filter.MaxPrice)
		}
		if filter.MinBedrooms != nil {
			q = q.Where("bedrooms >= ?", *filter.MinBedrooms)
		}
		if filter.MinBathrooms != nil {
			q = q.Where("bathrooms >= ?", *filter.MinBathrooms)
		}
		if filter.DevelopmentID != "" {
			q = q.Where("development_id = ?", filter.DevelopmentID)
		}
		if filter.Featured != nil {
			q = q.Where("featured = ?", *filter.Featured)
		}
		if filter.IDs != nil {
			q = q.Where("id IN ?", filter.IDs)
		}
		return q
	}
}

func propertyOrder(sort domain.PropertySort) clause.OrderBy {
	newest := clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}
	switch sort {
	case domain.SortPriceAsc:
		return clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: "price"}}, newest}}
	case domain.SortPriceDesc:
		return clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: "price"}, Desc: true}, newest}}
	default:
		return clause.OrderBy{Columns: []clause.OrderByColumn{newest}}
	}
}

func (s *PropertyStore) List(ctx context.Context, filter domain.PropertyFilter) ([]*domain.Property, int64, error) {
	if filter.IDs != nil && len(filter.IDs) == 0 {
		return []*domain.Property{}, 0, nil
	}

	db, cancel := s.read(ctx)
	defer cancel()

	scope := propertyScope(filter)
	var total int64
	if err := db.Model(&propertyModel{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count properties")
	}
	var rows []propertyModel
	if err := db.Scopes(scope, paginate(filter.Page)).Clauses(propertyOrder(filter.Sort)).Find(&rows).Error; err != nil {
		return nil, 0, translate(err, "list properties")
	}
	out := make([]*domain.Property, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, total, nil
}

func (s *PropertyStore) Update(ctx context.Context, p *domain.Property) (*domain.Property, error) {
	db, cancel := s.write(ctx)
	defer cancel()

	p.UpdatedAt = time.Now().UTC()
	m := propertyFromDomain(p)
	if err := replace(db, &propertyModel{}, p.ID, &m); err != nil {
		return nil, translate(err, "update property")
	}
	return s.FindByID(ctx, p.ID)
}

func (s *PropertyStore) Delete(ctx context.Context, id string) error {
	db, cancel := s.write(ctx)
	defer cancel()
	return translate(remove(db, &propertyModel{}, id), "delete property")
}

// FavoriteStore implements domain.FavoriteRepository with gorm.
type FavoriteStore struct{ base }

var _ domain.FavoriteRepository = (*FavoriteStore)(nil)

func (s *FavoriteStore) Add(ctx context.Context, userID, propertyID string) error {
	db, cancel := s.write(ctx)
	defer cancel()

	fav := favoriteModel{UserID: userID, PropertyID: propertyID, CreatedAt: time.Now().UTC()}
	err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&fav).Error
	return translate(err, "add favorite")
}

func (s *FavoriteStore) Remove(ctx context.Context, userID, propertyID string) error {
	db, cancel := s.write(ctx)
	defer cancel()
	err := db.Delete(&favoriteModel{}, "user_id = ? AND property_id = ?", userID, propertyID).Error
	return translate(err, "remove favorite")
}

func (s *FavoriteStore) Exists(ctx context.Context, userID, propertyID string) (bool, error) {
	db, cancel := s.read(ctx)
	defer cancel()

	var n int64
	err := db.Model(&favoriteModel{}).Where("user_id = ? AND property_id = ?", userID, propertyID).Count(&n).Error
	return n > 0, translate(err, "check favorite")
}

func (s *FavoriteStore) ListPropertyIDs(ctx context.Context, userID string) ([]string, error) {
	db, cancel := s.read(ctx)
	defer cancel()

	var ids []string
	err := db.Model(&favoriteModel{}).Where("user_id = ?", userID).Order("created_at DESC").Pluck("property_id", &ids).Error
	if err != nil {
		return nil, translate(err, "list favorites")
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (s *FavoriteStore) RemoveProperty(ctx context.Context, propertyID string) error {
	db, cancel := s.write(ctx)
	defer cancel()
	return translate(db.Delete(&favoriteModel{}, "property_id = ?", propertyID).Error, "remove property favorites")
}

// FileStore implements domain.FileRepository with gorm.
type FileStore struct{ base }

var _ domain.FileRepository = (*FileStore)(nil)

func (s *FileStore) Create(ctx context.Context, file *domain.File) (*domain.File, error) {
	if err := file.Validate(); err != nil {
		return nil, err
	}
	db, cancel := s.write(ctx)
	defer cancel()

	m := fileModel{
		ID:          uuid.NewString(),
		OwnerType:   string(file.OwnerType),
		OwnerID:     file.OwnerID,
		Filename:    file.Filename,
		MIMEType:    file.MIMEType,
		Size:        file.Size,
		StoragePath: file.StoragePath,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.Create(&m).Error; err != nil {
		return nil, translate(err, "create file")
	}
	return m.toDomain(), nil
}

func (s *FileStore) FindByID(ctx context.Context, id string) (*domain.File, error) {
	db, cancel := s.read(ctx)
	defer cancel()

	var m fileModel
	if err := db.First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err, "find file")
	}
	return m.toDomain(), nil
}

func (s *FileStore) ListByOwner(ctx context.Context, ownerType domain.OwnerType, ownerID string) ([]*domain.File, error) {
	db, cancel := s.read(ctx)
	defer cancel()

	var rows []fileModel
	err := db.Where("owner_type = ? AND owner_id = ?", string(ownerType), ownerID).Order("created_at DESC").Find(&rows).Error
	if err != nil {
		return nil, translate(err, "list files")
	}
	out := make([]*domain.File, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	db, cancel := s.write(ctx)
	defer cancel()
	return translate(remove(db, &fileModel{}, id), "delete file")
}
