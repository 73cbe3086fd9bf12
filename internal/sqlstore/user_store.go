package sqlstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nfrund/propdesk/internal/domain"
	"gorm.io/gorm"
)

const likeClause = " LIKE ? ESCAPE '\\'"

// UserStore implements domain.UserRepository with gorm.
type UserStore struct{ base }

var _ domain.UserRepository = (*UserStore)(nil)

func (s *UserStore) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	db, cancel := s.write(ctx)
	defer cancel()

	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.Email = domain.NormalizeEmail(user.Email)
	user.CreatedAt, user.UpdatedAt = now, now

	m := userFromDomain(user)
	if err := db.Create(&m).Error; err != nil {
		return nil, translate(err, "create user")
	}
	return m.toDomain(), nil
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return s.first(ctx, "find user", "id = ?", id)
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.first(ctx, "find user by email", "email = ?", domain.NormalizeEmail(email))
}

func (s *UserStore) FindByResetToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, translate(gorm.ErrRecordNotFound, "find user by reset token")
	}
	return s.first(ctx, "find user by reset token", "reset_token = ?", token)
}

func (s *UserStore) first(ctx context.Context, op string, cond string, arg any) (*domain.User, error) {
	db, cancel := s.read(ctx)
	defer cancel()

	var m userModel
	if err := db.Where(cond, arg).First(&m).Error; err != nil {
		return nil, translate(err, op)
	}
	return m.toDomain(), nil
}

func (s *UserStore) List(ctx context.Context, filter domain.UserFilter) ([]*domain.User, int64, error) {
	db, cancel := s.read(ctx)
	defer cancel()

	scope := func(q *gorm.DB) *gorm.DB {
		if filter.Search != "" {
			p := likePattern(filter.Search)
			q = q.Where("(LOWER(name)"+likeClause+" OR email"+likeClause+")", p, p)
		}
		if filter.Role != "" {
			q = q.Where("role = ?", string(filter.Role))
		}
		if filter.Active != nil {
			q = q.Where("active = ?", *filter.Active)
		}
		return q
	}

	var total int64
	if err := db.Model(&userModel{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count users")
	}

	var rows []userModel
	if err := db.Scopes(scope, paginate(filter.Page)).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, 0, translate(err, "list users")
	}
	out := make([]*domain.User, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, total, nil
}

func (s *UserStore) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	db, cancel := s.write(ctx)
	defer cancel()

	user.Email = domain.NormalizeEmail(user.Email)
	user.UpdatedAt = time.Now().UTC()
	m := userFromDomain(user)
	if err := replace(db, &userModel{}, user.ID, &m); err != nil {
		return nil, translate(err, "update user")
	}
	return s.FindByID(ctx, user.ID)
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	db, cancel := s.write(ctx)
	defer cancel()

	return translate(db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&userModel{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Delete(&favoriteModel{}, "user_id = ?", id).Error
	}), "delete user")
}

// replace overwrites every column of the row with the given id except the
// creation time, reporting gorm.ErrRecordNotFound when nothing matched.
func replace(db *gorm.DB, model any, id string, values any) error {
	res := db.Model(model).Where("id = ?", id).Select("*").Omit("id", "created_at").Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// remove deletes the row with the given id, reporting gorm.ErrRecordNotFound
// when nothing matched.
func remove(db *gorm.DB, model any, id string) error {
	res := db.Delete(model, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
