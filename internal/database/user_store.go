package database

import (
	"context"
	"errors"
	"time"

	"github.com/nfrund/propdesk/internal/domain"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

var _ domain.UserRepository = (*UserStore)(nil)

type userRow struct {
	ID                *models.RecordID       `json:"id,omitempty"`
	Name              string                 `json:"name"`
	Email             string                 `json:"email"`
	Role              string                 `json:"role"`
	Phone             string                 `json:"phone"`
	Active            bool                   `json:"active"`
	PasswordHash      string                 `json:"password_hash"`
	ResetToken        string                 `json:"reset_token"`
	ResetTokenExpires *models.CustomDateTime `json:"reset_token_expires,omitempty"`
	CreatedAt         models.CustomDateTime  `json:"created_at"`
	UpdatedAt         models.CustomDateTime  `json:"updated_at"`
}

func userToRow(u *domain.User) userRow {
	return userRow{
		Name:              u.Name,
		Email:             u.Email,
		Role:              string(u.Role),
		Phone:             u.Phone,
		Active:            u.Active,
		PasswordHash:      u.PasswordHash,
		ResetToken:        u.ResetToken,
		ResetTokenExpires: toDateTimePtr(u.ResetTokenExpires),
		CreatedAt:         toDateTime(u.CreatedAt),
		UpdatedAt:         toDateTime(u.UpdatedAt),
	}
}

func (r *userRow) toDomain() *domain.User {
	return &domain.User{
		ID:                recordKey(r.ID),
		Name:              r.Name,
		Email:             r.Email,
		Role:              domain.Role(r.Role),
		Phone:             r.Phone,
		Active:            r.Active,
		PasswordHash:      r.PasswordHash,
		ResetToken:        r.ResetToken,
		ResetTokenExpires: fromDateTimePtr(r.ResetTokenExpires),
		CreatedAt:         r.CreatedAt.Time,
		UpdatedAt:         r.UpdatedAt.Time,
	}
}

// UserStore implements domain.UserRepository on SurrealDB.
type UserStore struct {
	client  Client[userRow]
	counter Client[countRow]
}

// NewUserStore creates a new UserStore.
func NewUserStore(conn DBConnection) (*UserStore, error) {
	c, err := NewClient[userRow](conn)
	if err != nil {
		return nil, err
	}
	counter, err := newCounter(conn)
	if err != nil {
		return nil, err
	}
	return &UserStore{client: c, counter: counter}, nil
}

func (s *UserStore) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, NewDBError(ErrInvalidInput, "user cannot be nil")
	}
	now := time.Now().UTC()
	user.Email = domain.NormalizeEmail(user.Email)
	user.CreatedAt, user.UpdatedAt = now, now

	rid, _ := newRecordID(userTable)
	row, err := s.client.Create(ctx, rid, userToRow(user))
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	rid, err := recordID(userTable, id)
	if err != nil {
		return nil, err
	}
	row, err := s.client.Select(ctx, rid)
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findOne(ctx, "SELECT * FROM user WHERE email = $email", map[string]any{"email": domain.NormalizeEmail(email)})
}

func (s *UserStore) FindByResetToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, NewDBError(ErrNotFound, "empty reset token")
	}
	return s.findOne(ctx, "SELECT * FROM user WHERE reset_token = $token", map[string]any{"token": token})
}

func (s *UserStore) findOne(ctx context.Context, query string, params map[string]any) (*domain.User, error) {
	row, err := s.client.QueryOne(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, NewDBError(ErrNotFound, "user not found")
	}
	return row.toDomain(), nil
}

func (s *UserStore) List(ctx context.Context, filter domain.UserFilter) ([]*domain.User, int64, error) {
	w := newWhere()
	if filter.Search != "" {
		w.add("(string::lowercase(name) CONTAINS $search OR email CONTAINS $search)", "search", toLowerTrim(filter.Search))
	}
	if filter.Role != "" {
		w.add("role = $role", "role", string(filter.Role))
	}
	if filter.Active != nil {
		w.add("active = $active", "active", *filter.Active)
	}

	total, err := w.count(ctx, s.counter, userTable)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM user" + w.String() + " ORDER BY name ASC" + w.pageClause(filter.Page)
	rows, err := s.client.Query(ctx, query, w.params)
	if err != nil {
		return nil, 0, err
	}
	users := make([]*domain.User, 0, len(rows))
	for i := range rows {
		users = append(users, rows[i].toDomain())
	}
	return users, total, nil
}

func (s *UserStore) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil || user.ID == "" {
		return nil, NewDBError(ErrInvalidInput, "user and user ID are required for update")
	}
	rid, err := recordID(userTable, user.ID)
	if err != nil {
		return nil, err
	}
	user.Email = domain.NormalizeEmail(user.Email)
	user.UpdatedAt = time.Now().UTC()

	row, err := s.client.Replace(ctx, rid, userToRow(user))
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	rid, err := recordID(userTable, id)
	if err != nil {
		return err
	}
	if err := s.client.Delete(ctx, rid); err != nil {
		return err
	}
	// A deleted user's favorites go with them.
	err = s.client.Execute(ctx, "DELETE favorite WHERE user_id = $user", map[string]any{"user": recordKey(&rid)})
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}
