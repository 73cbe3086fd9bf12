package domain

import (
	"context"
	"strings"
	"time"
)

// Role controls what a back-office user may do.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleAgent Role = "agent"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleAgent
}

// User represents a back-office account.
type User struct {
	ID                string     `json:"id"`
	Name              string     `json:"name" validate:"required,max=120"`
	Email             string     `json:"email" validate:"required,email,max=254"`
	Role              Role       `json:"role" validate:"required,oneof=admin agent"`
	Phone             string     `json:"phone,omitempty" validate:"max=30"`
	Active            bool       `json:"active"`
	PasswordHash      string     `json:"-"`
	ResetToken        string     `json:"-"`
	ResetTokenExpires *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Validate runs validation checks on the User struct using the defined tags.
func (u *User) Validate() error {
	return ValidateStruct(u)
}

// NormalizeEmail lowercases and trims an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserFilter narrows a user listing.
type UserFilter struct {
	Search string
	Role   Role
	Active *bool
	Page   Page
}

// UserRepository defines the contract for user data storage operations.
// It lives in the domain because it's a requirement OF the domain, not
// of the database implementation.
type UserRepository interface {
	Create(ctx context.Context, user *User) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByResetToken(ctx context.Context, token string) (*User, error)
	List(ctx context.Context, filter UserFilter) ([]*User, int64, error)
	Update(ctx context.Context, user *User) (*User, error)
	Delete(ctx context.Context, id string) error
}

// EmailSender delivers account emails: welcome messages with the initial
// password and password reset links. The body is HTML.
type EmailSender interface {
	Send(to, subject, htmlBody string) error
}
