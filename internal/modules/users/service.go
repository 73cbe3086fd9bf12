package users

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/nfrund/propdesk/internal/auth"
	"github.com/nfrund/propdesk/internal/domain"
	"github.com/nfrund/propdesk/internal/middleware"
	"github.com/nfrund/propdesk/internal/pubsub"
)

// generatedPasswordBytes yields a 16 character hex password.
const generatedPasswordBytes = 8

const entityName = "user"

// CreateInput is the data needed to open an account.
type CreateInput struct {
	Name  string
	Email string
	Role  domain.Role
	Phone string
	// Password is generated and emailed to the user when empty.
	Password string
	Active   *bool
}

// UpdateInput changes an account. Nil fields are left untouched.
type UpdateInput struct {
	Name   *string
	Email  *string
	Role   *domain.Role
	Phone  *string
	Active *bool
}

// Service manages back-office accounts.
type Service struct {
	users     domain.UserRepository
	emailer   domain.EmailSender
	publisher pubsub.Publisher
	loginURL  string
}

// NewService creates a new user service. baseURL is the admin frontend
// address included in welcome emails.
func NewService(users domain.UserRepository, emailer domain.EmailSender, publisher pubsub.Publisher, baseURL string) *Service {
	return &Service{
		users:     users,
		emailer:   emailer,
		publisher: publisher,
		loginURL:  strings.TrimRight(baseURL, "/") + "/login",
	}
}

// List returns one page of users.
func (s *Service) List(ctx context.Context, filter domain.UserFilter) ([]*domain.User, int64, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Page = filter.Page.Normalize()
	return s.users.List(ctx, filter)
}

// Get returns a user by ID.
func (s *Service) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

// Create opens an account and sends the welcome email.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.User, error) {
	logger := middleware.FromContext(ctx)

	password := in.Password
	generated := password == ""
	if generated {
		var err error
		if password, err = auth.GenerateSecureToken(generatedPasswordBytes); err != nil {
			return nil, err
		}
	}

	user := &domain.User{
		Name:   strings.TrimSpace(in.Name),
		Email:  domain.NormalizeEmail(in.Email),
		Role:   in.Role,
		Phone:  strings.TrimSpace(in.Phone),
		Active: in.Active == nil || *in.Active,
	}
	verr := &domain.ValidationError{}
	if err := user.Validate(); err != nil {
		if !errors.As(err, &verr) {
			return nil, err
		}
	}
	if err := auth.ValidatePassword(password); err != nil {
		var perr *domain.ValidationError
		if errors.As(err, &perr) {
			verr.Merge(perr)
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if err := s.ensureEmailFree(ctx, user.Email, ""); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	logger.Info("User created", slog.String("user_id", created.ID), slog.String("role", string(created.Role)))

	s.sendWelcome(ctx, created, password, generated)
	pubsub.Announce(ctx, s.publisher, entityName, domain.ActionCreated, created.ID, created.Name)
	return created, nil
}

// Update applies in to the user with id. The signed-in admin cannot
// deactivate their own account.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Active != nil && !*in.Active && domain.ActorID(ctx) == id {
		return nil, fmt.Errorf("you cannot deactivate your own account: %w", domain.ErrForbidden)
	}

	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		email := domain.NormalizeEmail(*in.Email)
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email, id); err != nil {
				return nil, err
			}
		}
		user.Email = email
	}
	if in.Role != nil {
		user.Role = *in.Role
	}
	if in.Phone != nil {
		user.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Active != nil {
		user.Active = *in.Active
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return nil, err
	}
	pubsub.Announce(ctx, s.publisher, entityName, domain.ActionUpdated, updated.ID, updated.Name)
	return updated, nil
}

// Delete removes an account. The signed-in admin cannot delete themselves.
func (s *Service) Delete(ctx context.Context, id string) error {
	if domain.ActorID(ctx) == id {
		return fmt.Errorf("you cannot delete your own account: %w", domain.ErrForbidden)
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	middleware.FromContext(ctx).Info("User deleted", slog.String("deleted_user_id", id))
	pubsub.Announce(ctx, s.publisher, entityName, domain.ActionDeleted, id, user.Name)
	return nil
}

// SetPassword replaces a user's password on behalf of an admin. An empty
// password is generated. The user is notified by email either way and any
// pending reset link is invalidated.
func (s *Service) SetPassword(ctx context.Context, id, password string) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}

	generated := password == ""
	if generated {
		if password, err = auth.GenerateSecureToken(generatedPasswordBytes); err != nil {
			return err
		}
	}
	if err := auth.ValidatePassword(password); err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	user.ResetToken = ""
	user.ResetTokenExpires = nil
	if _, err := s.users.Update(ctx, user); err != nil {
		return err
	}

	body := `<p>Hola ` + html.EscapeString(user.Name) + `,</p><p>An administrator changed your PropDesk password.</p>`
	if generated {
		body += `<p>Your new password is <strong>` + html.EscapeString(password) + `</strong>. Please change it after signing in.</p>`
	}
	if err := s.emailer.Send(user.Email, "Your password was changed", body); err != nil {
		middleware.FromContext(ctx).Error("Failed to send password change email",
			slog.String("user_id", user.ID), slog.String("error", err.Error()))
	}
	pubsub.Announce(ctx, s.publisher, entityName, domain.ActionUpdated, user.ID, user.Name)
	return nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email, exceptID string) error {
	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID == exceptID:
		return nil
	default:
		return fmt.Errorf("email %s: %w", email, domain.ErrAlreadyExists)
	}
}

func (s *Service) sendWelcome(ctx context.Context, user *domain.User, password string, generated bool) {
	body := fmt.Sprintf(`<p>Hola %s,</p><p>An account was created for you on PropDesk.</p><p>Sign in at <a href="%s">%s</a> with your email address.</p>`,
		html.EscapeString(user.Name), html.EscapeString(s.loginURL), html.EscapeString(s.loginURL))
	if generated {
		body += `<p>Your temporary password is <strong>` + html.EscapeString(password) + `</strong>.</p>`
	}
	if err := s.emailer.Send(user.Email, "Welcome to PropDesk", body); err != nil {
		middleware.FromContext(ctx).Error("Failed to send welcome email",
			slog.String("user_id", user.ID), slog.String("error", err.Error()))
	}
}
