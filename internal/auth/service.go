package auth

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/nfrund/propdesk/internal/domain"
	"github.com/nfrund/propdesk/internal/middleware"
)

// ResetTokenTTL is how long a password reset link stays valid.
const ResetTokenTTL = 24 * time.Hour

// resetTokenBytes is the entropy of a reset token before hex encoding.
const resetTokenBytes = 32

// ErrAccountDisabled is returned when an inactive user tries to sign in.
var ErrAccountDisabled = fmt.Errorf("account is disabled: %w", domain.ErrForbidden)

// Session is the result of a successful login.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

// Service implements sign-in and password recovery.
type Service struct {
	users   domain.UserRepository
	tokens  *Tokens
	emailer domain.EmailSender
	baseURL string
	now     func() time.Time
}

// NewService creates a new auth service. baseURL is the address of the admin
// frontend and is used to build password reset links.
func NewService(users domain.UserRepository, tokens *Tokens, emailer domain.EmailSender, baseURL string) *Service {
	return &Service{
		users:   users,
		tokens:  tokens,
		emailer: emailer,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// Login checks the credentials and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	logger := middleware.FromContext(ctx)

	user, err := s.users.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Failed login attempt", slog.String("email", email), slog.String("reason", "unknown email"))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !CheckPassword(user.PasswordHash, password) {
		logger.Warn("Failed login attempt", slog.String("email", email), slog.String("reason", "wrong password"))
		return nil, domain.ErrInvalidCredentials
	}
	if !user.Active {
		logger.Warn("Login attempt on disabled account", slog.String("user_id", user.ID))
		return nil, ErrAccountDisabled
	}

	token, expires, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	logger.Info("User logged in", slog.String("user_id", user.ID))
	return &Session{Token: token, ExpiresAt: expires, User: user}, nil
}

// Authenticate resolves an access token to an active user.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", ErrInvalidToken)
		}
		return nil, err
	}
	if !user.Active {
		return nil, fmt.Errorf("%w: account is disabled", ErrInvalidToken)
	}
	return user, nil
}

// Me returns the current state of the signed-in user.
func (s *Service) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

// ForgotPassword stores a reset token for the account and emails a link to it.
// Unknown or disabled accounts are ignored so callers cannot tell which emails exist.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	logger := middleware.FromContext(ctx)

	user, err := s.users.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Info("Password reset requested for unknown email, hiding from user", slog.String("email", email))
			return nil
		}
		return err
	}
	if !user.Active {
		logger.Info("Password reset requested for disabled account", slog.String("user_id", user.ID))
		return nil
	}

	token, err := GenerateSecureToken(resetTokenBytes)
	if err != nil {
		return err
	}
	expires := s.now().UTC().Add(ResetTokenTTL)
	user.ResetToken = token
	user.ResetTokenExpires = &expires
	if _, err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	link := s.baseURL + "/reset-password?token=" + url.QueryEscape(token)
	body := fmt.Sprintf(`<p>Hola %s,</p><p>Click the link below to reset your password. It expires in 24 hours.</p><p><a href="%s">Reset Password</a></p>`,
		html.EscapeString(user.Name), html.EscapeString(link))
	if err := s.emailer.Send(user.Email, "Reset Your Password", body); err != nil {
		// The token is stored; the user can ask again.
		logger.Error("Failed to send password reset email", slog.String("user_id", user.ID), slog.String("error", err.Error()))
	}
	return nil
}

// ResetPassword sets a new password for the account holding token and
// invalidates the token.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.ErrInvalidResetToken
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.users.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidResetToken
		}
		return err
	}
	if user.ResetTokenExpires == nil || s.now().After(*user.ResetTokenExpires) {
		return domain.ErrInvalidResetToken
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.ResetToken = ""
	user.ResetTokenExpires = nil
	if _, err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	middleware.FromContext(ctx).Info("Password reset completed", slog.String("user_id", user.ID))
	return nil
}
