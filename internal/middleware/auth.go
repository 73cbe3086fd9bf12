package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/propdesk/internal/domain"
)

const (
	UserContextKey = "user"

	// SessionName is the gorilla session that carries the access token for
	// browser clients.
	SessionName     = "propdesk-session"
	SessionTokenKey = "token"
)

// Authenticator resolves an access token to the user it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// Auth creates a middleware that protects routes that require authentication.
// The token is read from an "Authorization: Bearer" header first and from the
// session cookie otherwise.
func Auth(authn Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request())
			if token == "" {
				token = sessionToken(c)
			}
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}

			ctx := c.Request().Context()
			user, err := authn.Authenticate(ctx, token)
			if err != nil || user == nil {
				if err != nil {
					FromContext(ctx).Debug("Rejected access token", slog.String("error", err.Error()))
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired session")
			}

			c.Set(UserContextKey, user)
			logger := FromContext(ctx).With("user_id", user.ID)
			ctx = domain.WithActor(WithLogger(ctx, logger), user)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// RequireRole rejects users whose role is not one of roles. It must run after Auth.
func RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}
			for _, role := range roles {
				if user.Role == role {
					return next(c)
				}
			}
			FromContext(c.Request().Context()).Warn("Role check failed",
				slog.String("role", string(user.Role)),
				slog.String("path", c.Path()))
			return echo.NewHTTPError(http.StatusForbidden, "You do not have permission to perform this action")
		}
	}
}

// CurrentUser returns the user stored by Auth.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(UserContextKey).(*domain.User)
	return user, ok && user != nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get(echo.HeaderAuthorization)
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func sessionToken(c echo.Context) string {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return ""
	}
	token, _ := sess.Values[SessionTokenKey].(string)
	return token
}
