package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/propdesk/internal/auth"
	"github.com/nfrund/propdesk/internal/middleware"
)

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest is the body of POST /api/auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest is the body of POST /api/auth/reset-password.
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	svc *auth.Service
	ttl int
}

// NewAuthHandler creates a new AuthHandler. sessionMaxAge is the lifetime of
// the session cookie in seconds and should match the token TTL.
func NewAuthHandler(svc *auth.Service, sessionMaxAge int) *AuthHandler {
	return &AuthHandler{svc: svc, ttl: sessionMaxAge}
}

// Login checks the credentials, stores the token in the session cookie and
// returns it for clients that prefer the Authorization header.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	if err := h.saveSession(c, result.Token, h.ttl); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.saveSession(c, "", -1); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "You have been logged out."})
}

// Me returns the signed-in user.
func (h *AuthHandler) Me(c echo.Context) error {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	user, err := h.svc.Me(c.Request().Context(), current.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// ForgotPassword starts the password reset flow. The response is the same
// whether or not the email belongs to an account.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.svc.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{
		Message: "If an account with that email exists, a password reset link has been sent.",
	})
}

// ResetPassword sets a new password using a reset token.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.svc.ResetPassword(c.Request().Context(), req.Token, req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Your password has been reset. You can now log in."})
}

func (h *AuthHandler) saveSession(c echo.Context, token string, maxAge int) error {
	sess, err := session.Get(middleware.SessionName, c)
	if err != nil {
		// No session store configured: header-only clients still work.
		middleware.FromContext(c.Request().Context()).Debug("Session store unavailable", slog.String("error", err.Error()))
		return nil
	}
	sess.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		// Secure only over TLS so local development keeps working.
		Secure:   c.Request().TLS != nil,
		SameSite: http.SameSiteLaxMode,
	}
	if token == "" {
		delete(sess.Values, middleware.SessionTokenKey)
	} else {
		sess.Values[middleware.SessionTokenKey] = token
	}
	return sess.Save(c.Request(), c.Response())
}
