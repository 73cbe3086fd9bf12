package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/propdesk/internal/handlers"
	"github.com/nfrund/propdesk/internal/middleware"
	"github.com/nfrund/propdesk/internal/storage"
)

// authAttemptsPerMinute bounds login and password recovery per client IP.
const authAttemptsPerMinute = 10

// registerRoutes mounts the public routes and returns the authenticated
// /api group that modules add their routes to.
func (s *Server) registerRoutes(sessionMaxAge int) *echo.Group {
	s.E.GET("/health", s.health)

	authHandler := handlers.NewAuthHandler(s.Auth, sessionMaxAge)
	limited := middleware.RateLimiter(authAttemptsPerMinute)
	authGroup := s.E.Group("/api/auth")
	authGroup.POST("/login", authHandler.Login, limited)
	authGroup.POST("/forgot-password", authHandler.ForgotPassword, limited)
	authGroup.POST("/reset-password", authHandler.ResetPassword)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/me", authHandler.Me, middleware.Auth(s.Auth))

	api := s.E.Group("/api", middleware.Auth(s.Auth))
	files := storage.NewFileHandler(s.Uploader)
	api.GET("/files/:id", files.Download)
	return api
}

// health reports OK while the database answers.
func (s *Server) health(c echo.Context) error {
	if err := s.Repos.Ping(c.Request().Context()); err != nil {
		middleware.FromContext(c.Request().Context()).Error("Health check failed", "error", err)
		return c.String(http.StatusServiceUnavailable, "database unavailable")
	}
	return c.String(http.StatusOK, "OK")
}
