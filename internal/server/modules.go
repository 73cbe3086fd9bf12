package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"
)

// bootModules registers every module's services first so that Boot can
// resolve services contributed by any other module.
func (s *Server) bootModules(ctx context.Context, api *echo.Group) error {
	for _, m := range s.modules {
		slog.Info("Registering module", "module", m.Name())
		if err := m.Register(s.Registry); err != nil {
			return fmt.Errorf("register module %s: %w", m.Name(), err)
		}
	}
	for _, m := range s.modules {
		if err := m.Boot(ctx, api, s.Registry); err != nil {
			return fmt.Errorf("boot module %s: %w", m.Name(), err)
		}
	}
	slog.Info("Registered services", "services", s.Registry.Names())
	return nil
}

// shutdownModules stops modules in reverse boot order.
func (s *Server) shutdownModules(ctx context.Context) {
	for i := len(s.modules) - 1; i >= 0; i-- {
		m := s.modules[i]
		if err := m.Shutdown(ctx); err != nil {
			slog.Error("Module shutdown failed", "module", m.Name(), "error", err)
		}
	}
}
