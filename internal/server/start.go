package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const shutdownTimeout = 10 * time.Second

// Start runs the HTTP server until SIGINT or SIGTERM, then shuts down
// gracefully.
func (s *Server) Start(addr string) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "addr", addr)
		if err := s.E.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		_ = s.Shutdown(context.Background())
		return err
	case sig := <-quit:
		slog.Info("Shutting down server", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(ctx)
}

// Shutdown stops accepting requests, then stops modules and releases the
// bus, tracer and database.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if err := s.E.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	s.shutdownModules(ctx)
	if err := s.close(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
