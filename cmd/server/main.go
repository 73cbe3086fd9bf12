package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/nfrund/propdesk/internal/app"
	"github.com/nfrund/propdesk/internal/config"
	"github.com/nfrund/propdesk/internal/logging"
	"github.com/nfrund/propdesk/internal/server"
)

func main() {
	// config.New reads .env, which may set LOG_LEVEL and LOG_FORMAT.
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logging.New()

	s, err := server.New(context.Background(), cfg, app.NewModules())
	if err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}

	if err := s.Start(cfg.GetServerAddr()); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}
