package logging

import (
	"log/slog"
	"os"
	"strings"
)

// New initializes a new slog logger and sets it as the default.
// It reads the LOG_FORMAT environment variable to determine the output format.
// Defaults to "text" for development, can be set to "json" for production.
// LOG_LEVEL accepts debug, info, warn or error and defaults to debug.
func New() {
	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "text" // Default to text for development
	}
	level := ParseLevel(os.Getenv("LOG_LEVEL"))

	var handler slog.Handler
	switch logFormat {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:     level,
			AddSource: true, // Adds source file and line number
		})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
}

// ParseLevel maps a level name to a slog.Level, falling back to debug.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
