// Package logger provides structured logging setup for the gateway.
package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/Strob0t/toolgate/internal/config"
	"github.com/Strob0t/toolgate/internal/redact"
)

// New creates a *slog.Logger from the given Logging config and redaction
// patterns. Output is JSON to stdout with a "service" attribute on every
// record. Every record passes through the redaction filter before it
// reaches the sink. When cfg.Async is true the handler writes via a
// buffered channel; the caller must call Closer.Close() on shutdown to
// flush remaining records.
func New(cfg config.Logging, redactPatterns []string) (*slog.Logger, Closer) {
	level := parseLevel(cfg.Level)

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	var closer Closer = nopCloser{}
	var h slog.Handler = redact.NewHandler(handler, redact.New(redactPatterns))
	if cfg.Async {
		async := NewAsyncHandler(h, 10000, 4)
		h = async
		closer = async
	}

	return slog.New(h).With("service", cfg.Service), closer
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
