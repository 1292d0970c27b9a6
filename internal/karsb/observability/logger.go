// Package observability configures structured logging for kARsb.
//
// Every log line emitted while answering a query carries the query's trace_id,
// and configured secrets are redacted before they reach the handler.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/bdobrica/karsb/common/redact"
	"github.com/bdobrica/karsb/common/trace"
)

// ParseLevel maps "debug", "warn" and "error" to slog levels; anything else is
// Info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// NewLogger builds a text or JSON ("json") logger writing to w.
func NewLogger(w io.Writer, level, format string, secrets ...string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       ParseLevel(level),
		ReplaceAttr: redact.New(secrets...).ReplaceAttr,
	}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Setup installs a stdout logger as the slog default.
func Setup(level, format string, secrets ...string) {
	slog.SetDefault(NewLogger(os.Stdout, level, format, secrets...))
}

// WithTrace returns the default logger with trace_id from ctx attached.
func WithTrace(ctx context.Context) *slog.Logger {
	id := trace.FromContext(ctx)
	if id == "" {
		return slog.Default()
	}
	return slog.With("trace_id", id)
}
