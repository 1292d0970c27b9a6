// Package trace tags a request with an identifier that follows it from the
// transport through the dataset fetch to the audit log.
package trace

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Prefix starts every generated trace ID.
const Prefix = "t_"

type traceKey struct{}

// GenerateID returns a new random trace ID such as "t_3f2a...".
func GenerateID() string {
	return Prefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Valid reports whether id looks like a value produced by GenerateID.
func Valid(id string) bool {
	rest, ok := strings.CutPrefix(id, Prefix)
	if !ok || len(rest) != 32 {
		return false
	}
	_, err := uuid.Parse(rest)
	return err == nil
}

// WithTraceID stores id in ctx.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}

// FromContext returns the trace ID in ctx, or "".
func FromContext(ctx context.Context) string {
	if v, ok := ctx.Value(traceKey{}).(string); ok {
		return v
	}
	return ""
}

// Ensure returns ctx unchanged when it already carries a trace ID, otherwise a
// child context with a fresh one. The ID in effect is returned as well.
func Ensure(ctx context.Context) (context.Context, string) {
	if id := FromContext(ctx); id != "" {
		return ctx, id
	}
	id := GenerateID()
	return WithTraceID(ctx, id), id
}
