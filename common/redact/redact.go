// Package redact strips known secret values, such as the Matrix access token,
// from text before it is logged or echoed back to a room.
//
// Redaction is best-effort. It only knows the values it was given and works on
// string representations.
package redact

import (
	"log/slog"
	"strings"
)

const placeholder = "[REDACTED]"

// minSecretLen guards against redacting common short substrings.
const minSecretLen = 4

// String replaces every occurrence of each secret in s with [REDACTED].
func String(s string, secrets ...string) string {
	for _, v := range secrets {
		if len(v) < minSecretLen {
			continue
		}
		s = strings.ReplaceAll(s, v, placeholder)
	}
	return s
}

// Redactor holds a fixed set of secrets.
type Redactor struct {
	secrets []string
}

// New returns a Redactor for secrets. Empty and too-short values are dropped.
func New(secrets ...string) *Redactor {
	r := &Redactor{}
	for _, s := range secrets {
		if len(s) >= minSecretLen {
			r.secrets = append(r.secrets, s)
		}
	}
	return r
}

// Empty reports whether r has nothing to redact.
func (r *Redactor) Empty() bool {
	return r == nil || len(r.secrets) == 0
}

// String redacts s.
func (r *Redactor) String(s string) string {
	if r.Empty() {
		return s
	}
	return String(s, r.secrets...)
}

// ReplaceAttr is a slog.HandlerOptions.ReplaceAttr hook redacting string and
// error attribute values.
func (r *Redactor) ReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	if r.Empty() {
		return a
	}
	switch a.Value.Kind() {
	case slog.KindString:
		return slog.String(a.Key, r.String(a.Value.String()))
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok {
			return slog.String(a.Key, r.String(err.Error()))
		}
	}
	return a
}
