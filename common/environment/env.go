// Package environment reads service configuration from environment variables.
//
// A Reader namespaces every lookup under a prefix, so New("KARSB") resolves
// "HTTP_ADDR" to KARSB_HTTP_ADDR. Helpers return a default instead of failing
// on unset or malformed values.
package environment

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Reader looks up prefixed environment variables.
type Reader struct {
	prefix string
}

// New returns a Reader for variables named PREFIX_NAME. An empty prefix reads
// names unchanged.
func New(prefix string) Reader {
	return Reader{prefix: strings.TrimSuffix(prefix, "_")}
}

// Key returns the full variable name for name.
func (r Reader) Key(name string) string {
	if r.prefix == "" {
		return name
	}
	return r.prefix + "_" + name
}

// StringOr returns the variable's value, or def when unset or empty.
func (r Reader) StringOr(name, def string) string {
	if v := os.Getenv(r.Key(name)); v != "" {
		return v
	}
	return def
}

// IntOr parses the variable as a decimal integer.
func (r Reader) IntOr(name string, def int) int {
	v := os.Getenv(r.Key(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// DurationOr parses the variable with time.ParseDuration ("3s", "500ms").
func (r Reader) DurationOr(name string, def time.Duration) time.Duration {
	v := os.Getenv(r.Key(name))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return d
}

// ListOr splits the variable on commas, trimming and dropping empty items.
func (r Reader) ListOr(name string, def []string) []string {
	v := os.Getenv(r.Key(name))
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
