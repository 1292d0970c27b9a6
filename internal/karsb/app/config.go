package app

import (
	"errors"
	"fmt"

	"github.com/bdobrica/karsb/common/environment"
	"github.com/bdobrica/karsb/internal/karsb/clan"
	"github.com/bdobrica/karsb/internal/karsb/dataset"
	"github.com/bdobrica/karsb/internal/karsb/matrix"
	"github.com/bdobrica/karsb/internal/karsb/ratelimit"
)

// Config holds application configuration.
type Config struct {
	Dataset dataset.Config
	// DBPath enables the SQLite query audit log and persisted Matrix sync
	// state. Empty disables both.
	DBPath string
	// HTTPAddr enables the HTTP server (/health, /status, /chat).
	HTTPAddr string
	// RateLimit is the number of chat queries per sender per minute.
	RateLimit int
	// AdminSenders are the Matrix IDs allowed to run /karsb operator
	// commands. Empty allows everyone.
	AdminSenders []string
	// Matrix is nil when the Matrix transport is disabled.
	Matrix *matrix.Config

	LogLevel  string
	LogFormat string
}

// LoadConfig reads KARSB_* and MATRIX_* environment variables.
func LoadConfig() (*Config, error) {
	env := environment.New("KARSB")

	ds := dataset.DefaultConfig()
	ds.BaseURL = env.StringOr("DATA_BASE_URL", ds.BaseURL)
	ds.HeadTimeout = env.DurationOr("HEAD_TIMEOUT", ds.HeadTimeout)
	ds.GetTimeout = env.DurationOr("GET_TIMEOUT", ds.GetTimeout)
	ds.ExistsCacheSize = env.IntOr("EXISTS_CACHE_SIZE", ds.ExistsCacheSize)
	ds.ContentCacheSize = env.IntOr("CONTENT_CACHE_SIZE", ds.ContentCacheSize)
	ds.Attempts = env.IntOr("FETCH_ATTEMPTS", ds.Attempts)

	var err error
	if ds.FallbackMonth, err = periodFromEnv(env, "FALLBACK_MONTH", clan.Single); err != nil {
		return nil, err
	}
	if ds.FallbackRange, err = periodFromEnv(env, "FALLBACK_RANGE", clan.Range); err != nil {
		return nil, err
	}

	cfg := &Config{
		Dataset:      ds,
		DBPath:       env.StringOr("DB_PATH", ""),
		HTTPAddr:     env.StringOr("HTTP_ADDR", ""),
		RateLimit:    env.IntOr("RATE_LIMIT", ratelimit.DefaultLimit),
		AdminSenders: env.ListOr("ADMIN_SENDERS", nil),
		LogLevel:     env.StringOr("LOG_LEVEL", "info"),
		LogFormat:    env.StringOr("LOG_FORMAT", "text"),
	}

	mx := environment.New("MATRIX")
	m := &matrix.Config{
		Homeserver:  mx.StringOr("HOMESERVER", ""),
		UserID:      mx.StringOr("USER_ID", ""),
		AccessToken: mx.StringOr("ACCESS_TOKEN", ""),
		Rooms:       mx.ListOr("ROOMS", nil),
	}
	if m.Homeserver != "" && m.UserID != "" && m.AccessToken != "" && len(m.Rooms) > 0 {
		cfg.Matrix = m
	} else if m.Homeserver != "" || m.UserID != "" || m.AccessToken != "" || len(m.Rooms) > 0 {
		return nil, errors.New("incomplete Matrix config: set all of MATRIX_HOMESERVER, MATRIX_USER_ID, MATRIX_ACCESS_TOKEN and MATRIX_ROOMS")
	}

	return cfg, nil
}

// Validate checks that the bot has somewhere to listen.
func (c *Config) Validate() error {
	if c.Matrix == nil && c.HTTPAddr == "" {
		return errors.New("nothing to serve: configure Matrix or set KARSB_HTTP_ADDR")
	}
	return nil
}

// Secrets returns configured values that must never appear in logs.
func (c *Config) Secrets() []string {
	if c.Matrix == nil {
		return nil
	}
	return []string{c.Matrix.AccessToken}
}

func periodFromEnv(env environment.Reader, name string, kind clan.PeriodKind) (clan.Period, error) {
	v := env.StringOr(name, "")
	if v == "" {
		return clan.Period{}, nil
	}
	p, err := clan.ParsePeriod(v)
	if err != nil {
		return clan.Period{}, fmt.Errorf("%s: %w", env.Key(name), err)
	}
	if p.Kind != kind {
		return clan.Period{}, fmt.Errorf("%s: %s is not a %s period", env.Key(name), v, kind)
	}
	return p, nil
}
