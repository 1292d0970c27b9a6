// Package retry re-runs an operation with exponential backoff until it
// succeeds, fails permanently, or runs out of attempts.
//
//	err := retry.Do(ctx, retry.Config{MaxAttempts: 3}, func() error {
//	    resp, err := client.Get(url)
//	    if err != nil {
//	        return err // transient
//	    }
//	    if resp.StatusCode == http.StatusNotFound {
//	        return retry.Permanent(errNotFound)
//	    }
//	    return nil
//	})
package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Config controls the retry loop.
type Config struct {
	// MaxAttempts counts the first call. Values below 1 mean a single attempt.
	MaxAttempts int
	// InitialDelay is the pause before the second attempt; each later pause
	// doubles, capped at MaxDelay.
	InitialDelay time.Duration
	MaxDelay     time.Duration
	// ShouldRetry classifies errors that are not already marked Permanent.
	// Nil retries every such error.
	ShouldRetry func(err error) bool
}

// DefaultConfig suits short HTTP calls.
var DefaultConfig = Config{
	MaxAttempts:  3,
	InitialDelay: 200 * time.Millisecond,
	MaxDelay:     2 * time.Second,
}

type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err so Do returns it immediately. Do unwraps the marker, so
// callers see err itself. Permanent(nil) is nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do calls fn until it returns nil, returns a Permanent error, ShouldRetry
// rejects its error, or cfg.MaxAttempts is spent. The last error from fn is
// returned; a cancelled ctx is joined onto it.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = DefaultConfig.InitialDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultConfig.MaxDelay
	}

	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return errors.Join(lastErr, err)
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		var p *permanentError
		if errors.As(lastErr, &p) {
			return p.err
		}
		if cfg.ShouldRetry != nil && !cfg.ShouldRetry(lastErr) {
			return lastErr
		}
		if attempt >= cfg.MaxAttempts {
			return lastErr
		}

		slog.Debug("retry: attempt failed",
			"attempt", attempt, "max", cfg.MaxAttempts, "err", lastErr, "delay", delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(lastErr, ctx.Err())
		case <-timer.C:
		}

		delay = min(delay*2, cfg.MaxDelay)
	}
}
