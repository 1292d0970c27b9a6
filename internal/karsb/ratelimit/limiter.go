// Package ratelimit caps how many chat queries one sender may make per time
// window.
package ratelimit

import (
	"sync"
	"time"
)

const (
	// DefaultLimit is the per-sender query budget when none is configured.
	DefaultLimit = 30

	defaultWindow = time.Minute

	// sweepEvery is how many Allow calls pass between full sweeps of idle
	// senders.
	sweepEvery = 256
)

// Limiter is a per-sender sliding-window limiter. It keeps the timestamps of
// accepted calls inside the window, so memory is O(limit) per active sender.
// Idle senders are dropped when they call again and by a periodic sweep in
// Allow. Safe for concurrent use.
type Limiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	calls  map[string][]time.Time
	now    func() time.Time
	ticks  int
}

// New returns a Limiter allowing limit calls per sender within window.
// Non-positive arguments select DefaultLimit and one minute.
func New(limit int, window time.Duration) *Limiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = defaultWindow
	}
	return &Limiter{
		limit:  limit,
		window: window,
		calls:  make(map[string][]time.Time),
		now:    time.Now,
	}
}

// WithClock replaces the time source. Tests only.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Allow records a call for sender and reports whether it fits the budget.
// Rejected calls are not recorded.
func (l *Limiter) Allow(sender string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.ticks++
	if l.ticks >= sweepEvery {
		l.ticks = 0
		l.sweep(now)
	}
	valid := l.prune(sender, now)
	if len(valid) >= l.limit {
		return false
	}
	l.calls[sender] = append(valid, now)
	return true
}

// Senders returns the number of senders with calls inside the window.
func (l *Limiter) Senders() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweep(l.now())
	return len(l.calls)
}

// sweep forgets every sender with no calls inside the window. Caller holds
// l.mu.
func (l *Limiter) sweep(now time.Time) {
	for s := range l.calls {
		l.prune(s, now)
	}
}

// prune drops timestamps older than the window and forgets idle senders.
// Caller holds l.mu.
func (l *Limiter) prune(sender string, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	existing := l.calls[sender]
	valid := existing[:0]
	for _, t := range existing {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		delete(l.calls, sender)
		return nil
	}
	l.calls[sender] = valid
	return valid
}
