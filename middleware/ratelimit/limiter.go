package ratelimit

import (
	"sync"
	"time"
)

// Limiter implements sliding window rate limiting over an in-process
// timestamp map. State is process-local: each instance owns its windows and
// is injected where needed, with lifecycle equal to the process.
type Limiter struct {
	mu      sync.Mutex
	windows map[string][]int64

	limit  int
	window time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// NewLimiter creates a rate limiter allowing limit requests per window.
func NewLimiter(limit int, window time.Duration) *Limiter {
	return &Limiter{
		windows: make(map[string][]int64),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Result contains the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
	Limit     int
}

// Allow checks whether a request under key is within the limit, recording
// it when allowed. Expired timestamps are pruned on every check so an idle
// key's window eventually empties and is dropped.
func (l *Limiter) Allow(key string) Result {
	now := l.now()
	cutoff := now.Add(-l.window).UnixMilli()

	l.mu.Lock()
	defer l.mu.Unlock()

	window := l.windows[key]
	kept := window[:0]
	for _, ts := range window {
		if ts > cutoff {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= l.limit {
		l.windows[key] = kept
		return Result{
			Allowed:   false,
			Remaining: 0,
			ResetAt:   time.UnixMilli(kept[0]).Add(l.window),
			Limit:     l.limit,
		}
	}

	kept = append(kept, now.UnixMilli())
	l.windows[key] = kept
	return Result{
		Allowed:   true,
		Remaining: l.limit - len(kept),
		ResetAt:   now.Add(l.window),
		Limit:     l.limit,
	}
}

// Reset clears the window for a specific key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}
