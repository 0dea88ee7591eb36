package auth

import (
	"sync"
	"time"
)

// Default limiter configuration constants.
const (
	defaultLimitWindow = time.Minute
	defaultLimitMax    = 10
)

// RateLimiter is a fixed-window login attempt limiter keyed by caller
// (typically the source IP).
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	window  time.Duration
	max     int
	now     func() time.Time
}

type windowEntry struct {
	count int
	reset time.Time
}

// LimiterOption applies a configuration option to the RateLimiter.
type LimiterOption func(*RateLimiter)

// WithLimit sets the maximum attempts per window.
func WithLimit(max int) LimiterOption {
	return func(l *RateLimiter) {
		if max > 0 {
			l.max = max
		}
	}
}

// WithWindow sets the window size.
func WithWindow(d time.Duration) LimiterOption {
	return func(l *RateLimiter) {
		if d > 0 {
			l.window = d
		}
	}
}

// WithNow overrides the limiter's time source.
func WithNow(now func() time.Time) LimiterOption {
	return func(l *RateLimiter) {
		if now != nil {
			l.now = now
		}
	}
}

// NewRateLimiter creates a limiter with configuration options.
func NewRateLimiter(opts ...LimiterOption) *RateLimiter {
	l := &RateLimiter{
		entries: make(map[string]*windowEntry),
		window:  defaultLimitWindow,
		max:     defaultLimitMax,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow records an attempt for key and reports whether it is within the
// window budget.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok || now.After(e.reset) {
		l.entries[key] = &windowEntry{count: 1, reset: now.Add(l.window)}
		return true
	}
	e.count++
	return e.count <= l.max
}
