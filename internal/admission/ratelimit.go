package admission

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kioskbooth/portraits/pkg/models"
)

const defaultSweepInterval = 5 * time.Minute

type rateLimitEntry struct {
	count   int
	resetAt time.Time
}

// RateLimiter is a sliding-window counter keyed by client identifier.
// Expired windows are reset lazily on the next request and pruned by a
// periodic background sweep; the sweep is a memory bound, not a correctness
// requirement.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*rateLimitEntry

	window     time.Duration
	sweepEvery time.Duration
	now        func() time.Time
}

// NewRateLimiter creates a RateLimiter with the given window.
func NewRateLimiter(window time.Duration) *RateLimiter {
	return &RateLimiter{
		entries:    make(map[string]*rateLimitEntry),
		window:     window,
		sweepEvery: defaultSweepInterval,
		now:        time.Now,
	}
}

// Allow records one request for identifier and fails with RATE_LIMITED once
// more than limit requests land inside the active window.
func (l *RateLimiter) Allow(identifier string, limit int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.entries[identifier]
	if !ok || now.After(entry.resetAt) {
		l.entries[identifier] = &rateLimitEntry{count: 1, resetAt: now.Add(l.window)}
		return nil
	}

	if entry.count >= limit {
		return models.NewDomainError(models.CodeRateLimited, "Too many requests. Please try again later.")
	}
	entry.count++
	return nil
}

// Run sweeps expired entries until ctx is cancelled. Call from a goroutine.
func (l *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(l.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.sweep(); n > 0 {
				slog.Debug("rate limit sweep", "pruned", n)
			}
		}
	}
}

func (l *RateLimiter) sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	pruned := 0
	for id, entry := range l.entries {
		if now.After(entry.resetAt) {
			delete(l.entries, id)
			pruned++
		}
	}
	return pruned
}
