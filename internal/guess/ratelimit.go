package guess

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Limiter is a per-user sliding-window submission limiter. The backend is
// authoritative for attempt persistence, so the limiter only has to bound
// abuse from a single process's point of view.
type Limiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	clock  clockwork.Clock
	hits   map[string][]time.Time
}

// NewLimiter allows max submissions per user within window.
func NewLimiter(max int, window time.Duration, clock clockwork.Clock) *Limiter {
	return &Limiter{
		max:    max,
		window: window,
		clock:  clock,
		hits:   make(map[string][]time.Time),
	}
}

// Allow records a submission attempt and reports whether it is within the
// user's budget.
func (l *Limiter) Allow(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	cutoff := now.Add(-l.window)
	kept := l.hits[userID][:0]
	for _, t := range l.hits[userID] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= l.max {
		l.hits[userID] = kept
		return false
	}
	l.hits[userID] = append(kept, now)
	return true
}
