package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter enforces a per-identity request budget of points requests per
// window. State is in-memory and per-process: an identity's budget resets
// on restart, which matches the deployment model (one relay per instance).
type Limiter struct {
	points int
	window time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewLimiter creates a limiter allowing points requests per window for
// each distinct identity.
func NewLimiter(points int, window time.Duration) (*Limiter, error) {
	if points <= 0 {
		return nil, fmt.Errorf("%w: points=%d", ErrInvalidBudget, points)
	}
	if window <= 0 {
		return nil, fmt.Errorf("%w: window=%s", ErrInvalidBudget, window)
	}

	return &Limiter{
		points:   points,
		window:   window,
		limiters: make(map[string]*rate.Limiter),
	}, nil
}

// Consume spends one point of the identity's budget. Returns
// ErrLimitExceeded when the budget is exhausted; the caller maps that to
// HTTP 429 and must not retry on the client's behalf.
func (l *Limiter) Consume(identity string) error {
	if l.limiter(identity).Allow() {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrLimitExceeded, identity)
}

// limiter returns the identity's rate.Limiter, creating it on first sight.
// The bucket refills at points-per-window with a burst of the full budget,
// so a fresh identity may spend its whole budget at once and then drains
// into a sliding refill.
func (l *Limiter) limiter(identity string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[identity]
	if !ok {
		lim = rate.NewLimiter(rate.Every(l.window/time.Duration(l.points)), l.points)
		l.limiters[identity] = lim
	}
	return lim
}
