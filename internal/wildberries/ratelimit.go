package wildberries

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrDailyLimitReached is returned when the rolling 24-hour search budget is
// exhausted.
var ErrDailyLimitReached = errors.New("daily search limit reached")

const quotaWindow = 24 * time.Hour

// RateLimiter paces search calls with a token bucket and, when maxDaily is
// positive, caps them per rolling 24-hour window. The window opens on
// construction and restarts the first time it is consulted after expiry.
type RateLimiter struct {
	limiter *rate.Limiter
	nowFunc func() time.Time

	mu       sync.Mutex
	used     int64
	maxDaily int64
	resetAt  time.Time
}

// Quota is a snapshot of the daily budget. Limit is zero when unlimited.
type Quota struct {
	Limit     int64     `json:"daily_limit"`
	Used      int64     `json:"daily_used"`
	Remaining int64     `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

// RateLimiterOption configures the RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithNowFunc overrides the clock for testing.
func WithNowFunc(f func() time.Time) RateLimiterOption {
	return func(r *RateLimiter) {
		r.nowFunc = f
	}
}

// NewRateLimiter creates a limiter allowing perSecond calls with the given
// burst and at most maxDaily calls per window (0 disables the daily cap).
func NewRateLimiter(perSecond float64, burst int, maxDaily int64, opts ...RateLimiterOption) *RateLimiter {
	r := &RateLimiter{
		limiter:  rate.NewLimiter(rate.Limit(perSecond), burst),
		maxDaily: maxDaily,
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.resetAt = r.nowFunc().Add(quotaWindow)
	return r
}

// Wait blocks until a call is allowed or ctx is done. The daily budget is
// charged before waiting on the token bucket.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.reserveDaily(); err != nil {
		return err
	}

	if err := r.limiter.Wait(ctx); err != nil {
		r.refundDaily()
		return fmt.Errorf("rate limiter wait: %w", err)
	}
	return nil
}

// Quota reports the current daily budget.
func (r *RateLimiter) Quota() Quota {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rollWindow()

	q := Quota{Limit: r.maxDaily, Used: r.used, ResetAt: r.resetAt}
	if r.maxDaily > 0 {
		q.Remaining = max(r.maxDaily-r.used, 0)
	}
	return q
}

func (r *RateLimiter) reserveDaily() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rollWindow()

	if r.maxDaily > 0 && r.used >= r.maxDaily {
		return fmt.Errorf("%w (%d/%d)", ErrDailyLimitReached, r.used, r.maxDaily)
	}
	r.used++
	return nil
}

func (r *RateLimiter) refundDaily() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.used > 0 {
		r.used--
	}
}

// rollWindow must be called with mu held.
func (r *RateLimiter) rollWindow() {
	now := r.nowFunc()
	if now.After(r.resetAt) {
		r.used = 0
		r.resetAt = now.Add(quotaWindow)
	}
}
