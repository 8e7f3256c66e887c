package llm

import (
	"sync"
	"time"

	"github.com/codefionn/codeflink/internal/logger"
)

// RateLimiter tracks request timestamps in two sliding windows (per-minute
// and per-day) to pre-empt server-side 429s. State is per-provider and
// per-process; window mutation is serialized by a mutex so racing callers
// cannot double-count or lose updates.
type RateLimiter struct {
	mu       sync.Mutex
	rpmLimit int
	rpdLimit int

	minuteRequests []time.Time
	dayRequests    []time.Time

	now func() time.Time
}

// NewRateLimiter creates a rate limiter with the given per-minute and
// per-day request budgets.
func NewRateLimiter(requestsPerMinute, requestsPerDay int) *RateLimiter {
	return &RateLimiter{
		rpmLimit: requestsPerMinute,
		rpdLimit: requestsPerDay,
		now:      time.Now,
	}
}

// CanMakeRequest purges stale timestamps and reports whether another request
// fits in both windows.
func (r *RateLimiter) CanMakeRequest() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.purge(r.now())

	if len(r.minuteRequests) >= r.rpmLimit {
		logger.Warn("rate limit RPM reached: %d/%d", len(r.minuteRequests), r.rpmLimit)
		return false
	}
	if len(r.dayRequests) >= r.rpdLimit {
		logger.Warn("rate limit RPD reached: %d/%d", len(r.dayRequests), r.rpdLimit)
		return false
	}
	return true
}

// RecordRequest appends the current timestamp to both windows. Callers must
// invoke it only after a request was actually dispatched; recording before
// dispatch would falsely throttle on failed attempts.
func (r *RateLimiter) RecordRequest() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.minuteRequests = append(r.minuteRequests, now)
	r.dayRequests = append(r.dayRequests, now)

	logger.Debug("request recorded: RPM=%d/%d, RPD=%d/%d",
		len(r.minuteRequests), r.rpmLimit, len(r.dayRequests), r.rpdLimit)
}

// purge drops timestamps outside the trailing window durations. Callers must
// hold the mutex.
func (r *RateLimiter) purge(now time.Time) {
	minuteAgo := now.Add(-time.Minute)
	dayAgo := now.Add(-24 * time.Hour)

	r.minuteRequests = trimBefore(r.minuteRequests, minuteAgo)
	r.dayRequests = trimBefore(r.dayRequests, dayAgo)
}

func trimBefore(window []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(window) && window[i].Before(cutoff) {
		i++
	}
	if i == 0 {
		return window
	}
	return append(window[:0], window[i:]...)
}

// Status purges and reports used/remaining counts for both windows.
func (r *RateLimiter) Status() RateLimitStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.purge(r.now())

	return RateLimitStatus{
		HasLimit:     true,
		RPMUsed:      len(r.minuteRequests),
		RPMLimit:     r.rpmLimit,
		RPMRemaining: r.rpmLimit - len(r.minuteRequests),
		RPDUsed:      len(r.dayRequests),
		RPDLimit:     r.rpdLimit,
		RPDRemaining: r.rpdLimit - len(r.dayRequests),
	}
}

// Reset clears both windows.
func (r *RateLimiter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.minuteRequests = nil
	r.dayRequests = nil
}
