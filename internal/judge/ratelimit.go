package judge

import (
	"log"
	"sync"
	"time"
)

// RateLimiter is a sliding-window limiter: at most maxCalls within the
// window. When the budget is exhausted, Wait sleeps until the oldest call
// falls out of the window instead of replenishing tokens on a timer.
type RateLimiter struct {
	maxCalls int
	window   time.Duration

	mu    sync.Mutex
	calls []time.Time
	now   func() time.Time
	sleep func(time.Duration)
}

// NewRateLimiter creates a limiter allowing maxCalls per window.
func NewRateLimiter(maxCalls int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		maxCalls: maxCalls,
		window:   window,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Wait blocks until a call is allowed, then records it.
func (r *RateLimiter) Wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()

	// Purge calls outside the window.
	kept := r.calls[:0]
	for _, t := range r.calls {
		if now.Sub(t) < r.window {
			kept = append(kept, t)
		}
	}
	r.calls = kept

	if len(r.calls) >= r.maxCalls {
		sleepFor := r.window - now.Sub(r.calls[0])
		if sleepFor > 0 {
			log.Printf("[INFO] rate limit reached, sleeping %.1fs", sleepFor.Seconds())
			r.sleep(sleepFor)
		}
		r.calls = r.calls[1:]
	}
	r.calls = append(r.calls, r.now())
}
