package http

import (
	"sync"
	"time"
)

// RateLimiter caps notification dispatches per minute. A zero or negative
// limit disables limiting.
type RateLimiter struct {
	mu      sync.Mutex
	limit   int
	counter int
	reset   *time.Ticker
}

// NewRateLimiter builds the dispatch limiter used by the relay server.
func NewRateLimiter(limit int) *RateLimiter {
	if limit <= 0 {
		return &RateLimiter{limit: 0}
	}
	return &RateLimiter{
		limit: limit,
		reset: time.NewTicker(time.Minute),
	}
}

// Allow consumes one slot of the current window.
func (r *RateLimiter) Allow() bool {
	if r == nil || r.limit <= 0 {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counter++
	return r.counter <= r.limit
}

// StartReset clears the window counter every minute until stop closes.
func (r *RateLimiter) StartReset(stop <-chan struct{}) {
	if r == nil || r.reset == nil {
		return
	}
	go func() {
		for {
			select {
			case <-r.reset.C:
				r.mu.Lock()
				r.counter = 0
				r.mu.Unlock()
			case <-stop:
				r.reset.Stop()
				return
			}
		}
	}()
}
