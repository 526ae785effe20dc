package auth

import (
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrRateLimitExceeded indicates too many attempts from one client
var ErrRateLimitExceeded = errors.New("rate limit exceeded")

const limiterExpiry = 15 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles login attempts per client address
type RateLimiter struct {
	perMinute int
	burst     int

	mu       sync.Mutex
	limiters map[string]*clientLimiter

	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewRateLimiter creates a rate limiter allowing perMinute sustained
// attempts with the given burst
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	rl := &RateLimiter{
		perMinute:   perMinute,
		burst:       burst,
		limiters:    make(map[string]*clientLimiter),
		stopCleanup: make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// Allow checks whether an attempt from clientID is permitted
func (rl *RateLimiter) Allow(clientID string) error {
	rl.mu.Lock()
	entry, exists := rl.limiters[clientID]
	if !exists {
		rps := float64(rl.perMinute) / 60.0
		entry = &clientLimiter{
			limiter: rate.NewLimiter(rate.Limit(rps), rl.burst),
		}
		rl.limiters[clientID] = entry
	}
	entry.lastSeen = time.Now()
	rl.mu.Unlock()

	if !entry.limiter.Allow() {
		return ErrRateLimitExceeded
	}
	return nil
}

// cleanup periodically removes limiters that have gone quiet
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			now := time.Now()
			for id, entry := range rl.limiters {
				if now.Sub(entry.lastSeen) > limiterExpiry {
					delete(rl.limiters, id)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCleanup:
			return
		}
	}
}

// Stop stops the cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopCleanup)
	})
}
