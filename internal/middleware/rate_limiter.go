package middleware

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter gates repeated actions from one caller. The auth handlers use
// it to slow brute-force attempts on register and login.
type RateLimiter interface {
	Allow(key string) bool
}

type caller struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter keeps an independent token bucket per key, usually a client
// IP. Idle entries are pruned so one-off callers do not accumulate.
type ipRateLimiter struct {
	mu        sync.Mutex
	callers   map[string]*caller
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	lastPrune time.Time
	now       func() time.Time
}

// NewIPRateLimiter allows `requests` events per `window` for each key, with
// extra burst headroom. Entries idle longer than ttl are forgotten.
func NewIPRateLimiter(requests int, window time.Duration, burst int, ttl time.Duration) RateLimiter {
	if requests <= 0 {
		requests = 1
	}
	if window <= 0 {
		window = time.Second
	}
	if burst <= 0 {
		burst = 1
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &ipRateLimiter{
		callers: make(map[string]*caller),
		limit:   rate.Every(window / time.Duration(requests)),
		burst:   burst,
		ttl:     ttl,
		now:     time.Now,
	}
}

func (l *ipRateLimiter) Allow(key string) bool {
	if key == "" {
		key = "unknown"
	}

	l.mu.Lock()
	now := l.now()

	c, ok := l.callers[key]
	if !ok {
		c = &caller{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.callers[key] = c
	}
	c.lastSeen = now

	// Prune at most once per ttl so Allow stays cheap on the hot path.
	if now.Sub(l.lastPrune) >= l.ttl {
		for k, v := range l.callers {
			if now.Sub(v.lastSeen) > l.ttl {
				delete(l.callers, k)
			}
		}
		l.lastPrune = now
	}
	l.mu.Unlock()

	return c.limiter.Allow()
}
