// Package middleware holds the HTTP middleware shared by the API routes.
package middleware

import (
	"net/http"
	"sync"
	"time"
)

// maxTrackedClients bounds the limiter map. When exceeded, expired
// windows are evicted; if everything is live the map is reset, which
// briefly over-admits rather than growing without bound.
const maxTrackedClients = 10000

type window struct {
	count   int
	resetAt time.Time
}

// RateLimiter is a fixed-window in-memory limiter keyed by client
// identifier. State is per process; a multi-instance deployment would
// move this to redis.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	per     time.Duration
	now     func() time.Time
}

// NewRateLimiter allows limit requests per client per window.
func NewRateLimiter(limit int, per time.Duration) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		per:     per,
		now:     time.Now,
	}
}

// Allow reports whether the identifier may proceed and counts the
// attempt if so.
func (rl *RateLimiter) Allow(identifier string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.clients[identifier]
	if !ok || now.After(w.resetAt) {
		if len(rl.clients) >= maxTrackedClients {
			rl.evict(now)
		}
		rl.clients[identifier] = &window{count: 1, resetAt: now.Add(rl.per)}
		return true
	}
	if w.count >= rl.limit {
		return false
	}
	w.count++
	return true
}

// evict drops expired windows. Caller holds the lock.
func (rl *RateLimiter) evict(now time.Time) {
	for id, w := range rl.clients {
		if now.After(w.resetAt) {
			delete(rl.clients, id)
		}
	}
	if len(rl.clients) >= maxTrackedClients {
		rl.clients = make(map[string]*window)
	}
}

// Middleware rejects over-limit requests with 429. The client key is
// resolved by keyFn; a keyFn returning "" falls back to the remote
// address.
func (rl *RateLimiter) Middleware(keyFn func(r *http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ""
			if keyFn != nil {
				key = keyFn(r)
			}
			if key == "" {
				key = r.RemoteAddr
			}
			if !rl.Allow(key) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"success":false,"message":"rate limit exceeded, try again shortly"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
