package middleware

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// clientCap bounds the per-client limiter map; beyond it the map is dropped
// wholesale rather than tracking per-entry expiry.
const clientCap = 10000

// RateLimiter applies a token-bucket limit per client IP.
type RateLimiter struct {
	mu      sync.RWMutex
	clients map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*rate.Limiter),
		limit:   rate.Limit(rps),
		burst:   burst,
	}
}

// Allow reports whether the client identified by key has budget for one
// more request.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.RLock()
	lim, ok := rl.clients[key]
	rl.mu.RUnlock()
	if ok {
		return lim.Allow()
	}

	rl.mu.Lock()
	if lim, ok = rl.clients[key]; !ok {
		lim = rate.NewLimiter(rl.limit, rl.burst)
		rl.clients[key] = lim
	}
	rl.mu.Unlock()
	return lim.Allow()
}

func (rl *RateLimiter) prune() {
	rl.mu.Lock()
	if len(rl.clients) > clientCap {
		rl.clients = make(map[string]*rate.Limiter)
	}
	rl.mu.Unlock()
}

// RateLimit rejects requests over the per-IP budget with 429. Client
// identity comes from X-Real-IP when chi's RealIP middleware has run,
// falling back to the raw remote address.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(rps, burst)

	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			limiter.prune()
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.Header.Get("X-Real-IP")
			if ip == "" {
				ip = r.RemoteAddr
			}

			if !limiter.Allow(ip) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
