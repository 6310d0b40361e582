package handlers

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/chepyr/taskflow/internal/logging"
	"github.com/chepyr/taskflow/internal/shared"
	"golang.org/x/time/rate"
)

// RateLimiter allows up to limit requests per key within window, refilling
// continuously. Each key gets its own token bucket.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	limit    int
	window   time.Duration
	mutex    sync.Mutex
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		window:   window,
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	return rl.limiter(key).Allow()
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	l, ok := rl.limiters[key]
	if !ok {
		rl.cleanupLocked()
		l = rate.NewLimiter(rate.Every(rl.window/time.Duration(rl.limit)), rl.limit)
		rl.limiters[key] = l
	}
	return l
}

// cleanupLocked drops buckets that have refilled completely; they behave
// exactly like a fresh limiter.
func (rl *RateLimiter) cleanupLocked() {
	for key, l := range rl.limiters {
		if l.Tokens() >= float64(rl.limit) {
			delete(rl.limiters, key)
		}
	}
}

// RateLimit rejects requests from a client IP that exceeded the limiter.
func (h *Handler) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r, h.TrustProxyHeaders)
		if h.RateLimiter != nil && !h.RateLimiter.Allow(ip) {
			logging.FromContext(r.Context()).Warn("rate limit exceeded", "ip", ip)
			w.Header().Set("Retry-After", strconv.Itoa(max(int(h.RateLimiter.window.Seconds()), 1)))
			shared.SendError(w, "Too many attempts. Please try again later.", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
