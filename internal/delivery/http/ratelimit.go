package http

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// rateWindow is one client's current fixed window
type rateWindow struct {
	windowStart time.Time
	count       int
}

// ClientLimiter is a fixed-window request limiter keyed by client
// identity. It is constructed once at process start and injected into the
// router, so tests can swap it for a permissive instance.
type ClientLimiter struct {
	mu      sync.Mutex
	windows map[string]*rateWindow
	limit   int
	window  time.Duration
}

// NewClientLimiter creates a limiter allowing limit requests per window
// per client identity
func NewClientLimiter(limit int, window time.Duration) *ClientLimiter {
	return &ClientLimiter{
		windows: make(map[string]*rateWindow),
		limit:   limit,
		window:  window,
	}
}

// Allow records one request for the identity and reports whether it fits
// in the current window, along with the remaining allowance.
func (l *ClientLimiter) Allow(identity string) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	entry, exists := l.windows[identity]
	if !exists || now.Sub(entry.windowStart) > l.window {
		l.windows[identity] = &rateWindow{windowStart: now, count: 1}
		return true, l.limit - 1
	}

	if entry.count >= l.limit {
		return false, 0
	}

	entry.count++
	return true, l.limit - entry.count
}

// clientIdentity derives the rate-limit key from the forwarded address
// header the serving platform sets. Only the first hop counts; requests
// with no forwarded address share one bucket.
func clientIdentity(r *http.Request) string {
	fwd := r.Header.Get("X-Forwarded-For")
	if fwd == "" {
		return "unknown"
	}
	if idx := strings.Index(fwd, ","); idx >= 0 {
		fwd = fwd[:idx]
	}
	return strings.TrimSpace(fwd)
}

// RateLimitMiddleware rejects requests beyond the client's fixed-window
// allowance with a 429 distinct from backend failures.
func RateLimitMiddleware(limiter *ClientLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, remaining := limiter.Allow(clientIdentity(c.Request))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !ok {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Try again later.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
