package middleware

import (
	"net/http"
	"sync"
	"time"

	"mata/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ── Fixed-window rate limiter ─────────────────────────────────────────────────

type window struct {
	count int
	end   time.Time
}

type limiter struct {
	mu        sync.Mutex
	limit     int
	size      time.Duration
	clients   map[string]*window
	lastPurge time.Time
	now       func() time.Time
}

func newLimiter(limit int, size time.Duration) *limiter {
	return &limiter{limit: limit, size: size, clients: map[string]*window{}, now: time.Now}
}

// allow counts one request for key and reports whether it fits in the
// current window, along with the window end.
func (l *limiter) allow(key string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastPurge) > l.size {
		l.purgeLocked(now)
	}

	w, ok := l.clients[key]
	if !ok || now.After(w.end) {
		w = &window{end: now.Add(l.size)}
		l.clients[key] = w
	}
	w.count++
	return w.count <= l.limit, w.end
}

// purgeLocked drops expired windows so idle clients do not accumulate.
func (l *limiter) purgeLocked(now time.Time) {
	purged := 0
	for k, w := range l.clients {
		if now.After(w.end) {
			delete(l.clients, k)
			purged++
		}
	}
	l.lastPurge = now
	if purged > 0 {
		log.Debug().Int("purged", purged).Int("remaining", len(l.clients)).Msg("rate limiter purged")
	}
}

// RateLimiter allows limit requests per client IP per window.
func RateLimiter(limit int, size time.Duration) gin.HandlerFunc {
	l := newLimiter(limit, size)
	return func(c *gin.Context) {
		ok, end := l.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", end.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Trop de requêtes, réessayez dans un instant."))
			return
		}
		c.Next()
	}
}
