// Package guard holds request-shaping policies applied in front of the
// booking endpoints.
package guard

import (
	"net/http"
	"sync"
	"time"

	"github.com/slotarena/platform/internal/auth"
)

// RateLimiter is a per-identity fixed-window counter. It protects the
// booking endpoints from request storms; correctness under contention is
// still carried entirely by the store's conditional updates.
type RateLimiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int
	interval time.Duration
}

type window struct {
	start time.Time
	count int
}

// NewRateLimiter allows limit requests per identity per interval.
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		windows:  make(map[string]*window),
		limit:    limit,
		interval: interval,
	}
}

// Allow reports whether the identity may proceed, counting the attempt.
func (l *RateLimiter) Allow(identity string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[identity]
	if !ok || now.Sub(w.start) >= l.interval {
		l.windows[identity] = &window{start: now, count: 1}
		if len(l.windows) > 10000 {
			l.evictStale(now)
		}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// evictStale drops fully expired windows. Called under the lock.
func (l *RateLimiter) evictStale(now time.Time) {
	for id, w := range l.windows {
		if now.Sub(w.start) >= l.interval {
			delete(l.windows, id)
		}
	}
}

// Middleware enforces the limit keyed by the authenticated subject, falling
// back to the remote address for unauthenticated paths.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := auth.SubjectFromContext(r.Context())
		if identity == "" {
			identity = r.RemoteAddr
		}
		if !l.Allow(identity) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"code":"RATE_LIMITED","message":"too many booking attempts, slow down"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
