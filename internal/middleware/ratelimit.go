package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Stale windows are swept once the map grows past this many clients.
const maxTrackedClients = 4096

type window struct {
	used  int
	reset time.Time
}

// windowLimiter counts requests per key in fixed windows.
type windowLimiter struct {
	mu      sync.Mutex
	limit   int
	per     time.Duration
	windows map[string]*window
}

func newWindowLimiter(limit int, per time.Duration) *windowLimiter {
	return &windowLimiter{limit: limit, per: per, windows: make(map[string]*window)}
}

// allow consumes one request for key. When the window is exhausted it
// returns false and the time left until the window resets.
func (l *windowLimiter) allow(key string, now time.Time) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || !now.Before(w.reset) {
		if !ok && len(l.windows) >= maxTrackedClients {
			l.sweep(now)
		}
		w = &window{reset: now.Add(l.per)}
		l.windows[key] = w
	}
	if w.used >= l.limit {
		return false, w.reset.Sub(now)
	}
	w.used++
	return true, 0
}

func (l *windowLimiter) sweep(now time.Time) {
	for key, w := range l.windows {
		if !now.Before(w.reset) {
			delete(l.windows, key)
		}
	}
}

// RateLimit allows limit requests per client IP in each window of per. A
// non-positive limit disables it. Rejected requests get a Retry-After header
// and are answered by onLimited, or with a bare 429 when onLimited is nil.
func RateLimit(limit int, per time.Duration, onLimited http.Handler) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiter := newWindowLimiter(limit, per)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := limiter.allow(ClientIP(r), time.Now())
			if ok {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			if onLimited != nil {
				onLimited.ServeHTTP(w, r)
				return
			}
			w.WriteHeader(http.StatusTooManyRequests)
		})
	}
}
