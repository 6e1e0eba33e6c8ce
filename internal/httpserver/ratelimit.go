package httpserver

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ipLimiter hands out one token bucket per client IP. A non-positive
// per-minute rate disables limiting.
type ipLimiter struct {
	mu      sync.Mutex
	perMin  int
	buckets map[string]*rate.Limiter
}

func newIPLimiter(perMinute int) *ipLimiter {
	return &ipLimiter{perMin: perMinute, buckets: make(map[string]*rate.Limiter)}
}

func (l *ipLimiter) allow(ip string) bool {
	if l.perMin <= 0 {
		return true
	}
	l.mu.Lock()
	lim, ok := l.buckets[ip]
	if !ok {
		if len(l.buckets) > 10000 {
			clear(l.buckets)
		}
		lim = rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMin)), l.perMin)
		l.buckets[ip] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

func (l *ipLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		if !l.allow(ip) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate_limited")
			return
		}
		next.ServeHTTP(w, r)
	})
}
