package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultIdle is how long an IP keeps its bucket without sending a request.
const DefaultIdle = 10 * time.Minute

type visitor struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client IP. Buckets idle for longer than Idle are
// dropped. X-Forwarded-For and X-Real-IP are only read when TrustProxy is set.
type IPRateLimiter struct {
	TrustProxy bool
	Idle       time.Duration

	mu        sync.Mutex
	ips       map[string]*visitor
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func NewIPRateLimiter(limit rate.Limit, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		Idle:  DefaultIdle,
		ips:   make(map[string]*visitor),
		limit: limit,
		burst: burst,
		now:   time.Now,
	}
}

// PerMinute builds a limiter allowing n requests per minute per IP with a burst of n/4 (at least 1).
func PerMinute(n int) *IPRateLimiter {
	burst := n / 4
	if burst < 1 {
		burst = 1
	}
	return NewIPRateLimiter(rate.Limit(float64(n)/60.0), burst)
}

func (l *IPRateLimiter) limiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if now.Sub(l.lastSweep) >= l.Idle {
		l.sweep(now)
	}
	v, ok := l.ips[ip]
	if !ok {
		v = &visitor{lim: rate.NewLimiter(l.limit, l.burst)}
		l.ips[ip] = v
	}
	v.lastSeen = now
	return v.lim
}

// sweep removes idle visitors; callers hold mu.
func (l *IPRateLimiter) sweep(now time.Time) {
	for ip, v := range l.ips {
		if now.Sub(v.lastSeen) > l.Idle {
			delete(l.ips, ip)
		}
	}
	l.lastSweep = now
}

// Len is the number of tracked IPs.
func (l *IPRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ips)
}

// Middleware answers 429 once the client IP runs out of tokens.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.limiter(clientIP(r, l.TrustProxy)).Allow() {
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			return strings.TrimSpace(strings.Split(xff, ",")[0])
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
