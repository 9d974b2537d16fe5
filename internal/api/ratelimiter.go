package api

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// maxTrackedClients bounds the per-client bucket map; it is reset when full.
const maxTrackedClients = 4096

// uploadLimiter decides whether a client may start another upload.
type uploadLimiter interface {
	Allow(client string) bool
}

// clientLimiter keeps one token bucket per client address so one busy
// client cannot starve the others.
type clientLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	clients map[string]*rate.Limiter
}

func newClientLimiter(ratePerSecond float64, burst int) *clientLimiter {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &clientLimiter{
		limit:   rate.Limit(ratePerSecond),
		burst:   burst,
		clients: make(map[string]*rate.Limiter),
	}
}

func (l *clientLimiter) Allow(client string) bool {
	l.mu.Lock()
	bucket, ok := l.clients[client]
	if !ok {
		if len(l.clients) >= maxTrackedClients {
			clear(l.clients)
		}
		bucket = rate.NewLimiter(l.limit, l.burst)
		l.clients[client] = bucket
	}
	l.mu.Unlock()
	return bucket.Allow()
}

// clientKey identifies the caller by remote host, without the port.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func rateLimitMiddleware(limiter uploadLimiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limiter.Allow(clientKey(r)) {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusTooManyRequests, "Too many uploads", "upload rate limit exceeded, retry shortly")
	})
}
