package ratelimit

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// idleTTL is how long an unused client bucket is kept.
const idleTTL = 5 * time.Minute

type bucket struct {
	tokens   float64
	lastTime time.Time
}

func (b *bucket) allow(now time.Time, rps float64, burst int) bool {
	elapsed := now.Sub(b.lastTime).Seconds()
	b.tokens += elapsed * rps
	if b.tokens > float64(burst) {
		b.tokens = float64(burst)
	}
	b.lastTime = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Limiter is a per-client token bucket limiter for the calculator API.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rps     float64
	burst   int

	rejected atomic.Int64
	stopCh   chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

func NewLimiter(rps float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	l := &Limiter{
		buckets: make(map[string]*bucket),
		rps:     rps,
		burst:   burst,
		stopCh:  make(chan struct{}),
		now:     time.Now,
	}
	go l.cleanup()
	return l
}

// Allow reports whether client may make another request now.
func (l *Limiter) Allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[client]
	if !ok {
		b = &bucket{tokens: float64(l.burst), lastTime: now}
		l.buckets[client] = b
	}
	if !b.allow(now, l.rps, l.burst) {
		l.rejected.Add(1)
		return false
	}
	return true
}

// Rejected returns the number of requests refused so far.
func (l *Limiter) Rejected() int64 {
	return l.rejected.Load()
}

// Clients returns the number of tracked client buckets.
func (l *Limiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Middleware rejects over-limit clients with 429. Clients are keyed by
// RemoteAddr host, so RealIP-style middleware should run first.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientKey(r)) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

func (l *Limiter) cleanup() {
	ticker := time.NewTicker(idleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			l.evictIdle()
		}
	}
}

func (l *Limiter) evictIdle() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for client, b := range l.buckets {
		if now.Sub(b.lastTime) > idleTTL {
			delete(l.buckets, client)
		}
	}
}
