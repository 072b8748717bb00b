// Package middleware holds transport-level HTTP middleware: request
// logging, panic recovery, and per-IP rate limiting. The per-IP
// limiter is infrastructure protection; the per-customer business
// limit lives in the payment service.
package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ipLimiter tracks a token bucket and its last access time.
type ipLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// IPRateLimiter applies a token-bucket limit per client IP, with a
// bounded cache of limiters and periodic cleanup of idle entries.
type IPRateLimiter struct {
	mu              sync.Mutex
	limiters        map[string]*ipLimiter
	rate            rate.Limit
	burst           int
	maxSize         int
	cleanupInterval time.Duration
	stopCh          chan struct{}
}

// NewIPRateLimiter creates a limiter allowing requestsPerSecond per IP
// with the given burst. Call Shutdown to stop the cleanup goroutine.
func NewIPRateLimiter(requestsPerSecond float64, burst int) *IPRateLimiter {
	rl := &IPRateLimiter{
		limiters:        make(map[string]*ipLimiter),
		rate:            rate.Limit(requestsPerSecond),
		burst:           burst,
		maxSize:         10000,
		cleanupInterval: 5 * time.Minute,
		stopCh:          make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *IPRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

func (rl *IPRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-rl.cleanupInterval)
	for ip, l := range rl.limiters {
		if l.lastAccess.Before(cutoff) {
			delete(rl.limiters, ip)
		}
	}
}

// Shutdown stops the cleanup goroutine.
func (rl *IPRateLimiter) Shutdown() {
	close(rl.stopCh)
}

func (rl *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if l, ok := rl.limiters[ip]; ok {
		l.lastAccess = time.Now()
		return l.limiter
	}

	// Evict the stalest entry when the cache is full.
	if len(rl.limiters) >= rl.maxSize {
		var oldestIP string
		var oldestTime time.Time
		first := true
		for ip, l := range rl.limiters {
			if first || l.lastAccess.Before(oldestTime) {
				oldestIP = ip
				oldestTime = l.lastAccess
				first = false
			}
		}
		delete(rl.limiters, oldestIP)
	}

	l := &ipLimiter{
		limiter:    rate.NewLimiter(rl.rate, rl.burst),
		lastAccess: time.Now(),
	}
	rl.limiters[ip] = l
	return l.limiter
}

// Handler returns middleware enforcing the per-IP limit.
func (rl *IPRateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.getLimiter(ip).Allow() {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
