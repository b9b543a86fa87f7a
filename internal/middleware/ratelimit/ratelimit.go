// Package ratelimit caps request rates per client IP with a fixed
// counting window.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

type Config struct {
	Requests int           // allowed per window
	Window   time.Duration // counting window
}

func DefaultConfig() Config {
	return Config{Requests: 60, Window: time.Minute}
}

// Limiter tracks one counter per client IP. Idle entries are dropped by a
// background sweep so the map stays bounded by active traffic.
type Limiter struct {
	mu       sync.Mutex
	counters map[string]*window
	cfg      Config

	stop     chan struct{}
	stopOnce sync.Once
}

type window struct {
	start time.Time
	count int
}

func NewLimiter(cfg Config) *Limiter {
	if cfg.Requests <= 0 || cfg.Window <= 0 {
		cfg = DefaultConfig()
	}
	l := &Limiter{
		counters: make(map[string]*window),
		cfg:      cfg,
		stop:     make(chan struct{}),
	}
	go l.sweep()
	return l
}

// Allow counts a request from the given IP and reports whether it is
// within the window's budget.
func (l *Limiter) Allow(clientIP string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.counters[clientIP]
	if !ok || now.Sub(w.start) > l.cfg.Window {
		l.counters[clientIP] = &window{start: now, count: 1}
		return true
	}
	w.count++
	return w.count <= l.cfg.Requests
}

func (l *Limiter) sweep() {
	ticker := time.NewTicker(5 * l.cfg.Window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-2 * l.cfg.Window)
			l.mu.Lock()
			for ip, w := range l.counters {
				if w.start.Before(cutoff) {
					delete(l.counters, ip)
				}
			}
			l.mu.Unlock()
		case <-l.stop:
			return
		}
	}
}

// Stop ends the sweep goroutine. Safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Middleware rejects over-budget requests with 429 and a Retry-After hint.
func (l *Limiter) Middleware(extractIP func(*http.Request) string) func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(l.cfg.Window.Seconds()))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(extractIP(r)) {
				w.Header().Set("Retry-After", retryAfter)
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
