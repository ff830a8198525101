// Package ratelimit contains the in-memory limiters used at the HTTP edge.
//
// Both limiters keep one fixed window per key behind a mutex and sweep idle
// keys from a background goroutine. State is per process, matching the single
// node the realtime registry already assumes.
package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

const sweepInterval = 30 * time.Second

// window counts hits for one key since windowStart.
type window struct {
	count       int
	windowStart time.Time
}

// LoginRateLimiter caps login attempts per client IP.
//
// A successful login calls Reset so a user who mistyped a password a few
// times is not locked out afterwards.
type LoginRateLimiter struct {
	mu          sync.Mutex
	windows     map[string]*window
	maxAttempts int
	period      time.Duration
	now         func() time.Time
	stop        chan struct{}
	stopOnce    sync.Once
}

// NewLoginRateLimiter allows maxAttempts per period for each IP.
func NewLoginRateLimiter(maxAttempts int, period time.Duration) *LoginRateLimiter {
	rl := &LoginRateLimiter{
		windows:     make(map[string]*window),
		maxAttempts: maxAttempts,
		period:      period,
		now:         time.Now,
		stop:        make(chan struct{}),
	}

	go sweepLoop(rl.stop, rl.sweep)

	return rl
}

// Allow records an attempt for ip and reports whether it is within the limit.
func (rl *LoginRateLimiter) Allow(ip string) bool {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[ip]
	if !ok || now.Sub(w.windowStart) > rl.period {
		rl.windows[ip] = &window{count: 1, windowStart: now}
		return true
	}

	w.count++
	return w.count <= rl.maxAttempts
}

// Reset forgets every attempt recorded for ip.
func (rl *LoginRateLimiter) Reset(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.windows, ip)
}

// RetryAfterSeconds is the time left in the current window, rounded up.
func (rl *LoginRateLimiter) RetryAfterSeconds(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[ip]
	if !ok {
		return 0
	}

	remaining := rl.period - rl.now().Sub(w.windowStart)
	if remaining <= 0 {
		return 0
	}
	return int(remaining.Seconds()) + 1
}

// Close stops the sweeper goroutine.
func (rl *LoginRateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *LoginRateLimiter) sweep() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, w := range rl.windows {
		if now.Sub(w.windowStart) > rl.period {
			delete(rl.windows, ip)
		}
	}
}

func sweepLoop(stop <-chan struct{}, sweep func()) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sweep()
		case <-stop:
			return
		}
	}
}

// ExtractIP returns the client address, honouring X-Forwarded-For and
// X-Real-IP set by a reverse proxy.
func ExtractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// FormatRetryMessage renders a wait time for error messages.
func FormatRetryMessage(seconds int) string {
	if seconds >= 60 {
		return fmt.Sprintf("%d minute(s)", (seconds+59)/60)
	}
	return fmt.Sprintf("%d second(s)", seconds)
}
