package ratelimit

import (
	"sync"
	"time"
)

type sendWindow struct {
	window
	cooldownUntil time.Time // zero = no cooldown
}

// MessageRateLimiter caps direct messages per user.
//
// Going over maxMessages inside one window puts the user in a cooldown during
// which every send is refused; the first send after the cooldown opens a
// fresh window.
type MessageRateLimiter struct {
	mu          sync.Mutex
	windows     map[string]*sendWindow
	maxMessages int
	period      time.Duration
	cooldown    time.Duration
	now         func() time.Time
	stop        chan struct{}
	stopOnce    sync.Once
}

// NewMessageRateLimiter allows maxMessages per period, then blocks for cooldown.
func NewMessageRateLimiter(maxMessages int, period, cooldown time.Duration) *MessageRateLimiter {
	rl := &MessageRateLimiter{
		windows:     make(map[string]*sendWindow),
		maxMessages: maxMessages,
		period:      period,
		cooldown:    cooldown,
		now:         time.Now,
		stop:        make(chan struct{}),
	}

	go sweepLoop(rl.stop, rl.sweep)

	return rl
}

// Allow records a send for userID and reports whether it may go through.
func (rl *MessageRateLimiter) Allow(userID string) bool {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[userID]
	if !ok {
		rl.windows[userID] = &sendWindow{window: window{count: 1, windowStart: now}}
		return true
	}

	if !w.cooldownUntil.IsZero() {
		if now.Before(w.cooldownUntil) {
			return false
		}
		*w = sendWindow{window: window{count: 1, windowStart: now}}
		return true
	}

	if now.Sub(w.windowStart) > rl.period {
		w.count = 1
		w.windowStart = now
		return true
	}

	w.count++
	if w.count > rl.maxMessages {
		w.cooldownUntil = now.Add(rl.cooldown)
		return false
	}
	return true
}

// CooldownSeconds is the remaining cooldown for userID, rounded up; 0 if none.
func (rl *MessageRateLimiter) CooldownSeconds(userID string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[userID]
	if !ok || w.cooldownUntil.IsZero() {
		return 0
	}

	remaining := w.cooldownUntil.Sub(rl.now())
	if remaining <= 0 {
		return 0
	}
	return int(remaining.Seconds()) + 1
}

// Close stops the sweeper goroutine.
func (rl *MessageRateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *MessageRateLimiter) sweep() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for userID, w := range rl.windows {
		windowDone := now.Sub(w.windowStart) > rl.period
		cooldownDone := w.cooldownUntil.IsZero() || now.After(w.cooldownUntil)
		if windowDone && cooldownDone {
			delete(rl.windows, userID)
		}
	}
}
