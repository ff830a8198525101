package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func TestLoginRateLimiter_WindowAndReset(t *testing.T) {
	c := newClock()
	rl := NewLoginRateLimiter(3, time.Minute)
	defer rl.Close()
	rl.now = c.now

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.2.3.4"), "attempt %d", i+1)
	}
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"), "other IPs are independent")

	c.advance(30 * time.Second)
	assert.Equal(t, 31, rl.RetryAfterSeconds("1.2.3.4"))

	rl.Reset("1.2.3.4")
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.Equal(t, 0, rl.RetryAfterSeconds("9.9.9.9"))
}

func TestLoginRateLimiter_WindowExpires(t *testing.T) {
	c := newClock()
	rl := NewLoginRateLimiter(1, time.Minute)
	defer rl.Close()
	rl.now = c.now

	assert.True(t, rl.Allow("ip"))
	assert.False(t, rl.Allow("ip"))

	c.advance(time.Minute + time.Second)
	assert.True(t, rl.Allow("ip"))
}

func TestLoginRateLimiter_Sweep(t *testing.T) {
	c := newClock()
	rl := NewLoginRateLimiter(1, time.Minute)
	defer rl.Close()
	rl.now = c.now

	rl.Allow("ip")
	c.advance(2 * time.Minute)
	rl.sweep()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Empty(t, rl.windows)
}

func TestMessageRateLimiter_Cooldown(t *testing.T) {
	c := newClock()
	rl := NewMessageRateLimiter(2, 10*time.Second, 30*time.Second)
	defer rl.Close()
	rl.now = c.now

	assert.True(t, rl.Allow("alice"))
	assert.True(t, rl.Allow("alice"))
	assert.False(t, rl.Allow("alice"))
	assert.Equal(t, 31, rl.CooldownSeconds("alice"))

	// The window ending does not lift the cooldown.
	c.advance(15 * time.Second)
	assert.False(t, rl.Allow("alice"))
	assert.Equal(t, 0, rl.CooldownSeconds("bob"))

	c.advance(16 * time.Second)
	assert.True(t, rl.Allow("alice"))
	assert.Equal(t, 0, rl.CooldownSeconds("alice"))
}

func TestMessageRateLimiter_WindowRollsOver(t *testing.T) {
	c := newClock()
	rl := NewMessageRateLimiter(1, 10*time.Second, time.Minute)
	defer rl.Close()
	rl.now = c.now

	assert.True(t, rl.Allow("alice"))
	c.advance(11 * time.Second)
	assert.True(t, rl.Allow("alice"))
}

func TestExtractIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", ExtractIP(r))

	r.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", ExtractIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.3")
	assert.Equal(t, "203.0.113.7", ExtractIP(r))
}

func TestFormatRetryMessage(t *testing.T) {
	assert.Equal(t, "45 second(s)", FormatRetryMessage(45))
	assert.Equal(t, "2 minute(s)", FormatRetryMessage(61))
}
