// Package cache provides a small generic in-memory cache with per-entry expiry.
//
// The conversation service uses it to remember recent typing relays so that a
// burst of keystrokes for the same (from, to) pair produces a single push.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache is a concurrency-safe map whose entries expire ttl after they are set.
// Expired entries are invisible to readers immediately and are swept from
// memory every cleanupInterval.
type TTLCache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]entry[V]
	ttl     time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a cache and starts its sweeper. Call Close to stop it.
func New[K comparable, V any](ttl, cleanupInterval time.Duration) *TTLCache[K, V] {
	c := &TTLCache[K, V]{
		entries: make(map[K]entry[V]),
		ttl:     ttl,
		stop:    make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.evictExpired()
			case <-c.stop:
				return
			}
		}
	}()

	return c
}

// Get returns the live value for key.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, replacing any previous entry and its expiry.
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{value: value, expiresAt: time.Now().Add(c.ttl)}
}

// SetIfAbsent stores value only when key has no live entry and reports whether
// it did. The check and the write happen under one lock.
func (c *TTLCache[K, V]) SetIfAbsent(key K, value V) bool {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok && !now.After(e.expiresAt) {
		return false
	}
	c.entries[key] = entry[V]{value: value, expiresAt: now.Add(c.ttl)}
	return true
}

// Delete removes key.
func (c *TTLCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// DeleteFunc removes every key for which predicate returns true.
func (c *TTLCache[K, V]) DeleteFunc(predicate func(key K) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if predicate(key) {
			delete(c.entries, key)
		}
	}
}

// Len counts stored entries, including expired ones not yet swept.
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Close stops the sweeper. Safe to call more than once.
func (c *TTLCache[K, V]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *TTLCache[K, V]) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}
