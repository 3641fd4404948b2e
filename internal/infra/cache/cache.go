// Package cache provides an in-memory TTL store. The service uses it to
// remember idempotency keys for money movements.
package cache

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// InMemory is a thread-safe in-memory cache with TTL.
type InMemory[T any] struct {
	mu    sync.Mutex
	items map[string]entry[T]
	ttl   time.Duration
	now   func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a cache whose entries live for ttl. A janitor goroutine runs
// until Close.
func New[T any](ttl time.Duration) *InMemory[T] {
	c := &InMemory[T]{
		items: make(map[string]entry[T]),
		ttl:   ttl,
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	go c.cleanup()
	return c
}

// SetIfAbsent stores value only when key has no live entry, and reports
// whether it did. Check and store happen under one lock.
func (c *InMemory[T]) SetIfAbsent(key string, value T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if e, ok := c.items[key]; ok && !now.After(e.expiresAt) {
		return false
	}
	c.items[key] = entry[T]{value: value, expiresAt: now.Add(c.ttl)}
	return true
}

// Delete removes key.
func (c *InMemory[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Close stops the janitor. It is safe to call more than once.
func (c *InMemory[T]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *InMemory[T]) cleanup() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *InMemory[T]) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, v := range c.items {
		if now.After(v.expiresAt) {
			delete(c.items, k)
		}
	}
}

// Idempotency adapts an InMemory cache to claim-once semantics.
type Idempotency struct {
	store *InMemory[time.Time]
}

// NewIdempotency remembers claimed keys for ttl.
func NewIdempotency(ttl time.Duration) *Idempotency {
	return &Idempotency{store: New[time.Time](ttl)}
}

// Claim records key and reports true when it was not already claimed.
func (i *Idempotency) Claim(key string) bool {
	return i.store.SetIfAbsent(key, time.Now())
}

// Release forgets key.
func (i *Idempotency) Release(key string) {
	i.store.Delete(key)
}

// Close stops the underlying janitor.
func (i *Idempotency) Close() {
	i.store.Close()
}
