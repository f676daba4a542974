package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process cache holding at most a fixed number of entries.
// When full, the entry closest to expiry is evicted.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	max     int
	now     func() time.Time
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemory creates a cache holding up to size entries (256 when size <= 0).
func NewMemory(size int) *Memory {
	if size <= 0 {
		size = 256
	}
	return &Memory{entries: make(map[string]memoryEntry), max: size, now: time.Now}
}

// Get returns the value for key unless it is missing or expired.
func (c *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if c.expired(e) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return e.data, true, nil
}

// Set stores data under key.
func (c *Memory) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := memoryEntry{data: data}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.max {
		c.evict()
	}
	c.entries[key] = e
	return nil
}

// Delete removes key.
func (c *Memory) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Close drops every entry.
func (c *Memory) Close() error {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *Memory) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Memory) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && c.now().After(e.expiresAt)
}

// evict drops expired entries, or the one expiring first when none are.
func (c *Memory) evict() {
	var (
		victim string
		oldest time.Time
	)
	for k, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, k)
			continue
		}
		// Entries without expiry go last.
		at := e.expiresAt
		if at.IsZero() {
			at = time.Unix(1<<62, 0)
		}
		if victim == "" || at.Before(oldest) {
			victim, oldest = k, at
		}
	}
	if len(c.entries) >= c.max && victim != "" {
		delete(c.entries, victim)
	}
}

var _ Cache = (*Memory)(nil)
