package cache

import (
	"sync"
	"time"
)

// Kind partitions entries; each kind has its own TTL.
type Kind string

const (
	KindCredential Kind = "credential"
	KindProduct    Kind = "product"
	KindPrice      Kind = "price"
)

// Policy maps each kind to the time an entry stays valid after it is stored.
// Kinds without a positive TTL are never served.
type Policy map[Kind]time.Duration

// DefaultPolicy refreshes credentials 10 minutes before their 60-minute expiry.
func DefaultPolicy() Policy {
	return Policy{
		KindCredential: 50 * time.Minute,
		KindProduct:    15 * time.Minute,
		KindPrice:      5 * time.Minute,
	}
}

type key struct {
	kind Kind
	id   string
}

type entry struct {
	value    any
	storedAt time.Time
}

// Cache is an in-process TTL map. Staleness is checked on read; nothing is
// evicted, a stale entry is simply overwritten by the next Set.
type Cache struct {
	mu      sync.RWMutex
	entries map[key]entry
	policy  Policy
	nowFunc func() time.Time
}

// New creates a cache using the wall clock.
func New(policy Policy) *Cache {
	return NewWithClock(policy, time.Now)
}

// NewWithClock creates a cache reading time from now.
func NewWithClock(policy Policy, now func() time.Time) *Cache {
	p := make(Policy, len(policy))
	for k, v := range policy {
		p[k] = v
	}
	return &Cache{
		entries: map[key]entry{},
		policy:  p,
		nowFunc: now,
	}
}

// Get returns the value stored under (kind, id) if it is still valid.
func (c *Cache) Get(kind Kind, id string) (any, bool) {
	ttl := c.policy[kind]
	if ttl <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.entries[key{kind, id}]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.nowFunc().Sub(e.storedAt) >= ttl {
		return nil, false
	}
	return e.value, true
}

// Set stores value under (kind, id) stamped with the current time.
func (c *Cache) Set(kind Kind, id string, value any) {
	now := c.nowFunc()
	c.mu.Lock()
	c.entries[key{kind, id}] = entry{value: value, storedAt: now}
	c.mu.Unlock()
}

// TTL reports the configured lifetime of a kind.
func (c *Cache) TTL(kind Kind) time.Duration {
	return c.policy[kind]
}

// Len counts stored entries, stale ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Lookup is Get with a type assertion; a value of another type is a miss.
func Lookup[T any](c *Cache, kind Kind, id string) (T, bool) {
	var zero T
	v, ok := c.Get(kind, id)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
