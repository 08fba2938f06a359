// Package infra provides shared infrastructure components used across
// the application: caching, rate limiting, HTTP utilities, logging and
// metrics.
package infra

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Store is a byte-oriented cache with per-entry TTL. Implementations must be
// safe for concurrent use. A miss is (nil, false, nil).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Name() string
	Close() error
}

// StoreConfig selects and configures a Store backend.
type StoreConfig struct {
	Backend   string // "memory", "redis", "badger", "none"
	RedisURL  string
	BadgerDir string
	TTL       time.Duration
}

// OpenStore builds the configured store backend.
func OpenStore(ctx context.Context, cfg StoreConfig) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "memory":
		return NewMemoryStore(cfg.TTL), nil
	case "none":
		return NoopStore{}, nil
	case "redis":
		return NewRedisStore(ctx, cfg.RedisURL)
	case "badger":
		return NewBadgerStore(cfg.BadgerDir)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// --- Simple in-memory cache ---

// CacheEntry holds a cached value with expiration.
type CacheEntry struct {
	Value     []byte
	ExpiresAt time.Time
}

// MemoryStore is a simple thread-safe in-memory cache with TTL. Expired
// entries are dropped when read and swept at most once per default TTL on
// writes, so keys that are never read again do not accumulate.
type MemoryStore struct {
	mu        sync.RWMutex
	entries   map[string]CacheEntry
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

// NewMemoryStore creates a new cache with the given default TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &MemoryStore{
		entries:   make(map[string]CacheEntry),
		ttl:       ttl,
		now:       time.Now,
		lastSweep: time.Now(),
	}
}

func (c *MemoryStore) Name() string { return "memory" }

// Get retrieves a value from the cache.
func (c *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if now := c.now(); now.After(entry.ExpiresAt) {
		c.mu.Lock()
		// Re-check: a concurrent Set may have refreshed the key.
		if e, ok := c.entries[key]; ok && now.After(e.ExpiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}
	return entry.Value, true, nil
}

// Set stores a value; ttl <= 0 uses the default TTL.
func (c *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}
	now := c.now()
	c.mu.Lock()
	c.entries[key] = CacheEntry{
		Value:     value,
		ExpiresAt: now.Add(ttl),
	}
	if now.Sub(c.lastSweep) >= c.ttl {
		c.sweepLocked(now)
	}
	c.mu.Unlock()
	return nil
}

// Delete removes a key from the cache.
func (c *MemoryStore) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

func (c *MemoryStore) sweepLocked(now time.Time) {
	for k, v := range c.entries {
		if now.After(v.ExpiresAt) {
			delete(c.entries, k)
		}
	}
	c.lastSweep = now
}

func (c *MemoryStore) Close() error { return nil }

// NoopStore never stores anything.
type NoopStore struct{}

func (NoopStore) Get(context.Context, string) ([]byte, bool, error)         { return nil, false, nil }
func (NoopStore) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NoopStore) Delete(context.Context, string) error                     { return nil }
func (NoopStore) Name() string                                             { return "none" }
func (NoopStore) Close() error                                             { return nil }
