package jira

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// CacheType represents the type of cache backend.
type CacheType string

const (
	// CacheTypeMemory keeps metadata in process memory.
	CacheTypeMemory CacheType = "memory"

	// CacheTypeNATS keeps metadata in a NATS JetStream key-value bucket so it
	// survives restarts and is shared between processes.
	CacheTypeNATS CacheType = "nats"

	// CacheTypeNone disables caching.
	CacheTypeNone CacheType = "none"
)

// MetadataCache stores endpoint scoped metadata (field, priority, status and
// resolution definitions) as raw JSON. Keys are prefixed with the endpoint.
type MetadataCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error

	// Clear removes every key starting with prefix; an empty prefix removes
	// everything.
	Clear(ctx context.Context, prefix string) error

	// Close releases connections held by the backend.
	Close() error
}

// CacheConfig selects and configures the metadata cache backend.
type CacheConfig struct {
	Type CacheType
	NATS *NATSKVConfig
}

// DefaultCacheConfig returns the in-memory configuration.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{Type: CacheTypeMemory}
}

// NewCacheFromConfig creates a cache backend from configuration.
func NewCacheFromConfig(ctx context.Context, config *CacheConfig) (MetadataCache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	switch config.Type {
	case CacheTypeMemory, "":
		return NewMemoryCache(), nil

	case CacheTypeNATS:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		return NewNATSKVCache(ctx, config.NATS)

	case CacheTypeNone:
		return NewNoOpCache(), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCacheType, config.Type)
	}
}

// MemoryCache is a MetadataCache backed by a map.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemoryCache creates an empty memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string][]byte)}
}

// Get returns a copy of the data stored under key.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, ok := c.items[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCacheMiss, key)
	}

	return append([]byte(nil), data...), nil
}

// Set stores a copy of data under key.
func (c *MemoryCache) Set(_ context.Context, key string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = append([]byte(nil), data...)

	return nil
}

// Delete removes key.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)

	return nil
}

// Clear removes every key starting with prefix.
func (c *MemoryCache) Clear(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}

	return nil
}

// Close does nothing; the map is left to the garbage collector.
func (c *MemoryCache) Close() error { return nil }

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// NoOpCache is a cache that does nothing (no caching).
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache.
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Get always returns an error (nothing cached).
func (c *NoOpCache) Get(context.Context, string) ([]byte, error) {
	return nil, ErrCacheDisabled
}

// Set does nothing.
func (c *NoOpCache) Set(context.Context, string, []byte) error { return nil }

// Delete does nothing.
func (c *NoOpCache) Delete(context.Context, string) error { return nil }

// Clear does nothing.
func (c *NoOpCache) Clear(context.Context, string) error { return nil }

// Close does nothing.
func (c *NoOpCache) Close() error { return nil }
