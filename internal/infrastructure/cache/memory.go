package cache

import (
	"context"
	"sync"

	"github.com/boozescore/backend/internal/domain"
)

// Compile-time interface guard.
var _ domain.KVStore = (*MemoryCache)(nil)

// MemoryCache is a thread-safe in-memory key/value store
type MemoryCache struct {
	data  map[string][]byte
	mutex sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data: make(map[string][]byte),
	}
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	value, exists := c.data[key]
	if !exists {
		return nil, domain.ErrCacheMiss
	}

	// Hand out a copy so callers can't alias stored bytes
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set stores a value in the cache, replacing any previous value
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	c.data[key] = stored

	return nil
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
	return nil
}
