package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/boozescore/backend/internal/domain"
)

// DefaultCacheTTL is the validity window of a cached catalog
const DefaultCacheTTL = 30 * time.Minute

// DefaultCacheKey is the fixed key the catalog is persisted under
const DefaultCacheKey = "ProductData"

// EpochMillis is a Unix timestamp in milliseconds. It decodes from either a
// JSON number or a numeric string.
type EpochMillis int64

// UnmarshalJSON implements json.Unmarshaler
func (e *EpochMillis) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	*e = EpochMillis(v)
	return nil
}

// Time converts to time.Time
func (e EpochMillis) Time() time.Time {
	return time.UnixMilli(int64(e))
}

// CacheEntry is the persisted catalog record
type CacheEntry struct {
	Products  []domain.Product `json:"products"`
	Timestamp *EpochMillis     `json:"timestamp"`
}

// CacheStoreConfig holds configuration for the cache store
type CacheStoreConfig struct {
	TTL      time.Duration
	Now      func() time.Time
	Logger   *zap.Logger
	Recorder Recorder
}

// CacheStore gates a KVStore with a time-to-live. Unreadable or stale
// entries are reported as misses, never as errors.
type CacheStore struct {
	kv       domain.KVStore
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
	recorder Recorder
}

// NewCacheStore creates a cache store over kv
func NewCacheStore(kv domain.KVStore, config CacheStoreConfig) *CacheStore {
	ttl := config.TTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	recorder := config.Recorder
	if recorder == nil {
		recorder = NopRecorder{}
	}

	return &CacheStore{
		kv:       kv,
		ttl:      ttl,
		now:      now,
		logger:   logger,
		recorder: recorder,
	}
}

// TTL returns the configured validity window
func (s *CacheStore) TTL() time.Duration {
	return s.ttl
}

// Get returns the entry under key if it is fresh and non-empty
func (s *CacheStore) Get(ctx context.Context, key string) (CacheEntry, bool) {
	entry, ok := s.read(ctx, key)
	if !ok || !s.valid(entry) {
		s.recorder.CacheMiss()
		return CacheEntry{}, false
	}
	s.recorder.CacheHit()
	return entry, true
}

// Last returns any readable entry under key, regardless of age
func (s *CacheStore) Last(ctx context.Context, key string) (CacheEntry, bool) {
	return s.read(ctx, key)
}

// Put overwrites the entry under key
func (s *CacheStore) Put(ctx context.Context, key string, entry CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := s.kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
	}
	return nil
}

// Delete removes the entry under key
func (s *CacheStore) Delete(ctx context.Context, key string) error {
	if err := s.kv.Delete(ctx, key); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
	}
	return nil
}

// Stamp wraps products in an entry timestamped with the current time
func (s *CacheStore) Stamp(products []domain.Product) CacheEntry {
	ts := EpochMillis(s.now().UnixMilli())
	return CacheEntry{Products: products, Timestamp: &ts}
}

func (s *CacheStore) read(ctx context.Context, key string) (CacheEntry, bool) {
	data, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return CacheEntry{}, false
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		s.logger.Warn("invalid data in cache", zap.String("key", key), zap.Error(err))
		return CacheEntry{}, false
	}
	if entry.Timestamp == nil {
		return CacheEntry{}, false
	}
	return entry, true
}

func (s *CacheStore) valid(entry CacheEntry) bool {
	age := s.now().Sub(entry.Timestamp.Time())
	return age < s.ttl && len(entry.Products) > 0
}
