package cacheinfra

import (
	"context"
	"strings"
	"time"

	"github.com/viccon/sturdyc"
)

// MemoryConfig sizes the in-process sturdyc cache.
type MemoryConfig struct {
	// Capacity is the maximum number of entries.
	Capacity int
	// NumShards controls concurrency; more shards, less lock contention.
	NumShards int
	// TTL is how long entries live after being stored.
	TTL time.Duration
	// EvictionPercentage is the share of entries evicted when the cache
	// hits capacity, between 1 and 100.
	EvictionPercentage int
}

// DefaultMemoryConfig mirrors the library-wide defaults: 15 minute TTL,
// ten thousand entries across 256 shards.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		Capacity:           10000,
		NumShards:          256,
		TTL:                15 * time.Minute,
		EvictionPercentage: 10,
	}
}

// Validate checks the configuration values.
func (c MemoryConfig) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}
	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}
	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}
	return nil
}

// sturdycService adapts a sturdyc client to the CacheService contract.
// sturdyc deduplicates concurrent fetches for the same key within this
// process; that is a property of this backend, not a guarantee of the
// cache-aside layer.
type sturdycService struct {
	client *sturdyc.Client[any]
}

// NewSturdycService builds the in-memory cache backend.
func NewSturdycService(cfg MemoryConfig) (*sturdycService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[any](cfg.Capacity, cfg.NumShards, cfg.TTL, cfg.EvictionPercentage)
	return &sturdycService{client: client}, nil
}

// GetOrFetch returns the cached value for key or computes it via fetchFn.
func (s *sturdycService) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	if err := validateFetchFn(fetchFn); err != nil {
		return nil, err
	}

	return s.client.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return callFetchFn(ctx, fetchFn)
	})
}

// Delete removes a single entry.
func (s *sturdycService) Delete(ctx context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// DeleteByPrefix removes every entry whose key starts with prefix.
func (s *sturdycService) DeleteByPrefix(ctx context.Context, prefix string) error {
	for _, key := range s.client.ScanKeys() {
		if strings.HasPrefix(key, prefix) {
			s.client.Delete(key)
		}
	}
	return nil
}
