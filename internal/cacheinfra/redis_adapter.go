package cacheinfra

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// RedisConfig configures the distributed cache backend.
type RedisConfig struct {
	// Addr is the host:port of the Redis server.
	Addr string
	// KeyPrefix namespaces this module's keys inside a shared Redis.
	KeyPrefix string
	// TTL is passed to SET on every write.
	TTL time.Duration
}

// Validate checks the configuration values.
func (c RedisConfig) Validate() error {
	if c.Addr == "" {
		return &ConfigError{Field: "Addr", Message: "cannot be empty"}
	}
	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}
	return nil
}

// redisService implements CacheService on top of Redis with
// msgpack-encoded values. Unlike the in-memory backend it performs no
// fetch deduplication: concurrent callers that miss on the same key each
// compute and overwrite the entry independently.
type redisService struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisService connects to Redis and verifies the connection with a
// bounded ping before returning the backend.
func NewRedisService(cfg RedisConfig) (*redisService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.Addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cacheinfra: redis ping: %w", err)
	}

	return NewRedisServiceWithClient(client, cfg), nil
}

// NewRedisServiceWithClient wraps an existing client. Used by tests and by
// applications that manage their own Redis connection.
func NewRedisServiceWithClient(client *redis.Client, cfg RedisConfig) *redisService {
	return &redisService{client: client, prefix: cfg.KeyPrefix, ttl: cfg.TTL}
}

func (s *redisService) prefixed(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

// GetOrFetch returns the decoded cached value for key, or runs fetchFn and
// stores its result with the configured TTL. The payload is decoded into
// the fetch function's result type, so callers get their concrete type
// back rather than a generic map.
func (s *redisService) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	if err := validateFetchFn(fetchFn); err != nil {
		return nil, err
	}

	k := s.prefixed(key)
	payload, err := s.client.Get(ctx, k).Bytes()
	if err == nil {
		return decodePayload(payload, fetchResultType(fetchFn))
	}
	if err != redis.Nil {
		return nil, fmt.Errorf("cacheinfra: redis get %q: %w", key, err)
	}

	value, err := callFetchFn(ctx, fetchFn)
	if err != nil {
		return nil, err
	}

	encoded, err := msgpack.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("cacheinfra: encode %q: %w", key, err)
	}
	if err := s.client.Set(ctx, k, encoded, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("cacheinfra: redis set %q: %w", key, err)
	}
	return value, nil
}

// Delete removes a single entry.
func (s *redisService) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefixed(key)).Err(); err != nil {
		return fmt.Errorf("cacheinfra: redis del %q: %w", key, err)
	}
	return nil
}

// DeleteByPrefix removes every entry whose key starts with prefix, scanning
// rather than blocking the server with KEYS.
func (s *redisService) DeleteByPrefix(ctx context.Context, prefix string) error {
	iter := s.client.Scan(ctx, 0, s.prefixed(prefix)+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("cacheinfra: redis del %q: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cacheinfra: redis scan %q: %w", prefix, err)
	}
	return nil
}

// decodePayload unmarshals a cached payload into a fresh value of the fetch
// function's result type.
func decodePayload(payload []byte, rt reflect.Type) (any, error) {
	ptr := reflect.New(rt)
	if err := msgpack.Unmarshal(payload, ptr.Interface()); err != nil {
		return nil, fmt.Errorf("cacheinfra: decode cached payload: %w", err)
	}
	return ptr.Elem().Interface(), nil
}
