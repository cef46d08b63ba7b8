package cache

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/goliatone/go-paged-query/internal/cacheinfra"
)

// Backend selects the cache implementation behind CacheService.
type Backend string

const (
	// BackendMemory runs the in-process sturdyc cache. Reads after a miss
	// are deduplicated by sturdyc within this process only.
	BackendMemory Backend = "memory"
	// BackendRedis shares entries across processes through Redis, with
	// msgpack-encoded values. No cross-caller deduplication is performed.
	BackendRedis Backend = "redis"
)

// Config drives cache construction for both backends. Load it from the
// environment with LoadConfig or start from DefaultConfig.
type Config struct {
	Backend Backend `envconfig:"BACKEND" default:"memory"`

	// TTL applies to every entry. List results keep their fixed TTL; no
	// write path in this module refreshes or invalidates them implicitly.
	TTL time.Duration `envconfig:"TTL" default:"15m"`

	// Capacity and NumShards size the in-memory backend.
	Capacity  int `envconfig:"CAPACITY" default:"10000"`
	NumShards int `envconfig:"NUM_SHARDS" default:"256"`
	// EvictionPercentage is how much of the in-memory cache is evicted
	// when capacity is reached, in percent.
	EvictionPercentage int `envconfig:"EVICTION_PERCENTAGE" default:"10"`

	// RedisAddr and RedisKeyPrefix configure the redis backend.
	RedisAddr      string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisKeyPrefix string `envconfig:"REDIS_KEY_PREFIX" default:"pagedq"`
}

// DefaultConfig returns the in-memory backend with a 15 minute TTL.
func DefaultConfig() Config {
	var cfg Config
	// envconfig fills struct defaults when the environment is empty.
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{
			Backend:            BackendMemory,
			TTL:                15 * time.Minute,
			Capacity:           10000,
			NumShards:          256,
			EvictionPercentage: 10,
			RedisAddr:          "localhost:6379",
			RedisKeyPrefix:     "pagedq",
		}
	}
	return cfg
}

// LoadConfig reads configuration from PAGEDQ_CACHE_* environment variables,
// falling back to the struct defaults for anything unset.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("pagedq_cache", &cfg); err != nil {
		return Config{}, fmt.Errorf("cache: load config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration before construction.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("cache: unknown backend %q", c.Backend)
	}
	if c.TTL <= 0 {
		return fmt.Errorf("cache: TTL must be greater than 0")
	}
	if c.Backend == BackendMemory {
		return c.toMemory().Validate()
	}
	if c.RedisAddr == "" {
		return fmt.Errorf("cache: redis backend requires an address")
	}
	return nil
}

// NewCacheService constructs the configured cache backend.
func NewCacheService(cfg Config) (CacheService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case BackendRedis:
		return cacheinfra.NewRedisService(cfg.toRedis())
	default:
		return cacheinfra.NewSturdycService(cfg.toMemory())
	}
}

func (c Config) toMemory() cacheinfra.MemoryConfig {
	return cacheinfra.MemoryConfig{
		Capacity:           c.Capacity,
		NumShards:          c.NumShards,
		TTL:                c.TTL,
		EvictionPercentage: c.EvictionPercentage,
	}
}

func (c Config) toRedis() cacheinfra.RedisConfig {
	return cacheinfra.RedisConfig{
		Addr:      c.RedisAddr,
		KeyPrefix: c.RedisKeyPrefix,
		TTL:       c.TTL,
	}
}
