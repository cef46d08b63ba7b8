// Package di wires the cache service and key generator into a reusable
// container so applications declare them once and build one repository per
// entity from it.
package di

import (
	"github.com/uptrace/bun"

	"github.com/goliatone/go-paged-query/cache"
	"github.com/goliatone/go-paged-query/pagedrepo"
	"github.com/goliatone/go-paged-query/query"
)

// Container holds the singletons shared by every paged repository: the
// cache backend and the key generator.
type Container struct {
	cacheService cache.CacheService
	keys         cache.KeyGenerator
	config       cache.Config
}

// NewContainer builds a container from the given cache configuration.
func NewContainer(config cache.Config) (*Container, error) {
	cacheService, err := cache.NewCacheService(config)
	if err != nil {
		return nil, err
	}

	return &Container{
		cacheService: cacheService,
		keys:         cache.NewKeyGenerator(),
		config:       config,
	}, nil
}

// NewContainerWithDefaults builds a container with the default in-memory
// cache and a 15 minute TTL.
func NewContainerWithDefaults() (*Container, error) {
	return NewContainer(cache.DefaultConfig())
}

// NewContainerFromEnv builds a container configured from PAGEDQ_CACHE_*
// environment variables.
func NewContainerFromEnv() (*Container, error) {
	cfg, err := cache.LoadConfig()
	if err != nil {
		return nil, err
	}
	return NewContainer(cfg)
}

// CacheService returns the shared cache backend.
func (c *Container) CacheService() cache.CacheService {
	return c.cacheService
}

// KeyGenerator returns the shared key generator.
func (c *Container) KeyGenerator() cache.KeyGenerator {
	return c.keys
}

// Config returns a copy of the cache configuration in use.
func (c *Container) Config() cache.Config {
	return c.config
}

// NewRepository builds a paged repository for one entity from the
// container's singletons. Methods cannot have type parameters, so this is a
// package-level function:
//
//	repo := di.NewRepository[Product](container, bunDB, productSchema)
func NewRepository[T any](c *Container, db *bun.DB, schema *query.Schema, opts ...pagedrepo.Option[T]) *pagedrepo.Repository[T] {
	opts = append([]pagedrepo.Option[T]{pagedrepo.WithKeyGenerator[T](c.keys)}, opts...)
	return pagedrepo.New[T](db, schema, c.cacheService, opts...)
}
