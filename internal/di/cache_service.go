package di

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"

	"github.com/Hzrr97/open-weather-router-api/internal/cache"
	"github.com/Hzrr97/open-weather-router-api/internal/config"
)

// CacheService wraps the Result Cache behind a cache.Dynamic, following the
// teacher's CacheService (internal/di/cache_service.go). Dynamic lets
// rebuildOnReload swap in a freshly-sized backend when CACHE_TTL,
// CACHE_MAX_KEYS, or ENABLE_CACHE changes, which a snapshot *cache.Ristretto
// field could never do since Ristretto's NumCounters/MaxCost are fixed at
// construction.
type CacheService struct {
	Cache *cache.Dynamic

	mu      sync.Mutex
	sweeper *cache.Sweeper
	applied config.CacheConfig
}

// Shutdown implements do.Shutdowner for graceful cache cleanup.
func (c *CacheService) Shutdown() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sweeper != nil {
		c.sweeper.Stop()
	}
	if c.Cache != nil {
		return c.Cache.Close()
	}
	return nil
}

func buildBackend(cfg config.CacheConfig) (cache.Cache, *cache.Sweeper, error) {
	if !cfg.Enabled {
		return cache.NewNoop(), nil, nil
	}
	c, err := cache.NewRistretto(cfg.TTL, cfg.MaxKeys)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create cache: %w", err)
	}
	sweeper := cache.NewSweeper(c, cfg.TTL, nil)
	if err := sweeper.Start(context.Background()); err != nil {
		return nil, nil, fmt.Errorf("failed to start cache sweeper: %w", err)
	}
	return c, sweeper, nil
}

// rebuildOnReload swaps in a new backend whenever the reloaded Cache config
// differs from the one currently running, and stops the old sweeper once
// the swap has happened.
func (c *CacheService) rebuildOnReload(next *config.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if next.Cache == c.applied {
		return nil
	}

	backend, sweeper, err := buildBackend(next.Cache)
	if err != nil {
		return fmt.Errorf("cache reload: %w", err)
	}

	old := c.Cache.Swap(backend)
	oldSweeper := c.sweeper
	c.sweeper = sweeper
	c.applied = next.Cache

	if oldSweeper != nil {
		oldSweeper.Stop()
	}
	if old != nil {
		if closeErr := old.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close previous cache backend after reload")
		}
	}

	log.Info().Bool("enabled", next.Cache.Enabled).Dur("ttl", next.Cache.TTL).
		Int64("max_keys", next.Cache.MaxKeys).Msg("cache backend rebuilt after config reload")
	return nil
}

// NewCache creates the configured Cache implementation: Ristretto when
// enabled, a Noop stand-in otherwise so every call site can depend on the
// same interface regardless of the ENABLE_CACHE switch. It registers a
// reload callback so a later CACHE_TTL/CACHE_MAX_KEYS/ENABLE_CACHE change
// rebuilds the backend live instead of only updating an unread Config copy.
func NewCache(i do.Injector) (*CacheService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	cfg := cfgSvc.Get().Cache

	backend, sweeper, err := buildBackend(cfg)
	if err != nil {
		return nil, err
	}

	svc := &CacheService{
		Cache:   cache.NewDynamic(backend),
		sweeper: sweeper,
		applied: cfg,
	}

	cfgSvc.OnReload(svc.rebuildOnReload)

	return svc, nil
}
