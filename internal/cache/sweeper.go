package cache

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Sweeper periodically samples a Cache's size and statistics, satisfying
// spec.md §4.3's requirement that a periodic sweep of expired entries be
// part of the design regardless of backend. Ristretto itself already runs
// an internal goroutine that expires TTL'd buckets lazily as they're
// touched; Sweeper's job is the externally-visible half of that contract —
// keeping telemetry's key-count gauge current and giving operators a log
// line to confirm the cache isn't growing unbounded — and is the seam a
// future backend without built-in expiry would hook eviction into.
//
// Grounded on mercator-hq-jupiter's use of robfig/cron/v3 for scheduled
// background jobs, adopted here since the teacher itself has no periodic
// job runner.
type Sweeper struct {
	cache    Cache
	cron     *cron.Cron
	interval time.Duration
	onTick   func(Stats)
}

// NewSweeper creates a Sweeper over cache, running every interval. onTick,
// if non-nil, receives each sample (used to feed telemetry).
func NewSweeper(c Cache, interval time.Duration, onTick func(Stats)) *Sweeper {
	return &Sweeper{
		cache:    c,
		cron:     cron.New(cron.WithSeconds()),
		interval: interval,
		onTick:   onTick,
	}
}

// Start schedules the sweep and returns immediately; the cron scheduler
// runs its own goroutine.
func (s *Sweeper) Start(ctx context.Context) error {
	spec := "@every " + s.interval.String()
	_, err := s.cron.AddFunc(spec, func() { s.sweep(ctx) })
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Sweeper) sweep(_ context.Context) {
	stats := s.cache.Stats()
	log.Debug().
		Uint64("key_count", stats.KeyCount).
		Uint64("hits", stats.Hits).
		Uint64("misses", stats.Misses).
		Uint64("evictions", stats.Evictions).
		Msg("cache sweep")
	if s.onTick != nil {
		s.onTick(stats)
	}
}

// Stop halts the scheduler and waits for any in-flight sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}
