package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/rs/zerolog/log"
)

// Ristretto is the production Result Cache backend, grounded on the
// teacher's ristrettoCache (internal/cache/ristretto.go). NumCounters is
// sized off MaxKeys per Ristretto's own admission-policy guidance (roughly
// 10x the expected key count), and cost is the response body's byte length,
// so CacheMaxKeys behaves as an approximate working-set bound rather than a
// hard key-count cap — any bounded eviction policy satisfies spec.md §4.3,
// and Ristretto's own cost-based LFU admission is what the pack offers for it.
type Ristretto struct {
	cache   *ristretto.Cache[string, []byte]
	ttl     time.Duration
	maxCost int64
	closed  atomic.Bool
}

// NewRistretto creates a Ristretto-backed Cache. ttl is applied to every
// Set; maxKeys bounds the admission policy's cost budget (one cost unit per
// response byte).
func NewRistretto(ttl time.Duration, maxKeys int64) (*Ristretto, error) {
	numCounters := maxKeys * 10
	if numCounters < 1000 {
		numCounters = 1000
	}
	maxCost := maxKeys * 4096 // assume ~4KB average onecall response body

	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: numCounters,
		MaxCost:     maxCost,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("num_counters", numCounters).
		Int64("max_cost", maxCost).
		Dur("ttl", ttl).
		Msg("result cache created")

	return &Ristretto{cache: c, ttl: ttl, maxCost: maxCost}, nil
}

// Get returns the cache's own backing slice for fingerprint without
// cloning, per spec.md §4.3.
func (r *Ristretto) Get(_ context.Context, fingerprint string) ([]byte, bool) {
	if r.closed.Load() {
		return nil, false
	}
	return r.cache.Get(fingerprint)
}

// Set stores body under fingerprint with the configured TTL. Cost is the
// body's byte length; Ristretto evicts lower-value entries once the cost
// budget is exceeded.
func (r *Ristretto) Set(_ context.Context, fingerprint string, body []byte) {
	if r.closed.Load() {
		return
	}
	r.cache.SetWithTTL(fingerprint, body, int64(len(body)), r.ttl)
}

// Clear evicts every entry and returns Ristretto's pre-clear key count.
func (r *Ristretto) Clear(_ context.Context) int {
	if r.closed.Load() {
		return 0
	}
	n := r.Size()
	r.cache.Clear()
	return n
}

// Size returns the net key count tracked by Ristretto's metrics
// (added minus evicted), matching the teacher's Stats.KeyCount derivation.
func (r *Ristretto) Size() int {
	if r.closed.Load() {
		return 0
	}
	m := r.cache.Metrics
	return int(m.KeysAdded() - m.KeysEvicted())
}

// Stats returns current cache statistics.
func (r *Ristretto) Stats() Stats {
	if r.closed.Load() {
		return Stats{}
	}
	m := r.cache.Metrics
	return Stats{
		Hits:      m.Hits(),
		Misses:    m.Misses(),
		KeyCount:  m.KeysAdded() - m.KeysEvicted(),
		BytesUsed: m.CostAdded() - m.CostEvicted(),
		Evictions: m.KeysEvicted(),
	}
}

// Close releases Ristretto's background goroutines. Idempotent.
func (r *Ristretto) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	r.cache.Wait()
	r.cache.Close()
	return nil
}

var _ Cache = (*Ristretto)(nil)
