// Package telemetry tracks owm-relay's own operational counters and
// response-time distribution, independent of any single request.
//
// The teacher has no dedicated metrics package — health.Tracker
// (internal/health/tracker.go) tracks per-provider circuit state with a
// mutex-guarded map, the closest analogue in shape. Telemetry keeps only the
// response-time reservoir behind a sync.Mutex and uses atomic counters for
// the hot path (every request touches Telemetry; only admin endpoints read
// it back). It keeps no per-credential breakdown.
package telemetry

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot is a read-only, concurrency-safe point-in-time view of
// Telemetry's counters (spec.md §4.7).
type Snapshot struct {
	TotalRequests uint64  `json:"total_requests"`
	CacheHits     uint64  `json:"cache_hits"`
	CacheWrites   uint64  `json:"cache_writes"`
	UpstreamCalls uint64  `json:"upstream_calls"`
	Errors        uint64  `json:"errors"`
	InFlight      int     `json:"in_flight"`
	ResponseTime  Latency `json:"response_time_ms"`
	CacheHitRate  float64 `json:"cache_hit_rate"`
}

// Latency summarizes the response-time reservoir.
type Latency struct {
	SumMS uint64  `json:"sum_ms"`
	MaxMS uint64  `json:"max_ms"`
	MinMS uint64  `json:"min_ms"`
	AvgMS float64 `json:"avg_ms"`
}

// PendingGauge reports the number of fingerprints currently in flight. The
// Coalescer implements this.
type PendingGauge interface {
	Pending() int
}

// Telemetry holds owm-relay's process-wide counters.
type Telemetry struct {
	totalRequests atomic.Uint64
	cacheHits     atomic.Uint64
	cacheWrites   atomic.Uint64
	upstreamCalls atomic.Uint64
	errors        atomic.Uint64

	mu       sync.Mutex
	sumMS    uint64
	maxMS    uint64
	minMS    uint64
	sampled  bool
	samples  uint64

	gauge PendingGauge
}

// New creates an empty Telemetry. gauge supplies the in-flight count; pass
// nil if no coalescer is wired (the gauge then always reads 0).
func New(gauge PendingGauge) *Telemetry {
	return &Telemetry{gauge: gauge}
}

// IncTotal records one incoming request, cache hit or miss alike.
func (t *Telemetry) IncTotal() {
	t.totalRequests.Add(1)
}

// IncCacheHit records a Result Cache hit.
func (t *Telemetry) IncCacheHit() {
	t.cacheHits.Add(1)
}

// IncCacheWrite records a Result Cache insert.
func (t *Telemetry) IncCacheWrite() {
	t.cacheWrites.Add(1)
}

// IncError records one attributable upstream failure.
func (t *Telemetry) IncError() {
	t.errors.Add(1)
}

// RecordUpstreamCall records one upstream attempt (success or failure).
// This is an attempt count, not a per-request one: a single logical
// GetWeather call that fails over across several credentials or retry
// rounds increments this once per attempt. See RecordResponseTime for the
// per-request latency spec.md §4.7 names.
func (t *Telemetry) RecordUpstreamCall() {
	t.upstreamCalls.Add(1)
}

// RecordResponseTime feeds the response-time reservoir spec.md §4.7 calls
// for: the wall-clock duration of one logical GetWeather call as seen by
// its caller, cache hit or miss alike. Call once per caller — including
// once per coalesced waiter, since each experienced its own wait — never
// once per upstream attempt.
func (t *Telemetry) RecordResponseTime(d time.Duration) {
	ms := uint64(d.Milliseconds())
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sumMS += ms
	t.samples++
	if !t.sampled || ms > t.maxMS {
		t.maxMS = ms
	}
	if !t.sampled || ms < t.minMS {
		t.minMS = ms
	}
	t.sampled = true
}

// Snapshot returns a consistent, concurrency-safe view of every counter.
func (t *Telemetry) Snapshot() Snapshot {
	t.mu.Lock()
	lat := Latency{SumMS: t.sumMS, MaxMS: t.maxMS, MinMS: t.minMS}
	samples := t.samples
	t.mu.Unlock()

	if samples > 0 {
		lat.AvgMS = float64(lat.SumMS) / float64(samples)
	}

	total := t.totalRequests.Load()
	hits := t.cacheHits.Load()
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	pending := 0
	if t.gauge != nil {
		pending = t.gauge.Pending()
	}

	return Snapshot{
		TotalRequests: total,
		CacheHits:     hits,
		CacheWrites:   t.cacheWrites.Load(),
		UpstreamCalls: t.upstreamCalls.Load(),
		Errors:        t.errors.Load(),
		InFlight:      pending,
		ResponseTime:  lat,
		CacheHitRate:  hitRate,
	}
}
