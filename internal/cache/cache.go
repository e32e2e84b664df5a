// Package cache implements the Result Cache: a bounded, TTL-bound store of
// upstream response bodies keyed by request fingerprint.
//
// Grounded on the teacher's cache package (internal/cache/cache.go,
// ristretto.go), narrowed to this spec's single backend (Ristretto) and
// single value shape (an immutable response body). Per spec.md §4.3 the
// cache must not clone bodies on read — callers treat them as immutable —
// which is a deliberate departure from the teacher's ristrettoCache.Get,
// which defensively copies on every read.
package cache

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a closed Cache.
var ErrClosed = errors.New("cache: closed")

// Stats mirrors the teacher's cache.Stats (internal/cache/cache.go) for
// observability parity across admin endpoints.
type Stats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	KeyCount  uint64 `json:"key_count"`
	BytesUsed uint64 `json:"bytes_used"`
	Evictions uint64 `json:"evictions"`
}

// Cache is the Result Cache's interface: Get/Set operate on a request
// fingerprint and the upstream response body it maps to.
//
// Implementations must be safe for concurrent use. When caching is globally
// disabled, Get always misses and Set is a no-op (the Noop implementation).
type Cache interface {
	// Get returns the cached body for fingerprint, or (nil, false) on a
	// miss or expiry. The returned slice is the cache's own backing array;
	// callers must not mutate it.
	Get(ctx context.Context, fingerprint string) ([]byte, bool)

	// Set stores body under fingerprint with the cache's configured TTL.
	Set(ctx context.Context, fingerprint string, body []byte)

	// Clear evicts every entry and returns the number removed.
	Clear(ctx context.Context) int

	// Size returns the current number of live entries.
	Size() int

	// Stats returns current cache statistics.
	Stats() Stats

	// Close releases backend resources. Idempotent.
	Close() error
}
