// Package coalesce implements the In-Flight Coalescer: at most one upstream
// call per request fingerprint in flight at any moment within a process,
// with every concurrent caller for that fingerprint receiving the same
// outcome.
//
// spec.md §9 Design Note 3 requires this be built with "the language's
// standard concurrent map + future pattern" rather than a black-box
// library, so this is a hand-rolled mutex-guarded map of in-flight futures
// rather than golang.org/x/sync/singleflight. The shape — a map keyed by
// fingerprint, each entry a channel-backed future that every waiter reads
// from — follows the same producer/waiters split the teacher's
// health.CircuitBreaker (internal/health/circuit.go) uses for its
// state-transition notifications, adapted here to a result-delivery future
// instead of a state signal.
package coalesce

import (
	"context"
	"sync"
)

// Result is the outcome of a coalesced call, delivered identically to every
// waiter for a given fingerprint.
type Result struct {
	Body []byte
	Err  error
}

// future is the shared state for one in-flight fingerprint. done is closed
// exactly once, by the single goroutine that ran produce, after result is set.
type future struct {
	done   chan struct{}
	result Result
}

// Coalescer deduplicates concurrent calls sharing the same fingerprint.
type Coalescer struct {
	mu      sync.Mutex
	pending map[string]*future
}

// New creates an empty Coalescer.
func New() *Coalescer {
	return &Coalescer{pending: make(map[string]*future)}
}

// GetOrStart runs produce for fingerprint if no call for it is already in
// flight, or waits for the in-flight call's result otherwise. Every caller
// — whether it started the call or joined an existing one — receives the
// identical Result.
//
// Caller cancellation of ctx does not abort the underlying produce call:
// GetOrStart keeps waiting for the shared future even if ctx is done,
// because the side effects of produce (Ledger increments, cache writes)
// must complete regardless of whether the caller that happened to trigger
// them is still listening (spec.md §4.4, §5). Callers that need to respect
// their own ctx should race this call against ctx.Done() themselves; the
// produced value will still land in the cache for the next caller.
func (c *Coalescer) GetOrStart(_ context.Context, fingerprint string, produce func() Result) Result {
	c.mu.Lock()
	if f, ok := c.pending[fingerprint]; ok {
		c.mu.Unlock()
		<-f.done
		return f.result
	}

	f := &future{done: make(chan struct{})}
	c.pending[fingerprint] = f
	c.mu.Unlock()

	f.result = produce()

	c.mu.Lock()
	delete(c.pending, fingerprint)
	c.mu.Unlock()

	close(f.done)
	return f.result
}

// Pending returns the number of fingerprints with a call currently in
// flight, feeding the Telemetry in-flight gauge (spec.md §4.7).
func (c *Coalescer) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
