package cache

import (
	"context"
	"sync/atomic"
)

// Dynamic wraps a Cache behind an atomically-swappable pointer so a config
// reload can rebuild the backend (new TTL, new MaxKeys, enabled/disabled)
// without every holder of the Cache interface needing to learn about the
// swap — the same atomic-pointer idiom config.Runtime uses for Config
// itself (internal/config/runtime.go).
type Dynamic struct {
	ptr atomic.Pointer[Cache]
}

// NewDynamic wraps initial behind a Dynamic.
func NewDynamic(initial Cache) *Dynamic {
	d := &Dynamic{}
	d.ptr.Store(&initial)
	return d
}

func (d *Dynamic) current() Cache {
	return *d.ptr.Load()
}

// Swap atomically replaces the backend and returns the one it replaced, so
// the caller can Close it once in-flight callers have moved off it.
func (d *Dynamic) Swap(next Cache) Cache {
	old := d.current()
	d.ptr.Store(&next)
	return old
}

func (d *Dynamic) Get(ctx context.Context, fingerprint string) ([]byte, bool) {
	return d.current().Get(ctx, fingerprint)
}

func (d *Dynamic) Set(ctx context.Context, fingerprint string, body []byte) {
	d.current().Set(ctx, fingerprint, body)
}

func (d *Dynamic) Clear(ctx context.Context) int {
	return d.current().Clear(ctx)
}

func (d *Dynamic) Size() int {
	return d.current().Size()
}

func (d *Dynamic) Stats() Stats {
	return d.current().Stats()
}

func (d *Dynamic) Close() error {
	return d.current().Close()
}

var _ Cache = (*Dynamic)(nil)
