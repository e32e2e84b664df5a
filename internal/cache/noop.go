package cache

import "context"

// Noop is the Result Cache used when ENABLE_CACHE is false: Get always
// misses and Set is a no-op, following the teacher's noopCache
// (internal/cache/noop.go).
type Noop struct{}

// NewNoop creates a disabled Result Cache.
func NewNoop() *Noop { return &Noop{} }

func (Noop) Get(_ context.Context, _ string) ([]byte, bool) { return nil, false }
func (Noop) Set(_ context.Context, _ string, _ []byte)      {}
func (Noop) Clear(_ context.Context) int                    { return 0 }
func (Noop) Size() int                                      { return 0 }
func (Noop) Stats() Stats                                   { return Stats{} }
func (Noop) Close() error                                   { return nil }

var _ Cache = (*Noop)(nil)
