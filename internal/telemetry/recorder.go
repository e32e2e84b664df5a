package telemetry

import "time"

// Recorder fans every event out to both the JSON-facing Telemetry counters
// and the Prometheus Metrics collectors, so call sites (the Fetch Pipeline)
// only need one dependency instead of two.
type Recorder struct {
	T *Telemetry
	M *Metrics
}

// NewRecorder wires t and m together. m may be nil if Prometheus export is
// disabled; t must not be nil.
func NewRecorder(t *Telemetry, m *Metrics) *Recorder {
	return &Recorder{T: t, M: m}
}

func (r *Recorder) IncTotal() {
	r.T.IncTotal()
	if r.M != nil {
		r.M.IncTotal()
	}
}

func (r *Recorder) IncCacheHit() {
	r.T.IncCacheHit()
	if r.M != nil {
		r.M.IncCacheHit()
	}
}

func (r *Recorder) IncCacheWrite() {
	r.T.IncCacheWrite()
	if r.M != nil {
		r.M.IncCacheWrite()
	}
}

func (r *Recorder) IncError() {
	r.T.IncError()
	if r.M != nil {
		r.M.IncError()
	}
}

// RecordUpstreamCall records one upstream attempt; d is its duration,
// observed only by the Prometheus histogram (the JSON-facing reservoir
// tracks per-request, not per-attempt, latency — see RecordResponseTime).
func (r *Recorder) RecordUpstreamCall(d time.Duration) {
	r.T.RecordUpstreamCall()
	if r.M != nil {
		r.M.RecordUpstreamCall(d)
	}
}

// RecordResponseTime feeds the per-request response-time reservoir
// spec.md §4.7 names, on both the cache-hit and resolved-fetch paths.
func (r *Recorder) RecordResponseTime(d time.Duration) {
	r.T.RecordResponseTime(d)
	if r.M != nil {
		r.M.RecordResponseTime(d)
	}
}

// Snapshot delegates to the underlying Telemetry.
func (r *Recorder) Snapshot() Snapshot {
	return r.T.Snapshot()
}
