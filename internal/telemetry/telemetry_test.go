package telemetry

import (
	"testing"
	"time"
)

type fakeGauge struct{ n int }

func (g fakeGauge) Pending() int { return g.n }

func TestSnapshot_CacheHitRate(t *testing.T) {
	t.Parallel()
	tel := New(nil)
	tel.IncTotal()
	tel.IncTotal()
	tel.IncCacheHit()

	s := tel.Snapshot()
	if s.TotalRequests != 2 {
		t.Fatalf("TotalRequests = %d, want 2", s.TotalRequests)
	}
	if s.CacheHitRate != 0.5 {
		t.Fatalf("CacheHitRate = %v, want 0.5", s.CacheHitRate)
	}
}

func TestSnapshot_ResponseTimeAverage(t *testing.T) {
	t.Parallel()
	tel := New(nil)
	tel.RecordResponseTime(100 * time.Millisecond)
	tel.RecordResponseTime(200 * time.Millisecond)

	s := tel.Snapshot()
	if s.ResponseTime.SumMS != 300 {
		t.Fatalf("SumMS = %d, want 300", s.ResponseTime.SumMS)
	}
	if s.ResponseTime.AvgMS != 150 {
		t.Fatalf("AvgMS = %v, want 150", s.ResponseTime.AvgMS)
	}
	if s.ResponseTime.MinMS != 100 || s.ResponseTime.MaxMS != 200 {
		t.Fatalf("got min=%d max=%d, want min=100 max=200", s.ResponseTime.MinMS, s.ResponseTime.MaxMS)
	}
}

func TestSnapshot_UpstreamCallsIsAttemptCountSeparateFromResponseTime(t *testing.T) {
	t.Parallel()
	tel := New(nil)
	tel.RecordUpstreamCall()
	tel.RecordUpstreamCall()
	tel.RecordUpstreamCall()
	tel.RecordResponseTime(50 * time.Millisecond)

	s := tel.Snapshot()
	if s.UpstreamCalls != 3 {
		t.Fatalf("UpstreamCalls = %d, want 3", s.UpstreamCalls)
	}
	if s.ResponseTime.SumMS != 50 {
		t.Fatalf("SumMS = %d, want 50 (one response recorded, not three)", s.ResponseTime.SumMS)
	}
}

func TestSnapshot_InFlightFromGauge(t *testing.T) {
	t.Parallel()
	tel := New(fakeGauge{n: 3})
	if got := tel.Snapshot().InFlight; got != 3 {
		t.Fatalf("InFlight = %d, want 3", got)
	}
}

func TestSnapshot_NoRequestsHasZeroHitRate(t *testing.T) {
	t.Parallel()
	tel := New(nil)
	if got := tel.Snapshot().CacheHitRate; got != 0 {
		t.Fatalf("CacheHitRate = %v, want 0", got)
	}
}
