package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics wires Telemetry's counters into Prometheus collectors, exposed at
// /metrics. prometheus/client_golang is not a teacher dependency — it is
// pulled in from mercator-hq-jupiter's stack (SPEC_FULL.md §4) to give
// owm-relay a scrape-friendly surface alongside the JSON /stats endpoints
// the onecall proxy itself defines.
type Metrics struct {
	totalRequests prometheus.Counter
	cacheHits     prometheus.Counter
	cacheWrites   prometheus.Counter
	upstreamCalls prometheus.Counter
	errors        prometheus.Counter
	inFlight      prometheus.GaugeFunc
	upstreamTime  prometheus.Histogram
	responseTime  prometheus.Histogram
}

// NewMetrics creates and registers owm-relay's Prometheus collectors
// against reg. gauge supplies the live in-flight count.
func NewMetrics(reg prometheus.Registerer, gauge PendingGauge) *Metrics {
	m := &Metrics{
		totalRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "owm_relay_requests_total",
			Help: "Total number of /data/3.0/onecall requests received.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "owm_relay_cache_hits_total",
			Help: "Total number of Result Cache hits.",
		}),
		cacheWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "owm_relay_cache_writes_total",
			Help: "Total number of Result Cache inserts.",
		}),
		upstreamCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "owm_relay_upstream_calls_total",
			Help: "Total number of upstream OpenWeatherMap calls attempted.",
		}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "owm_relay_errors_total",
			Help: "Total number of attributable upstream failures.",
		}),
		upstreamTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "owm_relay_upstream_attempt_time_seconds",
			Help:    "Observed upstream response time per individual attempt.",
			Buckets: prometheus.DefBuckets,
		}),
		responseTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "owm_relay_response_time_seconds",
			Help:    "Observed end-to-end response time per onecall request, cache hits included.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	gaugeFn := func() float64 { return 0 }
	if gauge != nil {
		gaugeFn = func() float64 { return float64(gauge.Pending()) }
	}
	m.inFlight = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "owm_relay_in_flight_fingerprints",
		Help: "Number of distinct request fingerprints currently in flight.",
	}, gaugeFn)

	reg.MustRegister(
		m.totalRequests, m.cacheHits, m.cacheWrites,
		m.upstreamCalls, m.errors, m.upstreamTime, m.responseTime, m.inFlight,
	)

	return m
}

// IncTotal, IncCacheHit, IncCacheWrite and IncError mirror the matching
// Telemetry events into the Prometheus collectors. Callers
// that already call the corresponding Telemetry method should call the
// matching Metrics method alongside it; Metrics deliberately doesn't wrap
// Telemetry so either can be used standalone in tests.
func (m *Metrics) IncTotal()      { m.totalRequests.Inc() }
func (m *Metrics) IncCacheHit()   { m.cacheHits.Inc() }
func (m *Metrics) IncCacheWrite() { m.cacheWrites.Inc() }
func (m *Metrics) IncError()      { m.errors.Inc() }

// RecordUpstreamCall observes one upstream attempt's duration in the
// attempt-level histogram, separate from the end-to-end request histogram
// RecordResponseTime feeds.
func (m *Metrics) RecordUpstreamCall(d time.Duration) {
	m.upstreamCalls.Inc()
	m.upstreamTime.Observe(d.Seconds())
}

// RecordResponseTime observes one logical request's end-to-end duration,
// cache hits included.
func (m *Metrics) RecordResponseTime(d time.Duration) {
	m.responseTime.Observe(d.Seconds())
}
