package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewMux wires every route onto a Go 1.22+ pattern ServeMux, following the
// teacher's mux.Handle("METHOD /path", ...) style (internal/proxy/routes.go).
// The onecall endpoint alone sits behind AppIDMiddleware; the admin and
// observability endpoints are assumed to live behind a private network
// boundary, matching spec.md §6's scoping of appid to the proxy endpoint.
func NewMux(deps *Deps) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /data/3.0/onecall", withAppID(deps, http.HandlerFunc(deps.HandleOnecall)))

	mux.HandleFunc("DELETE /data/3.0/cache", deps.HandleCacheDelete)
	mux.HandleFunc("POST /data/3.0/cache/warmup", deps.HandleCacheWarmup)
	mux.HandleFunc("GET /data/3.0/cache/info", deps.HandleCacheInfo)

	mux.HandleFunc("GET /stats", deps.HandleStats)
	mux.HandleFunc("GET /stats/detailed", deps.HandleStatsDetailed)
	mux.HandleFunc("GET /stats/keys", deps.HandleStatsKeys)
	mux.HandleFunc("GET /stats/cache", deps.HandleStatsCache)
	mux.HandleFunc("GET /stats/performance", deps.HandleStatsPerformance)
	mux.HandleFunc("GET /stats/export", deps.HandleStatsExport)

	mux.HandleFunc("GET /health", deps.HandleHealth)
	mux.HandleFunc("GET /health/detailed", deps.HandleHealthDetailed)
	mux.HandleFunc("GET /ready", deps.HandleReady)
	mux.HandleFunc("GET /live", deps.HandleLive)
	mux.HandleFunc("GET /uptime", deps.HandleUptime)
	mux.HandleFunc("GET /version", deps.HandleVersion)
	mux.Handle("GET /metrics", promhttp.Handler())

	return LoggingMiddleware(RequestIDMiddleware(mux))
}

func withAppID(deps *Deps, next http.Handler) http.Handler {
	return AppIDMiddleware(deps.AppIDKey)(next)
}
