package httpapi

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Hzrr97/open-weather-router-api/internal/cache"
	"github.com/Hzrr97/open-weather-router-api/internal/config"
	"github.com/Hzrr97/open-weather-router-api/internal/fetch"
	"github.com/Hzrr97/open-weather-router-api/internal/ledger"
	"github.com/Hzrr97/open-weather-router-api/internal/telemetry"
)

// maxWarmupLocations bounds the warmup endpoint's batch size (spec.md §6).
const maxWarmupLocations = 100

// Deps bundles every dependency the HTTP layer needs to serve a request.
// Grounded on the teacher's di.Container (cmd/cc-relay/di/container.go) for
// the "one struct of resolved dependencies passed into route setup" shape.
type Deps struct {
	Pipeline      *fetch.Pipeline
	Cache         cache.Cache
	Recorder      *telemetry.Recorder
	Ledger        ledger.Ledger
	CredentialIDs []string
	Location      *time.Location
	StartedAt     time.Time
	Version       string
	AppIDKey      string

	// Config is read live on every handler call rather than snapshotted at
	// construction, so a reload of Cache.Enabled/TTL/MaxKeys or DailyLimit
	// is reflected in /cache/info, /stats/keys, and /health/detailed without
	// restarting the process.
	Config config.RuntimeConfig

	// ledgerReady latches true the first time a ListAvailable call against
	// the Ledger succeeds, and never reverts to false afterward. HandleReady
	// gates on it so readiness distinguishes "booting" from "live but the
	// Ledger hasn't answered yet" (SPEC_FULL.md §5); once the Ledger has
	// proven reachable once, the process stays ready even if it blips later
	// (that later-blip case is what /health/detailed surfaces instead).
	ledgerReady atomic.Bool
}

// HandleOnecall serves GET /data/3.0/onecall: parse, fetch, respond with
// the upstream body verbatim on success (spec.md §6).
func (d *Deps) HandleOnecall(w http.ResponseWriter, r *http.Request) {
	req, err := ParseOnecallParams(r)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	body, err := d.Pipeline.GetWeather(r.Context(), req)
	if err != nil {
		d.writeFetchError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (d *Deps) writeFetchError(w http.ResponseWriter, r *http.Request, err error) {
	var fetchErr *fetch.Error
	if errors.As(err, &fetchErr) {
		if fetchErr.StatusCode == http.StatusTooManyRequests {
			WriteRetryAfter(w, timeUntilNextMidnight(d.Location))
		}
		if len(fetchErr.Body) > 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(fetchErr.StatusCode)
			_, _ = w.Write(fetchErr.Body)
			return
		}
		WriteError(w, r, fetchErr.StatusCode, fetchErr.Error())
		return
	}
	WriteError(w, r, http.StatusServiceUnavailable, err.Error())
}

func timeUntilNextMidnight(loc *time.Location) time.Duration {
	now := time.Now().In(loc)
	next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, loc)
	return next.Sub(now)
}

// HandleCacheDelete serves DELETE /data/3.0/cache.
func (d *Deps) HandleCacheDelete(w http.ResponseWriter, r *http.Request) {
	n := d.Cache.Clear(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "cleared": n})
}

type warmupLocation struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Units string  `json:"units,omitempty"`
	Lang  string  `json:"lang,omitempty"`
}

type warmupRequest struct {
	Locations []warmupLocation `json:"locations"`
}

// HandleCacheWarmup serves POST /data/3.0/cache/warmup: issues a bounded,
// concurrent batch of GetWeather calls purely to prime the Result Cache.
func (d *Deps) HandleCacheWarmup(w http.ResponseWriter, r *http.Request) {
	var body warmupRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(body.Locations) == 0 {
		WriteError(w, r, http.StatusBadRequest, "locations must contain at least one entry")
		return
	}
	if len(body.Locations) > maxWarmupLocations {
		WriteError(w, r, http.StatusBadRequest, "locations must not exceed 100 entries")
		return
	}

	var wg sync.WaitGroup
	var succeeded, failed int
	var mu sync.Mutex
	for _, loc := range body.Locations {
		wg.Add(1)
		go func(loc warmupLocation) {
			defer wg.Done()
			_, err := d.Pipeline.GetWeather(context.Background(), fetch.Request{
				Lat: loc.Lat, Lon: loc.Lon, Units: loc.Units, Lang: loc.Lang,
			})
			mu.Lock()
			if err != nil {
				failed++
			} else {
				succeeded++
			}
			mu.Unlock()
		}(loc)
	}
	wg.Wait()

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"requested": len(body.Locations),
		"succeeded": succeeded,
		"failed":    failed,
	})
}

// HandleCacheInfo serves GET /data/3.0/cache/info.
func (d *Deps) HandleCacheInfo(w http.ResponseWriter, _ *http.Request) {
	cfg := d.Config.Get().Cache
	writeJSON(w, http.StatusOK, map[string]any{
		"enabled": cfg.Enabled,
		"size":    d.Cache.Size(),
		"ttl":     cfg.TTL.String(),
		"maxKeys": cfg.MaxKeys,
	})
}

// HandleStats serves GET /stats: the default telemetry snapshot.
func (d *Deps) HandleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, d.Recorder.Snapshot())
}

// HandleStatsDetailed serves GET /stats/detailed: telemetry plus cache and
// uptime context.
func (d *Deps) HandleStatsDetailed(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"telemetry": d.Recorder.Snapshot(),
		"cache":     d.Cache.Stats(),
		"uptime":    time.Since(d.StartedAt).String(),
	})
}

// HandleStatsKeys serves GET /stats/keys: today's per-credential usage and
// error counts. Credential IDs are the opaque "key_<n>" identifiers; the
// secret itself is never rendered (spec.md §7).
func (d *Deps) HandleStatsKeys(w http.ResponseWriter, r *http.Request) {
	day := ledger.Today(d.Location)
	rows, err := d.Ledger.ListAvailable(r.Context(), d.CredentialIDs, day)
	if err != nil {
		WriteError(w, r, http.StatusServiceUnavailable, "ledger unavailable")
		return
	}

	dailyLimit := d.Config.Get().DailyLimit

	type keyStat struct {
		CredentialID string `json:"credentialId"`
		Usage        int64  `json:"usage"`
		Errors       int64  `json:"errors"`
		DailyLimit   int    `json:"dailyLimit"`
		Available    bool   `json:"available"`
	}

	out := make([]keyStat, len(rows))
	for i, row := range rows {
		out[i] = keyStat{
			CredentialID: row.CredentialID,
			Usage:        row.Usage,
			Errors:       row.Errors,
			DailyLimit:   dailyLimit,
			Available:    row.Usage < int64(dailyLimit) && row.Errors < 3,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"day": string(day), "keys": out})
}

// HandleStatsCache serves GET /stats/cache.
func (d *Deps) HandleStatsCache(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, d.Cache.Stats())
}

// HandleStatsPerformance serves GET /stats/performance: the response-time
// reservoir only.
func (d *Deps) HandleStatsPerformance(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, d.Recorder.Snapshot().ResponseTime)
}

// HandleStatsExport serves GET /stats/export?format=json|csv.
func (d *Deps) HandleStatsExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	snap := d.Recorder.Snapshot()

	if format == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.WriteHeader(http.StatusOK)
		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"total_requests", "cache_hits", "cache_writes", "upstream_calls", "errors", "in_flight", "avg_ms"})
		_ = cw.Write([]string{
			strconv.FormatUint(snap.TotalRequests, 10),
			strconv.FormatUint(snap.CacheHits, 10),
			strconv.FormatUint(snap.CacheWrites, 10),
			strconv.FormatUint(snap.UpstreamCalls, 10),
			strconv.FormatUint(snap.Errors, 10),
			strconv.Itoa(snap.InFlight),
			strconv.FormatFloat(snap.ResponseTime.AvgMS, 'f', 2, 64),
		})
		cw.Flush()
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

// HandleHealth serves GET /health.
func (d *Deps) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleHealthDetailed serves GET /health/detailed: checks the Ledger is
// reachable in addition to the trivial liveness check.
func (d *Deps) HandleHealthDetailed(w http.ResponseWriter, r *http.Request) {
	ledgerOK := true
	if _, err := d.Ledger.GetUsage(r.Context(), "health-check", ledger.Today(d.Location)); err != nil {
		ledgerOK = false
	}

	status := http.StatusOK
	if !ledgerOK {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"status": map[bool]string{true: "ok", false: "degraded"}[ledgerOK],
		"ledger": ledgerOK,
		"cache":  d.Config.Get().Cache.Enabled,
	})
}

// HandleReady serves GET /ready: 200 only once the Ledger has answered a
// ListAvailable call successfully since startup (SPEC_FULL.md §5).
func (d *Deps) HandleReady(w http.ResponseWriter, r *http.Request) {
	if d.ledgerReady.Load() {
		writeJSON(w, http.StatusOK, map[string]bool{"ready": true})
		return
	}

	if _, err := d.Ledger.ListAvailable(r.Context(), d.CredentialIDs, ledger.Today(d.Location)); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]bool{"ready": false})
		return
	}

	d.ledgerReady.Store(true)
	writeJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

// HandleLive serves GET /live.
func (d *Deps) HandleLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"alive": true})
}

// HandleUptime serves GET /uptime.
func (d *Deps) HandleUptime(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"uptime": time.Since(d.StartedAt).String()})
}

// HandleVersion serves GET /version.
func (d *Deps) HandleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": d.Version})
}
