// Package fetch implements the Fetch Pipeline: the single entry point that
// ties the Result Cache, In-Flight Coalescer, Selector, Shared Ledger, and
// Upstream Client together into spec.md §4.5's GetWeather algorithm.
//
// Grounded on the teacher's router.FailoverRouter.SelectWithRetry
// (internal/router/failover.go) for the shape of "try candidates in
// priority order, classify the failure, decide whether to keep going" — but
// sequential rather than FailoverRouter's parallel race, since spec.md
// §4.5 iterates one credential at a time within an attempt and spec.md §9
// never asks for racing.
package fetch

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Hzrr97/open-weather-router-api/internal/breaker"
	"github.com/Hzrr97/open-weather-router-api/internal/cache"
	"github.com/Hzrr97/open-weather-router-api/internal/coalesce"
	"github.com/Hzrr97/open-weather-router-api/internal/config"
	"github.com/Hzrr97/open-weather-router-api/internal/credential"
	"github.com/Hzrr97/open-weather-router-api/internal/ledger"
	"github.com/Hzrr97/open-weather-router-api/internal/selector"
	"github.com/Hzrr97/open-weather-router-api/internal/telemetry"
	"github.com/Hzrr97/open-weather-router-api/internal/upstream"
)

// Pipeline orchestrates one GetWeather call end to end.
type Pipeline struct {
	selector  *selector.Selector
	ledger    ledger.Ledger
	cache     cache.Cache
	coalescer *coalesce.Coalescer
	breakers  *breaker.Tracker
	client    *http.Client
	telemetry *telemetry.Recorder
	loc       *time.Location

	// cfg is read live on every call rather than snapshotted at
	// construction, so a config reload's APITimeout/RetryCount/RetryDelay
	// and Cache.Enabled actually reach the running pipeline instead of
	// updating a Runtime pointer nothing here reads again.
	cfg config.RuntimeConfig
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLocation overrides the zone DayKey is computed in. Defaults to
// time.Local.
func WithLocation(loc *time.Location) Option {
	return func(p *Pipeline) { p.loc = loc }
}

// WithBreakers attaches a per-credential circuit breaker tracker. Without
// one, tryCandidates falls back to Ledger-only failure tracking.
func WithBreakers(tr *breaker.Tracker) Option {
	return func(p *Pipeline) { p.breakers = tr }
}

// New creates a Pipeline over cfg, which it reads live on every call so a
// hot-reload of APITimeout/RetryCount/RetryDelay/Cache.Enabled takes effect
// without rebuilding the Pipeline.
func New(
	sel *selector.Selector,
	led ledger.Ledger,
	c cache.Cache,
	co *coalesce.Coalescer,
	client *http.Client,
	rec *telemetry.Recorder,
	cfg config.RuntimeConfig,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		selector:  sel,
		ledger:    led,
		cache:     c,
		coalescer: co,
		client:    client,
		telemetry: rec,
		loc:       time.Local,
		cfg:       cfg,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetWeather runs spec.md §4.5's algorithm: cache lookup, then a
// single-flight-coalesced fetch that iterates retry rounds over the ranked
// credential pool with linear backoff between rounds.
func (p *Pipeline) GetWeather(ctx context.Context, req Request) ([]byte, error) {
	fp := Fingerprint(req)
	start := time.Now()
	p.telemetry.IncTotal()

	cacheOn := p.cfg.Get().Cache.Enabled
	if cacheOn {
		if body, ok := p.cache.Get(ctx, fp); ok {
			p.telemetry.IncCacheHit()
			p.telemetry.RecordResponseTime(time.Since(start))
			return body, nil
		}
	}

	result := p.coalescer.GetOrStart(ctx, fp, func() coalesce.Result {
		return p.fetchUncached(fp, req)
	})
	p.telemetry.RecordResponseTime(time.Since(start))
	if result.Err != nil {
		return nil, result.Err
	}
	return result.Body, nil
}

// fetchUncached runs entirely on its own background context, independent
// of the ctx any particular caller passed to GetWeather: per spec.md §4.4
// and §5, a caller disconnecting must not abort the in-flight call, because
// its side effects (the Ledger increment, the cache insert) are shared with
// every other waiter on this fingerprint and must complete regardless.
func (p *Pipeline) fetchUncached(fp string, req Request) coalesce.Result {
	ctx := context.Background()
	var lastErr error

	cfg := p.cfg.Get()
	for attempt := 1; attempt <= cfg.RetryCount; attempt++ {
		day := ledger.Today(p.loc)

		candidates, err := p.selector.SelectAll(ctx, day)
		if err != nil {
			lastErr = err
			log.Ctx(ctx).Warn().Err(err).Int("attempt", attempt).Str("fingerprint", fp).
				Msg("fetch attempt found no eligible credentials")
		} else if body, callErr := p.tryCandidates(ctx, candidates, day, req, cfg.APITimeout); callErr == nil {
			if cfg.Cache.Enabled {
				p.cache.Set(ctx, fp, body)
				p.telemetry.IncCacheWrite()
			}
			return coalesce.Result{Body: body}
		} else {
			lastErr = callErr
		}

		if attempt < cfg.RetryCount {
			time.Sleep(cfg.RetryDelay * time.Duration(attempt))
		}
	}

	return coalesce.Result{Err: classify(lastErr)}
}

// tryCandidates iterates candidates in the order the Selector ranked them,
// returning the first 2xx body. Every failure increments that credential's
// Ledger error counter before moving to the next candidate. A credential
// whose in-process breaker has already tripped is skipped outright: the
// Ledger would still answer "available" for it until its own 3-strike
// count catches up, but the breaker has already seen enough consecutive
// failures this process to know better.
func (p *Pipeline) tryCandidates(ctx context.Context, candidates []credential.Credential, day ledger.DayKey, req Request, apiTimeout time.Duration) ([]byte, error) {
	var lastErr error
	for _, cred := range candidates {
		var done func(success bool)
		if p.breakers != nil {
			var err error
			done, err = p.breakers.Allow(cred.ID)
			if err != nil {
				lastErr = err
				continue
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, apiTimeout)
		start := time.Now()
		body, err := upstream.Call(attemptCtx, p.client, cred, req.ToUpstreamParams())
		p.telemetry.RecordUpstreamCall(time.Since(start))
		cancel()

		if err == nil {
			if done != nil {
				done(true)
			}
			if _, incErr := p.ledger.IncrementUsage(ctx, cred.ID, day); incErr != nil {
				log.Ctx(ctx).Warn().Err(incErr).Str("credential", cred.ID).Msg("usage increment failed")
			}
			return body, nil
		}

		if done != nil {
			done(false)
		}
		p.telemetry.IncError()
		if _, incErr := p.ledger.IncrementError(ctx, cred.ID, day); incErr != nil {
			log.Ctx(ctx).Warn().Err(incErr).Str("credential", cred.ID).Msg("error increment failed")
		}
		lastErr = err
	}
	return nil, lastErr
}

// classify maps a raw failure cause onto the HTTP status owm-relay's HTTP
// layer should respond with (spec.md §7).
func classify(err error) error {
	if err == nil {
		return nil
	}

	var httpErr *upstream.HTTPError
	if errors.As(err, &httpErr) {
		return &Error{StatusCode: httpErr.StatusCode, Cause: err, Body: httpErr.Body}
	}

	var transportErr *upstream.TransportError
	if errors.As(err, &transportErr) {
		return newError(http.StatusServiceUnavailable, err)
	}

	if errors.Is(err, selector.ErrNoCredentialsAvailable) {
		return newError(http.StatusTooManyRequests, err)
	}

	if errors.Is(err, ledger.ErrLedgerUnavailable) {
		return newError(http.StatusServiceUnavailable, err)
	}

	return newError(http.StatusServiceUnavailable, err)
}
