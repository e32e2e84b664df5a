// Package upstream holds the single HTTP client owm-relay uses to call
// OpenWeatherMap, and the error types that classify what went wrong when it
// doesn't get a 2xx.
//
// Grounded on the teacher's shared-client convention (health.NewHTTPHealthCheck,
// internal/health/checker.go, defaults to one *http.Client reused across
// calls rather than one per request) and proxy/server.go's practice of
// documenting timeout values inline rather than leaving them as bare
// numbers.
package upstream

import (
	"net/http"
	"time"
)

const (
	// maxIdleConns bounds total idle connections kept warm across all hosts.
	// OpenWeatherMap is the only host this client ever talks to, so this
	// mostly matters as a ceiling on idle-connection memory.
	maxIdleConns = 100

	// maxIdleConnsPerHost and maxConnsPerHost bound connection reuse and
	// concurrency against the single upstream host.
	maxIdleConnsPerHost = 20
	maxConnsPerHost     = 50

	// idleConnTimeout closes idle pooled connections after this long.
	idleConnTimeout = 90 * time.Second

	// maxRedirects bounds automatic redirect following; OpenWeatherMap's
	// API does not redirect, so this is a defensive ceiling, not an
	// expected path.
	maxRedirects = 3
)

// NewClient builds the single shared HTTP client used for every upstream
// call, for every credential, for the life of the process. Per spec.md
// §4.6 it must not be constructed per-request: a fresh client per call
// would rebuild the connection pool (and its keep-alive benefit) on every
// request.
//
// The client sets no Client.Timeout. The per-attempt ApiTimeout (spec.md
// §4.5) is applied by callers via context, so that timeout scope matches
// exactly one upstream attempt rather than the client's entire lifetime.
func NewClient() *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        maxIdleConns,
		MaxIdleConnsPerHost: maxIdleConnsPerHost,
		MaxConnsPerHost:     maxConnsPerHost,
		IdleConnTimeout:     idleConnTimeout,
	}

	return &http.Client{
		Transport: transport,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}
