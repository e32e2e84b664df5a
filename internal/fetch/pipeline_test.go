package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Hzrr97/open-weather-router-api/internal/breaker"
	"github.com/Hzrr97/open-weather-router-api/internal/cache"
	"github.com/Hzrr97/open-weather-router-api/internal/coalesce"
	"github.com/Hzrr97/open-weather-router-api/internal/config"
	"github.com/Hzrr97/open-weather-router-api/internal/credential"
	"github.com/Hzrr97/open-weather-router-api/internal/ledger"
	"github.com/Hzrr97/open-weather-router-api/internal/selector"
	"github.com/Hzrr97/open-weather-router-api/internal/telemetry"
)

// redirectTransport rewrites every request's scheme/host to point at a test
// server, so tests can exercise Pipeline against upstream.Call's hardcoded
// OpenWeatherMap BaseURL without a real network dependency.
type redirectTransport struct {
	target *url.URL
}

func (rt redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = rt.target.Scheme
	req.URL.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func testClient(serverURL string) *http.Client {
	u, _ := url.Parse(serverURL)
	return &http.Client{Transport: redirectTransport{target: u}}
}

func testConfigValue() *config.Config {
	return &config.Config{
		DailyLimit: 1000,
		APITimeout: time.Second,
		RetryCount: 3,
		RetryDelay: time.Millisecond,
	}
}

func testConfig() config.RuntimeConfig {
	return config.NewRuntime(testConfigValue())
}

func fixedLimit(n int) config.RuntimeConfig {
	return config.NewRuntime(&config.Config{DailyLimit: n})
}

func newPipeline(t *testing.T, server *httptest.Server, led ledger.Ledger, pool []credential.Credential) *Pipeline {
	t.Helper()
	sel := selector.New(pool, led, fixedLimit(1000))
	c := cache.NewNoop()
	co := coalesce.New()
	rec := telemetry.NewRecorder(telemetry.New(co), nil)
	return New(sel, led, c, co, testClient(server.URL), rec, testConfig())
}

func TestGetWeather_SuccessIncrementsUsage(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	led := ledger.NewMemory()
	pool := credential.BuildPool([]string{"secret0"})
	p := newPipeline(t, server, led, pool)

	body, err := p.GetWeather(context.Background(), Request{Lat: 1, Lon: 2})
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != `{"ok":true}` {
		t.Fatalf("got %q", body)
	}

	usage, err := led.GetUsage(context.Background(), "key_0", ledger.Today(time.Local))
	if err != nil {
		t.Fatal(err)
	}
	if usage != 1 {
		t.Fatalf("usage = %d, want 1", usage)
	}
}

func TestGetWeather_FailoverToSecondCredential(t *testing.T) {
	t.Parallel()
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if n == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	led := ledger.NewMemory()
	pool := credential.BuildPool([]string{"secret0", "secret1"})
	p := newPipeline(t, server, led, pool)

	body, err := p.GetWeather(context.Background(), Request{Lat: 1, Lon: 2})
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != `{"ok":true}` {
		t.Fatalf("got %q", body)
	}

	errs, err := led.GetErrors(context.Background(), "key_0", ledger.Today(time.Local))
	if err != nil {
		t.Fatal(err)
	}
	if errs != 1 {
		t.Fatalf("key_0 errors = %d, want 1", errs)
	}
}

func TestGetWeather_NoCredentialsReturns429(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	led := ledger.NewMemory()
	pool := credential.BuildPool([]string{"secret0"})
	// Exhaust the one credential's quota before the call.
	ctx := context.Background()
	day := ledger.Today(time.Local)
	if _, err := led.IncrementUsage(ctx, "key_0", day); err != nil {
		t.Fatal(err)
	}

	sel := selector.New(pool, led, fixedLimit(1))
	co := coalesce.New()
	rec := telemetry.NewRecorder(telemetry.New(co), nil)
	cfgValue := testConfigValue()
	cfgValue.RetryCount = 1
	p := New(sel, led, cache.NewNoop(), co, testClient(server.URL), rec, config.NewRuntime(cfgValue))

	_, err := p.GetWeather(ctx, Request{Lat: 1, Lon: 2})
	if err == nil {
		t.Fatal("expected an error when no credentials are available")
	}
	var fetchErr *Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("got %v, want *fetch.Error", err)
	}
	if fetchErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", fetchErr.StatusCode)
	}
}

func TestGetWeather_CacheHitSkipsUpstream(t *testing.T) {
	t.Parallel()
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	led := ledger.NewMemory()
	pool := credential.BuildPool([]string{"secret0"})
	sel := selector.New(pool, led, fixedLimit(1000))
	c, err := cache.NewRistretto(time.Minute, 100)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	co := coalesce.New()
	rec := telemetry.NewRecorder(telemetry.New(co), nil)
	cfgValue := testConfigValue()
	cfgValue.Cache.Enabled = true
	p := New(sel, led, c, co, testClient(server.URL), rec, config.NewRuntime(cfgValue))

	ctx := context.Background()
	req := Request{Lat: 1, Lon: 2}

	if _, err := p.GetWeather(ctx, req); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond) // let ristretto's async set buffer flush

	if _, err := p.GetWeather(ctx, req); err != nil {
		t.Fatal(err)
	}

	if calls.Load() != 1 {
		t.Fatalf("upstream called %d times, want exactly 1 (second call should be a cache hit)", calls.Load())
	}
}

// errorBlindLedger records usage like Memory but drops every error
// increment, so the Selector keeps offering a failing credential and only
// the breaker can stop the pipeline from calling it.
type errorBlindLedger struct{ *ledger.Memory }

func (errorBlindLedger) IncrementError(context.Context, string, ledger.DayKey) (int64, error) {
	return 0, nil
}

func TestGetWeather_OpenBreakerSkipsCredentialBeforeUpstreamCall(t *testing.T) {
	t.Parallel()
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	led := errorBlindLedger{ledger.NewMemory()}
	pool := credential.BuildPool([]string{"secret0"})
	sel := selector.New(pool, led, fixedLimit(1000))
	co := coalesce.New()
	rec := telemetry.NewRecorder(telemetry.New(co), nil)
	tr := breaker.NewTracker(nil)
	cfgValue := testConfigValue()
	cfgValue.RetryCount = breaker.DefaultFailureThreshold + 2
	p := New(sel, led, cache.NewNoop(), co, testClient(server.URL), rec, config.NewRuntime(cfgValue), WithBreakers(tr))

	_, err := p.GetWeather(context.Background(), Request{Lat: 1, Lon: 2})
	if err == nil {
		t.Fatal("expected an error: every attempt fails")
	}

	if !tr.IsOpen("key_0") {
		t.Fatal("expected key_0's breaker to have tripped open")
	}
	tripped := calls.Load()
	if tripped == 0 || tripped >= int64(cfgValue.RetryCount) {
		t.Fatalf("upstream called %d times across %d attempts; expected the breaker to short-circuit some of them", tripped, cfgValue.RetryCount)
	}
}

func TestGetWeather_CacheReloadTakesEffectWithoutRebuild(t *testing.T) {
	t.Parallel()
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	led := ledger.NewMemory()
	pool := credential.BuildPool([]string{"secret0"})
	sel := selector.New(pool, led, fixedLimit(1000))
	c, err := cache.NewRistretto(time.Minute, 100)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	co := coalesce.New()
	rec := telemetry.NewRecorder(telemetry.New(co), nil)

	runtime := config.NewRuntime(testConfigValue()) // Cache.Enabled starts false
	p := New(sel, led, c, co, testClient(server.URL), rec, runtime)

	ctx := context.Background()
	req := Request{Lat: 1, Lon: 2}

	if _, err := p.GetWeather(ctx, req); err != nil {
		t.Fatal(err)
	}
	if _, err := p.GetWeather(ctx, req); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 {
		t.Fatalf("with caching disabled, both calls must hit upstream; got %d calls", calls.Load())
	}

	reloaded := testConfigValue()
	reloaded.Cache.Enabled = true
	runtime.ApplyReloadable(reloaded)

	if _, err := p.GetWeather(ctx, req); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := p.GetWeather(ctx, req); err != nil {
		t.Fatal(err)
	}

	if calls.Load() != 3 {
		t.Fatalf("after the reload enables caching, the fourth call must hit the cache instead of upstream; got %d calls", calls.Load())
	}
}
