package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAppIDMiddleware_ValidKey(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	middleware := AppIDMiddleware("shared-key")
	wrapped := middleware(handler)

	req := httptest.NewRequest(http.MethodGet, "/data/3.0/onecall?appid=shared-key", http.NoBody)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestAppIDMiddleware_WrongKey(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	wrapped := AppIDMiddleware("shared-key")(handler)

	req := httptest.NewRequest(http.MethodGet, "/data/3.0/onecall?appid=wrong", http.NoBody)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAppIDMiddleware_MissingKey(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	wrapped := AppIDMiddleware("shared-key")(handler)

	req := httptest.NewRequest(http.MethodGet, "/data/3.0/onecall", http.NoBody)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestRequestIDMiddleware_EchoesSuppliedID(t *testing.T) {
	t.Parallel()

	var seen string
	handler := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	})

	wrapped := RequestIDMiddleware(handler)
	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if seen != "fixed-id" {
		t.Errorf("expected request-scoped context to carry the supplied ID, got %q", seen)
	}
	if got := rec.Header().Get("X-Request-ID"); got != "fixed-id" {
		t.Errorf("expected echoed header %q, got %q", "fixed-id", got)
	}
}

func TestRequestIDMiddleware_GeneratesWhenAbsent(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	wrapped := RequestIDMiddleware(handler)
	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated X-Request-ID header")
	}
}
