package httpapi

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Server wraps http.Server with owm-relay's timeout configuration, grounded
// on the teacher's proxy.Server (internal/proxy/server.go). owm-relay's
// onecall responses are small single-shot JSON bodies rather than long-lived
// streams, so the write timeout is pulled back to 30 seconds instead of
// the teacher's 600s streaming allowance. h2c is wired the same way the
// teacher does: owm-relay is typically deployed behind a TLS-terminating
// load balancer that speaks cleartext HTTP/2 to the backend, and h2c lets a
// single connection multiplex concurrent inbound requests (warmup and
// onecall alike).
type Server struct {
	httpServer *http.Server
	addr       string
}

// NewServer builds a Server listening on addr and serving handler over h2c.
func NewServer(addr string, handler http.Handler) *Server {
	h2s := &http2.Server{}
	return &Server{
		addr: addr,
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      h2c.NewHandler(handler, h2s),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
	}
}

// ListenAndServe starts the server. It blocks until Shutdown is called or an
// unrecoverable error occurs.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains in-flight requests within ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the address the server was configured to listen on.
func (s *Server) Addr() string {
	return s.addr
}
