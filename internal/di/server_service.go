package di

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/Hzrr97/open-weather-router-api/internal/httpapi"
)

// ServerService wraps the HTTP server.
type ServerService struct {
	Server *httpapi.Server
}

// NewHTTPServer builds the Server bound to the configured listen address.
func NewHTTPServer(i do.Injector) (*ServerService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	handlerSvc := do.MustInvoke[*HandlerService](i)

	server := httpapi.NewServer(cfgSvc.Get().Server.Listen(), handlerSvc.Handler)
	return &ServerService{Server: server}, nil
}

// Shutdown implements do.Shutdowner for graceful server shutdown.
func (s *ServerService) Shutdown() error {
	if s.Server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.Server.Shutdown(ctx)
}
