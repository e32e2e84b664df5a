package di

import (
	"net/http"

	"github.com/samber/do/v2"

	"github.com/Hzrr97/open-weather-router-api/internal/upstream"
)

// UpstreamService wraps the shared upstream HTTP client.
type UpstreamService struct {
	Client *http.Client
}

// NewUpstreamClient builds the shared, connection-pooled client used for
// every credential's upstream calls.
func NewUpstreamClient(_ do.Injector) (*UpstreamService, error) {
	return &UpstreamService{Client: upstream.NewClient()}, nil
}
