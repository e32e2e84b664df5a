package di

import (
	"github.com/samber/do/v2"

	"github.com/Hzrr97/open-weather-router-api/internal/coalesce"
)

// CoalesceService wraps the in-flight request Coalescer.
type CoalesceService struct {
	Coalescer *coalesce.Coalescer
}

// NewCoalescer builds an empty Coalescer. It has no configuration surface.
func NewCoalescer(_ do.Injector) (*CoalesceService, error) {
	return &CoalesceService{Coalescer: coalesce.New()}, nil
}
