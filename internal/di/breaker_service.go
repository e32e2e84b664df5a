package di

import (
	"github.com/samber/do/v2"

	"github.com/Hzrr97/open-weather-router-api/internal/breaker"
)

// BreakerService wraps the per-credential circuit breaker tracker.
type BreakerService struct {
	Tracker *breaker.Tracker
}

// NewBreakerTracker builds the Tracker, logging state changes through the
// shared LoggerService.
func NewBreakerTracker(i do.Injector) (*BreakerService, error) {
	loggerSvc := do.MustInvoke[*LoggerService](i)
	return &BreakerService{Tracker: breaker.NewTracker(loggerSvc.Logger)}, nil
}
