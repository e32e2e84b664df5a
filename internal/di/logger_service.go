package di

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/samber/do/v2"
)

// LoggerService wraps the process-wide zerolog logger.
type LoggerService struct {
	Logger *zerolog.Logger
}

// NewLogger builds the zerolog logger from configuration, following the
// teacher's NewLogger (internal/proxy/logger.go) narrowed to owm-relay's
// LoggingConfig, which carries only a level — there is no per-destination
// or pretty-console knob in this ambient stack.
func NewLogger(i do.Injector) (*LoggerService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)

	logger := zerolog.New(os.Stdout).
		Level(cfgSvc.Get().Logging.ParseLevel()).
		With().
		Timestamp().
		Logger()

	return &LoggerService{Logger: &logger}, nil
}
