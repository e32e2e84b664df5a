package di

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/do/v2"

	"github.com/Hzrr97/open-weather-router-api/internal/telemetry"
)

// TelemetryService wraps the unified Telemetry/Metrics Recorder.
type TelemetryService struct {
	Recorder *telemetry.Recorder
}

// NewTelemetry builds the Recorder, always enabling the JSON-facing
// Telemetry side and additionally wiring Prometheus collectors against the
// default registry, since owm-relay has no switch to disable metrics
// export (spec.md's Non-goals exclude metrics as a product feature, not as
// ambient observability — see SPEC_FULL.md's Ambient Stack section).
func NewTelemetry(i do.Injector) (*TelemetryService, error) {
	coalesceSvc := do.MustInvoke[*CoalesceService](i)

	t := telemetry.New(coalesceSvc.Coalescer)
	m := telemetry.NewMetrics(prometheus.DefaultRegisterer, coalesceSvc.Coalescer)

	return &TelemetryService{Recorder: telemetry.NewRecorder(t, m)}, nil
}
