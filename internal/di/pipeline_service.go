package di

import (
	"time"

	"github.com/samber/do/v2"

	"github.com/Hzrr97/open-weather-router-api/internal/fetch"
)

func loadLocation(name string) (*time.Location, error) {
	return time.LoadLocation(name)
}

// PipelineService wraps the Fetch Pipeline.
type PipelineService struct {
	Pipeline *fetch.Pipeline
}

// NewPipeline assembles the Fetch Pipeline from every service it depends
// on, honoring LEDGER_TZ if configured.
func NewPipeline(i do.Injector) (*PipelineService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	selectorSvc := do.MustInvoke[*SelectorService](i)
	ledgerSvc := do.MustInvoke[*LedgerService](i)
	cacheSvc := do.MustInvoke[*CacheService](i)
	coalesceSvc := do.MustInvoke[*CoalesceService](i)
	upstreamSvc := do.MustInvoke[*UpstreamService](i)
	telemetrySvc := do.MustInvoke[*TelemetryService](i)
	breakerSvc := do.MustInvoke[*BreakerService](i)

	opts := []fetch.Option{fetch.WithBreakers(breakerSvc.Tracker)}
	if tz := cfgSvc.Get().LedgerTimezoneOption(); tz.IsPresent() {
		if loc, err := loadLocation(tz.MustGet()); err == nil {
			opts = append(opts, fetch.WithLocation(loc))
		}
	}

	p := fetch.New(
		selectorSvc.Selector,
		ledgerSvc.Ledger,
		cacheSvc.Cache,
		coalesceSvc.Coalescer,
		upstreamSvc.Client,
		telemetrySvc.Recorder,
		cfgSvc.Runtime,
		opts...,
	)

	return &PipelineService{Pipeline: p}, nil
}
