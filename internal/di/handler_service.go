package di

import (
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/Hzrr97/open-weather-router-api/internal/credential"
	"github.com/Hzrr97/open-weather-router-api/internal/httpapi"
	"github.com/Hzrr97/open-weather-router-api/internal/version"
)

// HandlerService wraps the fully-routed HTTP handler.
type HandlerService struct {
	Handler   http.Handler
	startedAt time.Time
}

// NewHandler assembles httpapi.Deps and builds the route mux.
func NewHandler(i do.Injector) (*HandlerService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	pipelineSvc := do.MustInvoke[*PipelineService](i)
	cacheSvc := do.MustInvoke[*CacheService](i)
	ledgerSvc := do.MustInvoke[*LedgerService](i)
	credSvc := do.MustInvoke[*CredentialService](i)
	telemetrySvc := do.MustInvoke[*TelemetryService](i)

	loc := time.Local
	if tz := cfgSvc.Get().LedgerTimezoneOption(); tz.IsPresent() {
		if l, err := loadLocation(tz.MustGet()); err == nil {
			loc = l
		}
	}

	deps := &httpapi.Deps{
		Pipeline:      pipelineSvc.Pipeline,
		Cache:         cacheSvc.Cache,
		Recorder:      telemetrySvc.Recorder,
		Ledger:        ledgerSvc.Ledger,
		CredentialIDs: credential.IDs(credSvc.Pool),
		Location:      loc,
		StartedAt:     time.Now(),
		Version:       version.String(),
		AppIDKey:      cfgSvc.Get().AppIDKey,
		Config:        cfgSvc.Runtime,
	}

	return &HandlerService{Handler: httpapi.NewMux(deps), startedAt: deps.StartedAt}, nil
}
