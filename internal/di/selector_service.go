package di

import (
	"github.com/samber/do/v2"

	"github.com/Hzrr97/open-weather-router-api/internal/selector"
)

// SelectorService wraps the credential Selector.
type SelectorService struct {
	Selector *selector.Selector
}

// NewSelector builds the Selector from the credential pool, Ledger, and the
// live config, so a reloaded DailyLimit reaches the running Selector.
func NewSelector(i do.Injector) (*SelectorService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	credSvc := do.MustInvoke[*CredentialService](i)
	ledgerSvc := do.MustInvoke[*LedgerService](i)

	sel := selector.New(credSvc.Pool, ledgerSvc.Ledger, cfgSvc.Runtime)
	return &SelectorService{Selector: sel}, nil
}
