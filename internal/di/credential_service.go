package di

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/Hzrr97/open-weather-router-api/internal/credential"
)

// CredentialService wraps the immutable credential pool built from
// configuration.
type CredentialService struct {
	Pool []credential.Credential
}

// NewCredentialPool builds the credential pool from OPENWEATHER_API_KEYS.
func NewCredentialPool(i do.Injector) (*CredentialService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	keys := cfgSvc.Get().APIKeys
	if len(keys) == 0 {
		return nil, fmt.Errorf("no credentials configured: OPENWEATHER_API_KEYS is empty")
	}
	return &CredentialService{Pool: credential.BuildPool(keys)}, nil
}
