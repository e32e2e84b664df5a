package di

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/samber/do/v2"

	"github.com/Hzrr97/open-weather-router-api/internal/ledger"
)

// LedgerService wraps the Shared Ledger's Redis connection.
type LedgerService struct {
	Ledger ledger.Ledger
	client *goredis.Client
}

// Shutdown implements do.Shutdowner to close the Redis connection.
func (l *LedgerService) Shutdown() error {
	if l.client != nil {
		return l.client.Close()
	}
	return nil
}

// NewLedger creates the Redis-backed Ledger from configuration.
func NewLedger(i do.Injector) (*LedgerService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	cfg := cfgSvc.Get()

	opts, err := goredis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}

	client := goredis.NewClient(opts)
	return &LedgerService{Ledger: ledger.New(client), client: client}, nil
}
