package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"

	"github.com/Hzrr97/open-weather-router-api/internal/config"
)

// ConfigService wraps a hot-reloadable Config behind a Runtime, following
// the teacher's ConfigService (internal/di/config_service.go)'s
// atomic-pointer-plus-optional-watcher shape.
type ConfigService struct {
	Runtime *config.Runtime
	watcher *config.Watcher
	envFile string
}

// Get returns the current configuration via a lock-free atomic read.
func (c *ConfigService) Get() *config.Config {
	return c.Runtime.Get()
}

// StartWatching begins watching the .env file for changes, if one was
// configured and a watcher could be created. Safe to call with no watcher.
func (c *ConfigService) StartWatching(ctx context.Context) {
	if c.watcher == nil {
		return
	}
	go func() {
		if err := c.watcher.Watch(ctx); err != nil {
			log.Error().Err(err).Msg("config watcher stopped")
		}
	}()
	log.Info().Str("path", c.watcher.Path()).Msg("config file watcher started")
}

// OnReload registers cb to run after every successful hot-reload, if a
// watcher was created. Safe to call with no watcher: cb is simply never
// invoked.
func (c *ConfigService) OnReload(cb config.ReloadCallback) {
	if c.watcher != nil {
		c.watcher.OnReload(cb)
	}
}

// Shutdown implements do.Shutdowner for graceful watcher cleanup.
func (c *ConfigService) Shutdown() error {
	if c.watcher != nil {
		return c.watcher.Close()
	}
	return nil
}

// NewConfig loads configuration from the process environment (optionally
// layering envFile) and wraps it in a Runtime, creating a Watcher only when
// envFile is non-empty — there is nothing to watch otherwise.
func NewConfig(i do.Injector) (*ConfigService, error) {
	envFile := do.MustInvokeNamed[string](i, EnvFileKey)

	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	runtime := config.NewRuntime(cfg)
	svc := &ConfigService{Runtime: runtime, envFile: envFile}

	if envFile != "" {
		watcher, err := config.NewWatcher(envFile, runtime)
		if err != nil {
			log.Warn().Err(err).Str("path", envFile).Msg("config watcher creation failed, hot-reload disabled")
		} else {
			svc.watcher = watcher
		}
	}

	return svc, nil
}
