package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Hzrr97/open-weather-router-api/internal/di"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the owm-relay proxy server",
	Long: `Start the proxy server that accepts onecall requests and routes them
across the configured credential pool, enforcing each credential's shared
per-day quota.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	container, err := di.NewContainer(resolveEnvFile())
	if err != nil {
		log.Error().Err(err).Msg("failed to build container")
		return err
	}

	loggerSvc, err := di.Invoke[*di.LoggerService](container)
	if err != nil {
		log.Error().Err(err).Msg("failed to resolve logger")
		return err
	}
	log.Logger = *loggerSvc.Logger
	zerolog.DefaultContextLogger = loggerSvc.Logger

	cfgSvc, err := di.Invoke[*di.ConfigService](container)
	if err != nil {
		log.Error().Err(err).Msg("failed to resolve config")
		return err
	}

	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()

	serverSvc, err := di.Invoke[*di.ServerService](container)
	if err != nil {
		log.Error().Err(err).Msg("failed to resolve server")
		return err
	}

	// Every OnReload callback is registered as its owning service is built,
	// which samber/do only does lazily on first Invoke — resolving
	// ServerService above walks its whole dependency chain (Pipeline,
	// Selector, Cache, ...), so watching only starts once every reloadable
	// component has a callback in place to receive the next reload.
	cfgSvc.StartWatching(watchCtx)

	done := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Info().Msg("shutting down...")
		cancelWatch()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := container.ShutdownWithContext(ctx); err != nil {
			log.Error().Err(err).Msg("shutdown error")
		}
		close(done)
	}()

	log.Info().Str("listen", cfgSvc.Get().Server.Listen()).Msg("starting owm-relay")

	if err := serverSvc.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server error")
		return err
	}

	<-done
	log.Info().Msg("server stopped")
	return nil
}
