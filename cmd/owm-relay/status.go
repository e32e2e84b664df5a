package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Hzrr97/open-weather-router-api/internal/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check if owm-relay server is running",
	Long:  `Check the health status of a running owm-relay server by querying its /health endpoint.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(resolveEnvFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	healthURL := fmt.Sprintf("http://%s/health", cfg.Server.Listen())
	client := &http.Client{Timeout: 5 * time.Second}

	//nolint:noctx // a one-shot CLI health check doesn't need context propagation
	resp, err := client.Get(healthURL)
	if err != nil {
		fmt.Printf("owm-relay is not running (%s)\n", cfg.Server.Listen())
		return fmt.Errorf("server not reachable: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close response body")
		}
	}()

	if resp.StatusCode == http.StatusOK {
		fmt.Printf("owm-relay is running (%s)\n", cfg.Server.Listen())
		return nil
	}

	fmt.Printf("owm-relay returned unexpected status: %d\n", resp.StatusCode)
	return fmt.Errorf("health check failed with status %d", resp.StatusCode)
}
