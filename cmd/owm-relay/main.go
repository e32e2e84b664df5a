// Package main is the entry point for owm-relay.
package main

import (
	"context"
	"os"

	"charm.land/fang/v2"
	"github.com/spf13/cobra"
)

const defaultEnvFile = ".env"

var envFile string

var rootCmd = &cobra.Command{
	Use:   "owm-relay",
	Short: "Shared-quota reverse proxy for the OpenWeatherMap onecall endpoint",
	Long: `owm-relay multiplexes client requests for weather data across a pool of
upstream credentials, each with an independent per-day quota shared across
worker processes via a Redis-backed ledger.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "",
		"path to a .env file to load (default: ./"+defaultEnvFile+" if present)")
}

func main() {
	if err := fang.Execute(context.Background(), rootCmd); err != nil {
		os.Exit(1)
	}
}

func resolveEnvFile() string {
	if envFile != "" {
		return envFile
	}
	if _, err := os.Stat(defaultEnvFile); err == nil {
		return defaultEnvFile
	}
	return ""
}
