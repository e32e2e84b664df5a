package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Load reads owm-relay's configuration from the process environment,
// optionally layering an on-disk .env file first. Per spec.md §6 the
// configuration surface is a fixed set of recognized environment keys, not
// a structured file format, so — unlike the teacher's YAML loader
// (config/loader.go) — there is no schema to unmarshal into; each key is
// read individually with its documented default.
//
// envFile may be empty, in which case only the process environment is
// consulted. Following bleedingdev-quantum-CLIProxyAPI's convention, a
// missing .env file is not an error: godotenv.Load is best-effort.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}

	cfg := &Config{
		APIKeys:    splitCSV(os.Getenv("OPENWEATHER_API_KEYS")),
		AppIDKey:   os.Getenv("APP_ID_KEY"),
		DailyLimit: envInt("API_DAILY_LIMIT", DefaultDailyLimit),
		APITimeout: envDuration("API_TIMEOUT", 10*time.Second, time.Millisecond),
		RetryCount: envInt("API_RETRY_COUNT", 3),
		RetryDelay: envDuration("API_RETRY_DELAY", time.Second, time.Millisecond),

		Cache: CacheConfig{
			Enabled: envBool("ENABLE_CACHE", true),
			TTL:     envDuration("CACHE_TTL", 300*time.Second, time.Second),
			MaxKeys: int64(envInt("CACHE_MAX_KEYS", 10000)),
		},

		Redis: RedisConfig{
			URL:      envOr("REDIS_URL", "redis://127.0.0.1:6379/0"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       envInt("REDIS_DB", 0),
		},

		Server: ServerConfig{
			Host: os.Getenv("HOST"),
			Port: envOr("PORT", "3000"),
		},

		Logging: LoggingConfig{
			Level: envOr("LOG_LEVEL", LevelInfo),
		},

		LedgerTimezone: os.Getenv("LEDGER_TZ"),

		RateLimitMax:     envInt("RATE_LIMIT_MAX", 60),
		RateLimitWindow:  envDuration("RATE_LIMIT_WINDOW", time.Minute, time.Millisecond),
		CORSOrigin:       envOr("CORS_ORIGIN", "*"),
		KeepAliveTimeout: envDuration("KEEPALIVE_TIMEOUT", 120*time.Second, time.Millisecond),
	}

	return cfg, nil
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// envDuration parses an integer environment variable in the given unit,
// matching the teacher's convention of storing millisecond/second integers
// in env/YAML and converting once at load time (config.go's
// GetTimeoutOption operates on a raw int ms field the same way).
func envDuration(key string, fallback time.Duration, unit time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return time.Duration(n) * unit
}
