package config

import "strings"

// validLogLevels mirrors the teacher's config.validLogLevels map
// (config/validator.go) adapted to owm-relay's flatter logging config.
var validLogLevels = map[string]bool{
	"":      true,
	LevelDebug: true,
	LevelInfo:  true,
	LevelWarn:  true,
	LevelError: true,
}

// Validate checks Config for errors, collecting every problem found rather
// than failing fast, following config/validator.go's Validate.
func (c *Config) Validate() error {
	errs := &ValidationError{}

	validateCredentials(c, errs)
	validateQuota(c, errs)
	validateCache(c, errs)
	validateServer(c, errs)
	validateLogging(c, errs)

	return errs.ToError()
}

func validateCredentials(c *Config, errs *ValidationError) {
	if len(c.APIKeys) == 0 {
		errs.Add("OPENWEATHER_API_KEYS is required and must contain at least one key")
	}
	seen := make(map[string]bool, len(c.APIKeys))
	for i, k := range c.APIKeys {
		if strings.TrimSpace(k) == "" {
			errs.Addf("OPENWEATHER_API_KEYS[%d] is empty", i)
			continue
		}
		if seen[k] {
			errs.Addf("OPENWEATHER_API_KEYS[%d] duplicates an earlier key", i)
		}
		seen[k] = true
	}

	if c.AppIDKey == "" {
		errs.Add("APP_ID_KEY is required")
	}
}

func validateQuota(c *Config, errs *ValidationError) {
	if c.DailyLimit <= 0 {
		errs.Add("API_DAILY_LIMIT must be > 0")
	}
	if c.RetryCount <= 0 {
		errs.Add("API_RETRY_COUNT must be > 0")
	}
	if c.RetryDelay < 0 {
		errs.Add("API_RETRY_DELAY must be >= 0")
	}
	if c.APITimeout <= 0 {
		errs.Add("API_TIMEOUT must be > 0")
	}
}

func validateCache(c *Config, errs *ValidationError) {
	if !c.Cache.Enabled {
		return
	}
	if c.Cache.TTL <= 0 {
		errs.Add("CACHE_TTL must be > 0 when ENABLE_CACHE is true")
	}
	if c.Cache.MaxKeys <= 0 {
		errs.Add("CACHE_MAX_KEYS must be > 0 when ENABLE_CACHE is true")
	}
}

func validateServer(c *Config, errs *ValidationError) {
	if c.Server.Port == "" {
		errs.Add("PORT is required")
	}
}

func validateLogging(c *Config, errs *ValidationError) {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs.Addf("LOG_LEVEL is invalid (got %q, valid: debug, info, warn, error)", c.Logging.Level)
	}
}
