package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/rds-pricing-catalog/internal/fetch"
	"github.com/rshade/rds-pricing-catalog/internal/ingest"
)

// Environment variables read by the CLI. Flags given on the command line
// take precedence.
const (
	envBaseURL     = "RDS_PRICING_BASE_URL"
	envTimeout     = "RDS_PRICING_TIMEOUT"
	envConcurrency = "RDS_PRICING_CONCURRENCY"
	envLogLevel    = "RDS_PRICING_LOG_LEVEL"
)

// envConfig holds settings taken from the environment.
type envConfig struct {
	BaseURL     string
	Timeout     time.Duration
	Concurrency int
	LogLevel    zerolog.Level
}

// parseEnvConfig reads the RDS_PRICING_* variables. Invalid values are
// logged and replaced by their defaults; they never fail the command.
func parseEnvConfig(logger zerolog.Logger) envConfig {
	config := envConfig{
		Timeout:     fetch.DefaultTimeout,
		Concurrency: ingest.DefaultConcurrency,
		LogLevel:    zerolog.InfoLevel,
	}

	if baseURL := strings.TrimSpace(os.Getenv(envBaseURL)); baseURL != "" {
		if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
			logger.Warn().Str("value", baseURL).Msg("invalid " + envBaseURL + ", using feed table default")
		} else {
			if !strings.HasSuffix(baseURL, "/") {
				baseURL += "/"
			}
			config.BaseURL = baseURL
		}
	}

	if raw := os.Getenv(envTimeout); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			config.Timeout = parsed
		} else {
			logger.Warn().Str("value", raw).Msg("invalid " + envTimeout + ", using default")
		}
	}

	if raw := os.Getenv(envConcurrency); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			config.Concurrency = parsed
		} else {
			logger.Warn().Str("value", raw).Msg("invalid " + envConcurrency + ", using default")
		}
	}

	if raw := os.Getenv(envLogLevel); raw != "" {
		if level, err := zerolog.ParseLevel(strings.ToLower(raw)); err == nil && level != zerolog.NoLevel {
			config.LogLevel = level
		} else {
			logger.Warn().Str("value", raw).Msg("invalid " + envLogLevel + ", using info")
		}
	}

	logger.Debug().
		Str("base_url", config.BaseURL).
		Dur("timeout", config.Timeout).
		Int("concurrency", config.Concurrency).
		Str("log_level", config.LogLevel.String()).
		Msg("environment configuration applied")

	return config
}
