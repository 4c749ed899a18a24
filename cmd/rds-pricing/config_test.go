package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/rshade/rds-pricing-catalog/internal/fetch"
	"github.com/rshade/rds-pricing-catalog/internal/ingest"
)

func TestParseEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		wantWarn string
		validate func(t *testing.T, config envConfig)
	}{
		{
			name: "Defaults",
			validate: func(t *testing.T, config envConfig) {
				assert.Empty(t, config.BaseURL)
				assert.Equal(t, fetch.DefaultTimeout, config.Timeout)
				assert.Equal(t, ingest.DefaultConcurrency, config.Concurrency)
				assert.Equal(t, zerolog.InfoLevel, config.LogLevel)
			},
		},
		{
			name: "All Set",
			env: map[string]string{
				envBaseURL:     "https://mirror.example.com/rds/pricing",
				envTimeout:     "90s",
				envConcurrency: "16",
				envLogLevel:    "DEBUG",
			},
			validate: func(t *testing.T, config envConfig) {
				assert.Equal(t, "https://mirror.example.com/rds/pricing/", config.BaseURL)
				assert.Equal(t, 90*time.Second, config.Timeout)
				assert.Equal(t, 16, config.Concurrency)
				assert.Equal(t, zerolog.DebugLevel, config.LogLevel)
			},
		},
		{
			name:     "Invalid Base URL",
			env:      map[string]string{envBaseURL: "ftp://mirror"},
			wantWarn: envBaseURL,
			validate: func(t *testing.T, config envConfig) {
				assert.Empty(t, config.BaseURL)
			},
		},
		{
			name:     "Invalid Timeout",
			env:      map[string]string{envTimeout: "-5s"},
			wantWarn: envTimeout,
			validate: func(t *testing.T, config envConfig) {
				assert.Equal(t, fetch.DefaultTimeout, config.Timeout)
			},
		},
		{
			name:     "Invalid Concurrency",
			env:      map[string]string{envConcurrency: "many"},
			wantWarn: envConcurrency,
			validate: func(t *testing.T, config envConfig) {
				assert.Equal(t, ingest.DefaultConcurrency, config.Concurrency)
			},
		},
		{
			name:     "Invalid Log Level",
			env:      map[string]string{envLogLevel: "chatty"},
			wantWarn: envLogLevel,
			validate: func(t *testing.T, config envConfig) {
				assert.Equal(t, zerolog.InfoLevel, config.LogLevel)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{envBaseURL, envTimeout, envConcurrency, envLogLevel} {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			var buf bytes.Buffer
			config := parseEnvConfig(zerolog.New(&buf).Level(zerolog.WarnLevel))
			tt.validate(t, config)

			if tt.wantWarn != "" {
				assert.Contains(t, buf.String(), tt.wantWarn)
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}
