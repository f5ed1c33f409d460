/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/friendsincode/crewrota/internal/rota"
)

// Log output formats.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment string
	HTTPBind    string
	HTTPPort    int
	MetricsBind string
	LogFormat   string

	// Solver configuration
	SolverCeilingSlack int
	SolverMemoCapacity int
	SolverNodeBudget   int64
	SolverTimeout      time.Duration
	ExtenderAttempts   int

	MaxReportDays int // HTML/PDF/PNG reports are refused above this horizon
	BrowserBin    string

	// Result cache
	CacheEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// Tracing configuration
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64

	LegacyEnvWarnings []string
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnvAny([]string{"CREWROTA_ENV"}, "development"),
		HTTPBind:    getEnvAny([]string{"CREWROTA_HTTP_BIND"}, "0.0.0.0"),
		HTTPPort:    getEnvIntAny([]string{"CREWROTA_HTTP_PORT"}, 8080),
		MetricsBind: getEnvAny([]string{"CREWROTA_METRICS_BIND"}, "127.0.0.1:9000"),
		LogFormat:   strings.ToLower(getEnvAny([]string{"CREWROTA_LOG_FORMAT"}, LogFormatConsole)),

		SolverCeilingSlack: getEnvIntAny([]string{"CREWROTA_SOLVER_CEILING_SLACK"}, rota.DefaultCeilingSlack),
		SolverMemoCapacity: getEnvIntAny([]string{"CREWROTA_SOLVER_MEMO_CAPACITY"}, rota.DefaultMemoCapacity),
		SolverNodeBudget:   int64(getEnvIntAny([]string{"CREWROTA_SOLVER_NODE_BUDGET"}, 0)),
		SolverTimeout:      time.Duration(getEnvIntAny([]string{"CREWROTA_SOLVER_TIMEOUT_SECONDS"}, 30)) * time.Second,
		ExtenderAttempts:   getEnvIntAny([]string{"CREWROTA_EXTENDER_ATTEMPTS"}, rota.DefaultExtenderAttempts),

		MaxReportDays: getEnvIntAny([]string{"CREWROTA_MAX_REPORT_DAYS"}, 90),
		BrowserBin:    getEnvAny([]string{"CREWROTA_BROWSER_BIN"}, ""),

		CacheEnabled:  getEnvBoolAny([]string{"CREWROTA_CACHE_ENABLED"}, false),
		RedisAddr:     getEnvAny([]string{"CREWROTA_REDIS_ADDR"}, "localhost:6379"),
		RedisPassword: getEnvAny([]string{"CREWROTA_REDIS_PASSWORD"}, ""),
		RedisDB:       getEnvIntAny([]string{"CREWROTA_REDIS_DB"}, 0),
		CacheTTL:      time.Duration(getEnvIntAny([]string{"CREWROTA_CACHE_TTL_MINUTES"}, 60)) * time.Minute,

		TracingEnabled:    getEnvBoolAny([]string{"CREWROTA_TRACING_ENABLED"}, false),
		OTLPEndpoint:      getEnvAny([]string{"CREWROTA_OTLP_ENDPOINT"}, "localhost:4317"),
		TracingSampleRate: getEnvFloatAny([]string{"CREWROTA_TRACING_SAMPLE_RATE"}, 1.0),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.LegacyEnvWarnings = detectLegacyEnvWarnings()

	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("CREWROTA_HTTP_PORT must be in [1,65535], got %d", c.HTTPPort)
	}
	if c.LogFormat != LogFormatConsole && c.LogFormat != LogFormatJSON {
		return fmt.Errorf("unsupported log format %q", c.LogFormat)
	}
	if c.SolverCeilingSlack < 0 {
		return fmt.Errorf("CREWROTA_SOLVER_CEILING_SLACK must not be negative, got %d", c.SolverCeilingSlack)
	}
	if c.SolverMemoCapacity < 1 {
		return fmt.Errorf("CREWROTA_SOLVER_MEMO_CAPACITY must be at least 1, got %d", c.SolverMemoCapacity)
	}
	if c.SolverNodeBudget < 0 {
		return fmt.Errorf("CREWROTA_SOLVER_NODE_BUDGET must not be negative, got %d", c.SolverNodeBudget)
	}
	if c.SolverTimeout <= 0 {
		return fmt.Errorf("CREWROTA_SOLVER_TIMEOUT_SECONDS must be positive")
	}
	if c.ExtenderAttempts < 1 {
		return fmt.Errorf("CREWROTA_EXTENDER_ATTEMPTS must be at least 1, got %d", c.ExtenderAttempts)
	}
	if c.MaxReportDays < 1 {
		return fmt.Errorf("CREWROTA_MAX_REPORT_DAYS must be at least 1, got %d", c.MaxReportDays)
	}
	if c.TracingSampleRate < 0 || c.TracingSampleRate > 1 {
		return fmt.Errorf("CREWROTA_TRACING_SAMPLE_RATE must be in [0,1], got %g", c.TracingSampleRate)
	}
	if c.CacheEnabled && c.CacheTTL <= 0 {
		return fmt.Errorf("CREWROTA_CACHE_TTL_MINUTES must be positive when the cache is enabled")
	}
	return nil
}

// SolverConfig maps the solver settings onto the engine's search configuration.
func (c *Config) SolverConfig() rota.Config {
	cfg := rota.DefaultConfig()
	cfg.CeilingSlack = c.SolverCeilingSlack
	cfg.MemoCapacity = c.SolverMemoCapacity
	cfg.NodeBudget = c.SolverNodeBudget
	cfg.ExtenderAttempts = c.ExtenderAttempts
	return cfg
}

// HTTPAddr is the host:port the API listener binds to.
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.HTTPBind, c.HTTPPort)
}

func detectLegacyEnvWarnings() []string {
	legacy := map[string]string{
		"ENVIRONMENT":         "use CREWROTA_ENV",
		"REDIS_ADDR":          "use CREWROTA_REDIS_ADDR",
		"TRACING_ENABLED":     "use CREWROTA_TRACING_ENABLED",
		"OTLP_ENDPOINT":       "use CREWROTA_OTLP_ENDPOINT",
		"TRACING_SAMPLE_RATE": "use CREWROTA_TRACING_SAMPLE_RATE",
		"CEILING_SLACK":       "use CREWROTA_SOLVER_CEILING_SLACK",
	}

	warnings := make([]string, 0, len(legacy))
	for key, recommendation := range legacy {
		if os.Getenv(key) != "" {
			warnings = append(warnings, fmt.Sprintf("legacy env key %s is set; %s", key, recommendation))
		}
	}
	return warnings
}

// getEnvAny returns the first non-empty environment variable value from keys, or def if none set.
func getEnvAny(keys []string, def string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

// getEnvIntAny returns the first set integer environment variable value from keys, or def.
func getEnvIntAny(keys []string, def int) int {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				return parsed
			}
		}
	}
	return def
}

// getEnvBoolAny returns the first set boolean environment variable value from keys, or def.
func getEnvBoolAny(keys []string, def bool) bool {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "true" || v == "1" || v == "yes" {
				return true
			}
			if v == "false" || v == "0" || v == "no" {
				return false
			}
		}
	}
	return def
}

// getEnvFloatAny returns the first set float environment variable value from keys, or def.
func getEnvFloatAny(keys []string, def float64) float64 {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				return parsed
			}
		}
	}
	return def
}
