// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"FOLIO_DB_PATH" envDefault:"./data/folio.db"`
	ServerHost string `env:"FOLIO_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"FOLIO_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"FOLIO_ENV" envDefault:"development"`
	LogLevel   string `env:"FOLIO_LOG_LEVEL" envDefault:"info"`
	UploadsDir string `env:"FOLIO_UPLOADS_DIR" envDefault:"./uploads"`

	// Cache configuration
	RedisURL     string `env:"FOLIO_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix  string `env:"FOLIO_CACHE_PREFIX" envDefault:"folio:"`  // Redis key prefix
	CacheTTL     int    `env:"FOLIO_CACHE_TTL" envDefault:"3600"`       // Default cache TTL in seconds
	CacheMaxSize int    `env:"FOLIO_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// Rate limiting
	GlobalRateRPS   float64 `env:"FOLIO_GLOBAL_RATE_RPS" envDefault:"20"`  // Per-IP requests per second
	GlobalRateBurst int     `env:"FOLIO_GLOBAL_RATE_BURST" envDefault:"40"`
	WriteRateRPS    float64 `env:"FOLIO_WRITE_RATE_RPS" envDefault:"5"`    // Per-token requests per second on write routes
	WriteRateBurst  int     `env:"FOLIO_WRITE_RATE_BURST" envDefault:"10"`

	// Request handling
	RequestTimeout int `env:"FOLIO_REQUEST_TIMEOUT" envDefault:"30"` // Seconds before a request is cancelled
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Env != "development" && cfg.Env != "production" {
		return nil, fmt.Errorf("FOLIO_ENV must be \"development\" or \"production\", got %q", cfg.Env)
	}
	if cfg.ServerPort < 1 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("FOLIO_SERVER_PORT must be between 1 and 65535, got %d", cfg.ServerPort)
	}
	if cfg.CacheTTL < 1 {
		return nil, fmt.Errorf("FOLIO_CACHE_TTL must be positive, got %d", cfg.CacheTTL)
	}
	if cfg.RequestTimeout < 1 {
		return nil, fmt.Errorf("FOLIO_REQUEST_TIMEOUT must be positive, got %d", cfg.RequestTimeout)
	}
	if cfg.GlobalRateRPS <= 0 || cfg.WriteRateRPS <= 0 {
		return nil, fmt.Errorf("rate limits must be positive")
	}

	return cfg, nil
}
