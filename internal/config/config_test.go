// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"testing"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "./data/folio.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/folio.db")
	}
	if cfg.ServerHost != "localhost" {
		t.Errorf("ServerHost = %q, want %q", cfg.ServerHost, "localhost")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want %q", cfg.Env, "development")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.UploadsDir != "./uploads" {
		t.Errorf("UploadsDir = %q, want %q", cfg.UploadsDir, "./uploads")
	}
	if cfg.CacheTTL != 3600 {
		t.Errorf("CacheTTL = %d, want %d", cfg.CacheTTL, 3600)
	}
	if cfg.RequestTimeout != 30 {
		t.Errorf("RequestTimeout = %d, want %d", cfg.RequestTimeout, 30)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	setEnv(t, "FOLIO_DB_PATH", "/custom/path.db")
	setEnv(t, "FOLIO_SERVER_HOST", "0.0.0.0")
	setEnv(t, "FOLIO_SERVER_PORT", "3000")
	setEnv(t, "FOLIO_ENV", "production")
	setEnv(t, "FOLIO_LOG_LEVEL", "debug")
	setEnv(t, "FOLIO_UPLOADS_DIR", "/var/www/uploads")
	setEnv(t, "FOLIO_REDIS_URL", "redis://localhost:6379/0")
	setEnv(t, "FOLIO_GLOBAL_RATE_RPS", "50")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "/custom/path.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "/custom/path.db")
	}
	if cfg.ServerHost != "0.0.0.0" {
		t.Errorf("ServerHost = %q, want %q", cfg.ServerHost, "0.0.0.0")
	}
	if cfg.ServerPort != 3000 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 3000)
	}
	if cfg.Env != "production" {
		t.Errorf("Env = %q, want %q", cfg.Env, "production")
	}
	if cfg.UploadsDir != "/var/www/uploads" {
		t.Errorf("UploadsDir = %q, want %q", cfg.UploadsDir, "/var/www/uploads")
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("RedisURL = %q", cfg.RedisURL)
	}
	if cfg.GlobalRateRPS != 50 {
		t.Errorf("GlobalRateRPS = %v, want 50", cfg.GlobalRateRPS)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown env", "FOLIO_ENV", "staging"},
		{"port zero", "FOLIO_SERVER_PORT", "0"},
		{"port too high", "FOLIO_SERVER_PORT", "70000"},
		{"negative cache ttl", "FOLIO_CACHE_TTL", "-1"},
		{"zero timeout", "FOLIO_REQUEST_TIMEOUT", "0"},
		{"zero global rps", "FOLIO_GLOBAL_RATE_RPS", "0"},
		{"negative write rps", "FOLIO_WRITE_RATE_RPS", "-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			setEnv(t, tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Fatalf("Load() should fail with %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"development", true},
		{"production", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := Config{Env: tt.env}
			if got := cfg.IsDevelopment(); got != tt.want {
				t.Errorf("IsDevelopment() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_ServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"localhost", 8080, "localhost:8080"},
		{"0.0.0.0", 3000, "0.0.0.0:3000"},
		{"127.0.0.1", 443, "127.0.0.1:443"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			cfg := Config{ServerHost: tt.host, ServerPort: tt.port}
			if got := cfg.ServerAddr(); got != tt.want {
				t.Errorf("ServerAddr() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfig_UseRedisCache(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		enabled bool
	}{
		{"empty url", "", false},
		{"url set", "redis://localhost:6379", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{RedisURL: tt.url}
			if got := cfg.UseRedisCache(); got != tt.enabled {
				t.Errorf("UseRedisCache() = %v, want %v", got, tt.enabled)
			}
		})
	}
}
