// Opticus - Camera Fleet Tracking and Geographic Visualization
// Copyright 2026 Opticus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/opticus-project/opticus

// Package config defines the Opticus configuration model and loads it via
// Koanf v2 from layered sources (defaults, optional YAML file, environment).
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Sheets   SheetsConfig   `koanf:"sheets"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the listen address. Default: 0.0.0.0.
	Host string `koanf:"host"`

	// Port is the listen port. Default: 8000.
	Port int `koanf:"port"`

	// ReadTimeout bounds how long reading a request may take.
	ReadTimeout time.Duration `koanf:"read_timeout"`

	// WriteTimeout bounds how long writing a response may take.
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// ShutdownTimeout is the grace period for in-flight requests on shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// CORSOrigins lists the allowed CORS origins. Comma-separated in env.
	CORSOrigins []string `koanf:"cors_origins"`

	// MaxUploadBytes caps the size of uploaded camera files.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the DuckDB database file. Use ":memory:" for tests.
	Path string `koanf:"path"`

	// MaxMemory is DuckDB's memory limit (e.g. "2GB").
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB thread count. 0 means runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// AuthConfig holds session and TOTP settings.
type AuthConfig struct {
	// SessionTTL is how long a session lives after login.
	SessionTTL time.Duration `koanf:"session_ttl"`

	// TOTPIssuer is the issuer name embedded in provisioning URIs.
	TOTPIssuer string `koanf:"totp_issuer"`

	// BcryptCost is the bcrypt cost factor for password hashing.
	BcryptCost int `koanf:"bcrypt_cost"`

	// LoginRateLimit is the number of login attempts allowed per window.
	LoginRateLimit int `koanf:"login_rate_limit"`

	// LoginRateWindow is the login rate-limit window.
	LoginRateWindow time.Duration `koanf:"login_rate_window"`
}

// SheetsConfig holds Google Sheets row-source settings.
type SheetsConfig struct {
	// BaseURL is the Sheets API endpoint. Overridable for tests.
	BaseURL string `koanf:"base_url"`

	// AccessToken is the OAuth bearer token for the Sheets API.
	AccessToken string `koanf:"access_token"`

	// Range is the A1-notation range to read. Default: "Sheet1!A:H".
	Range string `koanf:"range"`

	// Timeout bounds a single Sheets API call.
	Timeout time.Duration `koanf:"timeout"`

	// RequestsPerSecond limits outbound calls to the Sheets API.
	RequestsPerSecond float64 `koanf:"requests_per_second"`

	// SpreadsheetID is the spreadsheet used for background syncs.
	SpreadsheetID string `koanf:"spreadsheet_id"`

	// SyncInterval is how often the background sync runs. 0 disables it;
	// syncs can still be triggered through the API.
	SyncInterval time.Duration `koanf:"sync_interval"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for values that would fail at runtime.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("auth.session_ttl must be positive, got %s", c.Auth.SessionTTL)
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("auth.bcrypt_cost must be 4-31, got %d", c.Auth.BcryptCost)
	}
	if c.Auth.TOTPIssuer == "" {
		return fmt.Errorf("auth.totp_issuer is required")
	}
	if c.Sheets.RequestsPerSecond <= 0 {
		return fmt.Errorf("sheets.requests_per_second must be positive, got %f", c.Sheets.RequestsPerSecond)
	}
	if c.Sheets.SyncInterval < 0 {
		return fmt.Errorf("sheets.sync_interval must not be negative, got %s", c.Sheets.SyncInterval)
	}
	if c.Sheets.SyncInterval > 0 && c.Sheets.SpreadsheetID == "" {
		return fmt.Errorf("sheets.spreadsheet_id is required when sheets.sync_interval is set")
	}
	return nil
}

// ListenAddr returns the host:port string for the HTTP listener.
func (c *ServerConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
