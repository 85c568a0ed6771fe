// Package config provides centralized configuration management for the application.
// Settings come from struct-tag defaults, an optional TOML file and environment
// variables, in that order, and are validated on startup to fail fast on
// misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Import   ImportConfig   `toml:"import"`
	Security SecurityConfig `toml:"security"`
	Logging  LoggingConfig  `toml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `toml:"host" env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `toml:"port" env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading the request (default: 15s)
	ReadTimeout time.Duration `toml:"read_timeout" env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing the response (default: 10m)
	WriteTimeout time.Duration `toml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" default:"10m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `toml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// ImportConfig holds folder import settings.
type ImportConfig struct {
	// DataRoot is the directory that request folders are resolved against (default: .)
	DataRoot string `toml:"data_root" env:"IMPORT_DATA_ROOT" envAlt:"DATA_ROOT" default:"."`

	// Workers is the number of sweeps processed in parallel; 0 uses all CPUs (default: 0)
	Workers int `toml:"workers" env:"IMPORT_WORKERS" default:"0"`

	// MaxConcurrent is the maximum number of parallel imports (default: 4)
	MaxConcurrent int `toml:"max_concurrent" env:"IMPORT_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long to wait for an import slot (default: 30s)
	MaxWaitTime time.Duration `toml:"max_wait_time" env:"IMPORT_MAX_WAIT_TIME" default:"30s"`

	// Timeout is the maximum duration of a single import (default: 5m)
	Timeout time.Duration `toml:"timeout" env:"IMPORT_TIMEOUT" default:"5m"`

	// Pattern is the metadata file glob (default: *_VoltageRecording_*.xml)
	Pattern string `toml:"pattern" env:"IMPORT_PATTERN" default:"*_VoltageRecording_*.xml"`

	// AuxiliaryMarker marks a data file as a linescan profile (default: LineScan)
	AuxiliaryMarker string `toml:"auxiliary_marker" env:"IMPORT_AUXILIARY_MARKER" default:"LineScan"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// RequireAPIKey enables X-API-Key checks on /api routes (default: false)
	RequireAPIKey bool `toml:"require_api_key" env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `toml:"api_keys" env:"API_KEYS"`

	// TrustedProxies lists proxy CIDRs whose X-Real-IP / X-Forwarded-For headers are honored
	TrustedProxies []string `toml:"trusted_proxies" env:"TRUSTED_PROXIES"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `toml:"level" env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text, json or auto (default: text)
	Format string `toml:"format" env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
