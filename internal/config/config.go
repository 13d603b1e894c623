// Package config provides centralized configuration management for gridcheck.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server     ServerConfig
	Validation ValidationConfig
	Session    SessionConfig
	Security   SecurityConfig
	Logging    LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// MaxBodySize caps dataset uploads in bytes (default: 10MB)
	MaxBodySize int64 `env:"SERVER_MAX_BODY_SIZE" default:"10485760"`

	// RateLimit is requests per minute per client IP; 0 disables (default: 600)
	RateLimit int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"600"`
}

// ValidationConfig selects the rule set and overrides its policies.
type ValidationConfig struct {
	// SchemaPath is an optional YAML rule set file. When set it is loaded
	// and registered alongside the built-in rule sets.
	SchemaPath string `env:"SCHEMA_PATH"`

	// RuleSet is the rule set used when a request does not name one
	// (default: conversation_turns)
	RuleSet string `env:"RULESET,RULE_SET" default:"conversation_turns"`

	// SequenceBase overrides the first expected turn number
	SequenceBase *int `env:"SEQUENCE_BASE"`

	// SequenceStrict overrides whether turn gaps are errors (true) or warnings
	SequenceStrict *bool `env:"SEQUENCE_STRICT"`

	// ListSeparators overrides the characters that separate list values
	ListSeparators string `env:"LIST_SEPARATORS"`

	// StartEnabled starts new sessions with validation ON (default: false)
	StartEnabled bool `env:"VALIDATION_START_ENABLED" default:"false"`
}

// SessionConfig holds validation session limits.
type SessionConfig struct {
	// Max is the maximum number of open sessions (default: 100)
	Max int `env:"SESSION_MAX" default:"100"`

	// IdleTimeout closes sessions untouched for this long (default: 30m)
	IdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" default:"30m"`

	// SweepInterval is how often idle sessions are collected (default: 1m)
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" default:"1m"`

	// MaxConcurrentLoads bounds parallel dataset loads (default: 4)
	MaxConcurrentLoads int `env:"SESSION_MAX_CONCURRENT_LOADS" default:"4"`

	// LoadWait is how long a dataset load waits for a slot (default: 10s)
	LoadWait time.Duration `env:"SESSION_LOAD_WAIT" default:"10s"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// X-Real-IP / X-Forwarded-For headers are honored
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey rejects /api requests without a valid X-API-Key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
