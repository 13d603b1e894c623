package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Load reads configuration from environment variables, applies tag
// defaults, and validates the result. Every malformed variable is reported,
// not just the first.
func Load() (*Config, error) {
	cfg := &Config{}

	if errs := loadFields(reflect.ValueOf(cfg).Elem(), nil); len(errs) > 0 {
		return nil, fmt.Errorf("config load:\n  - %s", strings.Join(errs, "\n  - "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// parser converts a raw environment value into a field's type.
type parser func(string) (any, error)

var (
	durationType    = reflect.TypeOf(time.Duration(0))
	stringSliceType = reflect.TypeOf([]string(nil))
)

// parsers covers every field type used by Config. Pointer fields use the
// parser of their element type.
var parsers = map[reflect.Type]parser{
	reflect.TypeOf(""): func(s string) (any, error) { return s, nil },
	reflect.TypeOf(0): func(s string) (any, error) {
		return strconv.Atoi(s)
	},
	reflect.TypeOf(int64(0)): func(s string) (any, error) {
		return strconv.ParseInt(s, 10, 64)
	},
	reflect.TypeOf(false): func(s string) (any, error) {
		return strconv.ParseBool(s)
	},
	durationType: func(s string) (any, error) {
		return time.ParseDuration(s)
	},
	stringSliceType: func(s string) (any, error) {
		return splitList(s), nil
	},
}

// loadFields fills the tagged fields of the struct v, descending into
// section structs. The env tag lists variable names in priority order,
// e.g. env:"RULESET,RULE_SET". It returns one message per bad value.
func loadFields(v reflect.Value, errs []string) []string {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fv := v.Field(i)
		if !fv.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			errs = loadFields(fv, errs)
			continue
		}

		tag := field.Tag.Get("env")
		if tag == "" {
			continue
		}
		names := strings.Split(tag, ",")

		name, value := lookupEnv(names)
		if value == "" {
			name, value = names[0], field.Tag.Get("default")
		}
		if value == "" {
			// Unset pointers stay nil so callers can tell "not configured"
			continue
		}

		if err := assign(fv, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s=%q: %v", name, value, err))
		}
	}

	return errs
}

// lookupEnv returns the first of names with a non-empty value.
func lookupEnv(names []string) (name, value string) {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return n, v
		}
	}
	return "", ""
}

// assign parses value into fv, allocating fv first when it is a pointer.
func assign(fv reflect.Value, value string) error {
	target := fv
	if fv.Kind() == reflect.Ptr {
		target = reflect.New(fv.Type().Elem()).Elem()
	}

	parse, ok := parsers[target.Type()]
	if !ok {
		return fmt.Errorf("unsupported field type %s", target.Type())
	}
	parsed, err := parse(value)
	if err != nil {
		return err
	}
	target.Set(reflect.ValueOf(parsed).Convert(target.Type()))

	if fv.Kind() == reflect.Ptr {
		fv.Set(target.Addr())
	}
	return nil
}

// splitList splits a comma-separated value, dropping blank items.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.MaxBodySize <= 0 {
		errs = append(errs, "SERVER_MAX_BODY_SIZE must be positive")
	}

	// Validation settings
	if strings.TrimSpace(c.Validation.RuleSet) == "" {
		errs = append(errs, "RULESET must not be empty")
	}
	if strings.TrimSpace(c.Validation.ListSeparators) != c.Validation.ListSeparators {
		errs = append(errs, "LIST_SEPARATORS must not contain whitespace")
	}

	// Session validation
	if c.Session.Max <= 0 {
		errs = append(errs, "SESSION_MAX must be positive")
	}
	if c.Session.IdleTimeout <= 0 {
		errs = append(errs, "SESSION_IDLE_TIMEOUT must be positive")
	}
	if c.Session.SweepInterval <= 0 {
		errs = append(errs, "SESSION_SWEEP_INTERVAL must be positive")
	}
	if c.Session.MaxConcurrentLoads <= 0 {
		errs = append(errs, "SESSION_MAX_CONCURRENT_LOADS must be positive")
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be non-negative")
	}

	// Security validation
	if c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0 {
		errs = append(errs, "REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a compact representation of the config for logging.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Validation: {RuleSet: %q, SchemaPath: %q, StartEnabled: %v}, ",
		c.Validation.RuleSet, c.Validation.SchemaPath, c.Validation.StartEnabled))
	b.WriteString(fmt.Sprintf("Session: {Max: %d, IdleTimeout: %s}, ",
		c.Session.Max, c.Session.IdleTimeout))
	b.WriteString(fmt.Sprintf("Security: {RequireAPIKey: %v, APIKeys: [%d MASKED]}, ",
		c.Security.RequireAPIKey, len(c.Security.APIKeys)))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
