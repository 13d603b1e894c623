package core

import (
	"errors"
	"fmt"
)

// ErrUnknownRecord is returned when a caller addresses a row that is not in
// the loaded dataset.
var ErrUnknownRecord = errors.New("unknown record")

// ErrUnknownColumn is returned when a caller addresses a column that has no rule.
var ErrUnknownColumn = errors.New("unknown column")

// ConfigError reports a rule definition the engine refuses to load.
type ConfigError struct {
	Column string // Offending column ID (empty for set-level problems)
	Reason string
	Err    error // Underlying error, if any (e.g. regexp compile error)
}

func (e *ConfigError) Error() string {
	msg := "invalid rule"
	if e.Column != "" {
		msg = fmt.Sprintf("invalid rule for column %q", e.Column)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Err }
