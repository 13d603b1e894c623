package core

import "log/slog"

// Option configures an Engine. Use With* functions to create Options.
type Option func(*engineOptions)

type engineOptions struct {
	logger   *slog.Logger
	listener Listener
	enabled  bool
}

// Listener receives a copy of the violation mapping after every call that
// changes engine state. It runs synchronously on the caller's goroutine.
type Listener func(Violations)

// WithLogger sets the logger used for recompute diagnostics.
// Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *engineOptions) { o.logger = l }
}

// WithListener registers a Listener, typically the presentation adapter.
func WithListener(fn Listener) Option {
	return func(o *engineOptions) { o.listener = fn }
}

// WithEnabled starts the engine in the ENABLED state.
func WithEnabled(on bool) Option {
	return func(o *engineOptions) { o.enabled = on }
}
