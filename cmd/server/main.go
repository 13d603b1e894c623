package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/gridcheck/internal/config"
	"github.com/JonMunkholm/gridcheck/internal/core"
	_ "github.com/JonMunkholm/gridcheck/internal/core/rulesets" // Register built-in rule sets
	"github.com/JonMunkholm/gridcheck/internal/logging"
	"github.com/JonMunkholm/gridcheck/internal/schema"
	"github.com/JonMunkholm/gridcheck/internal/session"
	"github.com/JonMunkholm/gridcheck/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"rule_set", cfg.Validation.RuleSet,
		"session_max", cfg.Session.Max,
		"session_idle_timeout", cfg.Session.IdleTimeout,
		"rate_limit", cfg.Server.RateLimit,
	)

	// A schema file adds a rule set next to the built-in ones
	if cfg.Validation.SchemaPath != "" {
		def, err := schema.Load(cfg.Validation.SchemaPath)
		if err != nil {
			slog.Error("failed to load schema", "path", cfg.Validation.SchemaPath, "error", err)
			os.Exit(1)
		}
		if _, exists := core.Get(def.Name); exists {
			slog.Error("schema name collides with a built-in rule set", "name", def.Name)
			os.Exit(1)
		}
		core.Register(def)
		slog.Info("schema registered", "name", def.Name, "columns", len(def.Columns))
	}

	if _, ok := core.Get(cfg.Validation.RuleSet); !ok {
		slog.Error("default rule set is not registered",
			"rule_set", cfg.Validation.RuleSet,
			"available", core.Names(),
		)
		os.Exit(1)
	}

	slog.Info("rule sets registered", "count", core.RuleSetCount(), "names", core.Names())

	store := session.NewStore(cfg.Session.Max, cfg.Session.IdleTimeout, logger)
	loads := session.NewLoadLimiter(cfg.Session.MaxConcurrentLoads, cfg.Session.LoadWait)

	server := web.NewServer(store, loads, cfg)

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())

	go store.RunJanitor(jobCtx, cfg.Session.SweepInterval)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		// Stop background jobs
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for in-flight dataset loads (with timeout)
		if status := loads.Status(); status.Active > 0 {
			slog.Info("waiting for dataset loads to complete", "active", status.Active)
			if err := loads.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("dataset loads did not complete in time", "error", err)
			} else {
				slog.Info("all dataset loads completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
