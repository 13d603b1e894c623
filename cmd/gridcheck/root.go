package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/gridcheck/internal/config"
	_ "github.com/JonMunkholm/gridcheck/internal/core/rulesets" // Register built-in rule sets
	"github.com/JonMunkholm/gridcheck/internal/logging"
)

// errViolations signals a completed check that found errors. It maps to
// exit code 1 without printing anything further.
var errViolations = errors.New("dataset has validation errors")

var (
	schemaPath string
	ruleSet    string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "gridcheck",
	Short: "Validate tabular datasets against column rules",
	Long: `gridcheck validates CSV datasets against a rule set: per-cell checks
(required, type, dropdown values, pattern, single vs. multiple values) and
cross-record checks (duplicate QueryID/Turn pairs, gaps in turn numbering).

Rule sets are either built in (see 'gridcheck rules') or loaded from a YAML
schema file with --schema. Environment variables and a .env file supply the
same overrides the server uses (SEQUENCE_BASE, SEQUENCE_STRICT,
LIST_SEPARATORS, RULESET).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logLevel
		if level == "" {
			level = "warn"
		}
		logging.Setup(level, "text")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&schemaPath, "schema", "", "YAML schema file defining the rule set")
	rootCmd.PersistentFlags().StringVar(&ruleSet, "ruleset", "", "Built-in rule set name (default: $RULESET or conversation_turns)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(rulesCmd)
}

// loadConfig reads .env (without overriding the environment) and the
// validation settings.
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}

// Execute runs the root command and exits with 0 (clean), 1 (validation
// errors found) or 2 (the check could not run).
func Execute() {
	err := rootCmd.Execute()
	switch {
	case err == nil:
		return
	case errors.Is(err, errViolations):
		os.Exit(1)
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
}

func main() {
	Execute()
}
