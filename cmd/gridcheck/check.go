package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/gridcheck/internal/config"
	"github.com/JonMunkholm/gridcheck/internal/core"
	"github.com/JonMunkholm/gridcheck/internal/dataset"
	"github.com/JonMunkholm/gridcheck/internal/schema"
)

var (
	outPath       string
	maxListed     int
	strictWarning bool
	quiet         bool
)

var checkCmd = &cobra.Command{
	Use:   "check <file.csv>",
	Short: "Validate a CSV file once and report violations",
	Long: `Validate a CSV file against a rule set.

The header row is searched for within the first rows of the file, so title
rows above the header are fine. Header cells match column IDs or labels
case-insensitively; unknown columns are reported and ignored.

Exit status is 0 when no errors are found, 1 when the dataset has errors
(or warnings with --warnings-as-errors) and 2 when the check cannot run.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the dataset with a Violations column to this CSV file")
	checkCmd.Flags().IntVar(&maxListed, "max", 50, "Maximum violations to list (0 lists all)")
	checkCmd.Flags().BoolVar(&strictWarning, "warnings-as-errors", false, "Fail on warnings too")
	checkCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only print the summary line")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	def, err := resolveDefinition(cfg, schemaPath, ruleSet)
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	res, err := checkDataset(f, def)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	res.File = args[0]

	limit := maxListed
	if quiet {
		limit = -1
	}
	printReport(cmd.OutOrStdout(), res, limit)

	if outPath != "" {
		if err := writeAnnotated(outPath, res); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "annotated dataset written to %s\n", outPath)
	}

	if res.Summary.Errors > 0 || (strictWarning && res.Summary.Warnings > 0) {
		return errViolations
	}
	return nil
}

// checkResult is one validated dataset.
type checkResult struct {
	File       string
	RuleSet    string
	Columns    []string
	Records    []core.Record
	Violations core.Violations
	Summary    core.Summary
	Ignored    []string
	Missing    []string
}

// checkDataset reads r as CSV and validates it with validation ON.
func checkDataset(r io.Reader, def core.RuleSetDefinition) (*checkResult, error) {
	engine, err := core.NewEngine(def, core.WithEnabled(true))
	if err != nil {
		return nil, err
	}

	parsed, err := dataset.ReadCSV(r, engine.Rules())
	if err != nil {
		return nil, err
	}
	if err := engine.LoadDataset(parsed.Records); err != nil {
		return nil, err
	}

	return &checkResult{
		RuleSet:    def.Name,
		Columns:    engine.Rules().Columns(),
		Records:    engine.Records(),
		Violations: engine.Violations(),
		Summary:    engine.Summary(),
		Ignored:    parsed.Ignored,
		Missing:    parsed.Missing,
	}, nil
}

// resolveDefinition picks the schema file when given, otherwise the named
// or configured built-in rule set, and applies the configured overrides.
func resolveDefinition(cfg *config.Config, schemaFile, name string) (core.RuleSetDefinition, error) {
	var def core.RuleSetDefinition
	switch {
	case schemaFile != "":
		loaded, err := schema.Load(schemaFile)
		if err != nil {
			return core.RuleSetDefinition{}, err
		}
		def = loaded
	default:
		if name == "" {
			name = cfg.Validation.RuleSet
		}
		found, ok := core.Get(name)
		if !ok {
			return core.RuleSetDefinition{}, fmt.Errorf("unknown rule set %q (available: %v)", name, core.Names())
		}
		def = found
	}
	return cfg.Validation.Apply(def), nil
}

func writeAnnotated(path string, res *checkResult) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := dataset.WriteAnnotated(out, res.Columns, res.Records, res.Violations); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}
