package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/gridcheck/internal/core"
	"github.com/JonMunkholm/gridcheck/internal/schema"
)

var rulesCmd = &cobra.Command{
	Use:   "rules [name]",
	Short: "List rule sets or print one as a YAML schema",
	Long: `With no argument, list the built-in rule sets. With a name, or with
--schema, print the effective rule set (after environment overrides) as a
YAML schema file that can be edited and passed back with --schema.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRules,
}

func runRules(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if len(args) == 0 && schemaPath == "" && ruleSet == "" {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tLABEL\tCOLUMNS\tDEFAULT")
		for _, def := range core.All() {
			isDefault := ""
			if def.Name == cfg.Validation.RuleSet {
				isDefault = "*"
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", def.Name, def.Label, len(def.Columns), isDefault)
		}
		return tw.Flush()
	}

	name := ruleSet
	if len(args) == 1 {
		name = args[0]
	}
	def, err := resolveDefinition(cfg, schemaPath, name)
	if err != nil {
		return err
	}
	data, err := schema.Marshal(def)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
