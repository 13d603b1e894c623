package core

// rules.go compiles declarative column rules into an immutable RuleSet.
//
// Compilation is the only place configuration errors can surface: unknown
// data types or multiplicities, patterns that fail to compile, duplicate or
// blank column IDs, and identity columns without a rule. Once a RuleSet
// exists it never changes.

import (
	"fmt"
	"regexp"
	"strings"
)

// RuleSetDefinition is the declarative description of a dataset's rules.
type RuleSetDefinition struct {
	Name       string          `yaml:"name"`
	Label      string          `yaml:"label,omitempty"`
	Columns    []ColumnRule    `yaml:"columns"`
	Identity   IdentityColumns `yaml:"identity,omitempty"`
	Sequence   *SequencePolicy `yaml:"sequence,omitempty"`   // nil means DefaultSequencePolicy
	Separators string          `yaml:"separators,omitempty"` // empty means DefaultSeparators
}

// RuleSet is a compiled RuleSetDefinition. It is safe for concurrent reads.
type RuleSet struct {
	name       string
	rules      []Rule
	byID       map[string]int
	identity   IdentityColumns
	sequence   SequencePolicy
	separators string
}

// CompileRules validates def and compiles it into a RuleSet.
// The returned error is a *ConfigError naming the offending column.
func CompileRules(def RuleSetDefinition) (*RuleSet, error) {
	rs := &RuleSet{
		name:       def.Name,
		rules:      make([]Rule, 0, len(def.Columns)),
		byID:       make(map[string]int, len(def.Columns)),
		identity:   def.Identity,
		sequence:   DefaultSequencePolicy,
		separators: def.Separators,
	}
	if rs.identity == (IdentityColumns{}) {
		rs.identity = DefaultIdentity
	}
	if def.Sequence != nil {
		rs.sequence = *def.Sequence
	}
	if rs.separators == "" {
		rs.separators = DefaultSeparators
	}

	for _, col := range def.Columns {
		rule, err := compileRule(col, rs.separators)
		if err != nil {
			return nil, err
		}
		if _, dup := rs.byID[rule.ID]; dup {
			return nil, &ConfigError{Column: rule.ID, Reason: "duplicate column"}
		}
		rs.byID[rule.ID] = len(rs.rules)
		rs.rules = append(rs.rules, rule)
	}

	for _, id := range []string{rs.identity.QueryID, rs.identity.Turn} {
		if _, ok := rs.byID[id]; !ok {
			return nil, &ConfigError{Column: id, Reason: "identity column has no rule"}
		}
	}
	if rs.identity.QueryID == rs.identity.Turn {
		return nil, &ConfigError{Column: rs.identity.Turn, Reason: "query and turn identity columns must differ"}
	}

	return rs, nil
}

// MustCompileRules is like CompileRules but panics on error.
// Use it for built-in rule sets registered at init time.
func MustCompileRules(def RuleSetDefinition) *RuleSet {
	rs, err := CompileRules(def)
	if err != nil {
		panic(fmt.Sprintf("compile rule set %q: %v", def.Name, err))
	}
	return rs
}

func compileRule(col ColumnRule, separators string) (Rule, error) {
	col.ID = strings.TrimSpace(col.ID)
	if col.ID == "" {
		return Rule{}, &ConfigError{Reason: "column id is empty"}
	}

	switch col.DataType {
	case "":
		col.DataType = TypeText
	case TypeText, TypeNumber, TypeDate, TypeGUID:
	default:
		return Rule{}, &ConfigError{Column: col.ID, Reason: fmt.Sprintf("unknown data type %q", col.DataType)}
	}

	switch col.Multiplicity {
	case "":
		col.Multiplicity = MultiplicitySingle
	case MultiplicitySingle, MultiplicityMultiple:
	default:
		return Rule{}, &ConfigError{Column: col.ID, Reason: fmt.Sprintf("unknown multiplicity %q", col.Multiplicity)}
	}

	rule := Rule{ColumnRule: col, separators: separators}
	rule.AllowedValues = append([]string(nil), col.AllowedValues...)

	if len(col.AllowedValues) > 0 {
		rule.allowed = make(map[string]struct{}, len(col.AllowedValues))
		for _, v := range col.AllowedValues {
			rule.allowed[v] = struct{}{}
		}
	}

	if col.Pattern != "" {
		re, err := regexp.Compile(col.Pattern)
		if err != nil {
			return Rule{}, &ConfigError{Column: col.ID, Reason: "pattern does not compile", Err: err}
		}
		rule.pattern = re
	}

	return rule, nil
}

// Name returns the rule set name.
func (rs *RuleSet) Name() string { return rs.name }

// Rules returns the compiled rules in column order.
func (rs *RuleSet) Rules() []Rule {
	return append([]Rule(nil), rs.rules...)
}

// Columns returns the column IDs in order.
func (rs *RuleSet) Columns() []string {
	cols := make([]string, len(rs.rules))
	for i, r := range rs.rules {
		cols[i] = r.ID
	}
	return cols
}

// Rule returns the rule for a column.
func (rs *RuleSet) Rule(column string) (Rule, bool) {
	i, ok := rs.byID[column]
	if !ok {
		return Rule{}, false
	}
	return rs.rules[i], true
}

// Identity returns the identity column pair.
func (rs *RuleSet) Identity() IdentityColumns { return rs.identity }

// Sequence returns the turn numbering policy.
func (rs *RuleSet) Sequence() SequencePolicy { return rs.sequence }

// Separators returns the configured list separators.
func (rs *RuleSet) Separators() string { return rs.separators }
