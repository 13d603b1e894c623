package config

import "github.com/JonMunkholm/gridcheck/internal/core"

// Apply returns def with the configured sequence and separator overrides.
// Unset overrides leave the rule set's own values in place.
func (c *ValidationConfig) Apply(def core.RuleSetDefinition) core.RuleSetDefinition {
	if c.SequenceBase != nil || c.SequenceStrict != nil {
		policy := core.DefaultSequencePolicy
		if def.Sequence != nil {
			policy = *def.Sequence
		}
		if c.SequenceBase != nil {
			policy.Base = *c.SequenceBase
		}
		if c.SequenceStrict != nil {
			policy.Strict = *c.SequenceStrict
		}
		def.Sequence = &policy
	}
	if c.ListSeparators != "" {
		def.Separators = c.ListSeparators
	}
	return def
}
