// Package schema loads rule set definitions from YAML files.
//
// A schema file describes one rule set:
//
//	name: support_dialogs
//	identity: {query_id: QueryID, turn: Turn}
//	sequence: {base: 1, strict: false}
//	separators: ",;"
//	columns:
//	  - id: QueryID
//	    required: true
//	  - id: Turn
//	    required: true
//	    type: number
//	  - id: Channel
//	    allowed_values: [chat, email]
//
// Unknown keys are rejected so a misspelled option fails loudly instead of
// silently disabling a check.
package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/gridcheck/internal/core"
)

// ErrInvalid is wrapped by every error describing a malformed schema.
var ErrInvalid = errors.New("invalid schema")

// file mirrors the YAML layout. Sequence fields are pointers so a file can
// override the base without also resetting strictness.
type file struct {
	Name       string               `yaml:"name"`
	Label      string               `yaml:"label,omitempty"`
	Identity   core.IdentityColumns `yaml:"identity,omitempty"`
	Sequence   *sequence            `yaml:"sequence,omitempty"`
	Separators string               `yaml:"separators,omitempty"`
	Columns    []core.ColumnRule    `yaml:"columns"`
}

type sequence struct {
	Base   *int  `yaml:"base"`
	Strict *bool `yaml:"strict"`
}

// Load reads and parses a schema file.
func Load(path string) (core.RuleSetDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.RuleSetDefinition{}, fmt.Errorf("read schema %s: %w", path, err)
	}
	def, err := Parse(data)
	if err != nil {
		return core.RuleSetDefinition{}, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Parse decodes a schema document and checks that its rules compile.
// Compile failures are returned as *core.ConfigError wrapped with context.
func Parse(data []byte) (core.RuleSetDefinition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return core.RuleSetDefinition{}, fmt.Errorf("parse schema: %w: document is empty", ErrInvalid)
		}
		return core.RuleSetDefinition{}, fmt.Errorf("parse schema: %w: %v", ErrInvalid, err)
	}

	def := f.definition()
	if def.Name == "" {
		return core.RuleSetDefinition{}, fmt.Errorf("parse schema: %w: name is required", ErrInvalid)
	}
	if len(def.Columns) == 0 {
		return core.RuleSetDefinition{}, fmt.Errorf("parse schema %q: %w: no columns", def.Name, ErrInvalid)
	}
	if _, err := core.CompileRules(def); err != nil {
		return core.RuleSetDefinition{}, fmt.Errorf("schema %q: %w", def.Name, err)
	}
	return def, nil
}

func (f file) definition() core.RuleSetDefinition {
	def := core.RuleSetDefinition{
		Name:       strings.TrimSpace(f.Name),
		Label:      f.Label,
		Columns:    f.Columns,
		Identity:   f.Identity,
		Separators: f.Separators,
	}
	if f.Sequence != nil {
		policy := core.DefaultSequencePolicy
		if f.Sequence.Base != nil {
			policy.Base = *f.Sequence.Base
		}
		if f.Sequence.Strict != nil {
			policy.Strict = *f.Sequence.Strict
		}
		def.Sequence = &policy
	}
	return def
}

// Marshal renders a definition back to YAML, e.g. for `gridcheck rules`.
func Marshal(def core.RuleSetDefinition) ([]byte, error) {
	f := file{
		Name:       def.Name,
		Label:      def.Label,
		Identity:   def.Identity,
		Separators: def.Separators,
		Columns:    def.Columns,
	}
	if def.Sequence != nil {
		base, strict := def.Sequence.Base, def.Sequence.Strict
		f.Sequence = &sequence{Base: &base, Strict: &strict}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("encode schema %q: %w", def.Name, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode schema %q: %w", def.Name, err)
	}
	return buf.Bytes(), nil
}
