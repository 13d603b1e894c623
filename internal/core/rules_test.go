package core

import (
	"errors"
	"reflect"
	"regexp/syntax"
	"strings"
	"testing"
)

func TestCompileRules_ConfigErrors(t *testing.T) {
	base := func(extra ...ColumnRule) []ColumnRule {
		return append([]ColumnRule{{ID: "QueryID"}, {ID: "Turn"}}, extra...)
	}

	tests := []struct {
		name       string
		def        RuleSetDefinition
		wantColumn string
		wantReason string
	}{
		{
			name:       "unknown data type",
			def:        RuleSetDefinition{Columns: base(ColumnRule{ID: "A", DataType: "money"})},
			wantColumn: "A",
			wantReason: "unknown data type",
		},
		{
			name:       "unknown multiplicity",
			def:        RuleSetDefinition{Columns: base(ColumnRule{ID: "A", Multiplicity: "many"})},
			wantColumn: "A",
			wantReason: "unknown multiplicity",
		},
		{
			name:       "bad pattern",
			def:        RuleSetDefinition{Columns: base(ColumnRule{ID: "A", Pattern: "[a-"})},
			wantColumn: "A",
			wantReason: "pattern does not compile",
		},
		{
			name:       "blank id",
			def:        RuleSetDefinition{Columns: base(ColumnRule{ID: "  "})},
			wantReason: "column id is empty",
		},
		{
			name:       "duplicate column",
			def:        RuleSetDefinition{Columns: base(ColumnRule{ID: "A"}, ColumnRule{ID: "A"})},
			wantColumn: "A",
			wantReason: "duplicate column",
		},
		{
			name:       "missing identity rule",
			def:        RuleSetDefinition{Columns: []ColumnRule{{ID: "QueryID"}}},
			wantColumn: "Turn",
			wantReason: "identity column has no rule",
		},
		{
			name: "identity columns equal",
			def: RuleSetDefinition{
				Columns:  base(),
				Identity: IdentityColumns{QueryID: "QueryID", Turn: "QueryID"},
			},
			wantColumn: "QueryID",
			wantReason: "must differ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileRules(tt.def)
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("CompileRules() error = %v, want *ConfigError", err)
			}
			if cfgErr.Column != tt.wantColumn {
				t.Errorf("Column = %q, want %q", cfgErr.Column, tt.wantColumn)
			}
			if !strings.Contains(cfgErr.Reason, tt.wantReason) {
				t.Errorf("Reason = %q, want it to contain %q", cfgErr.Reason, tt.wantReason)
			}
		})
	}
}

func TestCompileRules_PatternErrorUnwraps(t *testing.T) {
	_, err := CompileRules(RuleSetDefinition{Columns: []ColumnRule{
		{ID: "QueryID"}, {ID: "Turn", Pattern: "("},
	}})
	var synErr *syntax.Error
	if !errors.As(err, &synErr) {
		t.Errorf("error %v should unwrap to *syntax.Error", err)
	}
}

func TestCompileRules_Defaults(t *testing.T) {
	rs, err := CompileRules(RuleSetDefinition{
		Name:    "defaults",
		Columns: []ColumnRule{{ID: " QueryID "}, {ID: "Turn"}, {ID: "Note"}},
	})
	if err != nil {
		t.Fatalf("CompileRules() error = %v", err)
	}

	if rs.Name() != "defaults" {
		t.Errorf("Name() = %q", rs.Name())
	}
	if rs.Identity() != DefaultIdentity {
		t.Errorf("Identity() = %v, want %v", rs.Identity(), DefaultIdentity)
	}
	if rs.Sequence() != DefaultSequencePolicy {
		t.Errorf("Sequence() = %v, want %v", rs.Sequence(), DefaultSequencePolicy)
	}
	if rs.Separators() != DefaultSeparators {
		t.Errorf("Separators() = %q, want %q", rs.Separators(), DefaultSeparators)
	}
	if got := rs.Columns(); !reflect.DeepEqual(got, []string{"QueryID", "Turn", "Note"}) {
		t.Errorf("Columns() = %v", got)
	}

	note, ok := rs.Rule("Note")
	if !ok {
		t.Fatal("Rule(Note) not found")
	}
	if note.DataType != TypeText || note.Multiplicity != MultiplicitySingle {
		t.Errorf("Note defaults = %s/%s, want text/single", note.DataType, note.Multiplicity)
	}
	if _, ok := rs.Rule("Missing"); ok {
		t.Error("Rule(Missing) should not be found")
	}
}

func TestCompileRules_CustomPolicy(t *testing.T) {
	rs, err := CompileRules(RuleSetDefinition{
		Columns:  []ColumnRule{{ID: "Conv"}, {ID: "Step"}},
		Identity: IdentityColumns{QueryID: "Conv", Turn: "Step"},
		Sequence: &SequencePolicy{Base: 0, Strict: false},
	})
	if err != nil {
		t.Fatalf("CompileRules() error = %v", err)
	}
	if rs.Sequence() != (SequencePolicy{Base: 0, Strict: false}) {
		t.Errorf("Sequence() = %v", rs.Sequence())
	}
	if !rs.Identity().Has("Step") || rs.Identity().Has("QueryID") {
		t.Errorf("Identity() = %v", rs.Identity())
	}
}

func TestCompileRules_CopiesAllowedValues(t *testing.T) {
	allowed := []string{"a", "b"}
	rs := MustCompileRules(RuleSetDefinition{Columns: []ColumnRule{
		{ID: "QueryID"}, {ID: "Turn"}, {ID: "X", AllowedValues: allowed},
	}})
	allowed[0] = "z"

	rule, _ := rs.Rule("X")
	if rule.AllowedValues[0] != "a" {
		t.Error("mutating the definition changed the compiled rule")
	}
	if vs := ValidateCell("a", rule); len(vs) != 0 {
		t.Errorf("ValidateCell(a) = %v, want none", vs)
	}
}

func TestMustCompileRules_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustCompileRules should panic on invalid rules")
		}
	}()
	MustCompileRules(RuleSetDefinition{Name: "broken"})
}
