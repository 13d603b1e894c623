package core

import "testing"

// testDefinition is a small rule set exercising every rule feature.
func testDefinition() RuleSetDefinition {
	return RuleSetDefinition{
		Name: "test",
		Columns: []ColumnRule{
			{ID: "QueryID", Required: true},
			{ID: "Turn", Required: true, DataType: TypeNumber, Pattern: `^\d+$`},
			{ID: "Intent", AllowedValues: []string{"Question", "Command"}},
			{ID: "Answer", Required: true},
			{ID: "Ref", DataType: TypeGUID},
			{ID: "Tags", Multiplicity: MultiplicityMultiple, AllowedValues: []string{"red", "green", "blue"}},
		},
	}
}

// row builds a record that passes every field rule of testDefinition.
func row(queryID, turn string) Record {
	return Record{"QueryID": queryID, "Turn": turn, "Answer": "ok"}
}

// mustRule compiles col alongside the identity columns and returns its rule.
func mustRule(t *testing.T, col ColumnRule) Rule {
	t.Helper()
	rs, err := CompileRules(RuleSetDefinition{
		Name:    "single",
		Columns: []ColumnRule{{ID: "QueryID"}, {ID: "Turn"}, col},
	})
	if err != nil {
		t.Fatalf("CompileRules() error = %v", err)
	}
	r, ok := rs.Rule(col.ID)
	if !ok {
		t.Fatalf("rule %q not found", col.ID)
	}
	return r
}

func kinds(vs []Violation) []ViolationKind {
	out := make([]ViolationKind, len(vs))
	for i, v := range vs {
		out[i] = v.Kind
	}
	return out
}

func equalKinds(a, b []ViolationKind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
