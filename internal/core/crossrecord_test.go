package core

import (
	"reflect"
	"strings"
	"testing"
)

type flagged struct {
	row  RowID
	kind ViolationKind
}

func flags(vs []Violation) []flagged {
	var out []flagged
	for _, v := range vs {
		out = append(out, flagged{v.Cell.Row, v.Kind})
	}
	return out
}

func TestValidateDataset(t *testing.T) {
	tests := []struct {
		name    string
		records []Record
		policy  SequencePolicy
		want    []flagged
	}{
		{
			name:    "sequential",
			records: []Record{row("Q1", "1"), row("Q1", "2"), row("Q1", "3")},
			policy:  DefaultSequencePolicy,
		},
		{
			name:    "duplicate key flags every participant",
			records: []Record{row("Q1", "1"), row("Q1", "1"), row("Q1", "2")},
			policy:  DefaultSequencePolicy,
			want:    []flagged{{0, KindDuplicateKey}, {1, KindDuplicateKey}},
		},
		{
			name:    "gap flags the record after the gap",
			records: []Record{row("Q1", "1"), row("Q1", "3")},
			policy:  DefaultSequencePolicy,
			want:    []flagged{{1, KindSequenceGap}},
		},
		{
			name:    "must start at base",
			records: []Record{row("Q1", "2"), row("Q1", "3")},
			policy:  DefaultSequencePolicy,
			want:    []flagged{{0, KindSequenceGap}},
		},
		{
			name:    "zero base",
			records: []Record{row("Q1", "0"), row("Q1", "1")},
			policy:  SequencePolicy{Base: 0, Strict: true},
		},
		{
			name:    "out of order",
			records: []Record{row("Q1", "1"), row("Q1", "3"), row("Q1", "2")},
			policy:  DefaultSequencePolicy,
			want:    []flagged{{1, KindSequenceGap}, {2, KindSequenceGap}},
		},
		{
			name:    "groups are independent",
			records: []Record{row("Q1", "1"), row("Q2", "1"), row("Q1", "2"), row("Q2", "3")},
			policy:  DefaultSequencePolicy,
			want:    []flagged{{3, KindSequenceGap}},
		},
		{
			name:    "same turn under different queries is not a duplicate",
			records: []Record{row("Q1", "1"), row("Q2", "1")},
			policy:  DefaultSequencePolicy,
		},
		{
			name:    "query id is trimmed",
			records: []Record{row("Q1", "1"), row(" Q1 ", "1")},
			policy:  DefaultSequencePolicy,
			want:    []flagged{{0, KindDuplicateKey}, {1, KindDuplicateKey}},
		},
		{
			name:    "unkeyed rows are ignored",
			records: []Record{row("Q1", ""), row("Q1", "one"), row("", "1"), row("Q1", "1")},
			policy:  DefaultSequencePolicy,
		},
		{
			name:    "duplicate after gap",
			records: []Record{row("Q1", "1"), row("Q1", "3"), row("Q1", "3")},
			policy:  DefaultSequencePolicy,
			want:    []flagged{{1, KindDuplicateKey}, {1, KindSequenceGap}, {2, KindDuplicateKey}},
		},
		{
			name:    "empty dataset",
			records: nil,
			policy:  DefaultSequencePolicy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := flags(ValidateDataset(tt.records, DefaultIdentity, tt.policy))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ValidateDataset() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateDataset_AttachesToTurnCell(t *testing.T) {
	vs := ValidateDataset([]Record{row("Q1", "1"), row("Q1", "1")}, DefaultIdentity, DefaultSequencePolicy)
	if len(vs) != 2 {
		t.Fatalf("expected 2 violations, got %d", len(vs))
	}
	for _, v := range vs {
		if v.Cell.Column != "Turn" {
			t.Errorf("Cell.Column = %q, want Turn", v.Cell.Column)
		}
		if !strings.Contains(v.Message, "rows 1, 2") {
			t.Errorf("Message %q should list the 1-based rows", v.Message)
		}
	}
}

func TestValidateDataset_CustomIdentity(t *testing.T) {
	identity := IdentityColumns{QueryID: "Conversation", Turn: "Step"}
	records := []Record{
		{"Conversation": "C1", "Step": "1"},
		{"Conversation": "C1", "Step": "1"},
	}
	vs := ValidateDataset(records, identity, DefaultSequencePolicy)
	if len(vs) != 2 {
		t.Fatalf("expected 2 violations, got %d", len(vs))
	}
	if vs[0].Cell.Column != "Step" {
		t.Errorf("Cell.Column = %q, want Step", vs[0].Cell.Column)
	}
}

func TestValidateDataset_LenientSequence(t *testing.T) {
	policy := SequencePolicy{Base: 1, Strict: false}
	vs := ValidateDataset([]Record{row("Q1", "1"), row("Q1", "1"), row("Q1", "4")}, DefaultIdentity, policy)

	for _, v := range vs {
		switch v.Kind {
		case KindSequenceGap:
			if v.Severity != SeverityWarning {
				t.Errorf("sequence gap severity = %q, want warning", v.Severity)
			}
		case KindDuplicateKey:
			if v.Severity != SeverityError {
				t.Errorf("duplicate key severity = %q, want error", v.Severity)
			}
		}
	}
}

func TestValidateDataset_Deterministic(t *testing.T) {
	records := []Record{
		row("Q2", "2"), row("Q1", "1"), row("Q1", "1"),
		row("Q2", "2"), row("Q3", "5"), row("Q1", "3"),
	}
	first := ValidateDataset(records, DefaultIdentity, DefaultSequencePolicy)
	for i := 0; i < 10; i++ {
		again := ValidateDataset(records, DefaultIdentity, DefaultSequencePolicy)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\n%v\n%v", i, first, again)
		}
	}
}

func TestSequenceMessage(t *testing.T) {
	tests := []struct {
		name     string
		key      RecordKey
		expected int
		want     string
	}{
		{"start", RecordKey{"Q1", 3}, 1, "must start at turn 1"},
		{"skip", RecordKey{"Q1", 5}, 3, "skips from turn 2 to turn 5"},
		{"backwards", RecordKey{"Q1", 2}, 4, "out of order"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sequenceMessage("QueryID", tt.key, tt.expected, 1)
			if !strings.Contains(got, tt.want) {
				t.Errorf("sequenceMessage() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}
