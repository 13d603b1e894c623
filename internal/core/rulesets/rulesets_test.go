package rulesets

import (
	"testing"

	"github.com/JonMunkholm/gridcheck/internal/core"
)

func TestBuiltinsRegistered(t *testing.T) {
	for _, name := range []string{ConversationTurns, RelevanceJudgments} {
		t.Run(name, func(t *testing.T) {
			def, ok := core.Get(name)
			if !ok {
				t.Fatalf("rule set %q not registered", name)
			}
			if _, err := core.CompileRules(def); err != nil {
				t.Errorf("CompileRules(%q) error = %v", name, err)
			}
		})
	}
}

func TestConversationTurns(t *testing.T) {
	def, _ := core.Get(ConversationTurns)
	e, err := core.NewEngine(def, core.WithEnabled(true))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	err = e.LoadDataset([]core.Record{
		{
			"QueryID": "Q1", "Turn": "1", "Query": "hi", "Response": "hello",
			"Intent": "Chit-chat", "Tags": "greeting, smalltalk",
			"ConversationID": "550e8400-e29b-41d4-a716-446655440000",
			"CreatedOn":      "2024-05-01", "Score": "4.5",
		},
		{
			"QueryID": "Q1", "Turn": "2", "Query": "weather?", "Response": "sunny",
			"Intent": "Question",
		},
	})
	if err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}
	if n := e.Violations().Count(); n != 0 {
		t.Errorf("expected a clean dataset, got %v", e.Violations())
	}

	if err := e.SetCell(1, "Tags", "Bad Tag"); err != nil {
		t.Fatalf("SetCell() error = %v", err)
	}
	got := e.CellViolations(core.CellID{Row: 1, Column: "Tags"})
	if len(got) != 1 || got[0].Kind != core.KindPattern {
		t.Errorf("Tags violations = %v, want one pattern violation", got)
	}
}

func TestRelevanceJudgments_GapsAreWarnings(t *testing.T) {
	def, _ := core.Get(RelevanceJudgments)
	e, err := core.NewEngine(def, core.WithEnabled(true))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	judged := func(rank string) core.Record {
		return core.Record{
			"QueryID": "Q1", "Rank": rank, "Relevance": "2", "Judge": "ana",
			"DocumentID": "550e8400-e29b-41d4-a716-446655440000",
		}
	}
	if err := e.LoadDataset([]core.Record{judged("1"), judged("3")}); err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}

	s := e.Summary()
	if s.Errors != 0 || s.Warnings != 1 || s.ByKind[core.KindSequenceGap] != 1 {
		t.Errorf("Summary() = %+v, want one sequence-gap warning", s)
	}
}
