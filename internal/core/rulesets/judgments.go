package rulesets

import "github.com/JonMunkholm/gridcheck/internal/core"

// RelevanceJudgments is the rule set for graded retrieval judgments, one row
// per judged document. Turn numbers the judged results of each query, and
// judges may skip results, so gaps are only warnings.
const RelevanceJudgments = "relevance_judgments"

// RelevanceGrades lists the allowed relevance labels.
var RelevanceGrades = []string{"0", "1", "2", "3"}

func init() {
	registerRelevanceJudgments()
}

func registerRelevanceJudgments() {
	core.Register(core.RuleSetDefinition{
		Name:  RelevanceJudgments,
		Label: "Relevance judgments",
		Columns: []core.ColumnRule{
			{ID: "QueryID", Label: "Query ID", Required: true},
			{ID: "Rank", Required: true, DataType: core.TypeNumber, Pattern: `^\d+$`},
			{ID: "DocumentID", Label: "Document ID", Required: true, DataType: core.TypeGUID},
			{ID: "Relevance", Required: true, AllowedValues: RelevanceGrades},
			{ID: "Judge", Required: true, Pattern: `^[a-z][a-z0-9._-]*$`},
			{ID: "JudgedOn", Label: "Judged on", DataType: core.TypeDate},
			{ID: "Notes"},
		},
		Identity: core.IdentityColumns{QueryID: "QueryID", Turn: "Rank"},
		Sequence: &core.SequencePolicy{Base: 1, Strict: false},
	})
}
