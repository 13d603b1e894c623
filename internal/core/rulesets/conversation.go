package rulesets

import "github.com/JonMunkholm/gridcheck/internal/core"

// ConversationTurns is the rule set for multi-turn evaluation datasets:
// one row per turn, identified by QueryID and Turn.
const ConversationTurns = "conversation_turns"

// Intents lists the dropdown values for the Intent column.
var Intents = []string{
	"Question",
	"Follow-up",
	"Clarification",
	"Chit-chat",
	"Command",
	"Out of scope",
}

func init() {
	registerConversationTurns()
}

func registerConversationTurns() {
	core.Register(core.RuleSetDefinition{
		Name:  ConversationTurns,
		Label: "Conversation turns",
		Columns: []core.ColumnRule{
			{ID: "QueryID", Label: "Query ID", Required: true, Pattern: `^[A-Za-z][A-Za-z0-9_-]*$`},
			{ID: "Turn", Required: true, DataType: core.TypeNumber, Pattern: `^\d+$`},
			{ID: "Query", Required: true},
			{ID: "Response", Required: true},
			{ID: "Intent", Required: true, AllowedValues: Intents},
			{ID: "Tags", Multiplicity: core.MultiplicityMultiple, Pattern: `^[a-z0-9][a-z0-9-]*$`},
			{ID: "ConversationID", Label: "Conversation ID", DataType: core.TypeGUID},
			{ID: "CreatedOn", Label: "Created on", DataType: core.TypeDate},
			{ID: "Score", DataType: core.TypeNumber},
		},
		Identity: core.DefaultIdentity,
	})
}
