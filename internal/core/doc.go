// Package core provides the validation engine for interactively edited
// tabular datasets.
//
// This package is the heart of gridcheck, containing all validation logic
// independent of any UI or transport layer. It can be driven by the web
// host, the CLI, or tests without modification.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Rule Definitions: declarative [ColumnRule] values compiled into an
//     immutable [RuleSet] by [CompileRules]. Named rule sets are registered
//     via [Register].
//   - Record Index: [RecordIndex] maps (QueryID, Turn) identities to rows.
//   - Field Validator: [ValidateCell] checks one value against its rule.
//   - Cross-Record Validator: [ValidateDataset] finds duplicate identities
//     and gaps in per-query turn numbering.
//   - Engine: [Engine] owns the ON/OFF state, the dataset snapshot and the
//     violation mapping.
//
// # Rule Registry
//
// Rule sets are registered at init time using [Register]:
//
//	core.Register(core.RuleSetDefinition{
//	    Name: "conversation_turns",
//	    Columns: []core.ColumnRule{
//	        {ID: "QueryID", Required: true},
//	        {ID: "Turn", Required: true, DataType: core.TypeNumber},
//	    },
//	})
//
// # Engine Lifecycle
//
//  1. Host calls [NewEngine] with a rule set definition
//  2. Host calls [Engine.LoadDataset] with the current records
//  3. [Engine.Toggle] turns validation ON (full recompute) or OFF (clear)
//  4. Each edit goes through [Engine.SetCell]; identity edits re-run the
//     cross-record checks
//  5. The host reads [Engine.Violations] or receives them via [WithListener]
//
// # Error Handling
//
// Violations are data, never errors. Errors are reserved for configuration
// problems ([ConfigError]) and caller misuse ([ErrUnknownRecord],
// [ErrUnknownColumn]). [MapError] and [Explain] turn both into user messages
// with support codes.
package core
