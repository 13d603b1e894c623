package core

// error_messages.go maps technical errors and violation kinds to
// user-friendly messages with codes for support reference. Hosts use
// Explain to build the comment shown next to a highlighted cell and
// MapError for failed API calls.
//
// # Validation Codes (VAL001-VAL099)
//
//	VAL001 - Required: a required cell is blank
//	VAL002 - Type: value does not parse as the column's type
//	VAL003 - Allowed values: value is not in the column's dropdown list
//	VAL004 - Pattern: value does not match the column's format
//	VAL005 - Multiplicity: a single-value cell holds a list
//	VAL006 - Duplicate key: two records share QueryID and Turn
//	VAL007 - Sequence gap: turn numbers skip or run out of order
//
// # Configuration Errors (CFG001-CFG099)
//
//	CFG001 - Invalid rule: a column rule could not be loaded
//	CFG002 - Unknown rule set: the requested rule set is not registered
//	CFG003 - Schema file: the schema file could not be read or parsed
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Unknown record: the row is not in the loaded dataset
//	REQ002 - Unknown column: the column has no rule
//	REQ003 - Invalid dataset: the dataset could not be read
//	REQ004 - Invalid request: the request body could not be decoded
//	REQ005 - Too large: the request body exceeds the size limit
//
// # Session Errors (SES001-SES099)
//
//	SES001 - Session not found: the session expired or never existed
//	SES002 - Too many sessions: the host is at capacity
//	SES003 - Busy: all dataset load slots are in use
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Error patterns are matched
// case-insensitively using strings.Contains; the first match wins, so more
// specific patterns come first.

import (
	"errors"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

var violationMessages = map[ViolationKind]UserMessage{
	KindRequired: {
		Message: "This cell is required",
		Action:  "Enter a value",
		Code:    "VAL001",
	},
	KindType: {
		Message: "Value has the wrong type",
		Action:  "Check the column's expected format",
		Code:    "VAL002",
	},
	KindAllowed: {
		Message: "Value is not in the allowed list",
		Action:  "Pick one of the dropdown values (matching is case-sensitive)",
		Code:    "VAL003",
	},
	KindPattern: {
		Message: "Value does not match the expected format",
		Action:  "Check the column's format rules",
		Code:    "VAL004",
	},
	KindMultiplicity: {
		Message: "Only one value is allowed in this cell",
		Action:  "Remove commas or semicolons, or split the values across rows",
		Code:    "VAL005",
	},
	KindDuplicateKey: {
		Message: "Another record has the same QueryID and Turn",
		Action:  "Renumber the turn or fix the QueryID so each pair is unique",
		Code:    "VAL006",
	},
	KindSequenceGap: {
		Message: "Turn numbers are not sequential",
		Action:  "Number turns for each QueryID consecutively",
		Code:    "VAL007",
	},
}

// Explain returns the user message for a violation. The violation's own
// Message, which names the cell's value, replaces the generic text.
func Explain(v Violation) UserMessage {
	msg, ok := violationMessages[v.Kind]
	if !ok {
		msg = defaultMessage
	}
	if v.Message != "" {
		msg.Message = v.Message
	}
	return msg
}

// Comment renders all of a cell's violations as one comment, one line each.
func Comment(vs []Violation) string {
	lines := make([]string, 0, len(vs))
	for _, v := range vs {
		m := Explain(v)
		lines = append(lines, "["+m.Code+"] "+m.Message)
	}
	return strings.Join(lines, "\n")
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user messages.
var errorPatterns = []errorPattern{
	{
		pattern: "unknown rule set",
		msg: UserMessage{
			Message: "The requested rule set does not exist",
			Action:  "Choose one of the configured rule sets",
			Code:    "CFG002",
		},
	},
	{
		pattern: "schema",
		msg: UserMessage{
			Message: "The schema file could not be loaded",
			Action:  "Check the schema file path and YAML syntax",
			Code:    "CFG003",
		},
	},
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "Validation session not found",
			Action:  "The session may have expired. Please start a new one",
			Code:    "SES001",
		},
	},
	{
		pattern: "too many sessions",
		msg: UserMessage{
			Message: "Too many validation sessions are open",
			Action:  "Please close an existing session or try again later",
			Code:    "SES002",
		},
	},
	{
		pattern: "too many concurrent",
		msg: UserMessage{
			Message: "The server is busy loading other datasets",
			Action:  "Wait a moment and try again",
			Code:    "SES003",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "The uploaded dataset is too large",
			Action:  "Split the file or raise SERVER_MAX_BODY_SIZE",
			Code:    "REQ005",
		},
	},
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "The request could not be read",
			Action:  "Check the JSON body against the API documentation",
			Code:    "REQ004",
		},
	},
	{
		pattern: "invalid dataset",
		msg: UserMessage{
			Message: "The dataset could not be read",
			Action:  "Check that the file is a CSV with a header row",
			Code:    "REQ003",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var cfgErr *ConfigError
	switch {
	case errors.As(err, &cfgErr):
		return UserMessage{
			Message: cfgErr.Error(),
			Action:  "Fix the rule definition and reload",
			Code:    "CFG001",
		}
	case errors.Is(err, ErrUnknownRecord):
		return UserMessage{
			Message: "That row is not in the loaded dataset",
			Action:  "Reload the dataset and try again",
			Code:    "REQ001",
		}
	case errors.Is(err, ErrUnknownColumn):
		return UserMessage{
			Message: "That column has no validation rule",
			Action:  "Check the column name against the rule set",
			Code:    "REQ002",
		}
	}

	errLower := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(errLower, p.pattern) {
			return p.msg
		}
	}

	return defaultMessage
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	return MapError(err).Code != defaultMessage.Code
}
