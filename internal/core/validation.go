package core

// validation.go provides cell-level validation, independent of other rows.
//
// A blank required cell yields a single "required" violation and nothing
// else. Any other non-blank value runs every applicable check (multiplicity,
// type, allowed values, pattern) so a cell can carry several reasons at once.

import (
	"fmt"
	"strings"
)

// ValidateCell validates one cell value against its column rule.
// The returned violations carry only the column in Cell; callers that know
// the row fill it in. Safe for concurrent use.
func ValidateCell(value string, rule Rule) []Violation {
	items := []string{value}
	if rule.Multiplicity == MultiplicityMultiple {
		items = splitList(value, rule.separators)
	}

	// A multi-value cell holding only separators counts as blank
	if strings.TrimSpace(value) == "" || len(items) == 0 {
		if rule.Required {
			return []Violation{newViolation(rule, KindRequired, fmt.Sprintf("%s is required", rule.Name()))}
		}
		return nil
	}

	var out []Violation

	if rule.Multiplicity != MultiplicityMultiple && rule.separators != "" && strings.ContainsAny(value, rule.separators) {
		out = append(out, newViolation(rule, KindMultiplicity,
			fmt.Sprintf("%s accepts a single value; remove list separators (%s)", rule.Name(), describeSeparators(rule.separators))))
	}

	if bad, ok := firstFailing(items, func(s string) bool { return checkType(s, rule.DataType) }); !ok {
		out = append(out, newViolation(rule, KindType,
			fmt.Sprintf("%s must be a valid %s, got %q", rule.Name(), typeName(rule.DataType), bad)))
	}

	if rule.allowed != nil {
		if bad, ok := firstFailing(items, func(s string) bool { _, found := rule.allowed[s]; return found }); !ok {
			out = append(out, newViolation(rule, KindAllowed,
				fmt.Sprintf("%q is not an allowed value for %s (allowed: %s)", bad, rule.Name(), strings.Join(rule.AllowedValues, ", "))))
		}
	}

	if rule.pattern != nil {
		if bad, ok := firstFailing(items, rule.pattern.MatchString); !ok {
			out = append(out, newViolation(rule, KindPattern,
				fmt.Sprintf("%q does not match the expected format for %s", bad, rule.Name())))
		}
	}

	return out
}

// ValidateRecord validates every ruled column of a record.
// Violations are returned in rule order with Cell.Row set to row.
func ValidateRecord(row RowID, rec Record, rs *RuleSet) []Violation {
	var out []Violation
	for _, rule := range rs.rules {
		for _, v := range ValidateCell(rec[rule.ID], rule) {
			v.Cell.Row = row
			out = append(out, v)
		}
	}
	return out
}

func newViolation(rule Rule, kind ViolationKind, msg string) Violation {
	return Violation{
		Cell:     CellID{Column: rule.ID},
		Kind:     kind,
		Severity: SeverityError,
		Message:  msg,
	}
}

// checkType reports whether s parses as dt. Text accepts anything.
func checkType(s string, dt DataType) bool {
	switch dt {
	case TypeNumber:
		return ParseNumber(s).Valid
	case TypeDate:
		_, ok := ParseDate(s)
		return ok
	case TypeGUID:
		return IsGUID(strings.TrimSpace(s))
	default:
		return true
	}
}

// firstFailing returns the first item for which ok is false.
func firstFailing(items []string, ok func(string) bool) (string, bool) {
	for _, it := range items {
		if !ok(it) {
			return it, false
		}
	}
	return "", true
}

// splitList splits a multi-value cell on any separator, trimming items and
// dropping empty ones.
func splitList(value, separators string) []string {
	if separators == "" {
		return []string{strings.TrimSpace(value)}
	}
	parts := strings.FieldsFunc(value, func(r rune) bool {
		return strings.ContainsRune(separators, r)
	})
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}

func describeSeparators(separators string) string {
	quoted := make([]string, 0, len(separators))
	for _, r := range separators {
		quoted = append(quoted, fmt.Sprintf("%q", r))
	}
	return strings.Join(quoted, " ")
}

// typeName returns a human-readable name for a data type.
func typeName(dt DataType) string {
	switch dt {
	case TypeNumber:
		return "number"
	case TypeDate:
		return "date (use YYYY-MM-DD or similar)"
	case TypeGUID:
		return "GUID (xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx)"
	default:
		return "text"
	}
}
