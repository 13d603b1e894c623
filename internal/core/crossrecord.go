package core

// crossrecord.go checks relationships between records: duplicate identities
// and per-query turn sequencing.
//
// The check is a pure batch function over the whole dataset. Running it twice
// over the same records yields the same violations in the same order, which
// lets the engine replace its cross-record results wholesale after any
// identity edit.

import (
	"fmt"
	"sort"
)

// ValidateDataset runs the cross-record checks over records.
func ValidateDataset(records []Record, identity IdentityColumns, policy SequencePolicy) []Violation {
	return ValidateIndex(BuildIndex(records, identity), policy)
}

// ValidateIndex runs the cross-record checks over an existing index.
// Violations attach to each offending record's Turn cell and are sorted by
// row, then kind.
func ValidateIndex(ix *RecordIndex, policy SequencePolicy) []Violation {
	turnCol := ix.identity.Turn
	var out []Violation

	for _, key := range ix.DuplicateKeys() {
		rows := ix.byKey[key]
		for _, row := range rows {
			out = append(out, Violation{
				Cell:     CellID{Row: row, Column: turnCol},
				Kind:     KindDuplicateKey,
				Severity: SeverityError,
				Message: fmt.Sprintf("%s %q turn %d appears %d times (rows %s)",
					ix.identity.QueryID, key.QueryID, key.Turn, len(rows), formatRows(rows)),
			})
		}
	}

	severity := SeverityError
	if !policy.Strict {
		severity = SeverityWarning
	}

	for _, g := range ix.Groups() {
		seen := make(map[int]bool, len(g.Rows))
		expected := policy.Base
		for _, row := range g.Rows {
			key, _ := ix.Key(row)
			if seen[key.Turn] {
				// Already reported as a duplicate
				continue
			}
			seen[key.Turn] = true

			if key.Turn != expected {
				out = append(out, Violation{
					Cell:     CellID{Row: row, Column: turnCol},
					Kind:     KindSequenceGap,
					Severity: severity,
					Message:  sequenceMessage(ix.identity.QueryID, key, expected, policy.Base),
				})
			}
			expected = key.Turn + 1
		}
	}

	sortViolations(out)
	return out
}

func sequenceMessage(queryCol string, key RecordKey, expected, base int) string {
	if expected == base {
		return fmt.Sprintf("%s %q must start at turn %d, found turn %d", queryCol, key.QueryID, base, key.Turn)
	}
	if key.Turn < expected {
		return fmt.Sprintf("%s %q turn %d is out of order, expected turn %d", queryCol, key.QueryID, key.Turn, expected)
	}
	return fmt.Sprintf("%s %q skips from turn %d to turn %d", queryCol, key.QueryID, expected-1, key.Turn)
}

// kindOrder fixes the order of violations within one cell.
var kindOrder = map[ViolationKind]int{
	KindRequired:     0,
	KindMultiplicity: 1,
	KindType:         2,
	KindAllowed:      3,
	KindPattern:      4,
	KindDuplicateKey: 5,
	KindSequenceGap:  6,
}

func sortViolations(vs []Violation) {
	sort.SliceStable(vs, func(i, j int) bool {
		if vs[i].Cell.Row != vs[j].Cell.Row {
			return vs[i].Cell.Row < vs[j].Cell.Row
		}
		if vs[i].Cell.Column != vs[j].Cell.Column {
			return vs[i].Cell.Column < vs[j].Cell.Column
		}
		return kindOrder[vs[i].Kind] < kindOrder[vs[j].Kind]
	})
}

// formatRows renders row numbers 1-based, as users see them in a grid.
func formatRows(rows []RowID) string {
	s := ""
	for i, r := range rows {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprint(int(r) + 1)
	}
	return s
}
