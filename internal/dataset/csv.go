// Package dataset reads grid data from CSV into records a validation engine
// can load, and writes records back out.
//
// Exports from spreadsheet tools are messy: a UTF-8 BOM, a few title rows
// above the header, blank spacer rows, and ="00123" wrappers that keep Excel
// from reformatting values. ReadCSV strips those artifacts and nothing else;
// cell whitespace and separators are kept so validation sees what the user
// typed.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/gridcheck/internal/core"
)

// MaxHeaderSearchRows is how many leading rows are searched for the header.
const MaxHeaderSearchRows = 10

var (
	// ErrMalformed wraps CSV syntax and read errors.
	ErrMalformed = errors.New("invalid dataset")

	// ErrNoHeader means no row within MaxHeaderSearchRows named both
	// identity columns.
	ErrNoHeader = errors.New("invalid dataset: header row not found")

	// ErrDuplicateHeader means two header cells map to the same column.
	ErrDuplicateHeader = errors.New("invalid dataset: duplicate header")
)

// Result is a parsed CSV dataset.
type Result struct {
	Records   []core.Record
	HeaderRow int      // 0-based index of the header among the file's rows
	Ignored   []string // header cells with no rule, dropped from Records
	Missing   []string // ruled columns absent from the header
}

// ReadCSV parses r against a rule set. The header is the first row that
// names both identity columns; header cells match rule IDs or labels
// case-insensitively. Blank rows are skipped, short rows are padded with
// blank cells and cells past the header are ignored.
func ReadCSV(r io.Reader, rs *core.RuleSet) (*Result, error) {
	cr := csv.NewReader(newBOMReader(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	lookup := columnLookup(rs)
	identity := rs.Identity()

	headerRow := findHeader(rows, lookup, identity)
	if headerRow < 0 {
		return nil, fmt.Errorf("%w: expected columns %q and %q within the first %d rows",
			ErrNoHeader, identity.QueryID, identity.Turn, MaxHeaderSearchRows)
	}

	res := &Result{HeaderRow: headerRow}
	positions, err := res.mapHeader(rows[headerRow], lookup, rs.Columns())
	if err != nil {
		return nil, err
	}

	for _, row := range rows[headerRow+1:] {
		if isEmptyRow(row) {
			continue
		}
		rec := make(core.Record, len(positions))
		for col, pos := range positions {
			if pos < len(row) {
				rec[col] = CleanCell(row[pos])
			} else {
				rec[col] = ""
			}
		}
		res.Records = append(res.Records, rec)
	}

	return res, nil
}

// mapHeader resolves header cells to column IDs, returning each column's
// position in the row.
func (res *Result) mapHeader(header []string, lookup map[string]string, columns []string) (map[string]int, error) {
	positions := make(map[string]int, len(columns))
	for i, h := range header {
		name := CleanHeader(h)
		if name == "" {
			continue
		}
		col, ok := lookup[name]
		if !ok {
			res.Ignored = append(res.Ignored, strings.TrimSpace(h))
			continue
		}
		if _, dup := positions[col]; dup {
			return nil, fmt.Errorf("%w: column %q appears more than once", ErrDuplicateHeader, col)
		}
		positions[col] = i
	}

	for _, col := range columns {
		if _, ok := positions[col]; !ok {
			res.Missing = append(res.Missing, col)
		}
	}
	return positions, nil
}

// columnLookup maps cleaned rule IDs and labels to rule IDs.
func columnLookup(rs *core.RuleSet) map[string]string {
	lookup := make(map[string]string)
	for _, rule := range rs.Rules() {
		if rule.Label != "" {
			lookup[CleanHeader(rule.Label)] = rule.ID
		}
	}
	// IDs win over labels
	for _, rule := range rs.Rules() {
		lookup[CleanHeader(rule.ID)] = rule.ID
	}
	return lookup
}

func findHeader(rows [][]string, lookup map[string]string, identity core.IdentityColumns) int {
	maxRows := MaxHeaderSearchRows
	if len(rows) < maxRows {
		maxRows = len(rows)
	}

	for i := 0; i < maxRows; i++ {
		var hasQuery, hasTurn bool
		for _, cell := range rows[i] {
			switch lookup[CleanHeader(cell)] {
			case identity.QueryID:
				hasQuery = true
			case identity.Turn:
				hasTurn = true
			}
		}
		if hasQuery && hasTurn {
			return i
		}
	}
	return -1
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// CleanCell removes the Excel text wrapper (="...") from a cell value and
// replaces invalid UTF-8 with U+FFFD. Everything else, including surrounding
// whitespace, is preserved.
func CleanCell(s string) string {
	s = strings.ToValidUTF8(s, "\uFFFD")
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		return s[2 : len(s)-1]
	}
	return s
}

// CleanHeader normalizes a header cell for matching: trimmed, unwrapped,
// unquoted and lower-cased.
func CleanHeader(s string) string {
	s = strings.TrimSpace(CleanCell(strings.TrimSpace(s)))
	s = strings.Trim(s, `"'`)
	return strings.ToLower(strings.TrimSpace(s))
}

// WriteCSV writes records under header, one row per record. Columns missing
// from a record are written blank.
func WriteCSV(w io.Writer, header []string, records []core.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(header))
	for i, rec := range records {
		for j, col := range header {
			row[j] = rec[col]
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
