package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DataType is the expected type of a column's values.
type DataType string

const (
	TypeText   DataType = "text"
	TypeNumber DataType = "number"
	TypeDate   DataType = "date"
	TypeGUID   DataType = "guid"
)

// Multiplicity says whether a cell may hold a separated list of values.
type Multiplicity string

const (
	MultiplicitySingle   Multiplicity = "single"
	MultiplicityMultiple Multiplicity = "multiple"
)

// ColumnRule declares the constraints for a single column.
// It is the raw, declarative form; CompileRules turns it into a Rule.
type ColumnRule struct {
	ID            string       `yaml:"id"`                       // Column identifier (matches Record keys)
	Label         string       `yaml:"label,omitempty"`          // Display name used in messages
	Required      bool         `yaml:"required,omitempty"`       // Blank values are violations
	DataType      DataType     `yaml:"type,omitempty"`           // Defaults to text
	AllowedValues []string     `yaml:"allowed_values,omitempty"` // Dropdown values, case-sensitive
	Pattern       string       `yaml:"pattern,omitempty"`        // Optional regular expression
	Multiplicity  Multiplicity `yaml:"multiplicity,omitempty"`   // Defaults to single
}

// Rule is a compiled, immutable ColumnRule.
type Rule struct {
	ColumnRule

	allowed    map[string]struct{}
	pattern    *regexp.Regexp
	separators string
}

// Name returns the label used when describing the column to users.
func (r Rule) Name() string {
	if r.Label != "" {
		return r.Label
	}
	return r.ID
}

// IdentityColumns names the column pair that identifies a record.
type IdentityColumns struct {
	QueryID string `yaml:"query_id"`
	Turn    string `yaml:"turn"`
}

// DefaultIdentity is the identity pair used when none is configured.
var DefaultIdentity = IdentityColumns{QueryID: "QueryID", Turn: "Turn"}

// Has reports whether column participates in record identity.
func (ic IdentityColumns) Has(column string) bool {
	return column == ic.QueryID || column == ic.Turn
}

// SequencePolicy controls the per-query turn numbering check.
type SequencePolicy struct {
	Base   int  `yaml:"base"`   // First expected turn number
	Strict bool `yaml:"strict"` // When false, gaps are reported as warnings
}

// DefaultSequencePolicy numbers turns from 1 and treats gaps as errors.
var DefaultSequencePolicy = SequencePolicy{Base: 1, Strict: true}

// DefaultSeparators are the list separators checked for single-value columns.
const DefaultSeparators = ",;"

// RowID is the stable position of a record in the loaded dataset.
type RowID int

// Record is one row of the dataset: column ID to raw cell value.
// Missing columns read as empty.
type Record map[string]string

// Clone returns a copy that shares no storage with r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// RecordKey is the identity of a record.
type RecordKey struct {
	QueryID string
	Turn    int
}

func (k RecordKey) String() string {
	return fmt.Sprintf("%s/%d", k.QueryID, k.Turn)
}

// CellID addresses a single cell.
type CellID struct {
	Row    RowID
	Column string
}

func (c CellID) String() string {
	return fmt.Sprintf("%d:%s", c.Row, c.Column)
}

// MarshalText lets CellID key JSON objects.
func (c CellID) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses the "row:column" form written by MarshalText.
func (c *CellID) UnmarshalText(b []byte) error {
	row, col, ok := strings.Cut(string(b), ":")
	if !ok {
		return fmt.Errorf("cell id %q: missing ':'", b)
	}
	n, err := strconv.Atoi(row)
	if err != nil {
		return fmt.Errorf("cell id %q: %w", b, err)
	}
	c.Row, c.Column = RowID(n), col
	return nil
}

// ViolationKind classifies why a cell failed validation.
type ViolationKind string

const (
	KindRequired     ViolationKind = "required"
	KindType         ViolationKind = "type"
	KindAllowed      ViolationKind = "allowed-values"
	KindPattern      ViolationKind = "pattern"
	KindMultiplicity ViolationKind = "multiplicity"
	KindDuplicateKey ViolationKind = "duplicate-key"
	KindSequenceGap  ViolationKind = "sequence-gap"
)

// CrossRecord reports whether the kind depends on more than one record.
func (k ViolationKind) CrossRecord() bool {
	return k == KindDuplicateKey || k == KindSequenceGap
}

// Severity of a violation. Warnings are shown but do not fail a dataset.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Violation is a structured reason why a cell fails validation.
type Violation struct {
	Cell     CellID        `json:"cell"`
	Kind     ViolationKind `json:"kind"`
	Severity Severity      `json:"severity"`
	Message  string        `json:"message"`
}

// Violations maps each flagged cell to its ordered violations.
// Cells without violations are absent.
type Violations map[CellID][]Violation

// Count returns the total number of violations across all cells.
func (v Violations) Count() int {
	n := 0
	for _, list := range v {
		n += len(list)
	}
	return n
}

// Clone returns a deep copy.
func (v Violations) Clone() Violations {
	out := make(Violations, len(v))
	for id, list := range v {
		out[id] = append([]Violation(nil), list...)
	}
	return out
}

// Summary counts violations by kind and severity.
type Summary struct {
	Cells    int                   `json:"cells"`
	Errors   int                   `json:"errors"`
	Warnings int                   `json:"warnings"`
	ByKind   map[ViolationKind]int `json:"byKind"`
}

// Summarize builds a Summary of v.
func (v Violations) Summarize() Summary {
	s := Summary{Cells: len(v), ByKind: make(map[ViolationKind]int)}
	for _, list := range v {
		for _, vi := range list {
			s.ByKind[vi.Kind]++
			if vi.Severity == SeverityWarning {
				s.Warnings++
			} else {
				s.Errors++
			}
		}
	}
	return s
}
