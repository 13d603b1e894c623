package dataset

import (
	"io"
	"strings"

	"github.com/JonMunkholm/gridcheck/internal/core"
)

// AnnotationColumn is the column WriteAnnotated appends to each row.
const AnnotationColumn = "Violations"

// RowComments collapses a violation mapping into one comment per row.
// Each line reads "Column: [CODE] message"; lines follow column order.
func RowComments(columns []string, records []core.Record, vs core.Violations) []string {
	out := make([]string, len(records))
	for i := range records {
		var lines []string
		for _, col := range columns {
			for _, v := range vs[core.CellID{Row: core.RowID(i), Column: col}] {
				m := core.Explain(v)
				lines = append(lines, col+": ["+m.Code+"] "+m.Message)
			}
		}
		out[i] = strings.Join(lines, "; ")
	}
	return out
}

// WriteAnnotated writes records as CSV with an extra AnnotationColumn
// holding each row's violations. Clean rows get a blank annotation.
func WriteAnnotated(w io.Writer, columns []string, records []core.Record, vs core.Violations) error {
	comments := RowComments(columns, records, vs)

	header := append(append([]string(nil), columns...), AnnotationColumn)
	annotated := make([]core.Record, len(records))
	for i, rec := range records {
		row := rec.Clone()
		if row == nil {
			row = make(core.Record, 1)
		}
		row[AnnotationColumn] = comments[i]
		annotated[i] = row
	}
	return WriteCSV(w, header, annotated)
}
