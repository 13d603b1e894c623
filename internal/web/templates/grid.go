package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// GridColumn is one header cell.
type GridColumn struct {
	ID    string
	Label string
}

// GridCell is one rendered cell. Severity is empty for a clean cell;
// Comment holds one line per violation.
type GridCell struct {
	Column   string
	Value    string
	Severity string
	Comment  string
}

// GridRow is one dataset record.
type GridRow struct {
	Row   int
	Cells []GridCell
}

// GridView is everything the grid page needs.
type GridView struct {
	SessionID string
	RuleSet   string
	Enabled   bool
	Revision  uint64
	Errors    int
	Warnings  int
	Columns   []GridColumn
	Rows      []GridRow
}

// GridPage renders the dataset as a table. Flagged cells carry a severity
// class and their violation comment as the title tooltip.
func GridPage(v GridView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ew := &errWriter{w: w}

		ew.printf(`<section class="grid" id="grid-%s" data-revision="%d">`,
			templ.EscapeString(v.SessionID), v.Revision)
		ew.printf(`<header class="grid-header"><h2>%s</h2>`, templ.EscapeString(v.RuleSet))
		if v.Enabled {
			ew.printf(`<p class="grid-status grid-status-on">Validation ON: %d errors, %d warnings</p>`,
				v.Errors, v.Warnings)
		} else {
			ew.printf(`<p class="grid-status grid-status-off">Validation OFF</p>`)
		}
		ew.printf(`</header>`)

		ew.printf(`<table><thead><tr><th>#</th>`)
		for _, c := range v.Columns {
			ew.printf(`<th data-column="%s">%s</th>`, templ.EscapeString(c.ID), templ.EscapeString(c.Label))
		}
		ew.printf(`</tr></thead><tbody>`)

		for _, row := range v.Rows {
			ew.printf(`<tr data-row="%d"><td class="row-number">%d</td>`, row.Row, row.Row+1)
			for _, cell := range row.Cells {
				renderCell(ew, cell)
			}
			ew.printf(`</tr>`)
		}

		ew.printf(`</tbody></table></section>`)
		return ew.err
	})
}

func renderCell(ew *errWriter, c GridCell) {
	if c.Severity == "" {
		ew.printf(`<td data-column="%s">%s</td>`, templ.EscapeString(c.Column), templ.EscapeString(c.Value))
		return
	}
	ew.printf(`<td data-column="%s" class="cell-%s" title="%s">%s</td>`,
		templ.EscapeString(c.Column),
		templ.EscapeString(c.Severity),
		templ.EscapeString(strings.TrimSpace(c.Comment)),
		templ.EscapeString(c.Value))
}

// errWriter keeps the first write error so rendering code stays linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
