package web

import (
	"net/http"

	"github.com/JonMunkholm/gridcheck/internal/core"
	"github.com/JonMunkholm/gridcheck/internal/web/templates"
)

// handleGridPage renders the session's dataset with flagged cells
// highlighted and their violations as cell comments.
func (s *Server) handleGridPage(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var view templates.GridView
	sess.Do(func(e *core.Engine) error {
		view = buildGridView(e)
		return nil
	})
	view.SessionID = sess.ID
	view.Revision = sess.Revision()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.GridPage(view).Render(r.Context(), w); err != nil {
		s.respondError(w, r, err)
	}
}

// buildGridView must run inside Session.Do.
func buildGridView(e *core.Engine) templates.GridView {
	rules := e.Rules().Rules()
	summary := e.Summary()
	vs := e.Violations()

	view := templates.GridView{
		RuleSet:  e.Rules().Name(),
		Enabled:  e.Enabled(),
		Errors:   summary.Errors,
		Warnings: summary.Warnings,
		Columns:  make([]templates.GridColumn, len(rules)),
	}
	for i, rule := range rules {
		view.Columns[i] = templates.GridColumn{ID: rule.ID, Label: rule.Name()}
	}

	for i, rec := range e.Records() {
		row := templates.GridRow{Row: i, Cells: make([]templates.GridCell, len(rules))}
		for j, rule := range rules {
			cellVs := vs[core.CellID{Row: core.RowID(i), Column: rule.ID}]
			row.Cells[j] = templates.GridCell{
				Column:   rule.ID,
				Value:    rec[rule.ID],
				Severity: cellSeverity(cellVs),
				Comment:  core.Comment(cellVs),
			}
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}

// cellSeverity is the worst severity among vs, or "" for a clean cell.
func cellSeverity(vs []core.Violation) string {
	sev := ""
	for _, v := range vs {
		if v.Severity == core.SeverityError {
			return string(core.SeverityError)
		}
		sev = string(v.Severity)
	}
	return sev
}
