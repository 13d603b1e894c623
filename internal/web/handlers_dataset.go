package web

import (
	"fmt"
	"mime"
	"net/http"
	"sort"
	"strconv"

	"github.com/JonMunkholm/gridcheck/internal/core"
	"github.com/JonMunkholm/gridcheck/internal/dataset"
	"github.com/JonMunkholm/gridcheck/internal/logging"
	"github.com/JonMunkholm/gridcheck/internal/session"
)

// violationInfo is one violation as API clients see it.
type violationInfo struct {
	Row         core.RowID         `json:"row"`
	Column      string             `json:"column"`
	Kind        core.ViolationKind `json:"kind"`
	Severity    core.Severity      `json:"severity"`
	Message     string             `json:"message"`
	Action      string             `json:"action"`
	Code        string             `json:"code"`
	CrossRecord bool               `json:"crossRecord"` // fixable by editing another row
}

// loadResponse reports a dataset load.
type loadResponse struct {
	session.Info
	Ignored []string `json:"ignored,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

// handleLoadDataset replaces the session's dataset. CSV bodies (text/csv)
// go through the header search; anything else is read as JSON
// {"records": [{"Column": "value"}, ...]}.
func (s *Server) handleLoadDataset(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.loads.Acquire(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}
	defer s.loads.Release()

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodySize)

	var rs *core.RuleSet
	sess.Do(func(e *core.Engine) error {
		rs = e.Rules()
		return nil
	})

	resp := loadResponse{}
	var records []core.Record

	if isCSV(r) {
		res, err := dataset.ReadCSV(r.Body, rs)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		records, resp.Ignored, resp.Missing = res.Records, res.Ignored, res.Missing
	} else {
		var req struct {
			Records []core.Record `json:"records"`
		}
		if err := decodeJSON(r, &req); err != nil {
			s.respondError(w, r, err)
			return
		}
		records = req.Records
	}

	if err := sess.Do(func(e *core.Engine) error { return e.LoadDataset(records) }); err != nil {
		s.respondError(w, r, err)
		return
	}

	resp.Info = sess.Info()
	logging.ForSession(r.Context(), sess.ID, sess.RuleSet).Info("dataset loaded",
		"rows", resp.Info.Rows,
		"ignored", len(resp.Ignored),
		"missing", len(resp.Missing),
		"errors", resp.Info.Summary.Errors,
	)
	writeJSON(w, resp)
}

// handleExportDataset writes the session's dataset as CSV. With
// ?annotate=true each row carries its violations in an extra column.
func (s *Server) handleExportDataset(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	annotate, _ := strconv.ParseBool(r.URL.Query().Get("annotate"))

	var (
		columns []string
		records []core.Record
		vs      core.Violations
	)
	sess.Do(func(e *core.Engine) error {
		columns = e.Rules().Columns()
		records = e.Records()
		vs = e.Violations()
		return nil
	})

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", sess.RuleSet+".csv"))

	if annotate {
		err = dataset.WriteAnnotated(w, columns, records, vs)
	} else {
		err = dataset.WriteCSV(w, columns, records)
	}
	if err != nil {
		logging.ForSession(r.Context(), sess.ID, sess.RuleSet).Error("csv export failed", "error", err)
	}
}

// handleSetCell applies one cell edit: {"row": 0, "column": "Turn", "value": "2"}.
// The response carries the edited cell's violations and the session state;
// clients refetch violations when an identity edit moved other cells.
func (s *Server) handleSetCell(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req struct {
		Row    *int   `json:"row"`
		Column string `json:"column"`
		Value  string `json:"value"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.Row == nil || req.Column == "" {
		s.respondError(w, r, fmt.Errorf("%w: row and column are required", errInvalidRequest))
		return
	}

	cell := core.CellID{Row: core.RowID(*req.Row), Column: req.Column}
	var cellViolations []core.Violation
	err = sess.Do(func(e *core.Engine) error {
		if err := e.SetCell(cell.Row, cell.Column, req.Value); err != nil {
			return err
		}
		cellViolations = e.CellViolations(cell)
		return nil
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, map[string]interface{}{
		"cell":       cell,
		"violations": toViolationInfos(cellViolations),
		"session":    sess.Info(),
	})
}

// handleToggle flips validation, or sets it with {"enabled": bool}.
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if err := decodeOptionalJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	var enabled bool
	sess.Do(func(e *core.Engine) error {
		if req.Enabled != nil {
			e.SetEnabled(*req.Enabled)
		} else {
			e.Toggle()
		}
		enabled = e.Enabled()
		return nil
	})

	logging.ForSession(r.Context(), sess.ID, sess.RuleSet).Info("validation toggled", "enabled", enabled)
	writeJSON(w, sess.Info())
}

// handleViolations lists the current violations in row and column order.
// ?severity=error|warning filters the list; the summary always covers all.
func (s *Server) handleViolations(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var (
		vs      core.Violations
		columns []string
		info    session.Info
	)
	sess.Do(func(e *core.Engine) error {
		vs = e.Violations()
		columns = e.Rules().Columns()
		return nil
	})
	info = sess.Info()

	list := flattenViolations(vs, columns)
	if sev := core.Severity(r.URL.Query().Get("severity")); sev != "" {
		filtered := list[:0]
		for _, v := range list {
			if v.Severity == sev {
				filtered = append(filtered, v)
			}
		}
		list = filtered
	}

	writeJSON(w, map[string]interface{}{
		"enabled":    info.Enabled,
		"revision":   info.Revision,
		"summary":    info.Summary,
		"violations": list,
		"count":      len(list),
	})
}

// flattenViolations orders a mapping by row, then by column position in
// the rule set. Order within a cell is kept.
func flattenViolations(vs core.Violations, columns []string) []violationInfo {
	position := make(map[string]int, len(columns))
	for i, c := range columns {
		position[c] = i
	}

	cells := make([]core.CellID, 0, len(vs))
	for id := range vs {
		cells = append(cells, id)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Row != cells[j].Row {
			return cells[i].Row < cells[j].Row
		}
		return position[cells[i].Column] < position[cells[j].Column]
	})

	out := make([]violationInfo, 0, vs.Count())
	for _, id := range cells {
		out = append(out, toViolationInfos(vs[id])...)
	}
	return out
}

func toViolationInfos(vs []core.Violation) []violationInfo {
	out := make([]violationInfo, 0, len(vs))
	for _, v := range vs {
		msg := core.Explain(v)
		out = append(out, violationInfo{
			Row:         v.Cell.Row,
			Column:      v.Cell.Column,
			Kind:        v.Kind,
			Severity:    v.Severity,
			Message:     msg.Message,
			Action:      msg.Action,
			Code:        msg.Code,
			CrossRecord: v.Kind.CrossRecord(),
		})
	}
	return out
}

// isCSV reports whether the request body is CSV.
func isCSV(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "text/csv" || mediaType == "application/csv"
}
