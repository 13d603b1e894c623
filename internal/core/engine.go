package core

// engine.go implements the validation engine: a two-state machine
// (DISABLED, ENABLED) that owns the dataset snapshot and the violation
// mapping derived from it.
//
// Invariants:
//   - While DISABLED the violation mapping is empty.
//   - Enabling recomputes the mapping from scratch over every cell.
//   - A cell edit while ENABLED replaces that cell's field violations; an
//     edit to an identity column also recomputes all cross-record results.
//
// The engine is not safe for concurrent use. Hosts must call it from one
// goroutine at a time, one event at a time.

import (
	"fmt"
	"log/slog"
	"time"
)

// Engine validates a dataset against a RuleSet.
type Engine struct {
	rules    *RuleSet
	records  []Record
	index    *RecordIndex
	enabled  bool
	field    Violations // per-cell results of ValidateCell
	cross    Violations // results of ValidateIndex
	merged   Violations // field + cross, what callers see
	logger   *slog.Logger
	listener Listener
}

// NewEngine compiles def and returns an engine with an empty dataset.
// A rule that cannot be compiled is reported as a *ConfigError.
func NewEngine(def RuleSetDefinition, opts ...Option) (*Engine, error) {
	rs, err := CompileRules(def)
	if err != nil {
		return nil, err
	}
	return NewEngineWithRules(rs, opts...), nil
}

// NewEngineWithRules returns an engine over an already compiled RuleSet.
func NewEngineWithRules(rs *RuleSet, opts ...Option) *Engine {
	o := engineOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	e := &Engine{
		rules:    rs,
		index:    BuildIndex(nil, rs.identity),
		field:    make(Violations),
		cross:    make(Violations),
		merged:   make(Violations),
		logger:   o.logger.With("rule_set", rs.name),
		listener: o.listener,
	}
	if o.enabled {
		e.enabled = true
		e.recompute()
	}
	return e
}

// Enabled reports whether validation is ON.
func (e *Engine) Enabled() bool { return e.enabled }

// Toggle flips validation ON or OFF and returns the new state.
// Turning ON recomputes every violation; turning OFF clears them.
func (e *Engine) Toggle() bool {
	e.SetEnabled(!e.enabled)
	return e.enabled
}

// SetEnabled moves the engine to the requested state. Setting the current
// state again is a no-op.
func (e *Engine) SetEnabled(on bool) {
	if on == e.enabled {
		return
	}
	e.enabled = on
	if on {
		e.recompute()
	} else {
		e.clear()
	}
	e.logger.Debug("validation toggled", "enabled", on, "violations", e.merged.Count())
	e.emit()
}

// LoadDataset replaces the dataset snapshot. Records are copied.
// If validation is ON the mapping is recomputed from scratch.
// A record holding a column with no rule is rejected and the previous
// snapshot is kept. A nil record loads as an empty row.
func (e *Engine) LoadDataset(records []Record) error {
	snapshot := make([]Record, len(records))
	for i, rec := range records {
		for col := range rec {
			if _, ok := e.rules.byID[col]; !ok {
				return fmt.Errorf("load dataset: row %d: %w %q", i, ErrUnknownColumn, col)
			}
		}
		snapshot[i] = rec.Clone()
		if snapshot[i] == nil {
			snapshot[i] = make(Record)
		}
	}

	e.records = snapshot
	e.index = BuildIndex(e.records, e.rules.identity)

	if e.enabled {
		e.recompute()
	}
	e.logger.Debug("dataset loaded", "rows", len(e.records), "enabled", e.enabled)
	e.emit()
	return nil
}

// SetCell stores a new cell value. While ON it revalidates the cell, and the
// whole dataset's cross-record checks when column is an identity column.
func (e *Engine) SetCell(row RowID, column string, value string) error {
	rule, ok := e.rules.Rule(column)
	if !ok {
		return fmt.Errorf("set cell: %w %q", ErrUnknownColumn, column)
	}
	if row < 0 || int(row) >= len(e.records) {
		return fmt.Errorf("set cell: %w: row %d of %d", ErrUnknownRecord, row, len(e.records))
	}

	e.records[row][column] = value
	identity := e.rules.identity.Has(column)
	if identity {
		e.index.Update(row, e.records[row])
	}

	if !e.enabled {
		return nil
	}

	id := CellID{Row: row, Column: column}
	e.setField(id, ValidateCell(value, rule))

	if identity {
		e.recomputeCross()
	} else {
		e.refresh(id)
	}
	e.emit()
	return nil
}

// Violations returns a copy of the current violation mapping.
func (e *Engine) Violations() Violations {
	return e.merged.Clone()
}

// CellViolations returns the violations for one cell, or nil.
func (e *Engine) CellViolations(id CellID) []Violation {
	return append([]Violation(nil), e.merged[id]...)
}

// Summary counts the current violations.
func (e *Engine) Summary() Summary {
	return e.merged.Summarize()
}

// Rules returns the engine's rule set.
func (e *Engine) Rules() *RuleSet { return e.rules }

// Len returns the number of records in the snapshot.
func (e *Engine) Len() int { return len(e.records) }

// Record returns a copy of one record.
func (e *Engine) Record(row RowID) (Record, error) {
	if row < 0 || int(row) >= len(e.records) {
		return nil, fmt.Errorf("%w: row %d of %d", ErrUnknownRecord, row, len(e.records))
	}
	return e.records[row].Clone(), nil
}

// Records returns a copy of the snapshot.
func (e *Engine) Records() []Record {
	out := make([]Record, len(e.records))
	for i, rec := range e.records {
		out[i] = rec.Clone()
	}
	return out
}

// Lookup returns the rows currently carrying key.
func (e *Engine) Lookup(key RecordKey) []RowID {
	return e.index.Lookup(key)
}

// recompute rebuilds every violation from the current snapshot.
func (e *Engine) recompute() {
	start := time.Now()

	e.field = make(Violations)
	for i, rec := range e.records {
		for _, v := range ValidateRecord(RowID(i), rec, e.rules) {
			e.field[v.Cell] = append(e.field[v.Cell], v)
		}
	}
	e.index = BuildIndex(e.records, e.rules.identity)
	e.recomputeCross()

	e.logger.Debug("validation recomputed",
		"rows", len(e.records),
		"cells_flagged", len(e.merged),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// recomputeCross replaces all cross-record results and rebuilds the merged view.
func (e *Engine) recomputeCross() {
	e.cross = make(Violations)
	for _, v := range ValidateIndex(e.index, e.rules.sequence) {
		e.cross[v.Cell] = append(e.cross[v.Cell], v)
	}

	e.merged = make(Violations, len(e.field)+len(e.cross))
	for id := range e.field {
		e.refresh(id)
	}
	for id := range e.cross {
		e.refresh(id)
	}
}

func (e *Engine) setField(id CellID, vs []Violation) {
	if len(vs) == 0 {
		delete(e.field, id)
		return
	}
	for i := range vs {
		vs[i].Cell = id
	}
	e.field[id] = vs
}

// refresh rebuilds the merged entry for one cell: field results first,
// then cross-record results.
func (e *Engine) refresh(id CellID) {
	f, c := e.field[id], e.cross[id]
	if len(f)+len(c) == 0 {
		delete(e.merged, id)
		return
	}
	list := make([]Violation, 0, len(f)+len(c))
	list = append(list, f...)
	list = append(list, c...)
	e.merged[id] = list
}

func (e *Engine) clear() {
	e.field = make(Violations)
	e.cross = make(Violations)
	e.merged = make(Violations)
}

func (e *Engine) emit() {
	if e.listener != nil {
		e.listener(e.merged.Clone())
	}
}
