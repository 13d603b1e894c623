package core

import (
	"sort"
	"strings"
)

// RecordIndex maps record identities to rows.
//
// Rows whose QueryID is blank or whose Turn is not an integer have no key
// and are left out of every lookup. Duplicate keys are kept, in row order.
type RecordIndex struct {
	identity IdentityColumns
	keys     []indexEntry
	byKey    map[RecordKey][]RowID
}

type indexEntry struct {
	key RecordKey
	ok  bool
}

// QueryGroup is the set of keyed rows sharing a QueryID, in row order.
type QueryGroup struct {
	QueryID string
	Rows    []RowID
}

// BuildIndex indexes records by their identity columns.
func BuildIndex(records []Record, identity IdentityColumns) *RecordIndex {
	ix := &RecordIndex{
		identity: identity,
		keys:     make([]indexEntry, len(records)),
		byKey:    make(map[RecordKey][]RowID, len(records)),
	}
	for i, rec := range records {
		key, ok := KeyOf(rec, identity)
		ix.keys[i] = indexEntry{key: key, ok: ok}
		if ok {
			ix.byKey[key] = append(ix.byKey[key], RowID(i))
		}
	}
	return ix
}

// KeyOf derives a record's identity. It returns false when the record
// cannot be keyed.
func KeyOf(rec Record, identity IdentityColumns) (RecordKey, bool) {
	qid := strings.TrimSpace(rec[identity.QueryID])
	if qid == "" {
		return RecordKey{}, false
	}
	turn, ok := ParseTurn(rec[identity.Turn])
	if !ok {
		return RecordKey{}, false
	}
	return RecordKey{QueryID: qid, Turn: turn}, true
}

// Len returns the number of rows indexed, keyed or not.
func (ix *RecordIndex) Len() int { return len(ix.keys) }

// Identity returns the identity columns the index was built with.
func (ix *RecordIndex) Identity() IdentityColumns { return ix.identity }

// Key returns the identity of row.
func (ix *RecordIndex) Key(row RowID) (RecordKey, bool) {
	if row < 0 || int(row) >= len(ix.keys) {
		return RecordKey{}, false
	}
	e := ix.keys[row]
	return e.key, e.ok
}

// Lookup returns the rows carrying key, in row order.
func (ix *RecordIndex) Lookup(key RecordKey) []RowID {
	return append([]RowID(nil), ix.byKey[key]...)
}

// Count returns how many rows carry key.
func (ix *RecordIndex) Count(key RecordKey) int {
	return len(ix.byKey[key])
}

// Update re-keys row after its record changed.
func (ix *RecordIndex) Update(row RowID, rec Record) {
	if row < 0 || int(row) >= len(ix.keys) {
		return
	}
	old := ix.keys[row]
	key, ok := KeyOf(rec, ix.identity)
	if old.ok == ok && old.key == key {
		return
	}
	if old.ok {
		ix.remove(old.key, row)
	}
	ix.keys[row] = indexEntry{key: key, ok: ok}
	if ok {
		ix.insert(key, row)
	}
}

func (ix *RecordIndex) remove(key RecordKey, row RowID) {
	rows := ix.byKey[key]
	for i, r := range rows {
		if r == row {
			rows = append(rows[:i], rows[i+1:]...)
			break
		}
	}
	if len(rows) == 0 {
		delete(ix.byKey, key)
		return
	}
	ix.byKey[key] = rows
}

func (ix *RecordIndex) insert(key RecordKey, row RowID) {
	rows := ix.byKey[key]
	i := sort.Search(len(rows), func(i int) bool { return rows[i] >= row })
	rows = append(rows, 0)
	copy(rows[i+1:], rows[i:])
	rows[i] = row
	ix.byKey[key] = rows
}

// Groups returns keyed rows grouped by QueryID. Groups appear in the order
// their QueryID is first seen; rows within a group keep row order.
func (ix *RecordIndex) Groups() []QueryGroup {
	var groups []QueryGroup
	pos := make(map[string]int)
	for i, e := range ix.keys {
		if !e.ok {
			continue
		}
		g, seen := pos[e.key.QueryID]
		if !seen {
			g = len(groups)
			pos[e.key.QueryID] = g
			groups = append(groups, QueryGroup{QueryID: e.key.QueryID})
		}
		groups[g].Rows = append(groups[g].Rows, RowID(i))
	}
	return groups
}

// DuplicateKeys returns every key carried by more than one row, ordered by
// the first row that carries it.
func (ix *RecordIndex) DuplicateKeys() []RecordKey {
	var dups []RecordKey
	for key, rows := range ix.byKey {
		if len(rows) > 1 {
			dups = append(dups, key)
		}
	}
	sort.Slice(dups, func(i, j int) bool {
		return ix.byKey[dups[i]][0] < ix.byKey[dups[j]][0]
	})
	return dups
}
