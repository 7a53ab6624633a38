// Package pk implements the primary-key index of a view.
//
// The index maps the values of one or more designated key columns to a row.
// It is built lazily: any change touching a key column marks it dirty and
// the next Lookup rebuilds it from scratch.
package pk

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hupe1980/tabgo/model"
	"github.com/hupe1980/tabgo/value"
)

var (
	// ErrNoKeys is returned when no key columns are designated.
	ErrNoKeys = errors.New("no key columns designated")

	// ErrNotFound is returned when no row carries the requested key.
	ErrNotFound = errors.New("key not found")

	// ErrDuplicateKey is wrapped by DuplicateKeyError.
	ErrDuplicateKey = errors.New("duplicate key")
)

// ArityError reports a lookup with the wrong number of values.
type ArityError struct {
	Want int
	Got  int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("wrong number of key values: want %d, got %d", e.Want, e.Got)
}

// DuplicateKeyError reports two rows with the same key in a unique index.
type DuplicateKeyError struct {
	First  model.Handle
	Second model.Handle
	Key    []value.Value
}

func (e *DuplicateKeyError) Error() string {
	parts := make([]string, len(e.Key))
	for i, v := range e.Key {
		parts[i] = v.Text()
	}
	return fmt.Sprintf("duplicate key {%s} in %s and %s", strings.Join(parts, " "), e.First, e.Second)
}

func (e *DuplicateKeyError) Unwrap() error { return ErrDuplicateKey }

// Source gives the index read access to the table.
type Source interface {
	NumRows() int
	RowAt(index int) model.Handle
	Value(row, col model.Handle) (value.Value, error)
}

// Index is a lazily built composite key index.
type Index struct {
	columns []model.Handle
	unique  bool
	dirty   bool

	perColumn []map[value.Value]model.Handle
	master    map[string]model.Handle
}

// New creates an Index without key columns.
func New() *Index {
	return &Index{}
}

// Designate sets the key columns and marks the index dirty.
func (x *Index) Designate(columns []model.Handle, unique bool) {
	x.discard()
	x.columns = slices.Clone(columns)
	x.unique = unique
	x.dirty = len(columns) > 0
}

// Columns returns the key columns in key order.
func (x *Index) Columns() []model.Handle { return slices.Clone(x.columns) }

// Unique reports whether duplicate keys are rejected.
func (x *Index) Unique() bool { return x.unique }

// IsKey reports whether col is a key column.
func (x *Index) IsKey(col model.Handle) bool { return slices.Contains(x.columns, col) }

// Dirty reports whether the next Lookup rebuilds the index.
func (x *Index) Dirty() bool { return x.dirty }

// Built reports whether a usable index exists.
func (x *Index) Built() bool { return x.master != nil && !x.dirty }

// Invalidate marks the index dirty.
func (x *Index) Invalidate() {
	if len(x.columns) > 0 {
		x.dirty = true
	}
}

// DropColumn removes a deleted column from the key.
func (x *Index) DropColumn(col model.Handle) {
	i := slices.Index(x.columns, col)
	if i < 0 {
		return
	}
	x.columns = slices.Delete(x.columns, i, i+1)
	x.discard()
	x.dirty = len(x.columns) > 0
}

// Clear drops the designation and the index.
func (x *Index) Clear() {
	x.discard()
	x.columns = nil
	x.unique = false
	x.dirty = false
}

func (x *Index) discard() {
	x.perColumn = nil
	x.master = nil
}

// Rebuild builds the index from src. Rows with an empty key cell are
// skipped. When unique keys were requested and two rows share a key, the
// index is discarded, stays dirty and a *DuplicateKeyError is returned.
// Otherwise the first row of a key wins.
func (x *Index) Rebuild(src Source) error {
	if len(x.columns) == 0 {
		return ErrNoKeys
	}
	x.dirty = false
	perColumn := make([]map[value.Value]model.Handle, len(x.columns))
	for i := range perColumn {
		perColumn[i] = make(map[value.Value]model.Handle)
	}
	master := make(map[string]model.Handle)
	reps := make([]model.Handle, len(x.columns))
	vals := make([]value.Value, len(x.columns))

rows:
	for i := range src.NumRows() {
		row := src.RowAt(i)
		for c, col := range x.columns {
			v, err := src.Value(row, col)
			if err != nil {
				x.fail()
				return err
			}
			if v.IsEmpty() {
				continue rows
			}
			vals[c] = v
		}
		for c, v := range vals {
			rep, ok := perColumn[c][v]
			if !ok {
				rep = row
				perColumn[c][v] = row
			}
			reps[c] = rep
		}
		key := compositeKey(reps)
		if first, ok := master[key]; ok {
			if x.unique {
				x.fail()
				return &DuplicateKeyError{First: first, Second: row, Key: slices.Clone(vals)}
			}
			continue
		}
		master[key] = row
	}
	x.perColumn = perColumn
	x.master = master
	return nil
}

func (x *Index) fail() {
	x.discard()
	x.dirty = true
}

// Lookup returns the row whose key columns hold values, rebuilding the
// index first when it is dirty.
func (x *Index) Lookup(src Source, values []value.Value) (model.Handle, error) {
	if len(x.columns) == 0 {
		return model.None, ErrNoKeys
	}
	if len(values) != len(x.columns) {
		return model.None, &ArityError{Want: len(x.columns), Got: len(values)}
	}
	if x.dirty || x.master == nil {
		if err := x.Rebuild(src); err != nil {
			return model.None, err
		}
	}
	reps := make([]model.Handle, len(values))
	for i, v := range values {
		rep, ok := x.perColumn[i][v]
		if !ok {
			return model.None, ErrNotFound
		}
		reps[i] = rep
	}
	row, ok := x.master[compositeKey(reps)]
	if !ok {
		return model.None, ErrNotFound
	}
	return row, nil
}

// Len returns the number of distinct keys in the built index.
func (x *Index) Len() int { return len(x.master) }

func compositeKey(reps []model.Handle) string {
	buf := make([]byte, 0, len(reps)*10)
	for _, h := range reps {
		buf = binary.AppendUvarint(buf, uint64(h.Slot))
		buf = binary.AppendUvarint(buf, uint64(h.Gen))
	}
	return string(buf)
}
