// Package column implements column-major cell storage.
//
// Each column owns one vector of cells, indexed by row offset and sized to
// the row capacity. Vectors are allocated on first write.
package column

import (
	"fmt"
	"unsafe"

	"github.com/hupe1980/tabgo/model"
	"github.com/hupe1980/tabgo/value"
)

// CellSize is the in-memory size of one cell.
const CellSize = int64(unsafe.Sizeof(value.Value{}))

// Budget accounts for vector memory. A nil Budget is unlimited.
type Budget interface {
	Reserve(bytes int64) error
	Release(bytes int64)
}

// ConversionError reports the first cell that failed a column conversion.
type ConversionError struct {
	Row   model.Offset
	Value value.Value
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("row offset %d: %v", e.Row, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// Storage holds every cell of a table.
type Storage struct {
	vectors [][]value.Value
	rowCap  int
	budget  Budget
}

// New creates empty storage.
func New(budget Budget) *Storage {
	return &Storage{budget: budget}
}

// RowCap returns the length of every allocated vector.
func (s *Storage) RowCap() int { return s.rowCap }

// Allocated returns the number of allocated column vectors.
func (s *Storage) Allocated() int {
	n := 0
	for _, v := range s.vectors {
		if v != nil {
			n++
		}
	}
	return n
}

// GrowBytes returns the memory needed to extend every allocated vector to
// newCap rows.
func (s *Storage) GrowBytes(newCap int) int64 {
	if newCap <= s.rowCap {
		return 0
	}
	return int64(newCap-s.rowCap) * CellSize * int64(s.Allocated())
}

// GrowRows extends every allocated vector to newCap rows. The memory must
// already be reserved (see GrowBytes).
func (s *Storage) GrowRows(newCap int) {
	if newCap <= s.rowCap {
		return
	}
	for i, vec := range s.vectors {
		if vec == nil {
			continue
		}
		grown := make([]value.Value, newCap)
		copy(grown, vec)
		s.vectors[i] = grown
	}
	s.rowCap = newCap
}

// Peek returns a copy of a cell without allocating its vector.
func (s *Storage) Peek(row, col model.Offset) value.Value {
	if int(col) >= len(s.vectors) {
		return value.Value{}
	}
	vec := s.vectors[col]
	if vec == nil || int(row) >= len(vec) {
		return value.Value{}
	}
	return vec[row]
}

// Cell returns a pointer to a cell, allocating the column vector on first
// use. The pointer is valid until the next GrowRows.
func (s *Storage) Cell(row, col model.Offset) (*value.Value, error) {
	if int(row) >= s.rowCap {
		return nil, fmt.Errorf("row offset %d beyond capacity %d", row, s.rowCap)
	}
	if int(col) >= len(s.vectors) {
		grown := make([][]value.Value, int(col)+1)
		copy(grown, s.vectors)
		s.vectors = grown
	}
	if s.vectors[col] == nil {
		if s.budget != nil {
			if err := s.budget.Reserve(int64(s.rowCap) * CellSize); err != nil {
				return nil, err
			}
		}
		s.vectors[col] = make([]value.Value, s.rowCap)
	}
	return &s.vectors[col][row], nil
}

// Reset marks a cell as holding no value.
func (s *Storage) Reset(row, col model.Offset) {
	if int(col) >= len(s.vectors) || s.vectors[col] == nil || int(row) >= len(s.vectors[col]) {
		return
	}
	s.vectors[col][row] = value.Value{}
}

// ResetRow empties a row in every column.
func (s *Storage) ResetRow(row model.Offset) {
	for _, vec := range s.vectors {
		if vec != nil && int(row) < len(vec) {
			vec[row] = value.Value{}
		}
	}
}

// FreeColumn releases the vector of a column.
func (s *Storage) FreeColumn(col model.Offset) {
	if int(col) >= len(s.vectors) || s.vectors[col] == nil {
		return
	}
	if s.budget != nil {
		s.budget.Release(int64(len(s.vectors[col])) * CellSize)
	}
	s.vectors[col] = nil
}

// Free releases every vector.
func (s *Storage) Free() {
	for i := range s.vectors {
		s.FreeColumn(model.Offset(i))
	}
	s.vectors = nil
	s.rowCap = 0
}

// Convert re-types every non-empty cell of a column. All cells are
// converted into a scratch vector first; the column is only replaced when
// every conversion succeeded.
func (s *Storage) Convert(col model.Offset, t value.Type) error {
	if int(col) >= len(s.vectors) || s.vectors[col] == nil {
		return nil
	}
	vec := s.vectors[col]
	scratch := make([]value.Value, len(vec))
	for i, v := range vec {
		if v.IsEmpty() {
			continue
		}
		converted, err := value.Convert(v, t)
		if err != nil {
			return &ConversionError{Row: model.Offset(i), Value: v, Err: err}
		}
		scratch[i] = converted
	}
	s.vectors[col] = scratch
	return nil
}

// CopyColumn copies every cell of src into dst, converting to t.
// Like Convert it either copies everything or nothing.
func (s *Storage) CopyColumn(src, dst model.Offset, t value.Type) error {
	if int(src) >= len(s.vectors) || s.vectors[src] == nil {
		if int(dst) < len(s.vectors) && s.vectors[dst] != nil {
			clear(s.vectors[dst])
		}
		return nil
	}
	scratch := make([]value.Value, len(s.vectors[src]))
	for i, v := range s.vectors[src] {
		if v.IsEmpty() {
			continue
		}
		converted, err := value.Convert(v, t)
		if err != nil {
			return &ConversionError{Row: model.Offset(i), Value: v, Err: err}
		}
		scratch[i] = converted
	}
	if _, err := s.Cell(0, dst); err != nil {
		return err
	}
	s.vectors[dst] = scratch
	return nil
}
