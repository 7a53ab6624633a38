// Package sorter orders rows by one or more key columns.
package sorter

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/hupe1980/tabgo/model"
	"github.com/hupe1980/tabgo/value"
)

// Comparator selects how the cells of a key column are compared.
type Comparator uint8

const (
	// Auto picks a comparator from the column type.
	Auto Comparator = iota
	Dictionary
	ASCII
	ASCIINoCase
	Integer
	Real
	// Frequency orders by how often a value occurs in the whole key column.
	Frequency
	// Custom uses Key.Compare.
	Custom
)

var comparatorNames = [...]string{"auto", "dictionary", "ascii", "nocase", "integer", "real", "frequency", "custom"}

func (c Comparator) String() string {
	if int(c) < len(comparatorNames) {
		return comparatorNames[c]
	}
	return fmt.Sprintf("comparator(%d)", c)
}

// ErrUnknownComparator is returned by ParseComparator.
var ErrUnknownComparator = errors.New("unknown comparator")

// ErrNoCompare is returned for a Custom key without a compare function.
var ErrNoCompare = errors.New("custom sort key without compare function")

// ParseComparator resolves a comparator name.
func ParseComparator(name string) (Comparator, error) {
	if i := slices.Index(comparatorNames[:], name); i >= 0 {
		return Comparator(i), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownComparator, name)
}

// Key is one sort key.
type Key struct {
	Column     model.Handle
	Type       value.Type
	Comparator Comparator
	Compare    func(a, b value.Value) int
}

// Options configure a sort.
type Options struct {
	Keys       []Key
	Decreasing bool
}

// Source reads cells and the row ordering. Stale handles read as empty.
type Source interface {
	Peek(row, col model.Handle) value.Value
	// RowIndex returns the logical index of row, or -1 if it is stale.
	RowIndex(row model.Handle) int
	NumRows() int
	RowAt(index int) model.Handle
}

type keyFunc func(i, j int) int

// Sort returns rows ordered by opts. rows itself is left untouched.
func Sort(src Source, rows []model.Handle, opts Options) ([]model.Handle, error) {
	out := slices.Clone(rows)
	if err := SortInPlace(src, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// SortInPlace orders rows by opts. Empty cells always sort last. Rows tied
// on every key are ordered by their logical index in the table.
func SortInPlace(src Source, rows []model.Handle, opts Options) error {
	if len(opts.Keys) == 0 || len(rows) < 2 {
		return nil
	}
	keys := make([]keyFunc, len(opts.Keys))
	for k, key := range opts.Keys {
		fn, err := prepare(src, rows, key)
		if err != nil {
			return err
		}
		keys[k] = fn
	}

	perm := make([]int, len(rows))
	index := make([]int, len(rows))
	for i, row := range rows {
		perm[i] = i
		index[i] = src.RowIndex(row)
	}
	slices.SortFunc(perm, func(i, j int) int {
		for _, fn := range keys {
			if c := fn(i, j); c != 0 {
				if c == emptyAfter || c == emptyBefore {
					return c / emptyAfter
				}
				if opts.Decreasing {
					return -c
				}
				return c
			}
		}
		if c := cmp.Compare(index[i], index[j]); c != 0 {
			return c
		}
		return cmp.Compare(i, j)
	})

	sorted := make([]model.Handle, len(rows))
	for to, from := range perm {
		sorted[to] = rows[from]
	}
	copy(rows, sorted)
	return nil
}

// Results of a key that must not be negated by Decreasing.
const (
	emptyAfter  = 2
	emptyBefore = -2
)

func prepare(src Source, rows []model.Handle, key Key) (keyFunc, error) {
	cells := make([]value.Value, len(rows))
	for i, row := range rows {
		cells[i] = src.Peek(row, key.Column)
	}
	compare, err := comparator(src, key)
	if err != nil {
		return nil, err
	}
	return func(i, j int) int {
		a, b := cells[i], cells[j]
		switch {
		case a.IsEmpty() && b.IsEmpty():
			return 0
		case a.IsEmpty():
			return emptyAfter
		case b.IsEmpty():
			return emptyBefore
		}
		return cmp.Compare(compare(a, b), 0)
	}, nil
}

func comparator(src Source, key Key) (func(a, b value.Value) int, error) {
	switch key.Comparator {
	case Dictionary:
		return compareDictionary, nil
	case ASCII:
		return compareASCII, nil
	case ASCIINoCase:
		return compareNoCase, nil
	case Integer:
		return compareInteger, nil
	case Real:
		return compareReal, nil
	case Frequency:
		counts := make(map[value.Value]int)
		for i := range src.NumRows() {
			if v := src.Peek(src.RowAt(i), key.Column); !v.IsEmpty() {
				counts[v]++
			}
		}
		return func(a, b value.Value) int { return cmp.Compare(counts[a], counts[b]) }, nil
	case Custom:
		if key.Compare == nil {
			return nil, ErrNoCompare
		}
		return key.Compare, nil
	case Auto:
		switch key.Type {
		case value.TypeLong, value.TypeBoolean, value.TypeTime:
			return compareInteger, nil
		case value.TypeDouble:
			return compareReal, nil
		case value.TypeBlob:
			return compareASCII, nil
		default:
			return compareDictionary, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownComparator, key.Comparator)
}
