package tabgo

import (
	"errors"
	"time"

	"github.com/hupe1980/tabgo/internal/column"
	"github.com/hupe1980/tabgo/internal/header"
	"github.com/hupe1980/tabgo/model"
	"github.com/hupe1980/tabgo/sorter"
	"github.com/hupe1980/tabgo/trace"
	"github.com/hupe1980/tabgo/value"
)

// Get returns the value of a cell. Read traces fire before the value is
// taken, so a trace may compute the cell on demand.
func (v *View) Get(row, col Handle) (Value, error) {
	if err := v.check(); err != nil {
		return Value{}, err
	}
	if _, _, err := v.t.resolveCell(row, col); err != nil {
		return Value{}, err
	}
	v.t.fireTrace(v, trace.Event{Table: v.t.name, Row: row, Column: col, Op: trace.Read})
	// The trace may have deleted the row or column.
	rh, ch, err := v.t.resolveCell(row, col)
	if err != nil {
		return Value{}, err
	}
	return v.t.cells.Peek(rh.Offset(), ch.Offset()), nil
}

// Set stores val in a cell after converting it to the column type.
// Setting an empty value is the same as Unset.
func (v *View) Set(row, col Handle, val Value) error {
	if err := v.check(); err != nil {
		return err
	}
	if val.IsEmpty() {
		return v.Unset(row, col)
	}
	rh, ch, err := v.t.resolveCell(row, col)
	if err != nil {
		return err
	}
	converted, err := value.Convert(val, ch.Type)
	if err != nil {
		return &ConversionError{Row: row, Column: col, Type: ch.Type, Text: val.Text(), cause: err}
	}
	return v.write(rh, ch, converted)
}

// SetText parses text by the column type and stores the result.
func (v *View) SetText(row, col Handle, text string) error {
	if err := v.check(); err != nil {
		return err
	}
	rh, ch, err := v.t.resolveCell(row, col)
	if err != nil {
		return err
	}
	parsed, err := value.Parse(ch.Type, text)
	if err != nil {
		return &ConversionError{Row: row, Column: col, Type: ch.Type, Text: text, cause: err}
	}
	return v.write(rh, ch, parsed)
}

// AppendText appends text to the current text of a cell. For typed
// columns the combined text must parse.
func (v *View) AppendText(row, col Handle, text string) error {
	if err := v.check(); err != nil {
		return err
	}
	rh, ch, err := v.t.resolveCell(row, col)
	if err != nil {
		return err
	}
	combined := v.t.cells.Peek(rh.Offset(), ch.Offset()).Text() + text
	parsed, err := value.Parse(ch.Type, combined)
	if err != nil {
		return &ConversionError{Row: row, Column: col, Type: ch.Type, Text: combined, cause: err}
	}
	return v.write(rh, ch, parsed)
}

func (v *View) write(rh, ch *header.Header, val value.Value) error {
	start := time.Now()
	cell, err := v.t.cells.Cell(rh.Offset(), ch.Offset())
	if err != nil {
		err = translateError(err)
		v.t.reg.opts.metricsCollector.RecordWrite(time.Since(start), err)
		return err
	}
	op := trace.Write
	if cell.IsEmpty() {
		op |= trace.Create
	}
	*cell = val
	v.t.touch()
	v.t.invalidateKeys(ch)
	v.t.reg.opts.metricsCollector.RecordWrite(time.Since(start), nil)
	v.t.fireTrace(v, trace.Event{Table: v.t.name, Row: rh.Handle(), Column: ch.Handle(), Op: op})
	return nil
}

// Unset clears a cell. Unset traces fire only if the cell held a value.
func (v *View) Unset(row, col Handle) error {
	if err := v.check(); err != nil {
		return err
	}
	rh, ch, err := v.t.resolveCell(row, col)
	if err != nil {
		return err
	}
	if v.t.cells.Peek(rh.Offset(), ch.Offset()).IsEmpty() {
		return nil
	}
	v.t.cells.Reset(rh.Offset(), ch.Offset())
	v.t.touch()
	v.t.invalidateKeys(ch)
	v.t.reg.opts.metricsCollector.RecordWrite(0, nil)
	v.t.fireTrace(v, trace.Event{Table: v.t.name, Row: row, Column: col, Op: trace.Unset})
	return nil
}

// ColumnType returns the declared type of a column.
func (v *View) ColumnType(col Handle) (Type, error) {
	ch, err := v.column(col)
	if err != nil {
		return 0, err
	}
	return ch.Type, nil
}

// SetColumnType converts every value of a column to t. When any value
// does not convert, nothing changes and a *ConversionError names the
// first offending cell.
func (v *View) SetColumnType(col Handle, t Type) error {
	if err := v.check(); err != nil {
		return err
	}
	ch, err := v.column(col)
	if err != nil {
		return err
	}
	if ch.Type == t {
		return nil
	}
	if err := v.t.cells.Convert(ch.Offset(), t); err != nil {
		return v.conversionError(err, col, t)
	}
	ch.Type = t
	v.t.touch()
	v.t.invalidateKeys(ch)
	return nil
}

// CopyColumn replaces every cell of dst with the cells of src converted
// to the type of dst. Nothing changes if any value does not convert.
func (v *View) CopyColumn(src, dst Handle) error {
	if err := v.check(); err != nil {
		return err
	}
	sh, err := v.column(src)
	if err != nil {
		return err
	}
	dh, err := v.column(dst)
	if err != nil {
		return err
	}
	if sh == dh {
		return nil
	}
	if err := v.t.cells.CopyColumn(sh.Offset(), dh.Offset(), dh.Type); err != nil {
		return v.conversionError(err, dst, dh.Type)
	}
	v.t.touch()
	v.t.invalidateKeys(dh)
	for rh := range v.t.rows.All() {
		if v.t.cells.Peek(rh.Offset(), dh.Offset()).IsEmpty() {
			continue
		}
		v.t.fireTrace(v, trace.Event{Table: v.t.name, Row: rh.Handle(), Column: dst, Op: trace.Write})
	}
	return nil
}

func (v *View) conversionError(err error, col Handle, t Type) error {
	var ce *column.ConversionError
	if !errors.As(err, &ce) {
		return translateError(err)
	}
	return &ConversionError{
		Row:    v.t.rowByOffset(ce.Row),
		Column: col,
		Type:   t,
		Text:   ce.Value.Text(),
		cause:  ce.Err,
	}
}

// UniqueValues returns the distinct non-empty values of a column in
// order of first appearance.
func (v *View) UniqueValues(col Handle) ([]Value, error) {
	ch, err := v.column(col)
	if err != nil {
		return nil, err
	}
	seen := make(map[value.Value]struct{})
	var out []Value
	for rh := range v.t.rows.All() {
		val := v.t.cells.Peek(rh.Offset(), ch.Offset())
		if val.IsEmpty() {
			continue
		}
		if _, ok := seen[val]; ok {
			continue
		}
		seen[val] = struct{}{}
		out = append(out, val)
	}
	return out, nil
}

// MinMax returns the smallest and largest values of a column under the
// default comparator of its type. Both are empty for an empty column.
func (v *View) MinMax(col Handle) (lo, hi Value, err error) {
	ch, err := v.column(col)
	if err != nil {
		return Value{}, Value{}, err
	}
	var rows []model.Handle
	for rh := range v.t.rows.All() {
		if !v.t.cells.Peek(rh.Offset(), ch.Offset()).IsEmpty() {
			rows = append(rows, rh.Handle())
		}
	}
	if len(rows) == 0 {
		return Value{}, Value{}, nil
	}
	sorted, err := sorter.Sort(v.t, rows, sorter.Options{
		Keys: []sorter.Key{{Column: col, Type: ch.Type}},
	})
	if err != nil {
		return Value{}, Value{}, err
	}
	return v.t.Peek(sorted[0], col), v.t.Peek(sorted[len(sorted)-1], col), nil
}

func (v *View) column(col Handle) (*header.Header, error) {
	if col.Kind != model.KindColumn {
		return nil, ErrStaleHandle
	}
	return v.t.cols.Resolve(col)
}
