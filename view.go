package tabgo

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/hupe1980/tabgo/internal/header"
	"github.com/hupe1980/tabgo/model"
	"github.com/hupe1980/tabgo/notify"
	"github.com/hupe1980/tabgo/pk"
	"github.com/hupe1980/tabgo/tag"
	"github.com/hupe1980/tabgo/trace"
)

// View is one client of a table. Views of the same table share rows,
// columns and cells; each View holds its own tags (unless shared), traces,
// notifiers and key designation.
type View struct {
	t         *table
	tags      *tag.Set
	traces    *trace.Engine
	notifiers *notify.Engine
	keys      *pk.Index
	closed    bool
}

func newView(t *table) *View {
	v := &View{
		t:    t,
		tags: tag.New(t),
		keys: pk.New(),
	}
	opts := &t.reg.opts
	onError := func(err error) {
		opts.metricsCollector.RecordCallbackError(err)
		opts.errorHandler(t.name, err)
	}
	v.traces = trace.NewEngine(opts.scheduler, onError, v.hasTag)
	v.notifiers = notify.NewEngine(opts.scheduler, onError, v.hasTag)
	return v
}

func (v *View) hasTag(kind model.Kind, h model.Handle, name string) bool {
	hdr, err := v.t.mgr(kind).Resolve(h)
	if err != nil {
		return false
	}
	return v.tags.Has(kind, hdr.Slot(), name)
}

func (v *View) check() error {
	if v.closed {
		return ErrClosed
	}
	return nil
}

// Name returns the table name.
func (v *View) Name() string { return v.t.name }

// NumRows returns the number of rows.
func (v *View) NumRows() int { return v.t.rows.Len() }

// NumColumns returns the number of columns.
func (v *View) NumColumns() int { return v.t.cols.Len() }

// Created returns the creation time of the table.
func (v *View) Created() time.Time { return v.t.created }

// Modified returns the time of the last change to the table.
func (v *View) Modified() time.Time { return v.t.modified }

// Same reports whether v and other are views of the same table.
func (v *View) Same(other *View) bool { return other != nil && v.t == other.t }

// Close detaches the view. Its traces, notifiers and pending deferred
// callbacks are removed. Closing the last view of a table destroys the
// table. Close is idempotent.
func (v *View) Close() error {
	if v.closed {
		return nil
	}
	v.closed = true
	v.traces.Close()
	v.notifiers.Close()
	v.keys.Clear()
	v.tags.Release()
	if v.t.detach(v) {
		v.t.destroy()
		v.t.reg.drop(v.t)
	} else {
		v.t.updateKeyFlags()
	}
	return nil
}

// AddRows appends n rows with automatic labels.
func (v *View) AddRows(n int) ([]Handle, error) { return v.add(model.KindRow, n) }

// AddColumns appends n string columns with automatic labels.
func (v *View) AddColumns(n int) ([]Handle, error) { return v.add(model.KindColumn, n) }

func (v *View) add(kind model.Kind, n int) ([]Handle, error) {
	if err := v.check(); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: cannot add %d %ss", ErrRange, n, kind)
	}
	m := v.t.mgr(kind)
	hs, err := m.Extend(n)
	v.t.reg.opts.metricsCollector.RecordStructure("add", len(hs), err)
	if err != nil {
		return nil, translateError(err)
	}
	if kind == model.KindRow {
		v.t.cells.GrowRows(m.Cap())
		v.t.invalidateKeys(nil)
	}
	out := make([]Handle, len(hs))
	for i, h := range hs {
		m.AutoLabel(h)
		out[i] = h.Handle()
	}
	v.t.touch()
	v.t.notifyAll(v, kind, notify.Created, hs)
	return out, nil
}

// DeleteRows removes rows. Every handle is checked before anything is
// deleted. Deleted notifications fire while the row still exists.
func (v *View) DeleteRows(rows ...Handle) error { return v.delete(model.KindRow, rows) }

// DeleteColumns removes columns and their cells.
func (v *View) DeleteColumns(cols ...Handle) error { return v.delete(model.KindColumn, cols) }

func (v *View) delete(kind model.Kind, hs []Handle) error {
	if err := v.check(); err != nil {
		return err
	}
	m := v.t.mgr(kind)
	for _, h := range hs {
		if _, err := m.Resolve(h); err != nil {
			return err
		}
	}
	deleted := 0
	for _, h := range hs {
		hdr, err := m.Resolve(h)
		if err != nil {
			continue
		}
		v.t.fireNotify(v, notify.Event{Table: v.t.name, Kind: kind, Handle: h, Op: notify.Deleted})
		// A notifier may have deleted it already.
		if hdr, err = m.Resolve(h); err != nil {
			continue
		}
		v.t.deleteHeader(hdr)
		deleted++
	}
	v.t.reg.opts.metricsCollector.RecordStructure("delete", deleted, nil)
	if deleted > 0 {
		v.t.touch()
	}
	return nil
}

// MoveRows moves count rows starting at index src so that they start at
// index dst.
func (v *View) MoveRows(src, dst, count int) error { return v.move(model.KindRow, src, dst, count) }

// MoveColumns moves columns like MoveRows.
func (v *View) MoveColumns(src, dst, count int) error {
	return v.move(model.KindColumn, src, dst, count)
}

func (v *View) move(kind model.Kind, src, dst, count int) error {
	if err := v.check(); err != nil {
		return err
	}
	moved, err := v.t.mgr(kind).Move(src, dst, count)
	v.t.reg.opts.metricsCollector.RecordStructure("move", len(moved), err)
	if err != nil {
		return err
	}
	if src == dst || len(moved) == 0 {
		return nil
	}
	if kind == model.KindRow {
		v.t.invalidateKeys(nil)
	}
	v.t.touch()
	v.t.notifyAll(v, kind, notify.Moved, moved)
	return nil
}

// SetNumRows adds rows at the end or deletes rows from the end until the
// table has n rows.
func (v *View) SetNumRows(n int) error {
	if err := v.check(); err != nil {
		return err
	}
	cur := v.t.rows.Len()
	switch {
	case n > cur:
		_, err := v.AddRows(n - cur)
		return err
	case n < cur:
		if n < 0 {
			return fmt.Errorf("%w: %d rows", ErrRange, n)
		}
		hs := v.t.rows.Headers()[n:]
		out := make([]Handle, len(hs))
		for i, h := range hs {
			out[i] = h.Handle()
		}
		return v.DeleteRows(out...)
	}
	return nil
}

// SetLabel labels a row or column. Labels need not be unique.
func (v *View) SetLabel(h Handle, label string) error {
	if err := v.check(); err != nil {
		return err
	}
	hdr, err := v.t.resolve(h)
	if err != nil {
		return err
	}
	if hdr.Label() == label {
		return nil
	}
	if err := v.t.mgr(h.Kind).SetLabel(hdr, label); err != nil {
		return err
	}
	v.t.touch()
	v.t.notifyAll(v, h.Kind, notify.Relabeled, []*header.Header{hdr})
	return nil
}

// UnsetLabel removes the label of a row or column.
func (v *View) UnsetLabel(h Handle) error {
	if err := v.check(); err != nil {
		return err
	}
	hdr, err := v.t.resolve(h)
	if err != nil {
		return err
	}
	if hdr.Label() == "" {
		return nil
	}
	v.t.mgr(h.Kind).UnsetLabel(hdr)
	v.t.touch()
	v.t.notifyAll(v, h.Kind, notify.Relabeled, []*header.Header{hdr})
	return nil
}

// Label returns the label of a row or column.
func (v *View) Label(h Handle) (string, error) {
	hdr, err := v.t.resolve(h)
	if err != nil {
		return "", err
	}
	return hdr.Label(), nil
}

// Index returns the logical position of a row or column.
func (v *View) Index(h Handle) (int, error) {
	hdr, err := v.t.resolve(h)
	if err != nil {
		return 0, err
	}
	return hdr.Index(), nil
}

// Valid reports whether h refers to a live row or column.
func (v *View) Valid(h Handle) bool {
	_, err := v.t.resolve(h)
	return err == nil
}

// FindRow returns the first row labeled label.
func (v *View) FindRow(label string) (Handle, error) { return v.find(model.KindRow, label) }

// FindColumn returns the first column labeled label.
func (v *View) FindColumn(label string) (Handle, error) { return v.find(model.KindColumn, label) }

func (v *View) find(kind model.Kind, label string) (Handle, error) {
	h, ok := v.t.mgr(kind).Find(label)
	if !ok {
		return model.None, fmt.Errorf("%w: %s %q", ErrNotFound, kind, label)
	}
	return h.Handle(), nil
}

// FindRows returns every row labeled label in logical order.
func (v *View) FindRows(label string) []Handle {
	var hs []*header.Header
	for h := range v.t.rows.FindAll(label) {
		hs = append(hs, h)
	}
	slices.SortFunc(hs, func(a, b *header.Header) int { return cmp.Compare(a.Index(), b.Index()) })
	out := make([]Handle, len(hs))
	for i, h := range hs {
		out[i] = h.Handle()
	}
	return out
}

// RowAt returns the row at logical index i.
func (v *View) RowAt(i int) (Handle, error) { return v.at(model.KindRow, i) }

// ColumnAt returns the column at logical index i.
func (v *View) ColumnAt(i int) (Handle, error) { return v.at(model.KindColumn, i) }

func (v *View) at(kind model.Kind, i int) (Handle, error) {
	h, ok := v.t.mgr(kind).At(i)
	if !ok {
		return model.None, fmt.Errorf("%w: %s %d of %d", ErrRange, kind, i, v.t.mgr(kind).Len())
	}
	return h.Handle(), nil
}

// Rows returns every row in logical order.
func (v *View) Rows() []Handle { return handles(v.t.rows) }

// Columns returns every column in logical order.
func (v *View) Columns() []Handle { return handles(v.t.cols) }

// RowRange returns the rows between two rows, both included, in logical
// order. The bounds may be given in either order.
func (v *View) RowRange(from, to Handle) ([]Handle, error) { return v.span(model.KindRow, from, to) }

// ColumnRange returns the columns between two columns like RowRange.
func (v *View) ColumnRange(from, to Handle) ([]Handle, error) {
	return v.span(model.KindColumn, from, to)
}

func (v *View) span(kind model.Kind, from, to Handle) ([]Handle, error) {
	m := v.t.mgr(kind)
	a, err := m.Resolve(from)
	if err != nil {
		return nil, err
	}
	b, err := m.Resolve(to)
	if err != nil {
		return nil, err
	}
	lo, hi := min(a.Index(), b.Index()), max(a.Index(), b.Index())
	out := make([]Handle, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		h, _ := m.At(i)
		out = append(out, h.Handle())
	}
	return out, nil
}

func handles(m *header.Manager) []Handle {
	out := make([]Handle, 0, m.Len())
	for h := range m.All() {
		out = append(out, h.Handle())
	}
	return out
}
