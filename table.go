package tabgo

import (
	"slices"
	"time"
	"unsafe"

	"github.com/hupe1980/tabgo/internal/column"
	"github.com/hupe1980/tabgo/internal/header"
	"github.com/hupe1980/tabgo/model"
	"github.com/hupe1980/tabgo/notify"
	"github.com/hupe1980/tabgo/pk"
	"github.com/hupe1980/tabgo/resource"
	"github.com/hupe1980/tabgo/sorter"
	"github.com/hupe1980/tabgo/tag"
	"github.com/hupe1980/tabgo/trace"
	"github.com/hupe1980/tabgo/value"
)

// headerSize approximates the memory of one header including its slot in
// the ordering.
const headerSize = int64(unsafe.Sizeof(header.Header{})) + int64(unsafe.Sizeof(uintptr(0)))

// table is the store shared by every View opened under one name.
type table struct {
	name  string
	reg   *Registry
	rc    *resource.Controller
	rows  *header.Manager
	cols  *header.Manager
	cells *column.Storage

	// views in attach order.
	views []*View

	created     time.Time
	modified    time.Time
	headerBytes int64
}

// Compile time checks for the collaborator interfaces the table serves.
var (
	_ header.Reserver = (*table)(nil)
	_ tag.Source      = (*table)(nil)
	_ pk.Source       = (*table)(nil)
	_ sorter.Source   = (*table)(nil)
)

func newTable(reg *Registry, name string) *table {
	now := time.Now()
	t := &table{
		name:     name,
		reg:      reg,
		rc:       reg.opts.resources,
		cells:    column.New(reg.opts.resources),
		created:  now,
		modified: now,
	}
	t.rows = header.NewManager(model.KindRow,
		header.WithReserver(t),
		header.WithGrowthThreshold(reg.opts.growthThreshold))
	t.cols = header.NewManager(model.KindColumn,
		header.WithReserver(t),
		header.WithGrowthThreshold(reg.opts.growthThreshold))
	return t
}

// Reserve approves offset pool growth. Row growth also covers extending
// every allocated column vector.
func (t *table) Reserve(kind model.Kind, oldCap, newCap int) error {
	hdr := int64(newCap-oldCap) * headerSize
	bytes := hdr
	if kind == model.KindRow {
		bytes += t.cells.GrowBytes(newCap)
	}
	if err := t.rc.Reserve(bytes); err != nil {
		return err
	}
	t.headerBytes += hdr
	return nil
}

func (t *table) mgr(kind model.Kind) *header.Manager {
	if kind == model.KindColumn {
		return t.cols
	}
	return t.rows
}

func (t *table) resolve(h model.Handle) (*header.Header, error) {
	return t.mgr(h.Kind).Resolve(h)
}

func (t *table) resolveCell(row, col model.Handle) (*header.Header, *header.Header, error) {
	if row.Kind != model.KindRow || col.Kind != model.KindColumn {
		return nil, nil, ErrStaleHandle
	}
	rh, err := t.rows.Resolve(row)
	if err != nil {
		return nil, nil, err
	}
	ch, err := t.cols.Resolve(col)
	if err != nil {
		return nil, nil, err
	}
	return rh, ch, nil
}

func (t *table) touch() { t.modified = time.Now() }

// Len implements tag.Source.
func (t *table) Len(kind model.Kind) int { return t.mgr(kind).Len() }

// IndexOf implements tag.Source.
func (t *table) IndexOf(kind model.Kind, slot uint32) (int, bool) {
	h, ok := t.mgr(kind).BySlot(slot)
	if !ok {
		return 0, false
	}
	return h.Index(), true
}

// SlotAt implements tag.Source.
func (t *table) SlotAt(kind model.Kind, index int) (uint32, bool) {
	h, ok := t.mgr(kind).At(index)
	if !ok {
		return 0, false
	}
	return h.Slot(), true
}

// NumRows implements pk.Source.
func (t *table) NumRows() int { return t.rows.Len() }

// RowAt implements pk.Source.
func (t *table) RowAt(index int) model.Handle {
	h, ok := t.rows.At(index)
	if !ok {
		return model.None
	}
	return h.Handle()
}

// Value implements pk.Source.
func (t *table) Value(row, col model.Handle) (value.Value, error) {
	rh, ch, err := t.resolveCell(row, col)
	if err != nil {
		return value.Value{}, err
	}
	return t.cells.Peek(rh.Offset(), ch.Offset()), nil
}

// RowIndex implements sorter.Source.
func (t *table) RowIndex(row model.Handle) int {
	h, err := t.rows.Resolve(row)
	if err != nil {
		return -1
	}
	return h.Index()
}

// Peek implements sorter.Source.
func (t *table) Peek(row, col model.Handle) value.Value {
	v, _ := t.Value(row, col)
	return v
}

func (t *table) rowByOffset(off model.Offset) model.Handle {
	for h := range t.rows.All() {
		if h.Offset() == off {
			return h.Handle()
		}
	}
	return model.None
}

func (t *table) attach(v *View) { t.views = append(t.views, v) }

// detach reports whether v was the last view.
func (t *table) detach(v *View) bool {
	if i := slices.Index(t.views, v); i >= 0 {
		t.views = slices.Delete(t.views, i, i+1)
	}
	return len(t.views) == 0
}

func (t *table) destroy() {
	t.reg.opts.logger.LogTableDestroyed(t.name, t.rows.Len(), t.cols.Len())
	t.cells.Free()
	t.rows.Reset()
	t.cols.Reset()
	t.rc.Release(t.headerBytes)
	t.headerBytes = 0
}

// fireTrace broadcasts a cell event to every view in attach order. A
// callback returning trace.ErrStop ends the broadcast.
func (t *table) fireTrace(origin *View, ev trace.Event) {
	for _, v := range slices.Clone(t.views) {
		if v.closed {
			continue
		}
		if v.traces.Fire(ev, v != origin) {
			return
		}
	}
}

// fireNotify broadcasts a structural event like fireTrace.
func (t *table) fireNotify(origin *View, ev notify.Event) {
	for _, v := range slices.Clone(t.views) {
		if v.closed {
			continue
		}
		if v.notifiers.Fire(ev, v != origin) {
			return
		}
	}
}

func (t *table) notifyAll(origin *View, kind model.Kind, op notify.Op, hs []*header.Header) {
	for _, h := range hs {
		t.fireNotify(origin, notify.Event{Table: t.name, Kind: kind, Handle: h.Handle(), Op: op})
	}
}

// tagSets returns the distinct tag sets of the attached views.
func (t *table) tagSets() []*tag.Set {
	var sets []*tag.Set
	for _, v := range t.views {
		if !slices.Contains(sets, v.tags) {
			sets = append(sets, v.tags)
		}
	}
	return sets
}

// invalidateKeys marks every key index using col as dirty. A nil col
// invalidates every index, as row creation, deletion and reordering do.
func (t *table) invalidateKeys(col *header.Header) {
	for _, v := range t.views {
		if col == nil || v.keys.IsKey(col.Handle()) {
			v.keys.Invalidate()
		}
	}
}

// updateKeyFlags marks every column designated as key by any view.
func (t *table) updateKeyFlags() {
	for h := range t.cols.All() {
		h.Flags &^= header.FlagPrimaryKey
	}
	for _, v := range t.views {
		for _, c := range v.keys.Columns() {
			if h, err := t.cols.Resolve(c); err == nil {
				h.Flags |= header.FlagPrimaryKey
			}
		}
	}
}

// deleteHeader removes a row or column together with its cells, tag
// memberships and key designations.
func (t *table) deleteHeader(h *header.Header) {
	handle := h.Handle()
	for _, s := range t.tagSets() {
		s.Drop(handle.Kind, h.Slot())
	}
	if handle.Kind == model.KindRow {
		t.cells.ResetRow(h.Offset())
		t.rows.Delete(h)
		t.invalidateKeys(nil)
		return
	}
	t.invalidateKeys(h)
	for _, v := range t.views {
		v.keys.DropColumn(handle)
	}
	t.cells.FreeColumn(h.Offset())
	t.cols.Delete(h)
	t.updateKeyFlags()
}
