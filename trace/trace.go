// Package trace observes reads and writes of table cells.
package trace

import (
	"errors"
	"strings"

	"github.com/hupe1980/tabgo/internal/dispatch"
	"github.com/hupe1980/tabgo/model"
	"github.com/hupe1980/tabgo/queue"
)

// Op is a bit mask of cell operations.
type Op uint8

const (
	// Read fires when a cell is read.
	Read Op = 1 << iota
	// Write fires on every cell assignment.
	Write
	// Create fires together with Write when the cell was empty.
	Create
	// Unset fires when a cell is cleared.
	Unset

	// All matches every operation.
	All = Read | Write | Create | Unset
)

// String renders the mask using the letters r, w, c and u.
func (o Op) String() string {
	var sb strings.Builder
	for _, f := range []struct {
		op     Op
		letter byte
	}{{Read, 'r'}, {Write, 'w'}, {Create, 'c'}, {Unset, 'u'}} {
		if o&f.op != 0 {
			sb.WriteByte(f.letter)
		}
	}
	return sb.String()
}

// ParseOps parses a mask written with the letters r, w, c and u.
func ParseOps(s string) (Op, error) {
	var o Op
	for i := range len(s) {
		switch s[i] {
		case 'r':
			o |= Read
		case 'w':
			o |= Write
		case 'c':
			o |= Create
		case 'u':
			o |= Unset
		default:
			return 0, ErrNoOps
		}
	}
	if o == 0 {
		return 0, ErrNoOps
	}
	return o, nil
}

// ErrStop skips the remaining traces of the current event.
var ErrStop = dispatch.ErrStop

// ErrNoOps is returned for a Spec without a valid operation mask.
var ErrNoOps = errors.New("trace: no operations selected")

// ID identifies a trace within its Engine.
type ID = dispatch.ID

// Event describes one traced cell operation.
type Event struct {
	Table  string
	Row    model.Handle
	Column model.Handle
	Op     Op
}

// Spec selects the cells and operations a trace observes. Zero handles and
// empty tags match anything.
type Spec struct {
	Row       model.Handle
	Column    model.Handle
	RowTag    string
	ColumnTag string
	Ops       Op

	Deferred    bool
	ForeignOnly bool
}

// Callback receives trace events. Returning ErrStop skips the remaining
// traces of the event; other errors are reported and ignored.
type Callback func(Event) error

// TagFunc reports whether a header carries a tag.
type TagFunc func(kind model.Kind, h model.Handle, tag string) bool

// Engine holds the traces of one view.
type Engine struct {
	list   *dispatch.List[Event]
	specs  map[ID]Spec
	hasTag TagFunc
}

// NewEngine creates an Engine.
func NewEngine(sched queue.Scheduler, onError func(error), hasTag TagFunc) *Engine {
	return &Engine{
		list:   dispatch.NewList[Event](sched, onError),
		specs:  make(map[ID]Spec),
		hasTag: hasTag,
	}
}

// Add registers a trace.
func (e *Engine) Add(spec Spec, fn Callback) (ID, error) {
	if spec.Ops&All == 0 {
		return 0, ErrNoOps
	}
	id := e.list.Add(func(ev Event) bool { return e.match(spec, ev) }, fn, dispatch.Options{
		Deferred:    spec.Deferred,
		ForeignOnly: spec.ForeignOnly,
	})
	e.specs[id] = spec
	return id, nil
}

func (e *Engine) match(spec Spec, ev Event) bool {
	if spec.Ops&ev.Op == 0 {
		return false
	}
	if !spec.Row.IsZero() && spec.Row != ev.Row {
		return false
	}
	if !spec.Column.IsZero() && spec.Column != ev.Column {
		return false
	}
	if spec.RowTag != "" && (e.hasTag == nil || !e.hasTag(model.KindRow, ev.Row, spec.RowTag)) {
		return false
	}
	if spec.ColumnTag != "" && (e.hasTag == nil || !e.hasTag(model.KindColumn, ev.Column, spec.ColumnTag)) {
		return false
	}
	return true
}

// Remove deletes a trace and cancels its pending callback.
func (e *Engine) Remove(id ID) bool {
	delete(e.specs, id)
	return e.list.Remove(id)
}

// Info returns the Spec of a trace.
func (e *Engine) Info(id ID) (Spec, bool) {
	s, ok := e.specs[id]
	return s, ok
}

// IDs lists the traces in registration order.
func (e *Engine) IDs() []ID { return e.list.IDs() }

// Fire dispatches ev. It reports true when a callback stopped dispatch.
func (e *Engine) Fire(ev Event, foreign bool) bool {
	if e.list.Len() == 0 {
		return false
	}
	return e.list.Fire(ev, foreign)
}

// Close removes every trace.
func (e *Engine) Close() {
	e.list.Clear()
	clear(e.specs)
}
