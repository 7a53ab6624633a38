// Package notify observes structural changes of a table: rows and columns
// being created, deleted, moved or relabeled.
package notify

import (
	"errors"
	"strings"

	"github.com/hupe1980/tabgo/internal/dispatch"
	"github.com/hupe1980/tabgo/model"
	"github.com/hupe1980/tabgo/queue"
)

// Op is a bit mask of structural events.
type Op uint8

const (
	// Created fires after rows or columns are added.
	Created Op = 1 << iota
	// Deleted fires before a row or column is removed.
	Deleted
	// Moved fires after rows or columns change position.
	Moved
	// Relabeled fires when a label is set or unset.
	Relabeled

	// All matches every event.
	All = Created | Deleted | Moved | Relabeled
)

var opNames = [...]string{"create", "delete", "move", "relabel"}

// String returns the event names joined by "|".
func (o Op) String() string {
	var names []string
	for i, name := range opNames {
		if o&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, "|")
}

// ErrStop skips the remaining notifiers of the current event.
var ErrStop = dispatch.ErrStop

// ErrNoOps is returned for a Spec without an event mask.
var ErrNoOps = errors.New("notify: no events selected")

// ID identifies a notifier within its Engine.
type ID = dispatch.ID

// Event describes one structural change. A Moved event with a zero Handle
// reports that the whole ordering of Kind was replaced.
type Event struct {
	Table  string
	Kind   model.Kind
	Handle model.Handle
	Op     Op
}

// Spec selects the headers and events a notifier observes. A zero Handle
// and an empty Tag match every header of Kind.
type Spec struct {
	Kind   model.Kind
	Handle model.Handle
	Tag    string
	Ops    Op

	Deferred    bool
	ForeignOnly bool
}

// Callback receives notifications.
type Callback func(Event) error

// TagFunc reports whether a header carries a tag.
type TagFunc func(kind model.Kind, h model.Handle, tag string) bool

// Engine holds the notifiers of one view.
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

// Add registers a notifier.
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
	if spec.Kind != ev.Kind || spec.Ops&ev.Op == 0 {
		return false
	}
	if ev.Handle.IsZero() {
		return true
	}
	if !spec.Handle.IsZero() && spec.Handle != ev.Handle {
		return false
	}
	if spec.Tag != "" && (e.hasTag == nil || !e.hasTag(ev.Kind, ev.Handle, spec.Tag)) {
		return false
	}
	return true
}

// Remove deletes a notifier and cancels its pending callback.
func (e *Engine) Remove(id ID) bool {
	delete(e.specs, id)
	return e.list.Remove(id)
}

// Info returns the Spec of a notifier.
func (e *Engine) Info(id ID) (Spec, bool) {
	s, ok := e.specs[id]
	return s, ok
}

// IDs lists the notifiers in registration order.
func (e *Engine) IDs() []ID { return e.list.IDs() }

// Fire dispatches ev. It reports true when a callback stopped dispatch.
func (e *Engine) Fire(ev Event, foreign bool) bool {
	if e.list.Len() == 0 {
		return false
	}
	return e.list.Fire(ev, foreign)
}

// Close removes every notifier.
func (e *Engine) Close() {
	e.list.Clear()
	clear(e.specs)
}
