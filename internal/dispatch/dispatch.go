// Package dispatch implements the observer lists behind traces and
// notifiers.
//
// Every registration is either idle or active. A registration is active
// while its callback runs; events that would invoke it again in that window
// are skipped. Deferred registrations capture the event and run once from
// the scheduler; further events are coalesced while one is pending.
package dispatch

import (
	"errors"

	"github.com/hupe1980/tabgo/queue"
)

// ErrStop may be returned by a callback to skip the remaining observers of
// the current event.
var ErrStop = errors.New("stop dispatch")

// ID identifies a registration within its List.
type ID uint64

// Options control how a registration is invoked.
type Options struct {
	// Deferred runs the callback from the scheduler instead of inline.
	Deferred bool
	// ForeignOnly ignores events caused by the owner of the List.
	ForeignOnly bool
}

type registration[E any] struct {
	id      ID
	match   func(E) bool
	fn      func(E) error
	opts    Options
	active  bool
	removed bool
	pending queue.TaskID
}

// List is an ordered set of registrations for events of type E.
type List[E any] struct {
	sched   queue.Scheduler
	onError func(error)
	regs    []*registration[E]
	nextID  ID
}

// NewList creates a List. Deferred callbacks are queued on sched; callback
// errors other than ErrStop are passed to onError.
func NewList[E any](sched queue.Scheduler, onError func(error)) *List[E] {
	if onError == nil {
		onError = func(error) {}
	}
	return &List[E]{sched: sched, onError: onError}
}

// Add appends a registration. A nil match accepts every event.
func (l *List[E]) Add(match func(E) bool, fn func(E) error, opts Options) ID {
	l.nextID++
	l.regs = append(l.regs, &registration[E]{
		id:    l.nextID,
		match: match,
		fn:    fn,
		opts:  opts,
	})
	return l.nextID
}

// Remove deletes a registration and cancels its pending callback.
func (l *List[E]) Remove(id ID) bool {
	for i, r := range l.regs {
		if r.id == id {
			l.drop(r)
			l.regs = append(l.regs[:i], l.regs[i+1:]...)
			return true
		}
	}
	return false
}

// Clear removes every registration.
func (l *List[E]) Clear() {
	for _, r := range l.regs {
		l.drop(r)
	}
	l.regs = nil
}

func (l *List[E]) drop(r *registration[E]) {
	r.removed = true
	if r.pending != 0 && l.sched != nil {
		l.sched.Cancel(r.pending)
	}
	r.pending = 0
}

// Len returns the number of registrations.
func (l *List[E]) Len() int { return len(l.regs) }

// IDs returns the registration ids in registration order.
func (l *List[E]) IDs() []ID {
	ids := make([]ID, len(l.regs))
	for i, r := range l.regs {
		ids[i] = r.id
	}
	return ids
}

// Active reports whether the callback of id is running.
func (l *List[E]) Active(id ID) bool {
	for _, r := range l.regs {
		if r.id == id {
			return r.active
		}
	}
	return false
}

// Pending reports whether id has a deferred callback queued.
func (l *List[E]) Pending(id ID) bool {
	for _, r := range l.regs {
		if r.id == id {
			return r.pending != 0
		}
	}
	return false
}

// Fire offers ev to every registration in order. foreign tells whether the
// event was caused by someone other than the owner of the List. It reports
// true when a callback returned ErrStop.
func (l *List[E]) Fire(ev E, foreign bool) bool {
	// Callbacks may add or remove registrations.
	regs := append([]*registration[E](nil), l.regs...)
	for _, r := range regs {
		if r.removed || r.active {
			continue
		}
		if r.opts.ForeignOnly && !foreign {
			continue
		}
		if r.match != nil && !r.match(ev) {
			continue
		}
		if r.opts.Deferred && l.sched != nil {
			l.schedule(r, ev)
			continue
		}
		if l.invoke(r, ev) {
			return true
		}
	}
	return false
}

func (l *List[E]) schedule(r *registration[E], ev E) {
	if r.pending != 0 {
		return
	}
	r.pending = l.sched.Schedule(func() {
		r.pending = 0
		if r.removed || r.active {
			return
		}
		l.invoke(r, ev)
	})
}

func (l *List[E]) invoke(r *registration[E], ev E) bool {
	r.active = true
	err := func() error {
		defer func() { r.active = false }()
		return r.fn(ev)
	}()
	if err == nil {
		return false
	}
	if errors.Is(err, ErrStop) {
		return true
	}
	l.onError(err)
	return false
}
