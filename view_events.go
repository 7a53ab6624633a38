package tabgo

import (
	"github.com/hupe1980/tabgo/notify"
	"github.com/hupe1980/tabgo/tag"
	"github.com/hupe1980/tabgo/trace"
)

// Trace registers a cell observer. Traces of every view of the table
// fire, in attach order and then registration order. A running trace is
// not started again for events it causes itself.
//
// Example:
//
//	id, err := v.Trace(trace.Spec{Column: price, Ops: trace.Write}, func(ev trace.Event) error {
//	    p, _ := v.Get(ev.Row, price)
//	    q, _ := v.Get(ev.Row, qty)
//	    pf, _ := p.Number()
//	    qf, _ := q.Number()
//	    return v.Set(ev.Row, total, value.Double(pf*qf))
//	})
func (v *View) Trace(spec trace.Spec, fn trace.Callback) (trace.ID, error) {
	if err := v.check(); err != nil {
		return 0, err
	}
	for _, name := range []string{spec.RowTag, spec.ColumnTag} {
		if name == "" {
			continue
		}
		if err := tag.Validate(name); err != nil {
			return 0, err
		}
	}
	return v.traces.Add(spec, fn)
}

// Untrace removes a trace and cancels its pending deferred call.
func (v *View) Untrace(id trace.ID) bool { return v.traces.Remove(id) }

// TraceInfo returns the registration of a trace.
func (v *View) TraceInfo(id trace.ID) (trace.Spec, bool) { return v.traces.Info(id) }

// Traces lists the traces of v in registration order.
func (v *View) Traces() []trace.ID { return v.traces.IDs() }

// Notify registers a structural observer. Like traces, notifiers of every
// view of the table receive every event.
func (v *View) Notify(spec notify.Spec, fn notify.Callback) (notify.ID, error) {
	if err := v.check(); err != nil {
		return 0, err
	}
	if spec.Tag != "" {
		if err := tag.Validate(spec.Tag); err != nil {
			return 0, err
		}
	}
	return v.notifiers.Add(spec, fn)
}

// Unnotify removes a notifier and cancels its pending deferred call.
func (v *View) Unnotify(id notify.ID) bool { return v.notifiers.Remove(id) }

// NotifyInfo returns the registration of a notifier.
func (v *View) NotifyInfo(id notify.ID) (notify.Spec, bool) { return v.notifiers.Info(id) }

// Notifiers lists the notifiers of v in registration order.
func (v *View) Notifiers() []notify.ID { return v.notifiers.IDs() }
