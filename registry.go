package tabgo

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hupe1980/tabgo/model"
	"github.com/hupe1980/tabgo/queue"
	"github.com/hupe1980/tabgo/resource"
)

// Registry owns the named tables of one session. Opening a name that is
// already in use attaches a new View to the existing table.
//
// A Registry and its Views are not safe for concurrent use.
type Registry struct {
	opts   options
	tables map[string]*table
	idle   *queue.Idle
}

// NewRegistry creates an empty Registry.
//
// Example:
//
//	reg := tabgo.NewRegistry(
//	    tabgo.WithLogger(tabgo.NewTextLogger(slog.LevelInfo)),
//	    tabgo.WithMemoryLimit(64<<20),
//	)
//	v, err := reg.Open("orders")
func NewRegistry(optFns ...Option) *Registry {
	opts := applyOptions(optFns)
	r := &Registry{
		opts:   opts,
		tables: make(map[string]*table),
	}
	if r.opts.scheduler == nil {
		r.idle = queue.NewIdle()
		r.opts.scheduler = r.idle
	}
	return r
}

// Open returns a new View of the table called name, creating the table
// when it does not exist yet.
func (r *Registry) Open(name string) (*View, error) {
	if err := model.ValidateName(name); err != nil {
		return nil, fmt.Errorf("table %q: %w", name, err)
	}
	t, ok := r.tables[name]
	if !ok {
		t = newTable(r, name)
		r.tables[name] = t
		r.opts.logger.LogTableCreated(name)
	}
	v := newView(t)
	t.attach(v)
	return v, nil
}

// Exists reports whether a table called name is open.
func (r *Registry) Exists(name string) bool {
	_, ok := r.tables[name]
	return ok
}

// Names returns the open tables in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Update runs every deferred callback scheduled so far and returns how
// many ran. It is the quiescent point of the default scheduler; hosts
// call it once per event loop turn. With WithScheduler it returns 0.
func (r *Registry) Update() int {
	if r.idle == nil {
		return 0
	}
	return r.idle.Drain()
}

// Pending returns the number of deferred callbacks waiting for Update.
func (r *Registry) Pending() int {
	if r.idle == nil {
		return 0
	}
	return r.idle.Len()
}

// Resources returns the controller accounting the memory of every table.
func (r *Registry) Resources() *resource.Controller { return r.opts.resources }

// Close closes every View of every table.
func (r *Registry) Close() error {
	var errs []error
	for _, name := range r.Names() {
		t, ok := r.tables[name]
		if !ok {
			continue
		}
		for _, v := range slices.Clone(t.views) {
			errs = append(errs, v.Close())
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) drop(t *table) {
	if r.tables[t.name] == t {
		delete(r.tables, t.name)
	}
}
