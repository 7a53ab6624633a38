// Package header manages the row or column headers of a table: the dense
// logical ordering, stable handles, physical offsets and the label index.
package header

import (
	"errors"
	"fmt"
	"iter"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/tabgo/internal/conv"
	"github.com/hupe1980/tabgo/model"
	"github.com/hupe1980/tabgo/value"
)

var (
	// ErrCapacity is returned when the offset pool cannot grow.
	ErrCapacity = errors.New("capacity exhausted")

	// ErrStale is returned for handles whose header was deleted.
	ErrStale = errors.New("stale handle")

	// ErrRange is returned for out-of-range logical indices.
	ErrRange = errors.New("index out of range")
)

// DefaultGrowthThreshold is the capacity below which the offset pool
// doubles; above it the pool grows in chunks of the same size.
const DefaultGrowthThreshold = 1 << 16

const initialCapacity = 8

// Flags holds per-header attributes.
type Flags uint8

const (
	// FlagPrimaryKey marks a column that takes part in a key designation.
	FlagPrimaryKey Flags = 1 << iota
)

// Header describes one row or column.
type Header struct {
	kind   model.Kind
	slot   uint32
	gen    uint32
	index  int
	offset model.Offset
	label  string

	// Type is the declared value type (columns only).
	Type value.Type
	// Flags holds header attributes.
	Flags Flags
}

// Handle returns the stable handle of h.
func (h *Header) Handle() model.Handle {
	return model.Handle{Kind: h.kind, Slot: h.slot, Gen: h.gen}
}

// Index returns the current logical position of h.
func (h *Header) Index() int { return h.index }

// Offset returns the physical storage slot of h.
func (h *Header) Offset() model.Offset { return h.offset }

// Slot returns the arena slot of h.
func (h *Header) Slot() uint32 { return h.slot }

// Label returns the label of h, or "".
func (h *Header) Label() string { return h.label }

// Reserver approves offset pool growth before it happens.
type Reserver interface {
	Reserve(kind model.Kind, oldCap, newCap int) error
}

// Manager owns every header of one kind.
type Manager struct {
	kind      model.Kind
	arena     []*Header
	gens      []uint32
	freeSlots []uint32
	order     []*Header

	capacity    int
	freeOffsets []model.Offset
	threshold   int
	reserver    Reserver

	labels    map[string]*roaring.Bitmap
	nextLabel int
}

// Option configures a Manager.
type Option func(*Manager)

// WithGrowthThreshold overrides DefaultGrowthThreshold.
func WithGrowthThreshold(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.threshold = n
		}
	}
}

// WithReserver installs a growth approver.
func WithReserver(r Reserver) Option {
	return func(m *Manager) {
		m.reserver = r
	}
}

// NewManager creates an empty manager for the given kind.
func NewManager(kind model.Kind, optFns ...Option) *Manager {
	m := &Manager{
		kind:      kind,
		threshold: DefaultGrowthThreshold,
		labels:    make(map[string]*roaring.Bitmap),
	}
	for _, fn := range optFns {
		fn(m)
	}
	return m
}

// Kind returns the axis managed by m.
func (m *Manager) Kind() model.Kind { return m.kind }

// Len returns the number of live headers.
func (m *Manager) Len() int { return len(m.order) }

// Cap returns the number of physical offsets allocated so far.
func (m *Manager) Cap() int { return m.capacity }

// At returns the header at logical index i.
func (m *Manager) At(i int) (*Header, bool) {
	if i < 0 || i >= len(m.order) {
		return nil, false
	}
	return m.order[i], true
}

// Last returns the header at index Len()-1.
func (m *Manager) Last() (*Header, bool) { return m.At(len(m.order) - 1) }

// All iterates headers in logical order. The ordering must not be mutated
// while iterating.
func (m *Manager) All() iter.Seq[*Header] {
	return func(yield func(*Header) bool) {
		for _, h := range m.order {
			if !yield(h) {
				return
			}
		}
	}
}

// Headers returns a copy of the current ordering.
func (m *Manager) Headers() []*Header {
	out := make([]*Header, len(m.order))
	copy(out, m.order)
	return out
}

// Resolve maps a handle back to its header.
func (m *Manager) Resolve(h model.Handle) (*Header, error) {
	if h.Kind != m.kind {
		return nil, fmt.Errorf("%w: %s is not a %s", ErrStale, h, m.kind)
	}
	if int(h.Slot) >= len(m.arena) || m.arena[h.Slot] == nil || m.gens[h.Slot] != h.Gen {
		return nil, fmt.Errorf("%w: %s", ErrStale, h)
	}
	return m.arena[h.Slot], nil
}

// BySlot returns the live header stored in an arena slot.
func (m *Manager) BySlot(slot uint32) (*Header, bool) {
	if int(slot) >= len(m.arena) || m.arena[slot] == nil {
		return nil, false
	}
	return m.arena[slot], true
}

// Extend appends n new headers to the ordering. Either all n headers are
// created or, when the offset pool cannot grow, none is.
func (m *Manager) Extend(n int) ([]*Header, error) {
	if n <= 0 {
		return nil, nil
	}
	if int64(n) > math.MaxUint32-int64(len(m.order)) {
		return nil, fmt.Errorf("%w: cannot add %d %ss", ErrCapacity, n, m.kind)
	}
	if missing := n - len(m.freeOffsets); missing > 0 {
		if err := m.grow(missing); err != nil {
			return nil, err
		}
	}
	created := make([]*Header, n)
	for i := range created {
		off := m.freeOffsets[len(m.freeOffsets)-1]
		m.freeOffsets = m.freeOffsets[:len(m.freeOffsets)-1]
		h := m.allocSlot()
		h.offset = off
		h.index = len(m.order)
		m.order = append(m.order, h)
		created[i] = h
	}
	return created, nil
}

// nextCapacity applies the growth policy until at least need offsets fit.
func (m *Manager) nextCapacity(need int) int {
	c := m.capacity
	if c == 0 {
		c = initialCapacity
	}
	for c < need {
		if c < m.threshold {
			c *= 2
		} else {
			c += m.threshold
		}
	}
	return c
}

func (m *Manager) grow(missing int) error {
	newCap := m.nextCapacity(m.capacity + missing)
	if _, err := conv.IntToUint32(newCap); err != nil {
		return fmt.Errorf("%w: %w", ErrCapacity, err)
	}
	if m.reserver != nil {
		if err := m.reserver.Reserve(m.kind, m.capacity, newCap); err != nil {
			return err
		}
	}
	// Push in reverse so fresh offsets pop in ascending order.
	for off := newCap - 1; off >= m.capacity; off-- {
		m.freeOffsets = append(m.freeOffsets, model.Offset(off))
	}
	m.capacity = newCap
	return nil
}

func (m *Manager) allocSlot() *Header {
	var slot uint32
	if n := len(m.freeSlots); n > 0 {
		slot = m.freeSlots[n-1]
		m.freeSlots = m.freeSlots[:n-1]
	} else {
		slot = uint32(len(m.arena))
		m.arena = append(m.arena, nil)
		m.gens = append(m.gens, 0)
	}
	m.gens[slot]++
	h := &Header{kind: m.kind, slot: slot, gen: m.gens[slot]}
	m.arena[slot] = h
	return h
}

// Delete removes h from the ordering and returns its physical offset to the
// free pool. Callers reset the cells stored at the returned offset.
func (m *Manager) Delete(h *Header) model.Offset {
	m.UnsetLabel(h)
	i := h.index
	copy(m.order[i:], m.order[i+1:])
	m.order[len(m.order)-1] = nil
	m.order = m.order[:len(m.order)-1]
	for ; i < len(m.order); i++ {
		m.order[i].index = i
	}
	m.arena[h.slot] = nil
	m.freeSlots = append(m.freeSlots, h.slot)
	m.freeOffsets = append(m.freeOffsets, h.offset)
	h.index = -1
	return h.offset
}

// Move relocates the count headers starting at src so that the run begins
// at dst. The relative order of every other header is preserved. It returns
// the moved headers.
func (m *Manager) Move(src, dst, count int) ([]*Header, error) {
	n := len(m.order)
	if count <= 0 {
		return nil, nil
	}
	if src < 0 || dst < 0 || src+count > n || dst+count > n {
		return nil, fmt.Errorf("%w: move %d %ss from %d to %d of %d", ErrRange, count, m.kind, src, dst, n)
	}
	run := make([]*Header, count)
	copy(run, m.order[src:src+count])
	if src == dst {
		return run, nil
	}
	lo, hi := src, dst+count
	if dst < src {
		copy(m.order[dst+count:src+count], m.order[dst:src])
		lo, hi = dst, src+count
	} else {
		copy(m.order[src:dst], m.order[src+count:dst+count])
	}
	copy(m.order[dst:dst+count], run)
	for i := lo; i < hi; i++ {
		m.order[i].index = i
	}
	return run, nil
}

// Reorder installs a complete new ordering. order must be a permutation of
// the live headers.
func (m *Manager) Reorder(order []*Header) error {
	if len(order) != len(m.order) {
		return fmt.Errorf("%w: ordering has %d %ss, table has %d", ErrRange, len(order), m.kind, len(m.order))
	}
	seen := roaring.New()
	for _, h := range order {
		if h == nil || int(h.slot) >= len(m.arena) || m.arena[h.slot] != h {
			return fmt.Errorf("%w: ordering references a deleted %s", ErrStale, m.kind)
		}
		if !seen.CheckedAdd(h.slot) {
			return fmt.Errorf("%w: %s listed twice", ErrRange, h.Handle())
		}
	}
	copy(m.order, order)
	for i, h := range m.order {
		h.index = i
	}
	return nil
}

// Reset drops every header. Handles issued before stay stale forever.
func (m *Manager) Reset() {
	for _, h := range m.order {
		m.arena[h.slot] = nil
		m.freeSlots = append(m.freeSlots, h.slot)
		h.index = -1
	}
	m.order = nil
	m.capacity = 0
	m.freeOffsets = nil
	m.labels = make(map[string]*roaring.Bitmap)
}
