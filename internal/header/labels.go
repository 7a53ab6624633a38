package header

import (
	"iter"
	"strconv"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/tabgo/model"
)

// SetLabel associates label with h, replacing any previous label.
// Labels need not be unique.
func (m *Manager) SetLabel(h *Header, label string) error {
	if err := model.ValidateName(label); err != nil {
		return err
	}
	if h.label == label {
		return nil
	}
	m.UnsetLabel(h)
	bm, ok := m.labels[label]
	if !ok {
		bm = roaring.New()
		m.labels[label] = bm
	}
	bm.Add(h.slot)
	h.label = label
	return nil
}

// UnsetLabel removes the label of h. The label entry disappears with its
// last header.
func (m *Manager) UnsetLabel(h *Header) {
	if h.label == "" {
		return
	}
	if bm, ok := m.labels[h.label]; ok {
		bm.Remove(h.slot)
		if bm.IsEmpty() {
			delete(m.labels, h.label)
		}
	}
	h.label = ""
}

// AutoLabel assigns the next free generated label ("r0", "r1", ... or
// "c0", "c1", ...) to h.
func (m *Manager) AutoLabel(h *Header) string {
	prefix := string(m.kind.Letter())
	for {
		label := prefix + strconv.Itoa(m.nextLabel)
		m.nextLabel++
		if _, used := m.labels[label]; used {
			continue
		}
		// Generated labels always validate.
		_ = m.SetLabel(h, label)
		return label
	}
}

// Find returns a header carrying label. When several headers share the
// label, the one with the lowest arena slot wins.
func (m *Manager) Find(label string) (*Header, bool) {
	bm, ok := m.labels[label]
	if !ok || bm.IsEmpty() {
		return nil, false
	}
	return m.arena[bm.Minimum()], true
}

// FindAll iterates every header carrying label.
func (m *Manager) FindAll(label string) iter.Seq[*Header] {
	return func(yield func(*Header) bool) {
		bm, ok := m.labels[label]
		if !ok {
			return
		}
		it := bm.Iterator()
		for it.HasNext() {
			if !yield(m.arena[it.Next()]) {
				return
			}
		}
	}
}

// Labels returns the number of distinct labels in use.
func (m *Manager) Labels() int { return len(m.labels) }
