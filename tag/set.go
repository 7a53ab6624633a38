package tag

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/tabgo/model"
)

// Reserved tag names.
const (
	All = "all"
	End = "end"
)

// ErrUnknown is returned when a tag does not exist.
var ErrUnknown = errors.New("unknown tag")

// Source exposes the header ordering a Set resolves against.
type Source interface {
	Len(kind model.Kind) int
	IndexOf(kind model.Kind, slot uint32) (int, bool)
	SlotAt(kind model.Kind, index int) (uint32, bool)
}

// IsReserved reports whether name is "all" or "end".
func IsReserved(name string) bool { return name == All || name == End }

// Validate checks that name can be used as a tag.
func Validate(name string) error {
	return model.ValidateName(name)
}

// Set holds the row and column tags of one or more views.
type Set struct {
	src  Source
	tags [2]map[string]*roaring.Bitmap
	refs int
}

// New creates an empty Set with one reference.
func New(src Source) *Set {
	return &Set{
		src:  src,
		tags: [2]map[string]*roaring.Bitmap{{}, {}},
		refs: 1,
	}
}

// Retain adds a reference and returns s.
func (s *Set) Retain() *Set {
	s.refs++
	return s
}

// Release drops a reference. It reports true when the last reference was
// dropped and the Set cleared.
func (s *Set) Release() bool {
	s.refs--
	if s.refs > 0 {
		return false
	}
	s.tags = [2]map[string]*roaring.Bitmap{{}, {}}
	return true
}

// Refs returns the reference count.
func (s *Set) Refs() int { return s.refs }

// Add tags every slot with name. Without slots the tag is only declared.
// Reserved names are accepted and ignored.
func (s *Set) Add(kind model.Kind, name string, slots ...uint32) error {
	if err := Validate(name); err != nil {
		return err
	}
	if IsReserved(name) {
		return nil
	}
	bm, ok := s.tags[kind][name]
	if !ok {
		bm = roaring.New()
		s.tags[kind][name] = bm
	}
	bm.AddMany(slots)
	return nil
}

// Remove untags a slot. The tag itself stays declared.
func (s *Set) Remove(kind model.Kind, name string, slot uint32) {
	if bm, ok := s.tags[kind][name]; ok {
		bm.Remove(slot)
	}
}

// Forget deletes a tag and all its memberships.
func (s *Set) Forget(kind model.Kind, name string) error {
	if IsReserved(name) {
		return nil
	}
	if _, ok := s.tags[kind][name]; !ok {
		return fmt.Errorf("%w: %s tag %q", ErrUnknown, kind, name)
	}
	delete(s.tags[kind], name)
	return nil
}

// Drop removes a slot from every tag, typically because its header was
// deleted.
func (s *Set) Drop(kind model.Kind, slot uint32) {
	for _, bm := range s.tags[kind] {
		bm.Remove(slot)
	}
}

// Exists reports whether name is reserved or declared.
func (s *Set) Exists(kind model.Kind, name string) bool {
	if IsReserved(name) {
		return true
	}
	_, ok := s.tags[kind][name]
	return ok
}

// Has reports whether slot carries the tag.
func (s *Set) Has(kind model.Kind, slot uint32, name string) bool {
	switch name {
	case All:
		_, ok := s.src.IndexOf(kind, slot)
		return ok
	case End:
		i, ok := s.src.IndexOf(kind, slot)
		return ok && i == s.src.Len(kind)-1
	}
	bm, ok := s.tags[kind][name]
	return ok && bm.Contains(slot)
}

// Members returns the slots carrying name in logical order.
func (s *Set) Members(kind model.Kind, name string) ([]uint32, error) {
	switch name {
	case All:
		n := s.src.Len(kind)
		out := make([]uint32, 0, n)
		for i := range n {
			if slot, ok := s.src.SlotAt(kind, i); ok {
				out = append(out, slot)
			}
		}
		return out, nil
	case End:
		slot, ok := s.src.SlotAt(kind, s.src.Len(kind)-1)
		if !ok {
			return nil, nil
		}
		return []uint32{slot}, nil
	}
	bm, ok := s.tags[kind][name]
	if !ok {
		return nil, fmt.Errorf("%w: %s tag %q", ErrUnknown, kind, name)
	}
	type member struct {
		slot  uint32
		index int
	}
	members := make([]member, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		slot := it.Next()
		if i, ok := s.src.IndexOf(kind, slot); ok {
			members = append(members, member{slot, i})
		}
	}
	slices.SortFunc(members, func(a, b member) int { return cmp.Compare(a.index, b.index) })
	out := make([]uint32, len(members))
	for i, m := range members {
		out[i] = m.slot
	}
	return out, nil
}

// Names returns the declared tags of an axis in sorted order.
func (s *Set) Names(kind model.Kind) []string {
	names := make([]string, 0, len(s.tags[kind]))
	for name := range s.tags[kind] {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// TagsOf returns the declared tags carried by slot in sorted order.
func (s *Set) TagsOf(kind model.Kind, slot uint32) []string {
	var names []string
	for name, bm := range s.tags[kind] {
		if bm.Contains(slot) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}
