package tabgo

import (
	"github.com/hupe1980/tabgo/model"
	"github.com/hupe1980/tabgo/tag"
)

// AddTag tags rows or columns of one kind. Without handles the tag is only
// declared. The reserved tags "all" and "end" are accepted and ignored.
func (v *View) AddTag(kind Kind, name string, hs ...Handle) error {
	if err := v.check(); err != nil {
		return err
	}
	slots, err := v.slots(kind, hs)
	if err != nil {
		return err
	}
	return v.tags.Add(kind, name, slots...)
}

// RemoveTag untags one row or column.
func (v *View) RemoveTag(h Handle, name string) error {
	if err := v.check(); err != nil {
		return err
	}
	hdr, err := v.t.resolve(h)
	if err != nil {
		return err
	}
	v.tags.Remove(h.Kind, name, hdr.Slot())
	return nil
}

// ForgetTag deletes a tag and all its memberships.
func (v *View) ForgetTag(kind Kind, name string) error {
	if err := v.check(); err != nil {
		return err
	}
	return v.tags.Forget(kind, name)
}

// HasTag reports whether a row or column carries a tag. "all" matches every
// live header and "end" the last one.
func (v *View) HasTag(h Handle, name string) bool {
	return v.hasTag(h.Kind, h, name)
}

// TagExists reports whether a tag is declared or reserved.
func (v *View) TagExists(kind Kind, name string) bool { return v.tags.Exists(kind, name) }

// TaggedRows returns the rows carrying a tag in logical order.
func (v *View) TaggedRows(name string) ([]Handle, error) { return v.tagged(model.KindRow, name) }

// TaggedColumns returns the columns carrying a tag in logical order.
func (v *View) TaggedColumns(name string) ([]Handle, error) {
	return v.tagged(model.KindColumn, name)
}

func (v *View) tagged(kind model.Kind, name string) ([]Handle, error) {
	slots, err := v.tags.Members(kind, name)
	if err != nil {
		return nil, err
	}
	m := v.t.mgr(kind)
	out := make([]Handle, 0, len(slots))
	for _, slot := range slots {
		if h, ok := m.BySlot(slot); ok {
			out = append(out, h.Handle())
		}
	}
	return out, nil
}

// TagNames returns the declared tags of rows or columns in sorted order.
func (v *View) TagNames(kind Kind) []string { return v.tags.Names(kind) }

// TagsOf returns the tags carried by one row or column in sorted order.
func (v *View) TagsOf(h Handle) ([]string, error) {
	hdr, err := v.t.resolve(h)
	if err != nil {
		return nil, err
	}
	return v.tags.TagsOf(h.Kind, hdr.Slot()), nil
}

// ShareTags makes v use the tags of src. Both views must belong to the
// same table. Changes through either view are seen by both.
func (v *View) ShareTags(src *View) error {
	if err := v.check(); err != nil {
		return err
	}
	if err := src.check(); err != nil {
		return err
	}
	if !v.Same(src) {
		return ErrOtherTable
	}
	if v.tags == src.tags {
		return nil
	}
	v.tags.Release()
	v.tags = src.tags.Retain()
	return nil
}

// NewTags gives v a private, empty tag set.
func (v *View) NewTags() error {
	if err := v.check(); err != nil {
		return err
	}
	v.tags.Release()
	v.tags = tag.New(v.t)
	return nil
}

func (v *View) slots(kind model.Kind, hs []Handle) ([]uint32, error) {
	m := v.t.mgr(kind)
	slots := make([]uint32, len(hs))
	for i, h := range hs {
		hdr, err := m.Resolve(h)
		if err != nil {
			return nil, err
		}
		slots[i] = hdr.Slot()
	}
	return slots, nil
}
