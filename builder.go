package tabgo

import (
	"fmt"
	"slices"
)

// =============================================================================
// Table Builder (Immutable)
// =============================================================================

// Define creates a new table builder for the table called name.
//
// The builder is immutable - each method returns a new builder with the updated configuration.
// A builder can be used as a template for several tables.
//
// Example:
//
//	v, err := tabgo.Define("orders").
//	    Column("sku", tabgo.TypeString).
//	    Column("qty", tabgo.TypeLong).
//	    Rows(10).
//	    Key(true, "sku").
//	    Build(reg)
func Define(name string) TableBuilder {
	return TableBuilder{name: name}
}

type columnDef struct {
	label string
	typ   Type
	tags  []string
}

// TableBuilder is an immutable fluent builder for tables.
type TableBuilder struct {
	name    string
	columns []columnDef
	rows    int
	keys    []string
	unique  bool
}

// Column appends a column with a label and type.
func (b TableBuilder) Column(label string, t Type, tags ...string) TableBuilder {
	b.columns = append(slices.Clip(b.columns), columnDef{label: label, typ: t, tags: slices.Clone(tags)})
	return b
}

// Rows sets the number of empty rows created by Build.
func (b TableBuilder) Rows(n int) TableBuilder {
	b.rows = n
	return b
}

// Key designates key columns by label.
func (b TableBuilder) Key(unique bool, labels ...string) TableBuilder {
	b.keys = slices.Clone(labels)
	b.unique = unique
	return b
}

// Build opens the table in reg and adds the defined columns and rows to
// it. When the table exists the columns are appended. On error the
// returned View is closed.
func (b TableBuilder) Build(reg *Registry) (*View, error) {
	v, err := reg.Open(b.name)
	if err != nil {
		return nil, err
	}
	if err := b.apply(v); err != nil {
		_ = v.Close()
		return nil, fmt.Errorf("table %q: %w", b.name, err)
	}
	return v, nil
}

// MustBuild is like Build but panics on error.
func (b TableBuilder) MustBuild(reg *Registry) *View {
	v, err := b.Build(reg)
	if err != nil {
		panic(err)
	}
	return v
}

func (b TableBuilder) apply(v *View) error {
	cols, err := v.AddColumns(len(b.columns))
	if err != nil {
		return err
	}
	byLabel := make(map[string]Handle, len(cols))
	for i, def := range b.columns {
		h := cols[i]
		if err := v.SetLabel(h, def.label); err != nil {
			return err
		}
		if err := v.SetColumnType(h, def.typ); err != nil {
			return err
		}
		for _, name := range def.tags {
			if err := v.AddTag(KindColumn, name, h); err != nil {
				return err
			}
		}
		byLabel[def.label] = h
	}
	if _, err := v.AddRows(b.rows); err != nil {
		return err
	}
	if len(b.keys) == 0 {
		return nil
	}
	keys := make([]Handle, len(b.keys))
	for i, label := range b.keys {
		h, ok := byLabel[label]
		if !ok {
			return fmt.Errorf("%w: key column %q", ErrNotFound, label)
		}
		keys[i] = h
	}
	return v.SetKeys(b.unique, keys...)
}
