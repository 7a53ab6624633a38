package tabgo

import (
	"testing"

	"github.com/hupe1980/tabgo/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderIsImmutable(t *testing.T) {
	base := Define("orders").Column("sku", TypeString, "id")
	withQty := base.Column("qty", TypeLong)
	withPrice := base.Column("price", TypeDouble)

	reg := NewRegistry()
	v, err := withQty.Rows(2).Key(true, "sku").Build(reg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = v.Close() })

	assert.Equal(t, []string{"sku", "qty"}, labelsOf(t, v, v.Columns()))
	assert.Equal(t, 2, v.NumRows())
	qty, err := v.FindColumn("qty")
	require.NoError(t, err)
	typ, err := v.ColumnType(qty)
	require.NoError(t, err)
	assert.Equal(t, TypeLong, typ)

	sku, err := v.FindColumn("sku")
	require.NoError(t, err)
	assert.True(t, v.HasTag(sku, "id"))
	assert.Equal(t, []Handle{sku}, v.Keys())

	other, err := withPrice.Build(NewRegistry())
	require.NoError(t, err)
	t.Cleanup(func() { _ = other.Close() })
	assert.Equal(t, []string{"sku", "price"}, labelsOf(t, other, other.Columns()))
}

func TestBuilderErrors(t *testing.T) {
	reg := NewRegistry()
	_, err := Define("t").Column("a", TypeString).Key(false, "missing").Build(reg)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, reg.Exists("t"))

	_, err = Define("t").Column("1", TypeString).Build(reg)
	assert.ErrorIs(t, err, ErrInvalidName)

	assert.Panics(t, func() { Define("").MustBuild(reg) })
}

func TestBuilderLookup(t *testing.T) {
	v := Define("stock").
		Column("sku", TypeString).
		Column("qty", TypeLong).
		Rows(2).
		Key(true, "sku").
		MustBuild(NewRegistry())
	t.Cleanup(func() { _ = v.Close() })

	sku, _ := v.FindColumn("sku")
	rows := v.Rows()
	require.NoError(t, v.SetText(rows[0], sku, "A-1"))
	require.NoError(t, v.SetText(rows[1], sku, "B-2"))

	row, err := v.LookupKey(value.String("B-2"))
	require.NoError(t, err)
	assert.Equal(t, rows[1], row)
}
