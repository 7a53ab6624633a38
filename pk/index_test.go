package pk

import (
	"errors"
	"testing"

	"github.com/hupe1980/tabgo/model"
	"github.com/hupe1980/tabgo/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStale = errors.New("stale")

type grid struct {
	rows  []model.Handle
	cols  []model.Handle
	cells map[[2]model.Handle]value.Value
}

func newGrid(nrows, ncols int) *grid {
	g := &grid{cells: make(map[[2]model.Handle]value.Value)}
	for i := range nrows {
		g.rows = append(g.rows, model.Handle{Kind: model.KindRow, Slot: uint32(i), Gen: 1})
	}
	for i := range ncols {
		g.cols = append(g.cols, model.Handle{Kind: model.KindColumn, Slot: uint32(i), Gen: 1})
	}
	return g
}

func (g *grid) set(row, col int, v value.Value) { g.cells[[2]model.Handle{g.rows[row], g.cols[col]}] = v }

func (g *grid) NumRows() int                  { return len(g.rows) }
func (g *grid) RowAt(index int) model.Handle { return g.rows[index] }

func (g *grid) Value(row, col model.Handle) (value.Value, error) {
	if col.Slot >= uint32(len(g.cols)) {
		return value.Value{}, errStale
	}
	return g.cells[[2]model.Handle{row, col}], nil
}

func TestLookupComposite(t *testing.T) {
	g := newGrid(3, 2)
	g.set(0, 0, value.String("a"))
	g.set(0, 1, value.Long(1))
	g.set(1, 0, value.String("a"))
	g.set(1, 1, value.Long(2))
	g.set(2, 0, value.String("b"))
	g.set(2, 1, value.Long(1))

	x := New()
	x.Designate(g.cols, true)
	assert.True(t, x.Dirty())

	row, err := x.Lookup(g, []value.Value{value.String("a"), value.Long(2)})
	require.NoError(t, err)
	assert.Equal(t, g.rows[1], row)
	assert.True(t, x.Built())
	assert.Equal(t, 3, x.Len())

	row, err = x.Lookup(g, []value.Value{value.String("b"), value.Long(1)})
	require.NoError(t, err)
	assert.Equal(t, g.rows[2], row)

	_, err = x.Lookup(g, []value.Value{value.String("b"), value.Long(2)})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = x.Lookup(g, []value.Value{value.String("z"), value.Long(1)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookupErrors(t *testing.T) {
	g := newGrid(1, 2)
	x := New()
	_, err := x.Lookup(g, nil)
	assert.ErrorIs(t, err, ErrNoKeys)

	x.Designate(g.cols, false)
	_, err = x.Lookup(g, []value.Value{value.String("a")})
	var ae *ArityError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 2, ae.Want)
	assert.Equal(t, 1, ae.Got)
}

func TestUniqueDuplicateLeavesIndexAbsent(t *testing.T) {
	g := newGrid(2, 1)
	g.set(0, 0, value.String("same"))
	g.set(1, 0, value.String("same"))

	x := New()
	x.Designate(g.cols[:1], true)
	_, err := x.Lookup(g, []value.Value{value.String("same")})
	var de *DuplicateKeyError
	require.ErrorAs(t, err, &de)
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.Equal(t, g.rows[0], de.First)
	assert.Equal(t, g.rows[1], de.Second)
	assert.False(t, x.Built())
	assert.True(t, x.Dirty())
	assert.Equal(t, 0, x.Len())

	// Fixing the data makes the next lookup succeed.
	g.set(1, 0, value.String("other"))
	x.Invalidate()
	row, err := x.Lookup(g, []value.Value{value.String("other")})
	require.NoError(t, err)
	assert.Equal(t, g.rows[1], row)
}

func TestNonUniqueFirstRowWins(t *testing.T) {
	g := newGrid(3, 1)
	g.set(0, 0, value.Long(7))
	g.set(1, 0, value.Long(7))

	x := New()
	x.Designate(g.cols, false)
	row, err := x.Lookup(g, []value.Value{value.Long(7)})
	require.NoError(t, err)
	assert.Equal(t, g.rows[0], row)
	assert.Equal(t, 1, x.Len())
}

func TestEmptyKeyCellsAreSkipped(t *testing.T) {
	g := newGrid(2, 2)
	g.set(0, 0, value.String("a"))
	g.set(1, 0, value.String("a"))
	g.set(1, 1, value.String("x"))

	x := New()
	x.Designate(g.cols, true)
	row, err := x.Lookup(g, []value.Value{value.String("a"), value.String("x")})
	require.NoError(t, err)
	assert.Equal(t, g.rows[1], row)
}

func TestInvalidateRebuildsWithNewValues(t *testing.T) {
	g := newGrid(1, 1)
	g.set(0, 0, value.String("old"))
	x := New()
	x.Designate(g.cols, true)
	_, err := x.Lookup(g, []value.Value{value.String("old")})
	require.NoError(t, err)

	g.set(0, 0, value.String("new"))
	x.Invalidate()
	_, err = x.Lookup(g, []value.Value{value.String("old")})
	assert.ErrorIs(t, err, ErrNotFound)
	row, err := x.Lookup(g, []value.Value{value.String("new")})
	require.NoError(t, err)
	assert.Equal(t, g.rows[0], row)
}

func TestDropColumnAndClear(t *testing.T) {
	g := newGrid(1, 2)
	x := New()
	x.Designate(g.cols, false)
	assert.True(t, x.IsKey(g.cols[1]))

	x.DropColumn(g.cols[1])
	assert.Equal(t, g.cols[:1], x.Columns())
	assert.False(t, x.IsKey(g.cols[1]))

	x.Clear()
	assert.Empty(t, x.Columns())
	assert.False(t, x.Dirty())
}

func TestRebuildPropagatesSourceErrors(t *testing.T) {
	g := newGrid(1, 1)
	g.set(0, 0, value.Long(1))
	x := New()
	x.Designate([]model.Handle{{Kind: model.KindColumn, Slot: 9, Gen: 1}}, false)
	err := x.Rebuild(g)
	assert.ErrorIs(t, err, errStale)
	assert.True(t, x.Dirty())
}
