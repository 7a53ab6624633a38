package sorter

import (
	"testing"

	"github.com/hupe1980/tabgo/model"
	"github.com/hupe1980/tabgo/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type column map[model.Handle]value.Value

type source map[model.Handle]column

func (s source) Peek(row, col model.Handle) value.Value { return s[col][row] }

// Rows are laid out in slot order.
func (s source) RowIndex(row model.Handle) int { return int(row.Slot) }
func (s source) NumRows() int                  { return len(rows) }
func (s source) RowAt(index int) model.Handle  { return rows[index] }

func handles(kind model.Kind, n int) []model.Handle {
	out := make([]model.Handle, n)
	for i := range out {
		out[i] = model.Handle{Kind: kind, Slot: uint32(i), Gen: 1}
	}
	return out
}

var (
	rows = handles(model.KindRow, 5)
	cols = handles(model.KindColumn, 2)
)

func TestDictionaryCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"x9", "x10", -1},
		{"abc", "ABD", -1},
		{"ABC", "abc", -1},
		{"abc", "abc", 0},
		{"a", "ab", -1},
		{"x01", "x1", -1},
		{"b", "A", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DictionaryCompare(tt.a, tt.b), "%s vs %s", tt.a, tt.b)
		assert.Equal(t, -tt.want, DictionaryCompare(tt.b, tt.a), "%s vs %s", tt.b, tt.a)
	}
}

func TestSortIntegerWithTies(t *testing.T) {
	src := source{cols[1]: {rows[0]: value.Long(5), rows[1]: value.Long(3), rows[2]: value.Long(3)}}
	in := rows[:3]
	out, err := Sort(src, in, Options{Keys: []Key{{Column: cols[1], Type: value.TypeLong}}})
	require.NoError(t, err)
	assert.Equal(t, []model.Handle{rows[1], rows[2], rows[0]}, out)
	assert.Equal(t, handles(model.KindRow, 3), in, "input must not change")
}

func TestEmptyCellsSortLastInBothDirections(t *testing.T) {
	src := source{cols[0]: {rows[0]: value.Long(1), rows[2]: value.Long(2)}}
	in := rows[:4]

	out, err := Sort(src, in, Options{Keys: []Key{{Column: cols[0], Comparator: Integer}}})
	require.NoError(t, err)
	assert.Equal(t, []model.Handle{rows[0], rows[2], rows[1], rows[3]}, out)

	out, err = Sort(src, in, Options{Keys: []Key{{Column: cols[0], Comparator: Integer}}, Decreasing: true})
	require.NoError(t, err)
	assert.Equal(t, []model.Handle{rows[2], rows[0], rows[1], rows[3]}, out)
}

func TestTiesKeepOrderWhenDecreasing(t *testing.T) {
	src := source{cols[0]: {
		rows[0]: value.String("b"), rows[1]: value.String("a"),
		rows[2]: value.String("b"), rows[3]: value.String("a"),
	}}
	out, err := Sort(src, rows[:4], Options{Keys: []Key{{Column: cols[0]}}, Decreasing: true})
	require.NoError(t, err)
	assert.Equal(t, []model.Handle{rows[0], rows[2], rows[1], rows[3]}, out)
}

func TestMultiKey(t *testing.T) {
	src := source{
		cols[0]: {rows[0]: value.String("x"), rows[1]: value.String("y"), rows[2]: value.String("x")},
		cols[1]: {rows[0]: value.Double(2.5), rows[1]: value.Double(1), rows[2]: value.Double(0.5)},
	}
	out, err := Sort(src, rows[:3], Options{Keys: []Key{
		{Column: cols[0], Comparator: ASCII},
		{Column: cols[1], Comparator: Real},
	}})
	require.NoError(t, err)
	assert.Equal(t, []model.Handle{rows[2], rows[0], rows[1]}, out)
}

func TestFrequency(t *testing.T) {
	src := source{cols[0]: {
		rows[0]: value.String("common"), rows[1]: value.String("rare"),
		rows[2]: value.String("common"), rows[3]: value.String("common"),
	}}
	out, err := Sort(src, rows[:4], Options{Keys: []Key{{Column: cols[0], Comparator: Frequency}}})
	require.NoError(t, err)
	assert.Equal(t, []model.Handle{rows[1], rows[0], rows[2], rows[3]}, out)
}

func TestTiesFollowLogicalIndex(t *testing.T) {
	src := source{cols[0]: {rows[0]: value.Long(1), rows[2]: value.Long(1), rows[4]: value.Long(0)}}
	subset := []model.Handle{rows[2], rows[4], rows[0]}
	require.NoError(t, SortInPlace(src, subset, Options{Keys: []Key{{Column: cols[0], Comparator: Integer}}}))
	assert.Equal(t, []model.Handle{rows[4], rows[0], rows[2]}, subset)

	require.NoError(t, SortInPlace(src, subset, Options{Keys: []Key{{Column: cols[0], Comparator: Integer}}, Decreasing: true}))
	assert.Equal(t, []model.Handle{rows[0], rows[2], rows[4]}, subset)
}

func TestFrequencyCountsWholeColumn(t *testing.T) {
	src := source{cols[0]: {
		rows[0]: value.String("x"), rows[1]: value.String("y"),
		rows[2]: value.String("y"), rows[3]: value.String("x"), rows[4]: value.String("x"),
	}}
	// Within the subset both values occur once; in the column "y" is rarer.
	subset := []model.Handle{rows[0], rows[1]}
	require.NoError(t, SortInPlace(src, subset, Options{Keys: []Key{{Column: cols[0], Comparator: Frequency}}}))
	assert.Equal(t, []model.Handle{rows[1], rows[0]}, subset)
}

func TestTimeKeysOutsideNanosecondRange(t *testing.T) {
	parse := func(s string) value.Value {
		v, err := value.Parse(value.TypeTime, s)
		require.NoError(t, err)
		return v
	}
	src := source{cols[0]: {rows[0]: parse("2000-01-01"), rows[1]: parse("1600-01-01"), rows[2]: parse("2300-01-01")}}
	out, err := Sort(src, rows[:3], Options{Keys: []Key{{Column: cols[0], Type: value.TypeTime}}})
	require.NoError(t, err)
	assert.Equal(t, []model.Handle{rows[1], rows[0], rows[2]}, out)
}

func TestCustomAndNoCase(t *testing.T) {
	src := source{cols[0]: {rows[0]: value.String("B"), rows[1]: value.String("a"), rows[2]: value.String("c")}}
	subset := []model.Handle{rows[0], rows[1], rows[2]}
	require.NoError(t, SortInPlace(src, subset, Options{Keys: []Key{{Column: cols[0], Comparator: ASCIINoCase}}}))
	assert.Equal(t, []model.Handle{rows[1], rows[0], rows[2]}, subset)

	byLength := func(a, b value.Value) int { return len(b.Text()) - len(a.Text()) }
	require.NoError(t, SortInPlace(src, subset, Options{Keys: []Key{{Column: cols[0], Comparator: Custom, Compare: byLength}}}))
	assert.Equal(t, []model.Handle{rows[1], rows[0], rows[2]}, subset)

	err := SortInPlace(src, subset, Options{Keys: []Key{{Column: cols[0], Comparator: Custom}}})
	assert.ErrorIs(t, err, ErrNoCompare)
}

func TestParseComparator(t *testing.T) {
	c, err := ParseComparator("nocase")
	require.NoError(t, err)
	assert.Equal(t, ASCIINoCase, c)
	assert.Equal(t, "frequency", Frequency.String())

	_, err = ParseComparator("fuzzy")
	assert.ErrorIs(t, err, ErrUnknownComparator)
}
