package value

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyVersusEmptyString(t *testing.T) {
	var v Value
	assert.True(t, v.IsEmpty())
	assert.Equal(t, "", v.Text())

	s := String("")
	assert.False(t, s.IsEmpty())
	assert.Equal(t, "", s.Text())
	assert.NotEqual(t, v, s)
}

func TestInlineAndHeapText(t *testing.T) {
	short := String("hello")
	assert.True(t, short.IsInline())
	assert.Equal(t, 0, short.Size())

	text := strings.Repeat("x", InlineSize+1)
	long := String(text)
	assert.False(t, long.IsInline())
	assert.Equal(t, text, long.Text())
	assert.Equal(t, len(text), long.Size())

	edge := String(strings.Repeat("y", InlineSize))
	assert.True(t, edge.IsInline())
}

func TestParseCanonicalizes(t *testing.T) {
	tests := []struct {
		typ  Type
		in   string
		want string
	}{
		{TypeLong, " 42 ", "42"},
		{TypeLong, "0x10", "16"},
		{TypeDouble, "1.50", "1.5"},
		{TypeDouble, "1e3", "1000"},
		{TypeBoolean, "yes", "true"},
		{TypeBoolean, "0", "false"},
		{TypeTime, "2024-01-02", "2024-01-02T00:00:00Z"},
		{TypeTime, "0", "1970-01-01T00:00:00Z"},
		{TypeString, " padded ", " padded "},
		{TypeBlob, "\x00\x01", "\x00\x01"},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String()+"/"+tt.in, func(t *testing.T) {
			v, err := Parse(tt.typ, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Text())
			assert.Equal(t, tt.typ, v.Type())

			again, err := Parse(tt.typ, v.Text())
			require.NoError(t, err)
			assert.Equal(t, v, again)
		})
	}
}

func TestParseRejects(t *testing.T) {
	for _, tt := range []struct {
		typ Type
		in  string
	}{
		{TypeLong, "abc"},
		{TypeLong, "1.5"},
		{TypeDouble, "one"},
		{TypeBoolean, "maybe"},
		{TypeTime, "yesterday"},
	} {
		_, err := Parse(tt.typ, tt.in)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSyntax)
		var pe *ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, tt.typ, pe.Type)
	}
}

func TestDoubleRoundTrip(t *testing.T) {
	for _, f := range []float64{
		0.1, 1.0 / 3.0, math.Pi, -2.5e-300, math.MaxFloat64,
		math.SmallestNonzeroFloat64, 123456789.123456789,
	} {
		v := Double(f)
		back, err := Parse(TypeDouble, v.Text())
		require.NoError(t, err)
		got, ok := back.Float64()
		require.True(t, ok)
		assert.Equal(t, f, got)
	}
}

func TestConstructorsMatchParse(t *testing.T) {
	parsed, err := Parse(TypeLong, "5")
	require.NoError(t, err)
	assert.Equal(t, Long(5), parsed)

	parsed, err = Parse(TypeDouble, "0.10")
	require.NoError(t, err)
	assert.Equal(t, Double(0.1), parsed)

	ts := time.Date(2023, 5, 6, 7, 8, 9, 10, time.UTC)
	parsed, err = Parse(TypeTime, Time(ts).Text())
	require.NoError(t, err)
	got, ok := parsed.Time()
	require.True(t, ok)
	assert.True(t, ts.Equal(got))
}

func TestConvert(t *testing.T) {
	v, err := Convert(Long(3), TypeDouble)
	require.NoError(t, err)
	assert.Equal(t, Double(3), v)

	v, err = Convert(Double(4), TypeLong)
	require.NoError(t, err)
	assert.Equal(t, Long(4), v)

	_, err = Convert(Double(4.5), TypeLong)
	assert.ErrorIs(t, err, ErrSyntax)

	v, err = Convert(String("12"), TypeLong)
	require.NoError(t, err)
	assert.Equal(t, Long(12), v)

	v, err = Convert(Bool(true), TypeLong)
	require.NoError(t, err)
	assert.Equal(t, Long(1), v)

	v, err = Convert(Long(7), TypeString)
	require.NoError(t, err)
	assert.Equal(t, String("7"), v)

	v, err = Convert(Empty(), TypeLong)
	require.NoError(t, err)
	assert.True(t, v.IsEmpty())
}

func TestParseType(t *testing.T) {
	for name, want := range map[string]Type{
		"string":  TypeString,
		"str":     TypeString,
		"integer": TypeLong,
		"int":     TypeLong,
		"long":    TypeLong,
		"number":  TypeDouble,
		"num":     TypeDouble,
		"double":  TypeDouble,
		"time":    TypeTime,
		"blob":    TypeBlob,
		"boolean": TypeBoolean,
	} {
		got, err := ParseType(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	for _, bad := range []string{"", "String", "float", "bo"} {
		_, err := ParseType(bad)
		assert.ErrorIs(t, err, ErrUnknownType, bad)
	}
}

func TestKeyDistinguishesTypes(t *testing.T) {
	assert.NotEqual(t, String("1").Key(), Long(1).Key())
	assert.NotEqual(t, Blob([]byte("true")).Key(), Bool(true).Key())
	assert.Equal(t, "", Empty().Key())
}

func TestTimeOutsideNanosecondRange(t *testing.T) {
	for _, text := range []string{"1600-01-01", "2300-01-01", "0001-01-01", "9999-12-31"} {
		v, err := Parse(TypeTime, text)
		require.NoError(t, err, text)
		want, err := time.Parse("2006-01-02", text)
		require.NoError(t, err)

		got, ok := v.Time()
		require.True(t, ok)
		assert.True(t, want.Equal(got), text)

		sec, ok := v.Raw()
		require.True(t, ok)
		assert.Equal(t, want.Unix(), sec, text)
	}

	early, err := Parse(TypeTime, "1600-01-01")
	require.NoError(t, err)
	late, err := Parse(TypeTime, "2000-01-01")
	require.NoError(t, err)
	assert.Equal(t, -1, CompareTime(early, late))

	long, err := Convert(early, TypeLong)
	require.NoError(t, err)
	assert.Equal(t, Long(time.Date(1600, 1, 1, 0, 0, 0, 0, time.UTC).Unix()), long)
}

func TestCompareTimeUsesNanoseconds(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	a := Time(base.Add(100 * time.Nanosecond))
	b := Time(base.Add(200 * time.Nanosecond))
	assert.Equal(t, -1, CompareTime(a, b))
	assert.Equal(t, 1, CompareTime(b, a))
	assert.Equal(t, 0, CompareTime(a, Time(base.Add(100*time.Nanosecond))))

	_, err := Convert(a, TypeLong)
	assert.ErrorIs(t, err, ErrSyntax)
}
