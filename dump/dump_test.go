package dump

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/hupe1980/tabgo/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteSplitRoundTrip(t *testing.T) {
	for _, s := range []string{
		"", "plain", "two words", "{braced}", "unbalanced {", "}", `back\slash`,
		"line\nbreak", `"quoted"`, "#hash", "tab\there", "a;b", "$var", "[cmd]", "trailing\\",
		"\xff\\\xfe", "\x00 {\x80", "\xc3\x28 }", "caf\xc3\xa9 \\",
	} {
		list := Join("x", s, "y")
		got, err := Split(list)
		require.NoError(t, err, list)
		assert.Equal(t, []string{"x", s, "y"}, got, list)
	}
}

func TestQuoteForms(t *testing.T) {
	assert.Equal(t, "{}", Quote(""))
	assert.Equal(t, "abc", Quote("abc"))
	assert.Equal(t, "{a b}", Quote("a b"))
	assert.Equal(t, `a\ \{`, Quote("a {"))
}

func TestSplit(t *testing.T) {
	got, err := Split(`a {b {c d}} "e f" g\ h`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b {c d}", "e f", "g h"}, got)

	_, err = Split("a {b")
	assert.ErrorIs(t, err, errIncomplete)
	_, err = Split(`"open`)
	assert.ErrorIs(t, err, errIncomplete)
	_, err = Split("{a}b")
	assert.Error(t, err)
}

func TestEncodeDecode(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	require.NoError(t, enc.WriteHeader(Header{Rows: 2, Columns: 1, Created: 10, Modified: 20}))
	require.NoError(t, enc.WriteColumn(Column{Index: 0, Label: "name", Type: value.TypeString, Tags: []string{"key"}}))
	require.NoError(t, enc.WriteRow(Row{Index: 0, Label: "r0", Tags: []string{"a", "b c"}}))
	require.NoError(t, enc.WriteRow(Row{Index: 1, Label: "r1"}))
	require.NoError(t, enc.WriteCell(Cell{Row: 1, Column: 0, Text: "multi\nline {"}))
	require.NoError(t, enc.Flush())

	dec := NewDecoder(&buf, "test", 0)
	var recs []Record
	for {
		rec, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		recs = append(recs, rec)
	}
	require.Len(t, recs, 5)
	assert.Equal(t, &Header{Rows: 2, Columns: 1, Created: 10, Modified: 20, Line: 1}, recs[0])
	assert.Equal(t, &Column{Index: 0, Label: "name", Type: value.TypeString, Tags: []string{"key"}, Line: 2}, recs[1])
	assert.Equal(t, &Row{Index: 0, Label: "r0", Tags: []string{"a", "b c"}, Line: 3}, recs[2])
	assert.Equal(t, &Cell{Row: 1, Column: 0, Text: "multi\nline {", Line: 5}, recs[4])
}

func TestDecodeSkipsCommentsAndJoinsLines(t *testing.T) {
	in := "# comment\n\n  # indented\nd 0 1 {first\nsecond}\nr 0 x\n"
	dec := NewDecoder(strings.NewReader(in), "in", 0)

	rec, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, &Cell{Row: 0, Column: 1, Text: "first\nsecond", Line: 4}, rec)

	rec, err = dec.Next()
	require.NoError(t, err)
	assert.Equal(t, 6, LineOf(rec))

	_, err = dec.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecodeNoTags(t *testing.T) {
	dec := NewDecoder(strings.NewReader("c 0 x integer {t1 t2}\n"), "in", NoTags)
	rec, err := dec.Next()
	require.NoError(t, err)
	col := rec.(*Column)
	assert.Equal(t, value.TypeLong, col.Type)
	assert.Nil(t, col.Tags)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		line int
	}{
		{"incomplete at eof", "r 0 x\nd 0 0 {open\n", 2},
		{"field count", "\nr 0\n", 2},
		{"bad index", "c x y string\n", 1},
		{"bad type", "c 0 y float\n", 1},
		{"bad row count", "i 0 1 0 0\n", 1},
		{"unknown record", "z 1 2\n", 1},
		{"bad data", "d 0 -1 x\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := NewDecoder(strings.NewReader(tt.in), "dump.txt", 0)
			var err error
			for err == nil {
				_, err = dec.Next()
			}
			var se *SyntaxError
			require.ErrorAs(t, err, &se)
			assert.ErrorIs(t, err, ErrSyntax)
			assert.Equal(t, "dump.txt", se.Source)
			assert.Equal(t, tt.line, se.Line)
			assert.True(t, strings.HasPrefix(err.Error(), "dump.txt:"), err.Error())
		})
	}
}
