package value

import (
	"cmp"
	"math"
	"strconv"
	"time"
)

// InlineSize is the longest text stored without a heap allocation.
const InlineSize = 22

// heapText marks a Value whose text lives in the heap field.
const heapText = math.MaxUint8

// Value is a single table cell.
//
// The zero Value is empty ("no value"). Text up to InlineSize bytes is kept
// in a fixed buffer inside the Value; longer text is kept on the heap.
// Numeric datums (long, double, boolean, time) are kept as raw bits next to
// their canonical text. Times keep unix seconds in bits and the nanosecond
// remainder in nsec, which covers every year time.Time can format.
type Value struct {
	set  bool
	typ  Type
	n    uint8
	buf  [InlineSize]byte
	nsec int32
	heap string
	bits uint64
}

// Empty returns the empty Value.
func Empty() Value { return Value{} }

func newValue(t Type, text string, bits uint64) Value {
	v := Value{set: true, typ: t, bits: bits}
	if len(text) <= InlineSize {
		v.n = uint8(len(text))
		copy(v.buf[:], text)
	} else {
		v.n = heapText
		v.heap = text
	}
	return v
}

// String returns a string Value.
func String(s string) Value { return newValue(TypeString, s, 0) }

// Long returns an integer Value.
func Long(i int64) Value {
	return newValue(TypeLong, strconv.FormatInt(i, 10), uint64(i))
}

// Double returns a floating-point Value.
func Double(f float64) Value {
	return newValue(TypeDouble, formatDouble(f), math.Float64bits(f))
}

// Bool returns a boolean Value.
func Bool(b bool) Value {
	if b {
		return newValue(TypeBoolean, "true", 1)
	}
	return newValue(TypeBoolean, "false", 0)
}

// Time returns a time Value with nanosecond precision.
func Time(t time.Time) Value {
	t = t.UTC()
	v := newValue(TypeTime, t.Format(time.RFC3339Nano), uint64(t.Unix()))
	v.nsec = int32(t.Nanosecond())
	return v
}

// Blob returns a blob Value holding a copy of b.
func Blob(b []byte) Value { return newValue(TypeBlob, string(b), 0) }

// IsEmpty reports whether v holds no value.
func (v Value) IsEmpty() bool { return !v.set }

// Type returns the type of the datum. It is meaningless for empty values.
func (v Value) Type() Type { return v.typ }

// IsInline reports whether the text is stored in the inline buffer.
func (v Value) IsInline() bool { return v.n != heapText }

// Text returns the canonical text rendering. Empty values render as "".
func (v Value) Text() string {
	if !v.set {
		return ""
	}
	if v.n == heapText {
		return v.heap
	}
	return string(v.buf[:v.n])
}

// String implements fmt.Stringer.
func (v Value) String() string { return v.Text() }

// Int64 returns the integer datum of a long Value.
func (v Value) Int64() (int64, bool) {
	if !v.set || v.typ != TypeLong {
		return 0, false
	}
	return int64(v.bits), true
}

// Float64 returns the datum of a double Value.
func (v Value) Float64() (float64, bool) {
	if !v.set || v.typ != TypeDouble {
		return 0, false
	}
	return math.Float64frombits(v.bits), true
}

// Bool returns the datum of a boolean Value.
func (v Value) Bool() (bool, bool) {
	if !v.set || v.typ != TypeBoolean {
		return false, false
	}
	return v.bits != 0, true
}

// Time returns the datum of a time Value.
func (v Value) Time() (time.Time, bool) {
	if !v.set || v.typ != TypeTime {
		return time.Time{}, false
	}
	return time.Unix(int64(v.bits), int64(v.nsec)).UTC(), true
}

// Bytes returns a copy of the text as bytes.
func (v Value) Bytes() []byte {
	if !v.set {
		return nil
	}
	return []byte(v.Text())
}

// Number projects numeric datums onto float64. Times are unix seconds.
// It reports false for string, blob and empty values.
func (v Value) Number() (float64, bool) {
	if !v.set {
		return 0, false
	}
	switch v.typ {
	case TypeLong:
		return float64(int64(v.bits)), true
	case TypeDouble:
		return math.Float64frombits(v.bits), true
	case TypeBoolean:
		return float64(v.bits), true
	case TypeTime:
		return float64(int64(v.bits)) + float64(v.nsec)/1e9, true
	default:
		return 0, false
	}
}

// Raw returns the integer ordering key of long, boolean and time values.
// For times it is the unix second; use CompareTime for a full ordering.
func (v Value) Raw() (int64, bool) {
	if !v.set {
		return 0, false
	}
	switch v.typ {
	case TypeLong, TypeBoolean, TypeTime:
		return int64(v.bits), true
	default:
		return 0, false
	}
}

// CompareTime orders two time values by their instant.
func CompareTime(a, b Value) int {
	if c := cmp.Compare(int64(a.bits), int64(b.bits)); c != 0 {
		return c
	}
	return cmp.Compare(a.nsec, b.nsec)
}

// Size returns the heap bytes held by v beyond the Value itself.
func (v Value) Size() int {
	if v.n == heapText {
		return len(v.heap)
	}
	return 0
}

func formatDouble(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
