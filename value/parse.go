package value

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrUnknownType is returned for unrecognized type names.
	ErrUnknownType = errors.New("unknown column type")

	// ErrSyntax is wrapped by ParseError when text does not fit a type.
	ErrSyntax = errors.New("invalid value")
)

// ParseError describes text that cannot be represented in a Type.
type ParseError struct {
	Type Type
	Text string
	cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("expected %s value but got %q", e.Type, e.Text)
}

func (e *ParseError) Unwrap() error { return ErrSyntax }

// Cause returns the underlying strconv/time error, if any.
func (e *ParseError) Cause() error { return e.cause }

var timeLayouts = [...]string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Parse converts text into a Value of type t. For every type but string
// and blob the text must parse; the stored text is the canonical rendering
// of the parsed datum, so Parse(t, Parse(t, s).Text()) is a fixed point.
func Parse(t Type, text string) (Value, error) {
	switch t {
	case TypeString:
		return String(text), nil
	case TypeBlob:
		return newValue(TypeBlob, text, 0), nil
	case TypeLong:
		i, err := strconv.ParseInt(strings.TrimSpace(text), 0, 64)
		if err != nil {
			return Value{}, &ParseError{Type: t, Text: text, cause: err}
		}
		return Long(i), nil
	case TypeDouble:
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return Value{}, &ParseError{Type: t, Text: text, cause: err}
		}
		return Double(f), nil
	case TypeBoolean:
		b, ok := parseBool(strings.TrimSpace(text))
		if !ok {
			return Value{}, &ParseError{Type: t, Text: text}
		}
		return Bool(b), nil
	case TypeTime:
		ts, err := parseTime(strings.TrimSpace(text))
		if err != nil {
			return Value{}, &ParseError{Type: t, Text: text, cause: err}
		}
		return Time(ts), nil
	default:
		return Value{}, fmt.Errorf("%w: %d", ErrUnknownType, t)
	}
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "1", "true", "t", "yes", "y", "on":
		return true, true
	case "0", "false", "f", "no", "n", "off":
		return false, true
	}
	return false, false
}

func parseTime(s string) (time.Time, error) {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		sec, frac := math.Modf(f)
		return time.Unix(int64(sec), int64(math.Round(frac*1e9))), nil
	}
	var first error
	for _, layout := range timeLayouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts, nil
		}
		if first == nil {
			first = err
		}
	}
	return time.Time{}, first
}

// Convert re-types v as t. Empty values stay empty. Numeric types convert
// between each other where no precision is lost; everything else goes
// through the canonical text of v.
func Convert(v Value, t Type) (Value, error) {
	if !v.set || v.typ == t {
		return v, nil
	}
	switch {
	case t == TypeDouble && v.typ != TypeString && v.typ != TypeBlob:
		f, _ := v.Number()
		return Double(f), nil
	case t == TypeLong && (v.typ == TypeBoolean || v.typ == TypeTime):
		if v.typ == TypeTime && v.nsec != 0 {
			return Value{}, &ParseError{Type: t, Text: v.Text()}
		}
		return Long(int64(v.bits)), nil
	case t == TypeLong && v.typ == TypeDouble:
		f := math.Float64frombits(v.bits)
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return Value{}, &ParseError{Type: t, Text: v.Text()}
		}
		return Long(int64(f)), nil
	case t == TypeBoolean && (v.typ == TypeLong || v.typ == TypeDouble):
		f, _ := v.Number()
		return Bool(f != 0), nil
	}
	return Parse(t, v.Text())
}

// Key returns a stable string identity for v, usable across types.
func (v Value) Key() string {
	if !v.set {
		return ""
	}
	return v.typ.String() + ":" + v.Text()
}
