package value

import (
	"fmt"
	"strings"
)

// Type is the declared type of a column.
type Type uint8

const (
	// TypeString holds arbitrary text.
	TypeString Type = iota
	// TypeLong holds a 64-bit signed integer.
	TypeLong
	// TypeDouble holds a 64-bit float.
	TypeDouble
	// TypeBoolean holds a boolean.
	TypeBoolean
	// TypeTime holds a point in time.
	TypeTime
	// TypeBlob holds raw bytes.
	TypeBlob
)

var typeNames = [...]string{
	TypeString:  "string",
	TypeLong:    "long",
	TypeDouble:  "double",
	TypeBoolean: "boolean",
	TypeTime:    "time",
	TypeBlob:    "blob",
}

// String returns the canonical type name.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", t)
}

// IsNumeric reports whether values of t order numerically by default.
func (t Type) IsNumeric() bool {
	switch t {
	case TypeLong, TypeDouble, TypeBoolean, TypeTime:
		return true
	default:
		return false
	}
}

// aliases maps every accepted spelling to its Type.
var aliases = map[string]Type{
	"string":  TypeString,
	"integer": TypeLong,
	"long":    TypeLong,
	"number":  TypeDouble,
	"double":  TypeDouble,
	"boolean": TypeBoolean,
	"time":    TypeTime,
	"blob":    TypeBlob,
}

// prefixable lists the names that may be abbreviated.
var prefixable = [...]struct {
	name string
	typ  Type
}{
	{"string", TypeString},
	{"integer", TypeLong},
	{"number", TypeDouble},
}

// ParseType resolves a type name. Names are case-sensitive; "string",
// "integer" and "number" also accept any non-empty prefix.
func ParseType(name string) (Type, error) {
	if t, ok := aliases[name]; ok {
		return t, nil
	}
	if name != "" {
		for _, p := range prefixable {
			if strings.HasPrefix(p.name, name) {
				return p.typ, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownType, name)
}
