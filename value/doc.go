// Package value provides the typed cell variant stored in tabgo tables.
//
// # Types
//
// Every column has a Type that decides how text written into its cells is
// parsed:
//
//   - TypeString: arbitrary text (default)
//   - TypeLong: 64-bit signed integer
//   - TypeDouble: 64-bit float, rendered with round-trip precision
//   - TypeBoolean: true/false (also yes/no, on/off, 1/0)
//   - TypeTime: point in time (RFC 3339 or unix seconds)
//   - TypeBlob: raw bytes
//
// # Empty Values
//
// The zero Value holds no value at all. It is distinct from an explicit empty
// string:
//
//	var v value.Value        // empty
//	s := value.String("")    // not empty, Text() == ""
//
// # Canonical Text
//
// Typed values carry both the parsed datum and its canonical text rendering.
// Two Values holding the same datum are equal with ==, so a Value can be used
// as a map key.
package value
