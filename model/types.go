package model

import "fmt"

// Kind selects the row or the column axis of a table.
type Kind uint8

const (
	// KindRow identifies row headers.
	KindRow Kind = iota
	// KindColumn identifies column headers.
	KindColumn
)

// String returns "row" or "column".
func (k Kind) String() string {
	if k == KindColumn {
		return "column"
	}
	return "row"
}

// Letter returns the single-letter prefix used for generated labels.
func (k Kind) Letter() byte {
	if k == KindColumn {
		return 'c'
	}
	return 'r'
}

// Offset is the physical storage slot of a header.
// It is constant for the lifetime of the header.
type Offset uint32

// Handle is a stable reference to a row or column header.
//
// Slot addresses the header arena; Gen is bumped every time the slot is
// recycled, so a Handle to a deleted header never resolves to its successor.
// The zero Handle (Gen == 0) refers to nothing.
type Handle struct {
	Kind Kind
	Slot uint32
	Gen  uint32
}

// None is the zero Handle.
var None Handle

// IsZero reports whether h refers to nothing.
func (h Handle) IsZero() bool { return h.Gen == 0 }

// String returns a debug representation of the Handle.
func (h Handle) String() string {
	if h.IsZero() {
		return h.Kind.String() + "(none)"
	}
	return fmt.Sprintf("%s(%d#%d)", h.Kind, h.Slot, h.Gen)
}
