// Package model defines the identity types shared by every tabgo package.
//
// # Identity Types
//
//   - Kind: selects the row or the column axis of a table
//   - Handle: stable, generation-checked reference to a row or column header
//   - Offset: physical storage slot backing a header's cells
//
// A Handle survives sorting, moving and deleting other headers; only the
// logical index of the header it refers to may change. Once its header is
// deleted the Handle becomes stale and every lookup through it fails.
package model
