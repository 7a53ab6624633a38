// Package tag implements named groupings of rows and columns.
//
// A Set keeps one Roaring Bitmap of header slots per tag name and per axis.
// Two names are reserved and never stored:
//
//   - "all" matches every row or column
//   - "end" matches the row or column with the highest logical index
//
// Sets are reference counted so several views of one table can share them:
//
//	shared := tags.Retain()
//	...
//	shared.Release()
package tag
