// Package dump reads and writes the line-record table format.
//
// A dump is a sequence of records, one list per record:
//
//	i rows columns ctime mtime
//	c index label type ?tags?
//	r index label ?tags?
//	d row column value
//
// Blank lines and lines starting with '#' are ignored. A record whose list
// is incomplete continues on the next line.
package dump

import (
	"errors"
	"fmt"

	"github.com/hupe1980/tabgo/value"
)

// Flags control how a dump is restored.
type Flags uint8

const (
	// Overwrite matches rows and columns by label instead of appending.
	Overwrite Flags = 1 << iota
	// NoTags skips tag fields.
	NoTags
)

// ErrSyntax is wrapped by every SyntaxError.
var ErrSyntax = errors.New("dump syntax error")

// SyntaxError locates a malformed record.
type SyntaxError struct {
	Source string
	Line   int
	Msg    string
	Err    error
}

func (e *SyntaxError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg += ": " + e.Err.Error()
		}
	}
	return fmt.Sprintf("%s:%d: %s", e.Source, e.Line, msg)
}

func (e *SyntaxError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrSyntax}
	}
	return []error{ErrSyntax, e.Err}
}

// Record is one of *Header, *Column, *Row or *Cell.
type Record interface {
	line() int
}

// Header is the "i" record.
type Header struct {
	Rows     int
	Columns  int
	Created  int64
	Modified int64
	Line     int
}

// Column is the "c" record.
type Column struct {
	Index int
	Label string
	Type  value.Type
	Tags  []string
	Line  int
}

// Row is the "r" record.
type Row struct {
	Index int
	Label string
	Tags  []string
	Line  int
}

// Cell is the "d" record. Text is parsed by the column type on restore.
type Cell struct {
	Row    int
	Column int
	Text   string
	Line   int
}

func (h *Header) line() int { return h.Line }
func (c *Column) line() int { return c.Line }
func (r *Row) line() int    { return r.Line }
func (c *Cell) line() int   { return c.Line }

// LineOf returns the first input line of a decoded record.
func LineOf(r Record) int { return r.line() }
