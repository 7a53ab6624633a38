package dump

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hupe1980/tabgo/value"
)

// Decoder reads records.
type Decoder struct {
	r      *bufio.Reader
	source string
	line   int
	flags  Flags
}

// NewDecoder creates a Decoder. source names the input in errors.
func NewDecoder(r io.Reader, source string, flags Flags) *Decoder {
	return &Decoder{r: bufio.NewReader(r), source: source, flags: flags}
}

func (d *Decoder) errorf(line int, err error, format string, args ...any) *SyntaxError {
	return &SyntaxError{Source: d.source, Line: line, Msg: fmt.Sprintf(format, args...), Err: err}
}

func (d *Decoder) readLine() (string, error) {
	s, err := d.r.ReadString('\n')
	if err == io.EOF && s != "" {
		err = nil
	}
	if err != nil {
		return "", err
	}
	d.line++
	return strings.TrimRight(s, "\r\n"), nil
}

// Next returns the next record or io.EOF.
func (d *Decoder) Next() (Record, error) {
	var (
		buf   strings.Builder
		start int
	)
	for {
		text, err := d.readLine()
		if errors.Is(err, io.EOF) {
			if buf.Len() > 0 {
				return nil, d.errorf(start, errIncomplete, "unexpected end of input")
			}
			return nil, io.EOF
		}
		if err != nil {
			return nil, err
		}
		if buf.Len() == 0 {
			trimmed := strings.TrimSpace(text)
			if trimmed == "" || trimmed[0] == '#' {
				continue
			}
			start = d.line
		} else {
			buf.WriteByte('\n')
		}
		buf.WriteString(text)

		fields, err := Split(buf.String())
		if errors.Is(err, errIncomplete) {
			continue
		}
		if err != nil {
			return nil, d.errorf(start, err, "bad record")
		}
		return d.parse(start, fields)
	}
}

func (d *Decoder) parse(line int, f []string) (Record, error) {
	if len(f[0]) != 1 {
		return nil, d.errorf(line, nil, "unknown record type %q", f[0])
	}
	switch f[0][0] {
	case 'i':
		if len(f) != 5 {
			return nil, d.errorf(line, nil, "wrong # of fields in header record: want 5, got %d", len(f))
		}
		rows, err := d.count(line, "rows", f[1])
		if err != nil {
			return nil, err
		}
		cols, err := d.count(line, "columns", f[2])
		if err != nil {
			return nil, err
		}
		ctime, err := d.timestamp(line, "creation time", f[3])
		if err != nil {
			return nil, err
		}
		mtime, err := d.timestamp(line, "modification time", f[4])
		if err != nil {
			return nil, err
		}
		return &Header{Rows: rows, Columns: cols, Created: ctime, Modified: mtime, Line: line}, nil
	case 'c':
		if len(f) != 4 && len(f) != 5 {
			return nil, d.errorf(line, nil, "wrong # of fields in column record: want 4 or 5, got %d", len(f))
		}
		idx, err := d.index(line, "column", f[1])
		if err != nil {
			return nil, err
		}
		t, err := value.ParseType(f[3])
		if err != nil {
			return nil, d.errorf(line, err, "bad column type")
		}
		tags, err := d.tags(line, f, 4)
		if err != nil {
			return nil, err
		}
		return &Column{Index: idx, Label: f[2], Type: t, Tags: tags, Line: line}, nil
	case 'r':
		if len(f) != 3 && len(f) != 4 {
			return nil, d.errorf(line, nil, "wrong # of fields in row record: want 3 or 4, got %d", len(f))
		}
		idx, err := d.index(line, "row", f[1])
		if err != nil {
			return nil, err
		}
		tags, err := d.tags(line, f, 3)
		if err != nil {
			return nil, err
		}
		return &Row{Index: idx, Label: f[2], Tags: tags, Line: line}, nil
	case 'd':
		if len(f) != 4 {
			return nil, d.errorf(line, nil, "wrong # of fields in data record: want 4, got %d", len(f))
		}
		row, err := d.index(line, "row", f[1])
		if err != nil {
			return nil, err
		}
		col, err := d.index(line, "column", f[2])
		if err != nil {
			return nil, err
		}
		return &Cell{Row: row, Column: col, Text: f[3], Line: line}, nil
	}
	return nil, d.errorf(line, nil, "unknown record type %q", f[0])
}

func (d *Decoder) tags(line int, f []string, i int) ([]string, error) {
	if i >= len(f) || d.flags&NoTags != 0 {
		return nil, nil
	}
	tags, err := Split(f[i])
	if err != nil {
		return nil, d.errorf(line, err, "bad tag list")
	}
	return tags, nil
}

func (d *Decoder) count(line int, what, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, d.errorf(line, err, "bad # %s %q", what, s)
	}
	return n, nil
}

func (d *Decoder) index(line int, what, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, d.errorf(line, err, "bad %s index %q", what, s)
	}
	return n, nil
}

func (d *Decoder) timestamp(line int, what, s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, d.errorf(line, err, "bad %s %q", what, s)
	}
	return n, nil
}
