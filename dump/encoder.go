package dump

import (
	"bufio"
	"io"
	"strconv"
)

// Encoder writes records.
type Encoder struct {
	w *bufio.Writer
}

// NewEncoder creates an Encoder. Call Flush when done.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

func (e *Encoder) record(fields ...string) error {
	if _, err := e.w.WriteString(Join(fields...)); err != nil {
		return err
	}
	return e.w.WriteByte('\n')
}

// WriteHeader writes an "i" record.
func (e *Encoder) WriteHeader(h Header) error {
	return e.record("i",
		strconv.Itoa(h.Rows), strconv.Itoa(h.Columns),
		strconv.FormatInt(h.Created, 10), strconv.FormatInt(h.Modified, 10))
}

// WriteColumn writes a "c" record.
func (e *Encoder) WriteColumn(c Column) error {
	fields := []string{"c", strconv.Itoa(c.Index), c.Label, c.Type.String()}
	if len(c.Tags) > 0 {
		fields = append(fields, Join(c.Tags...))
	}
	return e.record(fields...)
}

// WriteRow writes an "r" record.
func (e *Encoder) WriteRow(r Row) error {
	fields := []string{"r", strconv.Itoa(r.Index), r.Label}
	if len(r.Tags) > 0 {
		fields = append(fields, Join(r.Tags...))
	}
	return e.record(fields...)
}

// WriteCell writes a "d" record.
func (e *Encoder) WriteCell(c Cell) error {
	return e.record("d", strconv.Itoa(c.Row), strconv.Itoa(c.Column), c.Text)
}

// Flush writes buffered records to the underlying writer.
func (e *Encoder) Flush() error { return e.w.Flush() }
