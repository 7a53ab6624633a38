package tabgo

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hupe1980/tabgo/dump"
	"github.com/hupe1980/tabgo/internal/header"
	"github.com/hupe1980/tabgo/model"
)

// Dump writes the table in the line-record dump format: labels, types,
// the tags of v and every non-empty cell.
func (v *View) Dump(w io.Writer) error {
	if err := v.check(); err != nil {
		return err
	}
	t := v.t
	enc := dump.NewEncoder(w)
	if err := enc.WriteHeader(dump.Header{
		Rows:     t.rows.Len(),
		Columns:  t.cols.Len(),
		Created:  t.created.Unix(),
		Modified: t.modified.Unix(),
	}); err != nil {
		return err
	}
	for c := range t.cols.All() {
		if err := enc.WriteColumn(dump.Column{
			Index: c.Index(),
			Label: c.Label(),
			Type:  c.Type,
			Tags:  v.tags.TagsOf(model.KindColumn, c.Slot()),
		}); err != nil {
			return err
		}
	}
	for r := range t.rows.All() {
		if err := enc.WriteRow(dump.Row{
			Index: r.Index(),
			Label: r.Label(),
			Tags:  v.tags.TagsOf(model.KindRow, r.Slot()),
		}); err != nil {
			return err
		}
	}
	for r := range t.rows.All() {
		for c := range t.cols.All() {
			val := t.cells.Peek(r.Offset(), c.Offset())
			if val.IsEmpty() {
				continue
			}
			if err := enc.WriteCell(dump.Cell{Row: r.Index(), Column: c.Index(), Text: val.Text()}); err != nil {
				return err
			}
		}
	}
	return enc.Flush()
}

// Restore reads a dump into the table. Rows and columns are appended,
// unless dump.Overwrite is set: then rows and columns are matched by label
// first. dump.NoTags skips tag fields. Errors are *dump.SyntaxError values
// carrying source and line; records before the failing one stay applied.
func (v *View) Restore(r io.Reader, source string, flags dump.Flags) error {
	if err := v.check(); err != nil {
		return err
	}
	start := time.Now()
	rs := &restorer{
		v:      v,
		source: source,
		flags:  flags,
		fresh:  v.t.rows.Len() == 0 && v.t.cols.Len() == 0,
		rows:   make(map[int]Handle),
		cols:   make(map[int]Handle),
	}
	err := rs.run(dump.NewDecoder(r, source, flags))
	v.t.reg.opts.metricsCollector.RecordRestore(rs.records, time.Since(start), err)
	v.t.reg.opts.logger.LogRestore(v.t.name, source, rs.records, err)
	return err
}

type restorer struct {
	v       *View
	source  string
	flags   dump.Flags
	fresh   bool
	hdr     *dump.Header
	rows    map[int]Handle
	cols    map[int]Handle
	records int
}

func (rs *restorer) run(dec *dump.Decoder) error {
	for {
		rec, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if err := rs.apply(rec); err != nil {
			return &dump.SyntaxError{Source: rs.source, Line: dump.LineOf(rec), Err: err}
		}
		rs.records++
	}
	if rs.hdr == nil {
		return &dump.SyntaxError{Source: rs.source, Msg: "missing header record"}
	}
	if rs.fresh {
		rs.v.t.created = time.Unix(rs.hdr.Created, 0)
		rs.v.t.modified = time.Unix(rs.hdr.Modified, 0)
	}
	return nil
}

func (rs *restorer) apply(rec dump.Record) error {
	if h, ok := rec.(*dump.Header); ok {
		if rs.hdr != nil {
			return errors.New("duplicate header record")
		}
		rs.hdr = h
		return nil
	}
	if rs.hdr == nil {
		return errors.New("first record must be the header record")
	}
	switch rec := rec.(type) {
	case *dump.Column:
		h, err := rs.header(model.KindColumn, rec.Index, rec.Label, rs.cols)
		if err != nil {
			return err
		}
		if err := rs.v.SetColumnType(h, rec.Type); err != nil {
			return err
		}
		return rs.tag(model.KindColumn, h, rec.Tags)
	case *dump.Row:
		h, err := rs.header(model.KindRow, rec.Index, rec.Label, rs.rows)
		if err != nil {
			return err
		}
		return rs.tag(model.KindRow, h, rec.Tags)
	case *dump.Cell:
		row, ok := rs.rows[rec.Row]
		if !ok {
			return fmt.Errorf("no row with index %d", rec.Row)
		}
		col, ok := rs.cols[rec.Column]
		if !ok {
			return fmt.Errorf("no column with index %d", rec.Column)
		}
		return rs.v.SetText(row, col, rec.Text)
	}
	return fmt.Errorf("unexpected record %T", rec)
}

// header maps a dump index to a row or column, creating it unless an
// existing one with the same label is reused.
func (rs *restorer) header(kind model.Kind, index int, label string, seen map[int]Handle) (Handle, error) {
	if _, dup := seen[index]; dup {
		return model.None, fmt.Errorf("%s index %d listed twice", kind, index)
	}
	m := rs.v.t.mgr(kind)
	var hdr *header.Header
	if rs.flags&dump.Overwrite != 0 && label != "" {
		hdr, _ = m.Find(label)
	}
	if hdr == nil {
		hs, err := rs.v.add(kind, 1)
		if err != nil {
			return model.None, err
		}
		if label != "" {
			if err := rs.v.SetLabel(hs[0], label); err != nil {
				return model.None, err
			}
		}
		seen[index] = hs[0]
		return hs[0], nil
	}
	seen[index] = hdr.Handle()
	return hdr.Handle(), nil
}

func (rs *restorer) tag(kind model.Kind, h Handle, tags []string) error {
	for _, name := range tags {
		if err := rs.v.AddTag(kind, name, h); err != nil {
			return err
		}
	}
	return nil
}
