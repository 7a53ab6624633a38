package tabgo

import (
	"time"

	"github.com/hupe1980/tabgo/internal/header"
	"github.com/hupe1980/tabgo/model"
	"github.com/hupe1980/tabgo/value"
)

// SetKeys designates the key columns of v. With unique set, two rows
// sharing a key make LookupKey fail with a *KeyError; otherwise the first
// row of a key in logical order wins. Without columns the designation is
// removed.
func (v *View) SetKeys(unique bool, cols ...Handle) error {
	if err := v.check(); err != nil {
		return err
	}
	for _, c := range cols {
		if _, err := v.column(c); err != nil {
			return err
		}
	}
	if len(cols) == 0 {
		v.keys.Clear()
	} else {
		v.keys.Designate(cols, unique)
	}
	v.t.updateKeyFlags()
	return nil
}

// Keys returns the key columns of v.
func (v *View) Keys() []Handle { return v.keys.Columns() }

// IsKeyColumn reports whether any view of the table uses col as a key.
func (v *View) IsKeyColumn(col Handle) bool {
	ch, err := v.column(col)
	return err == nil && ch.Flags&header.FlagPrimaryKey != 0
}

// LookupKey returns the row whose key columns hold values. The values are
// converted to the column types first. The index is rebuilt when a key
// cell changed since the last lookup.
func (v *View) LookupKey(values ...Value) (Handle, error) {
	if err := v.check(); err != nil {
		return model.None, err
	}
	start := time.Now()
	row, err := v.lookupKey(values)
	v.t.reg.opts.metricsCollector.RecordLookup(time.Since(start), err)
	return row, err
}

func (v *View) lookupKey(values []Value) (Handle, error) {
	cols := v.keys.Columns()
	if len(cols) == 0 {
		return model.None, ErrNoKeys
	}
	if len(values) == len(cols) {
		converted := make([]value.Value, len(values))
		for i, val := range values {
			ch, err := v.column(cols[i])
			if err != nil {
				return model.None, err
			}
			if converted[i], err = value.Convert(val, ch.Type); err != nil {
				return model.None, &ConversionError{Column: cols[i], Type: ch.Type, Text: val.Text(), cause: err}
			}
		}
		values = converted
	}
	if v.keys.Dirty() || !v.keys.Built() {
		if err := v.rebuildKeys(); err != nil {
			return model.None, err
		}
	}
	row, err := v.keys.Lookup(v.t, values)
	return row, translateError(err)
}

func (v *View) rebuildKeys() error {
	start := time.Now()
	err := v.keys.Rebuild(v.t)
	d := time.Since(start)
	rows := v.t.rows.Len()
	v.t.reg.opts.metricsCollector.RecordKeyRebuild(rows, d, err)
	v.t.reg.opts.logger.LogKeyRebuild(v.t.name, v.keys.Len(), rows, d, err)
	return err
}
