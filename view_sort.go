package tabgo

import (
	"time"

	"github.com/hupe1980/tabgo/internal/header"
	"github.com/hupe1980/tabgo/model"
	"github.com/hupe1980/tabgo/notify"
	"github.com/hupe1980/tabgo/sorter"
)

// SortRows returns every row ordered by opts. The table order is left
// alone; install the result with SetRowOrder. Key types are taken from the
// columns.
func (v *View) SortRows(opts sorter.Options) ([]Handle, error) {
	if err := v.check(); err != nil {
		return nil, err
	}
	rows := v.Rows()
	start := time.Now()
	keyed, err := v.sortOptions(opts)
	if err != nil {
		return nil, err
	}
	sorted, err := sorter.Sort(v.t, rows, keyed)
	v.t.reg.opts.metricsCollector.RecordSort(len(rows), time.Since(start), err)
	return sorted, err
}

// SortSubset orders rows in place without touching the table order.
func (v *View) SortSubset(rows []Handle, opts sorter.Options) error {
	if err := v.check(); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := v.t.rows.Resolve(r); err != nil {
			return err
		}
	}
	start := time.Now()
	keyed, err := v.sortOptions(opts)
	if err != nil {
		return err
	}
	err = sorter.SortInPlace(v.t, rows, keyed)
	v.t.reg.opts.metricsCollector.RecordSort(len(rows), time.Since(start), err)
	return err
}

func (v *View) sortOptions(opts sorter.Options) (sorter.Options, error) {
	keys := make([]sorter.Key, len(opts.Keys))
	for i, k := range opts.Keys {
		ch, err := v.column(k.Column)
		if err != nil {
			return sorter.Options{}, err
		}
		k.Type = ch.Type
		keys[i] = k
	}
	opts.Keys = keys
	return opts, nil
}

// SetRowOrder installs a new row order. order must list every row exactly
// once. Every view receives one Moved notification with a zero handle.
func (v *View) SetRowOrder(order []Handle) error {
	if err := v.check(); err != nil {
		return err
	}
	hs := make([]*header.Header, len(order))
	for i, h := range order {
		hdr, err := v.t.rows.Resolve(h)
		if err != nil {
			return err
		}
		hs[i] = hdr
	}
	if err := v.t.rows.Reorder(hs); err != nil {
		return err
	}
	v.t.invalidateKeys(nil)
	v.t.touch()
	v.t.fireNotify(v, notify.Event{Table: v.t.name, Kind: model.KindRow, Op: notify.Moved})
	return nil
}

// SortTable sorts the rows and installs the order.
func (v *View) SortTable(opts sorter.Options) error {
	sorted, err := v.SortRows(opts)
	if err != nil {
		return err
	}
	return v.SetRowOrder(sorted)
}
