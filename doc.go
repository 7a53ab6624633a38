// Package tabgo provides a shared, multi-client, in-memory table store.
//
// A table holds rows and columns of typed cells. Rows and columns are
// referenced by stable handles that survive sorting, moving and the
// deletion of other rows. Several Views may be opened on one table: they
// share rows, columns and cells but keep their own tags, traces,
// notifiers and key designation.
//
// # Quick Start
//
//	reg := tabgo.NewRegistry()
//	v, _ := reg.Open("orders")
//	defer v.Close()
//
//	cols, _ := v.AddColumns(2)
//	_ = v.SetColumnType(cols[1], tabgo.TypeLong)
//	rows, _ := v.AddRows(3)
//	_ = v.SetText(rows[0], cols[1], "5")
//
// Or with the builder:
//
//	v, _ := tabgo.Define("orders").
//	    Column("sku", tabgo.TypeString).
//	    Column("qty", tabgo.TypeLong).
//	    Rows(3).
//	    Build(reg)
//
// # Traces and Notifiers
//
// Traces observe cell reads and writes, notifiers observe rows and columns
// being created, deleted, moved or relabeled. Both fire for changes made
// through any View of the table. A deferred callback runs once at the next
// Registry.Update; events arriving while it is pending are coalesced.
//
//	v.Trace(trace.Spec{Column: cols[1], Ops: trace.Write}, func(ev trace.Event) error {
//	    fmt.Println("qty changed in", ev.Row)
//	    return nil
//	})
//
// # Keys and Sorting
//
// SetKeys designates key columns for LookupKey. The key index is rebuilt
// lazily after key cells change. SortRows computes a new row order and
// SetRowOrder installs it.
//
// # Dumps and Archives
//
// Dump and Restore read and write a line-record text format. Package
// archive stores compressed dumps in a blobstore.BlobStore.
//
// # Concurrency
//
// A Registry and its Views are single-threaded. Callers serialize access.
package tabgo
