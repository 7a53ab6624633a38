// Package testutil provides testing utilities for tabgo.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Cell Values
//
//	rng := testutil.NewRNG(seed)
//	v := rng.Value(value.TypeDouble)
//	col := rng.Values(value.TypeLong, 100)
//
// # Recording Callbacks
//
//	var rec testutil.Recorder[trace.Event]
//	view.Trace(spec, rec.Record)
package testutil
