// Package archive saves table dumps as compressed snapshots in a blob store
// and restores them.
//
// A saved table lives in its own directory of the store:
//
//	orders/<uuid>.tdump.zst    compressed dump
//	orders/MANIFEST-000001.json
//	orders/CURRENT
//
// Serializing a table happens on the caller's goroutine, since tables are not
// safe for concurrent use. Compression and uploads run in the background,
// bounded by the worker slots and IO limit of a resource.Controller.
package archive
