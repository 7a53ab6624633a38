// Package mmap maps files read-only into memory.
//
//	m, err := mmap.Open("orders/3f2a.tdump.zst")
//	if err != nil { ... }
//	defer m.Close()
//	data := m.Bytes()
//
// Unix uses mmap(2) with madvise(2) hints; Windows uses MapViewOfFile and
// ignores hints.
package mmap
