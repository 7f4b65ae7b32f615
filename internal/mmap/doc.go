// Package mmap provides read-only memory-mapped access to store data files.
//
// A source store is never mutated while a subset is derived from it, so its data
// file (or its split shards) is mapped once and entries are handed out as
// zero-copy views.
//
// # Usage
//
//	set, err := mmap.OpenSet("db.0", "db.1")
//	if err != nil { ... }
//	defer set.Close()
//
//	// Bytes from a global offset to the end of the containing shard.
//	view, _ := set.View(offset)
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with madvise(2) for access hints
//   - Windows: CreateFileMapping/MapViewOfFile (Advise is a no-op)
//
// Views are valid only until Close returns.
package mmap
