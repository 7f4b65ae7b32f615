package subdb

import "github.com/hupe1980/subdb/seqdb"

// SkipReason classifies a row that produced no output.
type SkipReason uint8

const (
	// SkipUnresolved is a descriptor that names no key.
	SkipUnresolved SkipReason = iota
	// SkipMissing is a key absent from the source index.
	SkipMissing
	// SkipMalformed is a row whose range list cannot be applied.
	SkipMalformed
	// SkipOverlong is a descriptor longer than orderfile.MaxKeyLen.
	SkipOverlong
)

func (r SkipReason) String() string {
	switch r {
	case SkipUnresolved:
		return "unresolved"
	case SkipMissing:
		return "missing"
	case SkipMalformed:
		return "malformed"
	case SkipOverlong:
		return "overlong"
	default:
		return "unknown"
	}
}

// Summary reports what a run did.
type Summary struct {
	// Rows is the number of order file lines read.
	Rows int

	LinkOnly    int
	WholeEntry  int
	RangeSplice int

	Unresolved int
	Missing    int
	Malformed  int
	Overlong   int

	// Duplicates counts rows whose key had already been written.
	Duplicates int
	// Bytes is the number of data bytes written to the destination.
	Bytes uint64
	// Ordered reports whether resolved keys were non-decreasing.
	Ordered bool
	// Merged reports whether the destination was consolidated into a single data file.
	Merged bool
	// IndexFormat reports whether the order file was a store index.
	IndexFormat bool
	DBType      seqdb.DBType
}

// Written returns the number of index rows written.
func (s *Summary) Written() int { return s.LinkOnly + s.WholeEntry + s.RangeSplice }

// Skipped returns the number of rows that produced no output.
func (s *Summary) Skipped() int { return s.Unresolved + s.Missing + s.Malformed + s.Overlong }

func (s *Summary) skip(reason SkipReason) {
	switch reason {
	case SkipUnresolved:
		s.Unresolved++
	case SkipMissing:
		s.Missing++
	case SkipMalformed:
		s.Malformed++
	case SkipOverlong:
		s.Overlong++
	}
}
