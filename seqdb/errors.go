package seqdb

import (
	"errors"
	"fmt"
)

var (
	// ErrCorrupt is returned when a store file cannot be parsed.
	ErrCorrupt = errors.New("seqdb: corrupt store")
	// ErrNoData is returned when entry data is requested from a reader opened index-only.
	ErrNoData = errors.New("seqdb: data not loaded")
	// ErrNoLookup is returned when accession lookup is used on a reader opened without it.
	ErrNoLookup = errors.New("seqdb: lookup not loaded")
	// ErrClosed is returned by operations on a closed writer.
	ErrClosed = errors.New("seqdb: writer closed")
	// ErrUnknownDBType is returned by ParseDBType for unknown names.
	ErrUnknownDBType = errors.New("seqdb: unknown db type")
)

// ParseError reports a malformed line of an index or lookup file.
type ParseError struct {
	File string
	Line int
	cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("seqdb: %s:%d: %v", e.File, e.Line, e.cause)
}

// Unwrap returns the underlying cause. ParseError always matches ErrCorrupt.
func (e *ParseError) Unwrap() []error { return []error{ErrCorrupt, e.cause} }
