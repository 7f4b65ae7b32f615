package mmap

import "errors"

// AccessPattern is a paging hint for a mapping.
type AccessPattern int

const (
	// AccessDefault clears earlier hints.
	AccessDefault AccessPattern = iota
	// AccessSequential suits a scan over a whole data file.
	AccessSequential
	// AccessRandom suits entries fetched by index offset in arbitrary order.
	AccessRandom
)

var (
	ErrClosed        = errors.New("mmap: mapping is closed")
	ErrInvalidSize   = errors.New("mmap: file too large to map")
	ErrOutOfBounds   = errors.New("mmap: offset past end of data")
	ErrInvalidOffset = errors.New("mmap: negative offset")
)
