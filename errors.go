package subdb

import (
	"errors"
	"fmt"
)

var (
	// ErrOrderFileMissing is returned when neither the order file nor its .index
	// variant exists.
	ErrOrderFileMissing = errors.New("order file not found")

	// ErrKeyNotFound marks rows whose key is absent from the source index.
	ErrKeyNotFound = errors.New("key not found in source")

	// ErrDescriptorTooLong marks rows whose key descriptor exceeds the accepted length.
	ErrDescriptorTooLong = errors.New("key descriptor too long")

	// ErrInvalidConfig is returned for a Config that cannot describe a run.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrInvalidMode is returned for an unknown subset or id mode.
	ErrInvalidMode = errors.New("invalid mode")
)

// RowError is a fatal failure while processing an order file row.
//
// The original underlying error can be accessed via errors.Unwrap.
type RowError struct {
	Line       int
	Descriptor string
	cause      error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d (%q): %v", e.Line, e.Descriptor, e.cause)
}

func (e *RowError) Unwrap() error { return e.cause }

// CloseError is returned when finishing a run fails after all rows were processed.
//
// The original underlying error can be accessed via errors.Unwrap.
type CloseError struct {
	// Path is the file or store that could not be closed.
	Path  string
	cause error
}

func (e *CloseError) Error() string {
	return fmt.Sprintf("close %s: %v", e.Path, e.cause)
}

func (e *CloseError) Unwrap() error { return e.cause }
