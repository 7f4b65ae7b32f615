package projector

// Strategy is the way a resolved row is carried into the destination store.
type Strategy uint8

const (
	// LinkOnly indexes the source entry in place; no payload is copied.
	LinkOnly Strategy = iota
	// WholeEntry copies the complete entry.
	WholeEntry
	// RangeSplice copies the concatenation of byte ranges of the decoded payload.
	RangeSplice
)

func (s Strategy) String() string {
	switch s {
	case LinkOnly:
		return "link-only"
	case WholeEntry:
		return "whole-entry"
	case RangeSplice:
		return "range-splice"
	default:
		return "unknown"
	}
}

// Decision holds the inputs of Select.
type Decision struct {
	// Soft is set for runs that reuse the source data file by reference.
	Soft bool
	// IndexFormat is set when the order file is itself a store index.
	IndexFormat bool
	// HasRanges is set when the line carries any fields after the key.
	HasRanges bool
	// Generic is set when the source entries are opaque.
	Generic bool
}

// Select returns the strategy for d. Conditions are checked in priority order:
// soft mode first, then anything that rules out slicing.
func Select(d Decision) Strategy {
	switch {
	case d.Soft:
		return LinkOnly
	case d.IndexFormat, !d.HasRanges, d.Generic:
		return WholeEntry
	default:
		return RangeSplice
	}
}
