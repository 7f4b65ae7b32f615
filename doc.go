// Package subdb creates subset stores: new indexed stores holding a selection of the
// entries of an existing store, in an order given by an order file.
//
// # Quick Start
//
//	summary, err := subdb.Create(ctx, subdb.Config{
//	    OrderFile: "keys.txt",
//	    Source:    "uniref50",
//	    Dest:      "uniref50_subset",
//	})
//
// # Order Files
//
// Each line names one entry, by numeric key or (with IDMode LookupIDs) by accession.
// A line may carry tab-separated pairs of inclusive, 0-based byte ranges; the entry is
// then rebuilt from those slices of its payload followed by a newline:
//
//	2	0	3	10	19
//
// When "<order file>.index" exists, it is used instead and every listed entry is
// copied whole.
//
// # Modes
//
// Hard mode (the default) copies entries into a new data file. Soft mode writes only
// an index and links the destination data file to the source one.
//
// In both modes the destination gets the source's type descriptor, and the source's
// lookup, header and taxonomy files are linked next to it. If keys were not listed in
// ascending order the destination index is sorted on close.
//
// # Error Handling
//
// Rows that do not resolve, name a key missing from the source, or carry an unusable
// range list are logged, counted in the returned Summary, and skipped. Failures to open,
// write or close a store abort the run:
//
//	if errors.Is(err, subdb.ErrOrderFileMissing) {
//	    // ...
//	}
//
//	var closeErr *subdb.CloseError
//	if errors.As(err, &closeErr) {
//	    // ...
//	}
package subdb
