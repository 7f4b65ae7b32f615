// Package orderfile parses the ordered key lists that select a subset of a store.
//
// Each line holds a key descriptor (a numeric key or an accession, depending on how
// the caller resolves it), optionally followed by tab-separated pairs of inclusive,
// 0-based byte ranges:
//
//	42
//	P12345
//	7	0	9	20	29
//
// Parsing never fails; malformed range lists are reported by [Line.Ranges].
package orderfile
