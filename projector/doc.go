// Package projector carries resolved order file rows from a source store into a
// destination store.
//
// Every row is handled by exactly one Strategy, chosen by Select:
//
//	soft mode                                       LinkOnly
//	index-format order file, no ranges, or generic  WholeEntry
//	otherwise                                       RangeSplice
//
// Each projected row appends one index row to the destination; WholeEntry and
// RangeSplice also append one data entry.
package projector
