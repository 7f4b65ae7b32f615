// Package frame models the per-entry framing of a store data file.
//
// Uncompressed stores terminate every entry with a single NUL byte. Compressed stores
// wrap every entry as
//
//	[BlockLen uint32 LE][Block...][Marker]
//
// where Marker tells whether Block is a zstd frame or the payload stored verbatim.
//
// [Decode] and [Encode] are the only places that know about this layout; everything
// else works with the [Uncompressed] and [Compressed] values:
//
//	f, err := frame.Decode(view, compressed, entryLen)
//	switch f := f.(type) {
//	case frame.Compressed:
//	    // copy frame.Encode(f) verbatim
//	case frame.Uncompressed:
//	    // copy f.Data and let the writer terminate it
//	}
package frame
