// Package seqdb reads and writes indexed sequence stores.
//
// A store at path P is a set of files:
//
//	P            data file; entries back to back (or split shards P.0, P.1, ...)
//	P.index      text rows key<TAB>offset<TAB>length
//	P.dbtype     4 bytes LE: entry type | compressed<<16
//	P.lookup     optional rows key<TAB>accession<TAB>file
//
// Offsets of a split store are global across its shards in order. Uncompressed entries
// end with a NUL terminator that is counted in the index length. Compressed entries are
// framed as described in package frame; their index length is the decoded payload length
// plus one.
//
// [Reader] maps the data read-only and resolves keys and accessions. [Writer] appends
// entries through a single shard and finalizes the index on Close.
//
//	w, _ := seqdb.Create("out", false)
//	_ = w.Append(1, []byte("MKVL"))
//	_ = w.Close(true, false)
//	_ = seqdb.WriteDBType("out", seqdb.AminoAcids, false)
package seqdb
