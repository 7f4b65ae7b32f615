package seqdb

import (
	"cmp"
	"fmt"
	"os"
	"slices"
	"sort"

	"github.com/hupe1980/subdb/frame"
	"github.com/hupe1980/subdb/internal/mmap"
)

// OpenMode selects which parts of a store Open loads.
type OpenMode uint8

const (
	// UseIndex loads the primary index. It is always implied.
	UseIndex OpenMode = 1 << iota
	// UseData maps the data file(s).
	UseData
	// UseLookupRev loads the accession lookup for reverse resolution.
	UseLookupRev
)

// Reader is a read-only view of a store. Entry views returned by RawData, Frame and
// (for uncompressed stores) Data are valid until Close.
type Reader struct {
	path       string
	mode       OpenMode
	entries    []IndexEntry // sorted by key
	data       *mmap.Set
	lookup     *lookupTable
	dbType     DBType
	compressed bool
}

// Open opens the store at path.
func Open(path string, mode OpenMode) (*Reader, error) {
	r := &Reader{path: path, mode: mode | UseIndex}

	var err error
	r.dbType, r.compressed, err = ReadDBType(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(IndexPath(path))
	if err != nil {
		return nil, fmt.Errorf("seqdb: open index: %w", err)
	}
	entries, err := readIndex(f, IndexPath(path))
	_ = f.Close()
	if err != nil {
		return nil, err
	}
	if !slices.IsSortedFunc(entries, compareEntries) {
		slices.SortStableFunc(entries, compareEntries)
	}
	r.entries = entries

	if mode&UseLookupRev != 0 {
		lf, err := os.Open(LookupPath(path))
		if err != nil {
			return nil, fmt.Errorf("seqdb: open lookup: %w", err)
		}
		lookup, err := readLookup(lf, LookupPath(path))
		_ = lf.Close()
		if err != nil {
			return nil, err
		}
		r.lookup = newLookupTable(lookup)
	}

	if mode&UseData != 0 {
		files := DataFiles(path)
		if len(files) == 0 {
			return nil, fmt.Errorf("seqdb: open data %s: %w", path, os.ErrNotExist)
		}
		set, err := mmap.OpenSet(files...)
		if err != nil {
			return nil, fmt.Errorf("seqdb: map data: %w", err)
		}
		// Subsets are drawn in caller order, not file order.
		_ = set.Advise(mmap.AccessRandom)
		r.data = set
	}

	return r, nil
}

func compareEntries(a, b IndexEntry) int { return cmp.Compare(a.Key, b.Key) }

// Path returns the store path.
func (r *Reader) Path() string { return r.path }

// Size returns the number of entries.
func (r *Reader) Size() int { return len(r.entries) }

// DBType returns the semantic type of the entries.
func (r *Reader) DBType() DBType { return r.dbType }

// Compressed reports whether entries are stored as compressed frames.
func (r *Reader) Compressed() bool { return r.compressed }

// ID returns the row id of key.
func (r *Reader) ID(key Key) (int, bool) {
	i := sort.Search(len(r.entries), func(i int) bool { return r.entries[i].Key >= key })
	if i < len(r.entries) && r.entries[i].Key == key {
		return i, true
	}
	return 0, false
}

// Entry returns the index row of id.
func (r *Reader) Entry(id int) IndexEntry { return r.entries[id] }

// Key returns the key of id.
func (r *Reader) Key(id int) Key { return r.entries[id].Key }

// Offset returns the data file offset of id.
func (r *Reader) Offset(id int) uint64 { return r.entries[id].Offset }

// EntryLen returns the logical length of id as recorded in the index.
func (r *Reader) EntryLen(id int) uint64 { return r.entries[id].Length }

// LookupIDByAccession returns the lookup id of accession.
func (r *Reader) LookupIDByAccession(accession string) (int, bool) {
	if r.lookup == nil {
		return 0, false
	}
	return r.lookup.idByAccession(accession)
}

// LookupKey returns the key of a lookup id. It returns ErrNoLookup when the
// reader was opened without UseLookup.
func (r *Reader) LookupKey(lookupID int) (Key, error) {
	if r.lookup == nil {
		return 0, ErrNoLookup
	}
	if lookupID < 0 || lookupID >= len(r.lookup.entries) {
		return 0, fmt.Errorf("seqdb: lookup id %d out of range [0,%d)", lookupID, len(r.lookup.entries))
	}
	return r.lookup.entries[lookupID].Key, nil
}

// HasLookup reports whether the accession lookup was loaded.
func (r *Reader) HasLookup() bool { return r.lookup != nil }

// RawData returns the data file bytes from the offset of id up to the end of the
// shard that holds it. The entry itself is a prefix of the view.
func (r *Reader) RawData(id int) ([]byte, error) {
	if r.data == nil {
		return nil, ErrNoData
	}
	off := r.entries[id].Offset
	view, err := r.data.View(int64(off))
	if err != nil {
		return nil, fmt.Errorf("seqdb: key %d at offset %d: %w", r.entries[id].Key, off, err)
	}
	return view, nil
}

// Frame decodes the framing of id.
func (r *Reader) Frame(id int) (frame.Frame, error) {
	view, err := r.RawData(id)
	if err != nil {
		return nil, err
	}
	f, err := frame.Decode(view, r.compressed, r.entries[id].Length)
	if err != nil {
		return nil, fmt.Errorf("seqdb: key %d: %w", r.entries[id].Key, err)
	}
	return f, nil
}

// Data returns the payload of id without terminator, decompressing if needed.
func (r *Reader) Data(id int) ([]byte, error) {
	f, err := r.Frame(id)
	if err != nil {
		return nil, err
	}
	p, err := f.Payload()
	if err != nil {
		return nil, fmt.Errorf("seqdb: key %d: %w", r.entries[id].Key, err)
	}
	return p, nil
}

// Close releases the data mapping.
func (r *Reader) Close() error {
	if r.data == nil {
		return nil
	}
	err := r.data.Close()
	r.data = nil
	return err
}
