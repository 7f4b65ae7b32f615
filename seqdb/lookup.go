package seqdb

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strconv"

	"github.com/google/btree"
)

// LookupPath returns the accession lookup path of the store at path.
func LookupPath(path string) string { return path + ".lookup" }

// LookupEntry is one row of a lookup file: key\taccession\tfile.
type LookupEntry struct {
	Key       Key
	Accession string
	File      uint32
}

var errLookupFields = errors.New("want key<TAB>accession[<TAB>file]")

type accessionItem struct {
	accession string
	id        int
}

// lookupTable resolves accessions to lookup ids. The first row wins for
// accessions that appear more than once.
type lookupTable struct {
	entries []LookupEntry
	byName  *btree.BTreeG[accessionItem]
}

func newLookupTable(entries []LookupEntry) *lookupTable {
	t := &lookupTable{
		entries: entries,
		byName: btree.NewG(32, func(a, b accessionItem) bool {
			return a.accession < b.accession
		}),
	}
	for i, e := range entries {
		item := accessionItem{accession: e.Accession, id: i}
		if !t.byName.Has(item) {
			t.byName.ReplaceOrInsert(item)
		}
	}
	return t
}

func (t *lookupTable) idByAccession(accession string) (int, bool) {
	item, ok := t.byName.Get(accessionItem{accession: accession})
	if !ok {
		return 0, false
	}
	return item.id, true
}

func readLookup(r io.Reader, name string) ([]LookupEntry, error) {
	var entries []LookupEntry
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := bytes.TrimRight(sc.Bytes(), "\r")
		if len(line) == 0 {
			continue
		}
		fields := bytes.Split(line, []byte{'\t'})
		if len(fields) < 2 {
			return nil, &ParseError{File: name, Line: lineNo, cause: errLookupFields}
		}
		key, err := strconv.ParseUint(string(fields[0]), 10, 32)
		if err != nil {
			return nil, &ParseError{File: name, Line: lineNo, cause: err}
		}
		e := LookupEntry{Key: Key(key), Accession: string(fields[1])}
		if len(fields) > 2 {
			file, err := strconv.ParseUint(string(fields[2]), 10, 32)
			if err != nil {
				return nil, &ParseError{File: name, Line: lineNo, cause: err}
			}
			e.File = uint32(file)
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// WriteLookup writes a lookup file for the store at path.
func WriteLookup(path string, entries []LookupEntry) error {
	var buf []byte
	for _, e := range entries {
		buf = strconv.AppendUint(buf, uint64(e.Key), 10)
		buf = append(buf, '\t')
		buf = append(buf, e.Accession...)
		buf = append(buf, '\t')
		buf = strconv.AppendUint(buf, uint64(e.File), 10)
		buf = append(buf, '\n')
	}
	return writeFileAtomic(LookupPath(path), buf)
}
