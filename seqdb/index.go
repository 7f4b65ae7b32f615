package seqdb

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strconv"
)

// Key identifies an entry within a store.
type Key uint32

// IndexEntry is one row of a store index: the entry with Key occupies Length logical
// bytes starting at Offset in the data file.
type IndexEntry struct {
	Key    Key
	Offset uint64
	Length uint64
}

// IndexPath returns the index path of the store at path.
func IndexPath(path string) string { return path + ".index" }

var errIndexFields = errors.New("want key<TAB>offset<TAB>length")

// readIndex parses index rows (key\toffset\tlength) in file order.
func readIndex(r io.Reader, name string) ([]IndexEntry, error) {
	var entries []IndexEntry
	br := bufio.NewReaderSize(r, 1<<16)
	for lineNo := 1; ; lineNo++ {
		line, err := br.ReadSlice('\n')
		if err == bufio.ErrBufferFull {
			return nil, &ParseError{File: name, Line: lineNo, cause: err}
		}
		if err != nil && err != io.EOF {
			return nil, err
		}
		if len(bytes.TrimSpace(line)) > 0 {
			e, perr := parseIndexLine(line)
			if perr != nil {
				return nil, &ParseError{File: name, Line: lineNo, cause: perr}
			}
			entries = append(entries, e)
		}
		if err == io.EOF {
			return entries, nil
		}
	}
}

func parseIndexLine(line []byte) (IndexEntry, error) {
	fields := bytes.Split(bytes.TrimRight(line, "\r\n"), []byte{'\t'})
	if len(fields) < 3 {
		return IndexEntry{}, errIndexFields
	}
	key, err := strconv.ParseUint(string(fields[0]), 10, 32)
	if err != nil {
		return IndexEntry{}, err
	}
	off, err := strconv.ParseUint(string(fields[1]), 10, 64)
	if err != nil {
		return IndexEntry{}, err
	}
	length, err := strconv.ParseUint(string(fields[2]), 10, 64)
	if err != nil {
		return IndexEntry{}, err
	}
	return IndexEntry{Key: Key(key), Offset: off, Length: length}, nil
}

func appendIndexLine(dst []byte, e IndexEntry) []byte {
	dst = strconv.AppendUint(dst, uint64(e.Key), 10)
	dst = append(dst, '\t')
	dst = strconv.AppendUint(dst, e.Offset, 10)
	dst = append(dst, '\t')
	dst = strconv.AppendUint(dst, e.Length, 10)
	return append(dst, '\n')
}
