package mmap

import (
	"errors"
	"sort"
)

// Set maps a sequence of files that together form one logical address space,
// the way split data shards (db.0, db.1, ...) are addressed by a single index.
// Offset 0 of the second file follows the last byte of the first one.
type Set struct {
	maps   []*Mapping
	starts []int64 // global offset of each mapping
	size   int64
}

// OpenSet maps every path in order. On failure the already mapped files are released.
func OpenSet(paths ...string) (*Set, error) {
	s := &Set{
		maps:   make([]*Mapping, 0, len(paths)),
		starts: make([]int64, 0, len(paths)),
	}
	for _, p := range paths {
		m, err := Open(p)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s.maps = append(s.maps, m)
		s.starts = append(s.starts, s.size)
		s.size += m.Size()
	}
	return s, nil
}

// Size returns the combined size of all files.
func (s *Set) Size() int64 { return s.size }

// Len returns the number of mapped files.
func (s *Set) Len() int { return len(s.maps) }

// View returns the bytes from global offset off up to the end of the file that
// contains it. Entries never straddle files, so the view always covers a whole entry.
func (s *Set) View(off int64) ([]byte, error) {
	if off < 0 {
		return nil, ErrInvalidOffset
	}
	if off >= s.size {
		return nil, ErrOutOfBounds
	}
	// Last mapping whose start is <= off. Empty files share their start with the
	// next file and are skipped by searching for the first start > off.
	i := sort.Search(len(s.starts), func(i int) bool { return s.starts[i] > off }) - 1
	data := s.maps[i].Bytes()
	if data == nil && s.maps[i].closed.Load() {
		return nil, ErrClosed
	}
	return data[off-s.starts[i]:], nil
}

// Advise applies pattern to every mapping.
func (s *Set) Advise(pattern AccessPattern) error {
	var errs []error
	for _, m := range s.maps {
		if err := m.Advise(pattern); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close unmaps every file.
func (s *Set) Close() error {
	var errs []error
	for _, m := range s.maps {
		if err := m.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
