package projector

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/hupe1980/subdb/frame"
	"github.com/hupe1980/subdb/orderfile"
	"github.com/hupe1980/subdb/seqdb"
)

var (
	// ErrMalformedRow is returned for rows whose range list cannot be applied. Nothing is
	// written for such rows.
	ErrMalformedRow = errors.New("projector: malformed row")
	// ErrRangeBounds is returned for a range that reaches past the entry payload.
	ErrRangeBounds = errors.New("projector: range outside entry")
)

// Source is the read side of a projection.
type Source interface {
	Offset(id int) uint64
	EntryLen(id int) uint64
	Frame(id int) (frame.Frame, error)
	Data(id int) ([]byte, error)
}

// Sink is the write side of a projection.
type Sink interface {
	WriteData(p []byte, key seqdb.Key, terminate bool) (uint64, error)
	WriteIndexEntry(key seqdb.Key, offset, length uint64) error
	Offset() uint64
}

// Options are the run-wide inputs of strategy selection.
type Options struct {
	Soft        bool
	IndexFormat bool
	Generic     bool
}

// Row is a resolved order file line.
type Row struct {
	Key  seqdb.Key
	ID   int // row id in the source
	Line orderfile.Line
}

// Outcome describes a projected row.
type Outcome struct {
	Strategy Strategy
	Entry    seqdb.IndexEntry
	// Written is the number of data bytes appended to the sink.
	Written uint64
}

// Projector copies rows from a source store into a destination store.
type Projector struct {
	src  Source
	dst  Sink
	opts Options
}

// New returns a Projector.
func New(src Source, dst Sink, opts Options) *Projector {
	return &Projector{src: src, dst: dst, opts: opts}
}

// Project writes row to the sink and returns what was written.
//
// Errors wrapping ErrMalformedRow leave the sink untouched; any other error is an I/O or
// source corruption failure.
func (p *Projector) Project(row Row) (Outcome, error) {
	s := Select(Decision{
		Soft:        p.opts.Soft,
		IndexFormat: p.opts.IndexFormat,
		HasRanges:   len(row.Line.Fields) > 0,
		Generic:     p.opts.Generic,
	})

	before := p.dst.Offset()
	var (
		e   seqdb.IndexEntry
		err error
	)
	switch s {
	case LinkOnly:
		e, err = p.link(row)
	case WholeEntry:
		e, err = p.copyEntry(row)
	case RangeSplice:
		e, err = p.splice(row)
	default:
		err = fmt.Errorf("projector: unhandled strategy %s", s)
	}
	if err != nil {
		return Outcome{Strategy: s}, err
	}
	return Outcome{Strategy: s, Entry: e, Written: p.dst.Offset() - before}, nil
}

func (p *Projector) link(row Row) (seqdb.IndexEntry, error) {
	e := seqdb.IndexEntry{Key: row.Key, Offset: p.src.Offset(row.ID), Length: p.src.EntryLen(row.ID)}
	return e, p.dst.WriteIndexEntry(e.Key, e.Offset, e.Length)
}

func (p *Projector) copyEntry(row Row) (seqdb.IndexEntry, error) {
	f, err := p.src.Frame(row.ID)
	if err != nil {
		return seqdb.IndexEntry{}, err
	}

	var off uint64
	switch f := f.(type) {
	case frame.Compressed:
		// The frame already carries its own marker.
		off, err = p.dst.WriteData(frame.Encode(f), row.Key, false)
	case frame.Uncompressed:
		off, err = p.dst.WriteData(f.Data, row.Key, true)
	default:
		return seqdb.IndexEntry{}, fmt.Errorf("projector: unexpected frame %T", f)
	}
	if err != nil {
		return seqdb.IndexEntry{}, err
	}

	e := seqdb.IndexEntry{Key: row.Key, Offset: off, Length: p.src.EntryLen(row.ID)}
	return e, p.dst.WriteIndexEntry(e.Key, e.Offset, e.Length)
}

func (p *Projector) splice(row Row) (seqdb.IndexEntry, error) {
	ranges, err := row.Line.Ranges()
	if err != nil {
		return seqdb.IndexEntry{}, fmt.Errorf("%w: %w", ErrMalformedRow, err)
	}

	payload, err := p.src.Data(row.ID)
	if err != nil {
		return seqdb.IndexEntry{}, err
	}

	n := 0
	for _, r := range ranges {
		if r.End >= len(payload) {
			return seqdb.IndexEntry{}, fmt.Errorf("%w: %w: %s of %d bytes", ErrMalformedRow, ErrRangeBounds, r, len(payload))
		}
		n += r.Len()
	}

	var buf bytes.Buffer
	buf.Grow(n + 1)
	for _, r := range ranges {
		buf.Write(payload[r.Start : r.End+1])
	}
	buf.WriteByte('\n')

	// A compressed sink frames the newline into the block; a plain one adds the terminator.
	off, err := p.dst.WriteData(buf.Bytes(), row.Key, true)
	if err != nil {
		return seqdb.IndexEntry{}, err
	}

	e := seqdb.IndexEntry{Key: row.Key, Offset: off, Length: uint64(n) + 2}
	return e, p.dst.WriteIndexEntry(e.Key, e.Offset, e.Length)
}
