package seqdb

import (
	"bufio"
	"fmt"
	"os"
	"slices"

	"github.com/hupe1980/subdb/frame"
	"github.com/hupe1980/subdb/internal/fs"
)

type options struct {
	fs         fs.FileSystem
	bufferSize int
}

// Option configures Create, Softlink and WriteDBType.
type Option func(*options)

func applyOptions(optFns []Option) options {
	o := options{fs: fs.Default, bufferSize: 1 << 20}
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}

// WithFileSystem routes all file writes, removals and links through fsys.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		if fsys != nil {
			o.fs = fsys
		}
	}
}

// WithBufferSize sets the data file write buffer size.
func WithBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.bufferSize = n
		}
	}
}

// Writer appends entries to a new store. It owns a single writer shard: data goes to
// path.0 until Close decides on the final layout.
//
// Writer is not safe for concurrent use.
type Writer struct {
	fs         fs.FileSystem
	path       string
	compressed bool
	file       fs.File
	buf        *bufio.Writer
	offset     uint64 // write cursor
	start      uint64 // offset of the last WriteData
	index      []IndexEntry
	closed     bool
}

// Create starts a new store at path, removing data files of an earlier store there.
func Create(path string, compressed bool, optFns ...Option) (*Writer, error) {
	o := applyOptions(optFns)

	if err := removeDataFiles(o.fs, path); err != nil {
		return nil, fmt.Errorf("seqdb: create %s: %w", path, err)
	}
	f, err := o.fs.OpenFile(shardPath(path, 0), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("seqdb: create %s: %w", path, err)
	}

	return &Writer{
		fs:         o.fs,
		path:       path,
		compressed: compressed,
		file:       f,
		buf:        bufio.NewWriterSize(f, o.bufferSize),
	}, nil
}

// Path returns the store path.
func (w *Writer) Path() string { return w.path }

// Compressed reports whether the store frames entries as compressed blocks.
func (w *Writer) Compressed() bool { return w.compressed }

// Offset returns the write cursor: the number of data bytes appended so far.
func (w *Writer) Offset() uint64 { return w.offset }

// Start returns the offset at which the last WriteData began.
func (w *Writer) Start() uint64 { return w.start }

// Len returns the number of index entries written.
func (w *Writer) Len() int { return len(w.index) }

// WriteData begins a new entry at the cursor and appends p.
//
// With terminate set, the entry is finished the way the store finishes entries: a
// compressed store encodes p as a compressed frame, an uncompressed store appends a NUL
// terminator. Without it, p is appended verbatim, which is how already framed bytes
// are copied between stores of the same kind.
//
// It returns the offset of the entry.
func (w *Writer) WriteData(p []byte, key Key, terminate bool) (uint64, error) {
	if w.closed {
		return 0, ErrClosed
	}
	w.start = w.offset

	var err error
	switch {
	case terminate && w.compressed:
		err = w.write(frame.Encode(frame.Compress(p)))
	case terminate:
		err = w.write(p)
		if err == nil {
			err = w.write([]byte{0})
		}
	default:
		err = w.write(p)
	}
	if err != nil {
		return 0, fmt.Errorf("seqdb: write key %d: %w", key, err)
	}
	return w.start, nil
}

// WriteAdd appends p to the current entry.
func (w *Writer) WriteAdd(p []byte) error {
	if w.closed {
		return ErrClosed
	}
	if err := w.write(p); err != nil {
		return fmt.Errorf("seqdb: write: %w", err)
	}
	return nil
}

func (w *Writer) write(p []byte) error {
	n, err := w.buf.Write(p)
	w.offset += uint64(n)
	return err
}

// WriteIndexEntry appends an index row.
func (w *Writer) WriteIndexEntry(key Key, offset, length uint64) error {
	if w.closed {
		return ErrClosed
	}
	w.index = append(w.index, IndexEntry{Key: key, Offset: offset, Length: length})
	return nil
}

// Append writes payload as a complete entry and indexes it with the store's logical
// length (payload plus terminator).
func (w *Writer) Append(key Key, payload []byte) error {
	off, err := w.WriteData(payload, key, true)
	if err != nil {
		return err
	}
	return w.WriteIndexEntry(key, off, uint64(len(payload))+1)
}

// Close finishes the store.
//
// With merge set the shard becomes the single data file path; otherwise the split
// layout (path.0) is kept. With sortIndex set the index is ordered by key; otherwise
// rows keep their write order.
func (w *Writer) Close(merge, sortIndex bool) error {
	if w.closed {
		return ErrClosed
	}
	w.closed = true

	if err := w.buf.Flush(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("seqdb: close %s: flush: %w", w.path, err)
	}
	if err := w.file.Sync(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("seqdb: close %s: sync: %w", w.path, err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("seqdb: close %s: %w", w.path, err)
	}

	if sortIndex {
		slices.SortStableFunc(w.index, compareEntries)
	}
	buf := make([]byte, 0, len(w.index)*24)
	for _, e := range w.index {
		buf = appendIndexLine(buf, e)
	}
	if err := writeFileAtomicFS(w.fs, IndexPath(w.path), buf); err != nil {
		return fmt.Errorf("seqdb: close %s: write index: %w", w.path, err)
	}

	if merge {
		if err := w.fs.Rename(shardPath(w.path, 0), w.path); err != nil {
			return fmt.Errorf("seqdb: close %s: merge: %w", w.path, err)
		}
	}
	return nil
}

// Abort discards the store being written. The index is not written and the shard is
// removed.
func (w *Writer) Abort() error {
	if w.closed {
		return ErrClosed
	}
	w.closed = true
	err := w.file.Close()
	if rerr := fs.RemoveIfExists(w.fs, shardPath(w.path, 0)); err == nil {
		err = rerr
	}
	return err
}
