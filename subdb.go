package subdb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/subdb/internal/fs"
	"github.com/hupe1980/subdb/internal/resolve"
	"github.com/hupe1980/subdb/orderfile"
	"github.com/hupe1980/subdb/projector"
	"github.com/hupe1980/subdb/seqdb"
)

// Create builds the store cfg.Dest from the entries of cfg.Source listed in
// cfg.OrderFile, in order file order.
//
// Rows that do not resolve, name a key missing from the source, or carry an unusable
// range list are logged and skipped. Any other failure aborts the run.
func Create(ctx context.Context, cfg Config, optFns ...Option) (*Summary, error) {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	log := o.logger.WithRun(cfg)

	start := time.Now()
	s, err := create(ctx, cfg, o, log)
	o.metricsCollector.RecordRun(rowsOf(s), time.Since(start), err)
	log.LogSummary(ctx, s, err)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func rowsOf(s *Summary) int {
	if s == nil {
		return 0
	}
	return s.Rows
}

type run struct {
	cfg       Config
	o         options
	log       *Logger
	src       *seqdb.Reader
	dst       *seqdb.Writer
	resolver  resolve.Resolver
	projector *projector.Projector
	order     OrderTracker
	written   *roaring.Bitmap
	summary   Summary
}

func create(ctx context.Context, cfg Config, o options, log *Logger) (*Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	orderPath, indexFormat, err := locateOrderFile(o.fs, cfg.OrderFile)
	if err != nil {
		return nil, err
	}
	orderFile, err := o.fs.OpenFile(orderPath, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open order file: %w", err)
	}

	mode := seqdb.UseIndex
	if cfg.Mode == Hard {
		mode |= seqdb.UseData
	}
	if cfg.IDMode == LookupIDs {
		mode |= seqdb.UseLookupRev
	}
	src, err := seqdb.Open(cfg.Source, mode)
	if err != nil {
		_ = orderFile.Close()
		return nil, fmt.Errorf("open source: %w", err)
	}

	dst, err := seqdb.Create(cfg.Dest, src.Compressed(), seqdb.WithFileSystem(o.fs))
	if err != nil {
		_ = src.Close()
		_ = orderFile.Close()
		return nil, fmt.Errorf("create destination: %w", err)
	}

	r := &run{
		cfg:      cfg,
		o:        o,
		log:      log,
		src:      src,
		dst:      dst,
		resolver: resolve.NewNumeric(),
		projector: projector.New(src, dst, projector.Options{
			Soft:        cfg.Mode == Soft,
			IndexFormat: indexFormat,
			Generic:     src.DBType().IsGeneric(),
		}),
		written: roaring.New(),
	}
	if cfg.IDMode == LookupIDs {
		r.resolver = resolve.NewLookup(src)
	}
	r.summary.IndexFormat = indexFormat
	r.summary.DBType = src.DBType()

	if err := r.scan(ctx, orderfile.NewScanner(orderFile)); err != nil {
		_ = dst.Abort()
		_ = src.Close()
		_ = orderFile.Close()
		return nil, err
	}

	if err := r.finish(); err != nil {
		_ = src.Close()
		_ = orderFile.Close()
		return nil, err
	}
	if err := src.Close(); err != nil {
		_ = orderFile.Close()
		return nil, &CloseError{Path: cfg.Source, cause: err}
	}
	if err := orderFile.Close(); err != nil {
		return nil, &CloseError{Path: orderPath, cause: err}
	}
	return &r.summary, nil
}

// locateOrderFile prefers a store index next to the order file.
func locateOrderFile(fsys fs.FileSystem, path string) (string, bool, error) {
	if index := seqdb.IndexPath(path); fs.Exists(fsys, index) {
		return index, true, nil
	}
	if fs.Exists(fsys, path) {
		return path, false, nil
	}
	return "", false, fmt.Errorf("%w: %s", ErrOrderFileMissing, path)
}

func (r *run) scan(ctx context.Context, sc *orderfile.Scanner) error {
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.summary.Rows++
		if err := r.row(ctx, sc.Line()); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read order file: %w", err)
	}
	return nil
}

func (r *run) row(ctx context.Context, line orderfile.Line) error {
	start := time.Now()

	if line.Overlong {
		r.skip(ctx, line, SkipOverlong, fmt.Errorf("%w: more than %d bytes", ErrDescriptorTooLong, orderfile.MaxKeyLen))
		return nil
	}
	key, err := r.resolver.Resolve(line.Key)
	if err != nil {
		r.skip(ctx, line, SkipUnresolved, err)
		return nil
	}
	id, ok := r.src.ID(key)
	if !ok {
		r.skip(ctx, line, SkipMissing, fmt.Errorf("%w: %d", ErrKeyNotFound, key))
		return nil
	}
	r.order.Observe(key)

	out, err := r.projector.Project(projector.Row{Key: key, ID: id, Line: line})
	if errors.Is(err, projector.ErrMalformedRow) {
		r.skip(ctx, line, SkipMalformed, err)
		return nil
	}
	if err != nil {
		return &RowError{Line: line.Number, Descriptor: line.Key, cause: err}
	}

	switch out.Strategy {
	case projector.LinkOnly:
		r.summary.LinkOnly++
	case projector.WholeEntry:
		r.summary.WholeEntry++
	case projector.RangeSplice:
		r.summary.RangeSplice++
	}
	r.summary.Bytes += out.Written
	if !r.written.CheckedAdd(uint32(key)) {
		r.summary.Duplicates++
		r.log.LogDuplicate(ctx, line.Number, uint32(key))
	}

	r.o.metricsCollector.RecordRow(out.Strategy, out.Written, time.Since(start))
	r.log.LogRow(ctx, line.Number, uint32(key), out.Strategy.String(), out.Written)
	return nil
}

func (r *run) skip(ctx context.Context, line orderfile.Line, reason SkipReason, err error) {
	r.summary.skip(reason)
	r.o.metricsCollector.RecordSkip(reason)
	r.log.LogSkip(ctx, line.Number, line.Key, reason, err)
}

// finish closes the destination and propagates the source's side files.
func (r *run) finish() error {
	typ := r.src.DBType()
	merge := typ.IsSequence()
	ordered := r.order.Ordered()

	if err := r.dst.Close(merge, !ordered); err != nil {
		return &CloseError{Path: r.cfg.Dest, cause: err}
	}
	r.summary.Ordered = ordered
	r.summary.Merged = merge

	if r.cfg.Mode == Soft {
		if err := seqdb.Softlink(r.cfg.Source, r.cfg.Dest, seqdb.FilesData, seqdb.WithFileSystem(r.o.fs)); err != nil {
			return err
		}
	}
	if err := seqdb.WriteDBType(r.cfg.Dest, typ, r.src.Compressed(), seqdb.WithFileSystem(r.o.fs)); err != nil {
		return err
	}
	return seqdb.Softlink(r.cfg.Source, r.cfg.Dest, seqdb.FilesAncillary, seqdb.WithFileSystem(r.o.fs))
}
