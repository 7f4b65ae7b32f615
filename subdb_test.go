package subdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/hupe1980/subdb/internal/fs"
	"github.com/hupe1980/subdb/orderfile"
	"github.com/hupe1980/subdb/seqdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRun struct {
	dir   string
	order string
	src   string
	dst   string
}

func newTestRun(t *testing.T, compressed bool, typ seqdb.DBType, payloads map[seqdb.Key]string) *testRun {
	t.Helper()
	dir := t.TempDir()
	tr := &testRun{
		dir:   dir,
		order: filepath.Join(dir, "order.txt"),
		src:   filepath.Join(dir, "src"),
		dst:   filepath.Join(dir, "dst"),
	}

	w, err := seqdb.Create(tr.src, compressed)
	require.NoError(t, err)
	for _, k := range slices.Sorted(maps.Keys(payloads)) {
		require.NoError(t, w.Append(k, []byte(payloads[k])))
	}
	require.NoError(t, w.Close(true, true))
	require.NoError(t, seqdb.WriteDBType(tr.src, typ, compressed))
	return tr
}

func (tr *testRun) writeOrder(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(tr.order, []byte(content), 0o644))
}

func (tr *testRun) config(mode SubsetMode, idMode IDMode) Config {
	return Config{OrderFile: tr.order, Source: tr.src, Dest: tr.dst, Mode: mode, IDMode: idMode}
}

func (tr *testRun) create(t *testing.T, cfg Config, optFns ...Option) (*Summary, error) {
	t.Helper()
	return Create(context.Background(), cfg, append([]Option{WithLogger(NoopLogger())}, optFns...)...)
}

func readFile(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(name)
	require.NoError(t, err)
	return string(data)
}

func TestCreate_Unordered(t *testing.T) {
	tr := newTestRun(t, false, seqdb.AminoAcids, map[seqdb.Key]string{1: "one", 2: "two", 3: "three"})
	tr.writeOrder(t, "3\n1\n2\n")

	s, err := tr.create(t, tr.config(Hard, NumericIDs))
	require.NoError(t, err)

	assert.Equal(t, 3, s.Rows)
	assert.Equal(t, 3, s.WholeEntry)
	assert.False(t, s.Ordered)
	assert.True(t, s.Merged)
	assert.Equal(t, uint64(14), s.Bytes)

	// Payloads keep order file order; the index is sorted on close.
	assert.Equal(t, "three\x00one\x00two\x00", readFile(t, tr.dst))
	assert.Equal(t, "1\t6\t4\n2\t10\t4\n3\t0\t6\n", readFile(t, seqdb.IndexPath(tr.dst)))
}

func TestCreate_Ordered(t *testing.T) {
	tr := newTestRun(t, false, seqdb.Nucleotides, map[seqdb.Key]string{1: "A", 2: "C", 3: "G"})
	tr.writeOrder(t, "1\n3\n3\n")

	s, err := tr.create(t, tr.config(Hard, NumericIDs))
	require.NoError(t, err)

	assert.True(t, s.Ordered)
	assert.Equal(t, 1, s.Duplicates)
	assert.Equal(t, "1\t0\t2\n3\t2\t2\n3\t4\t2\n", readFile(t, seqdb.IndexPath(tr.dst)))
}

func TestCreate_RangeSplice(t *testing.T) {
	tr := newTestRun(t, false, seqdb.AminoAcids, map[seqdb.Key]string{1: "XYZ", 2: "ABCDEFGH"})
	tr.writeOrder(t, "2\t0\t3\n")

	s, err := tr.create(t, tr.config(Hard, NumericIDs))
	require.NoError(t, err)
	assert.Equal(t, 1, s.RangeSplice)
	assert.Equal(t, uint64(6), s.Bytes)

	assert.Equal(t, "ABCD\n\x00", readFile(t, tr.dst))
	assert.Equal(t, "2\t0\t6\n", readFile(t, seqdb.IndexPath(tr.dst)))
}

func TestCreate_RangeSpliceCompressed(t *testing.T) {
	payload := strings.Repeat("MKVLAAGIVG", 20)
	tr := newTestRun(t, true, seqdb.AminoAcids, map[seqdb.Key]string{4: payload})
	tr.writeOrder(t, "4\t10\t19\t0\t4\n")

	s, err := tr.create(t, tr.config(Hard, NumericIDs))
	require.NoError(t, err)
	assert.Equal(t, 1, s.RangeSplice)

	r, err := seqdb.Open(tr.dst, seqdb.UseData)
	require.NoError(t, err)
	defer r.Close()
	require.True(t, r.Compressed())

	id, ok := r.ID(4)
	require.True(t, ok)
	assert.Equal(t, uint64(10+5+2), r.EntryLen(id))
	got, err := r.Data(id)
	require.NoError(t, err)
	assert.Equal(t, "MKVLAAGIVGMKVLA\n", string(got))
}

func TestCreate_MalformedRowIsDropped(t *testing.T) {
	tr := newTestRun(t, false, seqdb.AminoAcids, map[seqdb.Key]string{1: "AAA", 2: "BB", 9: "CCCCCC"})
	tr.writeOrder(t, "1\n9\t0\t2\t5\n2\n9\t0\t6\n")

	s, err := tr.create(t, tr.config(Hard, NumericIDs))
	require.NoError(t, err)

	assert.Equal(t, 4, s.Rows)
	assert.Equal(t, 2, s.Malformed)
	assert.Equal(t, 2, s.Written())
	// Key 9 resolved, so it still counts towards ordering.
	assert.False(t, s.Ordered)

	assert.Equal(t, "AAA\x00BB\x00", readFile(t, tr.dst))
	assert.Equal(t, "1\t0\t4\n2\t4\t3\n", readFile(t, seqdb.IndexPath(tr.dst)))
}

func TestCreate_LookupMode(t *testing.T) {
	tr := newTestRun(t, false, seqdb.AminoAcids, map[seqdb.Key]string{1: "A", 2: "B", 3: "C"})
	require.NoError(t, seqdb.WriteLookup(tr.src, []seqdb.LookupEntry{
		{Key: 1, Accession: "ACC1"},
		{Key: 2, Accession: "ACC2"},
		{Key: 3, Accession: "ACC3"},
	}))
	require.NoError(t, os.WriteFile(tr.src+"_h", []byte("header\x00"), 0o644))
	tr.writeOrder(t, "ACC1\nZZZ\nACC3\n")

	s, err := tr.create(t, tr.config(Hard, LookupIDs))
	require.NoError(t, err)

	assert.Equal(t, 1, s.Unresolved)
	assert.Equal(t, 2, s.WholeEntry)
	assert.True(t, s.Ordered)

	for _, suffix := range []string{".lookup", "_h"} {
		info, err := os.Lstat(tr.dst + suffix)
		require.NoError(t, err)
		assert.NotZero(t, info.Mode()&os.ModeSymlink, suffix)
	}
	assert.NoFileExists(t, tr.dst+"_h.index")
}

func TestCreate_MissingKeys(t *testing.T) {
	tr := newTestRun(t, false, seqdb.AminoAcids, map[seqdb.Key]string{1: "A", 2: "B"})
	tr.writeOrder(t, "2\n7\nabc\n\n1\n")

	s, err := tr.create(t, tr.config(Hard, NumericIDs))
	require.NoError(t, err)

	assert.Equal(t, 5, s.Rows)
	assert.Equal(t, 1, s.Missing)
	assert.Equal(t, 2, s.Unresolved)
	assert.Equal(t, 3, s.Skipped())
	assert.False(t, s.Ordered)
}

func TestCreate_MissingKeysKeepOrder(t *testing.T) {
	tr := newTestRun(t, false, seqdb.AminoAcids, map[seqdb.Key]string{1: "A", 2: "B"})
	tr.writeOrder(t, "1\n7\n2\n")

	s, err := tr.create(t, tr.config(Hard, NumericIDs))
	require.NoError(t, err)

	assert.Equal(t, 1, s.Missing)
	assert.True(t, s.Ordered)
	assert.Equal(t, "1\t0\t2\n2\t2\t2\n", readFile(t, seqdb.IndexPath(tr.dst)))
}

func TestCreate_OverlongDescriptor(t *testing.T) {
	tr := newTestRun(t, false, seqdb.AminoAcids, map[seqdb.Key]string{1: "A"})
	tr.writeOrder(t, strings.Repeat("1", orderfile.MaxKeyLen+1)+"\n1\n")

	s, err := tr.create(t, tr.config(Hard, NumericIDs))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Overlong)
	assert.Equal(t, 1, s.WholeEntry)
}

func TestCreate_SoftMode(t *testing.T) {
	tr := newTestRun(t, false, seqdb.AminoAcids, map[seqdb.Key]string{1: "AAAA", 2: "BB", 3: "C"})
	tr.writeOrder(t, "3\t0\t0\n1\n")

	s, err := tr.create(t, tr.config(Soft, NumericIDs))
	require.NoError(t, err)

	assert.Equal(t, 2, s.LinkOnly)
	assert.Zero(t, s.Bytes)
	assert.Equal(t, "1\t0\t5\n3\t8\t2\n", readFile(t, seqdb.IndexPath(tr.dst)))

	info, err := os.Lstat(tr.dst)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)
	assert.NoFileExists(t, tr.dst+".0")

	r, err := seqdb.Open(tr.dst, seqdb.UseData)
	require.NoError(t, err)
	defer r.Close()
	id, ok := r.ID(3)
	require.True(t, ok)
	got, err := r.Data(id)
	require.NoError(t, err)
	assert.Equal(t, "C", string(got))
}

func TestCreate_WholeEntryRoundTrip(t *testing.T) {
	payloads := map[seqdb.Key]string{
		1: strings.Repeat("ACGT", 200),
		2: "M",
		3: "",
	}
	for _, compressed := range []bool{false, true} {
		t.Run(map[bool]string{false: "plain", true: "compressed"}[compressed], func(t *testing.T) {
			tr := newTestRun(t, compressed, seqdb.Nucleotides, payloads)
			tr.writeOrder(t, "3\n2\n1\n")

			_, err := tr.create(t, tr.config(Hard, NumericIDs))
			require.NoError(t, err)

			typ, gotCompressed, err := seqdb.ReadDBType(tr.dst)
			require.NoError(t, err)
			assert.Equal(t, seqdb.Nucleotides, typ)
			assert.Equal(t, compressed, gotCompressed)

			src, err := seqdb.Open(tr.src, seqdb.UseData)
			require.NoError(t, err)
			defer src.Close()
			dst, err := seqdb.Open(tr.dst, seqdb.UseData)
			require.NoError(t, err)
			defer dst.Close()

			for k, want := range payloads {
				id, ok := dst.ID(k)
				require.True(t, ok)
				srcID, _ := src.ID(k)
				assert.Equal(t, src.EntryLen(srcID), dst.EntryLen(id))

				got, err := dst.Data(id)
				require.NoError(t, err)
				assert.Equal(t, want, string(got))
			}
		})
	}
}

func TestCreate_IndexFormatOrderFile(t *testing.T) {
	tr := newTestRun(t, false, seqdb.AminoAcids, map[seqdb.Key]string{1: "XYZ", 2: "ABCDEFGH"})
	tr.writeOrder(t, "1\n")
	require.NoError(t, os.WriteFile(seqdb.IndexPath(tr.order), []byte("2\t4\t9\n"), 0o644))

	s, err := tr.create(t, tr.config(Hard, NumericIDs))
	require.NoError(t, err)

	assert.True(t, s.IndexFormat)
	assert.Equal(t, 1, s.WholeEntry)
	assert.Equal(t, "ABCDEFGH\x00", readFile(t, tr.dst))
}

func TestCreate_GenericIsCopiedWhole(t *testing.T) {
	tr := newTestRun(t, false, seqdb.Generic, map[seqdb.Key]string{5: "opaque"})
	tr.writeOrder(t, "5\t0\t1\n")

	s, err := tr.create(t, tr.config(Hard, NumericIDs))
	require.NoError(t, err)

	assert.Equal(t, 1, s.WholeEntry)
	assert.False(t, s.Merged)
	assert.NoFileExists(t, tr.dst)
	assert.Equal(t, "opaque\x00", readFile(t, tr.dst+".0"))
}

func TestCreate_OrderFileMissing(t *testing.T) {
	tr := newTestRun(t, false, seqdb.AminoAcids, map[seqdb.Key]string{1: "A"})

	_, err := tr.create(t, tr.config(Hard, NumericIDs))
	assert.ErrorIs(t, err, ErrOrderFileMissing)
	assert.NoFileExists(t, tr.dst+".0")
}

func TestCreate_SourceMissing(t *testing.T) {
	tr := newTestRun(t, false, seqdb.AminoAcids, map[seqdb.Key]string{1: "A"})
	tr.writeOrder(t, "1\n")
	cfg := tr.config(Hard, NumericIDs)
	cfg.Source = filepath.Join(tr.dir, "nope")

	_, err := tr.create(t, cfg)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCreate_LookupMissing(t *testing.T) {
	tr := newTestRun(t, false, seqdb.AminoAcids, map[seqdb.Key]string{1: "A"})
	tr.writeOrder(t, "ACC1\n")

	_, err := tr.create(t, tr.config(Hard, LookupIDs))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCreate_CloseFailure(t *testing.T) {
	tr := newTestRun(t, false, seqdb.AminoAcids, map[seqdb.Key]string{1: "A"})
	tr.writeOrder(t, "1\n")

	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule("dst.0", fs.Fault{FailAfterBytes: -1, FailOnClose: true})

	_, err := tr.create(t, tr.config(Hard, NumericIDs), withFileSystem(ffs))
	require.ErrorIs(t, err, fs.ErrInjected)

	var closeErr *CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, tr.dst, closeErr.Path)
}

func TestCreate_LinkFailure(t *testing.T) {
	tests := []struct {
		name string
		mode SubsetMode
		rule string
	}{
		{"ancillary", Hard, "dst.source"},
		{"data", Soft, "dst"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestRun(t, false, seqdb.AminoAcids, map[seqdb.Key]string{1: "A"})
			tr.writeOrder(t, "1\n")
			require.NoError(t, os.WriteFile(tr.src+".source", []byte("0\tsrc.fasta\n"), 0o644))

			ffs := fs.NewFaultyFS(nil)
			ffs.AddRule(tt.rule, fs.Fault{FailAfterBytes: -1, FailOnSymlink: true})

			_, err := tr.create(t, tr.config(tt.mode, NumericIDs), withFileSystem(ffs))
			require.ErrorIs(t, err, fs.ErrInjected)
		})
	}
}

func TestCreate_DBTypeFailure(t *testing.T) {
	tr := newTestRun(t, false, seqdb.AminoAcids, map[seqdb.Key]string{1: "A"})
	tr.writeOrder(t, "1\n")

	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule("dst.dbtype", fs.Fault{FailAfterBytes: -1, FailOnRename: true})

	_, err := tr.create(t, tr.config(Hard, NumericIDs), withFileSystem(ffs))
	require.ErrorIs(t, err, fs.ErrInjected)
	assert.NoFileExists(t, seqdb.DBTypePath(tr.dst))
	assert.NoFileExists(t, tr.dst+".source")
}

func TestCreate_WriteFailure(t *testing.T) {
	tr := newTestRun(t, false, seqdb.AminoAcids, map[seqdb.Key]string{1: strings.Repeat("A", 1<<21)})
	tr.writeOrder(t, "1\n")

	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule("dst.0", fs.Fault{FailAfterBytes: 0})

	_, err := tr.create(t, tr.config(Hard, NumericIDs), withFileSystem(ffs))
	require.ErrorIs(t, err, fs.ErrInjected)

	var rowErr *RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 1, rowErr.Line)
	assert.Equal(t, "1", rowErr.Descriptor)
	assert.NoFileExists(t, tr.dst+".0")
}

func TestCreate_Canceled(t *testing.T) {
	tr := newTestRun(t, false, seqdb.AminoAcids, map[seqdb.Key]string{1: "A"})
	tr.writeOrder(t, "1\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Create(ctx, tr.config(Hard, NumericIDs), WithLogger(NoopLogger()))
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, tr.dst+".0")
	assert.NoFileExists(t, seqdb.IndexPath(tr.dst))
}

func TestCreate_InvalidConfig(t *testing.T) {
	tr := newTestRun(t, false, seqdb.AminoAcids, map[seqdb.Key]string{1: "A"})
	cfg := tr.config(Hard, NumericIDs)
	cfg.Dest = tr.src + string(filepath.Separator)

	_, err := tr.create(t, cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestCreate_Metrics(t *testing.T) {
	tr := newTestRun(t, false, seqdb.AminoAcids, map[seqdb.Key]string{1: "AAA", 2: "ABCDEFGH"})
	tr.writeOrder(t, "1\n2\t1\t2\n2\t0\n5\nx\n")

	mc := &BasicMetricsCollector{}
	_, err := tr.create(t, tr.config(Hard, NumericIDs), WithMetricsCollector(mc))
	require.NoError(t, err)

	stats := mc.GetStats()
	assert.Equal(t, int64(1), stats.WholeEntryCount)
	assert.Equal(t, int64(1), stats.RangeSpliceCount)
	assert.Equal(t, int64(4+4), stats.BytesWritten)
	assert.Equal(t, int64(1), stats.MalformedCount)
	assert.Equal(t, int64(1), stats.MissingCount)
	assert.Equal(t, int64(1), stats.UnresolvedCount)
	assert.Equal(t, int64(1), stats.RunCount)
	assert.Equal(t, int64(5), stats.RunRows)
	assert.Zero(t, stats.RunErrors)
}

func TestCreate_LogsSkippedRows(t *testing.T) {
	tr := newTestRun(t, false, seqdb.AminoAcids, map[seqdb.Key]string{1: "A"})
	tr.writeOrder(t, "1\nZZZ\n1\t0\t1\t2\n")

	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	_, err := Create(context.Background(), tr.config(Hard, NumericIDs), WithLogger(logger))
	require.NoError(t, err)

	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		records = append(records, rec)
	}
	require.Len(t, records, 3)

	assert.Equal(t, "WARN", records[0]["level"])
	assert.Equal(t, "ZZZ", records[0]["descriptor"])
	assert.Equal(t, "unresolved", records[0]["reason"])
	assert.Equal(t, float64(2), records[0]["line"])

	assert.Equal(t, "ERROR", records[1]["level"])
	assert.Equal(t, "malformed", records[1]["reason"])

	assert.Equal(t, "subset created", records[2]["msg"])
	assert.Equal(t, float64(3), records[2]["rows"])
}

func TestOrderTracker(t *testing.T) {
	tests := []struct {
		keys []seqdb.Key
		want bool
	}{
		{nil, true},
		{[]seqdb.Key{0}, true},
		{[]seqdb.Key{1, 1, 2, 5}, true},
		{[]seqdb.Key{3, 1, 2}, false},
		{[]seqdb.Key{1, 2, 1, 2}, false},
	}
	for _, tt := range tests {
		var tracker OrderTracker
		for _, k := range tt.keys {
			tracker.Observe(k)
		}
		assert.Equal(t, tt.want, tracker.Ordered(), "%v", tt.keys)
	}
}

func TestParseModes(t *testing.T) {
	m, err := ParseSubsetMode("SOFT")
	require.NoError(t, err)
	assert.Equal(t, Soft, m)
	assert.Equal(t, "soft", m.String())

	_, err = ParseSubsetMode("medium")
	assert.ErrorIs(t, err, ErrInvalidMode)

	id, err := ParseIDMode("lookup")
	require.NoError(t, err)
	assert.Equal(t, LookupIDs, id)
	assert.Equal(t, "lookup", id.String())

	_, err = ParseIDMode("name")
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{OrderFile: "o", Source: "a", Dest: "b"}
	require.NoError(t, valid.Validate())

	for name, mutate := range map[string]func(*Config){
		"no order":  func(c *Config) { c.OrderFile = "" },
		"no source": func(c *Config) { c.Source = "" },
		"no dest":   func(c *Config) { c.Dest = "" },
		"same":      func(c *Config) { c.Dest = "./a" },
		"mode":      func(c *Config) { c.Mode = 7 },
		"id mode":   func(c *Config) { c.IDMode = 7 },
	} {
		cfg := valid
		mutate(&cfg)
		err := cfg.Validate()
		assert.True(t, errors.Is(err, ErrInvalidConfig) || errors.Is(err, ErrInvalidMode), name)
	}
}
