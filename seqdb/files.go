package seqdb

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hupe1980/subdb/internal/fs"
)

// FileSet selects which files of a store Softlink propagates.
type FileSet uint8

const (
	// FilesData is the data file, or every split shard of it.
	FilesData FileSet = 1 << iota
	// FilesAncillary are the side files downstream tools expect next to the
	// primary store: accession lookup, source names, taxonomy and headers.
	FilesAncillary
)

// ancillarySuffixes are appended to a store path to name its ancillary files.
var ancillarySuffixes = []string{
	".lookup",
	".source",
	"_mapping",
	"_taxonomy",
	"_nodes.dmp",
	"_names.dmp",
	"_merged.dmp",
	"_h",
	"_h.index",
	"_h.dbtype",
}

// DataFiles returns the data files of the store at path: path itself when it
// exists, otherwise the consecutive split shards path.0, path.1, ...
func DataFiles(path string) []string {
	return dataFiles(fs.Default, path)
}

func dataFiles(fsys fs.FileSystem, path string) []string {
	if fs.Exists(fsys, path) {
		return []string{path}
	}
	var files []string
	for i := 0; ; i++ {
		shard := shardPath(path, i)
		if !fs.Exists(fsys, shard) {
			return files
		}
		files = append(files, shard)
	}
}

func shardPath(path string, i int) string {
	return path + "." + strconv.Itoa(i)
}

// removeDataFiles removes path and every split shard of it.
func removeDataFiles(fsys fs.FileSystem, path string) error {
	if err := fs.RemoveIfExists(fsys, path); err != nil {
		return err
	}
	for i := 0; ; i++ {
		shard := shardPath(path, i)
		if !fs.Exists(fsys, shard) {
			return nil
		}
		if err := fsys.Remove(shard); err != nil {
			return err
		}
	}
}

// Softlink makes the files of src selected by set available under dst as symbolic
// links to their absolute source paths. Existing files at dst are replaced. Missing
// ancillary files are skipped.
func Softlink(src, dst string, set FileSet, optFns ...Option) error {
	return softlink(applyOptions(optFns).fs, src, dst, set)
}

func softlink(fsys fs.FileSystem, src, dst string, set FileSet) error {
	if set&FilesData != 0 {
		files := dataFiles(fsys, src)
		if len(files) == 0 {
			return fmt.Errorf("seqdb: link data: no data file for %s: %w", src, os.ErrNotExist)
		}
		if err := removeDataFiles(fsys, dst); err != nil {
			return fmt.Errorf("seqdb: link data: %w", err)
		}
		for _, f := range files {
			if err := link(fsys, f, dst+strings.TrimPrefix(f, src)); err != nil {
				return fmt.Errorf("seqdb: link data: %w", err)
			}
		}
	}
	if set&FilesAncillary != 0 {
		for _, suffix := range ancillarySuffixes {
			if !fs.Exists(fsys, src+suffix) {
				continue
			}
			if err := link(fsys, src+suffix, dst+suffix); err != nil {
				return fmt.Errorf("seqdb: link ancillary: %w", err)
			}
		}
	}
	return nil
}

func link(fsys fs.FileSystem, target, name string) error {
	abs, err := filepath.Abs(target)
	if err != nil {
		return err
	}
	// Point at the final file, not at another link.
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	if err := fs.RemoveIfExists(fsys, name); err != nil {
		return err
	}
	return fsys.Symlink(abs, name)
}

func writeFileAtomic(name string, data []byte) error {
	return writeFileAtomicFS(fs.Default, name, data)
}

func writeFileAtomicFS(fsys fs.FileSystem, name string, data []byte) error {
	tmp := name + ".tmp"
	f, err := fsys.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = fsys.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = fsys.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = fsys.Remove(tmp)
		return err
	}
	return fsys.Rename(tmp, name)
}
