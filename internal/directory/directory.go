// Package directory implements yatta's virtual file folder: an ordered set
// of in-memory files that can be sourced from disk or from a packaged
// buffer, and written back out to disk, to a package buffer, or as a delta
// against another directory.
package directory

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"

	"github.com/Yattabyte/yatta/internal/buffer"
	"github.com/Yattabyte/yatta/internal/memrange"
)

// VirtualFile pairs a slash-separated path (relative to a directory's root)
// with its in-memory contents.
type VirtualFile struct {
	RelativePath string
	Data         *buffer.Buffer
}

// Directory is an ordered collection of VirtualFiles. The zero value is a
// valid, empty Directory.
type Directory struct {
	files []VirtualFile
}

// New returns an empty Directory.
func New() *Directory {
	return &Directory{}
}

// NewFromFolder builds a Directory by reading every regular file under
// path, skipping any whose relative path or extension appears in
// exclusions.
func NewFromFolder(path string, exclusions []string) (*Directory, error) {
	d := New()
	if err := d.InFolder(path, exclusions); err != nil {
		return nil, err
	}
	return d, nil
}

// NewFromPackage builds a Directory by expanding a package buffer produced
// by OutPackage.
func NewFromPackage(packageBuffer *buffer.Buffer) (*Directory, error) {
	d := New()
	if err := d.InPackage(packageBuffer); err != nil {
		return nil, err
	}
	return d, nil
}

// Empty reports whether this directory holds no files.
func (d *Directory) Empty() bool {
	return len(d.files) == 0
}

// HasFiles reports whether this directory holds at least one file.
func (d *Directory) HasFiles() bool {
	return len(d.files) > 0
}

// FileCount returns the number of files in this directory.
func (d *Directory) FileCount() uint64 {
	return uint64(len(d.files))
}

// FileSize returns the sum, in bytes, of every file's contents.
func (d *Directory) FileSize() uint64 {
	var total uint64
	for _, f := range d.files {
		total += f.Data.Size()
	}
	return total
}

// Hash derives a digest from this directory's contents: the wrapping sum of
// every file's content hash, seeded at memrange.ZeroHash. Because the sum
// does not depend on order, two directories holding the same file contents
// hash identically whatever order their files were added in.
func (d *Directory) Hash() uint64 {
	h := memrange.ZeroHash
	for _, f := range d.files {
		h += f.Data.Hash()
	}
	return h
}

// Clear removes every file from this directory.
func (d *Directory) Clear() {
	d.files = nil
}

// Files returns the directory's file list. Callers must not mutate the
// returned slice's VirtualFile entries' Data in place.
func (d *Directory) Files() []VirtualFile {
	return d.files
}

func isExcluded(relativePath string, exclusions []string) bool {
	ext := filepath.Ext(relativePath)
	for _, exc := range exclusions {
		if exc == relativePath || exc == ext {
			return true
		}
	}
	return false
}

// InFolder walks path recursively and loads every regular file not matched
// by exclusions into this directory, replacing any existing contents.
// Files are read concurrently; the resulting file order is sorted by
// relative path for determinism across platforms with different
// directory-walk orders.
func (d *Directory) InFolder(path string, exclusions []string) error {
	info, err := os.Stat(path)
	if err != nil {
		return xerrors.Errorf("directory: stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return xerrors.Errorf("directory: %s is not a directory", path)
	}

	var relPaths []string
	walkErr := filepath.WalkDir(path, func(p string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if isExcluded(rel, exclusions) {
			return nil
		}
		relPaths = append(relPaths, rel)
		return nil
	})
	if walkErr != nil {
		return xerrors.Errorf("directory: walking %s: %w", path, walkErr)
	}

	files := make([]VirtualFile, len(relPaths))
	var g errgroup.Group
	for i, rel := range relPaths {
		i, rel := i, rel
		g.Go(func() error {
			data, err := os.ReadFile(filepath.Join(path, filepath.FromSlash(rel)))
			if err != nil {
				return xerrors.Errorf("directory: reading %s: %w", rel, err)
			}
			files[i] = VirtualFile{RelativePath: rel, Data: buffer.FromBytes(data)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	slices.SortFunc(files, func(a, b VirtualFile) int {
		return strings.Compare(a.RelativePath, b.RelativePath)
	})
	d.files = files
	return nil
}

// OutFolder writes every file in this directory out to disk beneath path,
// creating parent directories as needed. Each file lands via a temp-file +
// atomic rename so a reader never observes a partially written file. It
// fails if the directory holds no files.
func (d *Directory) OutFolder(path string) error {
	if d.Empty() {
		return xerrors.New("directory: nothing to write, directory is empty")
	}

	for _, f := range d.files {
		if strings.Contains(f.RelativePath, "..") {
			return xerrors.Errorf("directory: refusing to write outside root: %s", f.RelativePath)
		}
		fullPath := filepath.Join(path, filepath.FromSlash(f.RelativePath))
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
			return xerrors.Errorf("directory: creating parent dirs for %s: %w", fullPath, err)
		}

		tmp, err := renameio.TempFile("", fullPath)
		if err != nil {
			return xerrors.Errorf("directory: creating temp file for %s: %w", fullPath, err)
		}
		if _, err := io.Copy(tmp, bytes.NewReader(f.Data.Bytes())); err != nil {
			return xerrors.Errorf("directory: writing %s: %w", fullPath, err)
		}
		if err := tmp.CloseAtomicallyReplace(); err != nil {
			return xerrors.Errorf("directory: finalizing %s: %w", fullPath, err)
		}
	}
	return nil
}
