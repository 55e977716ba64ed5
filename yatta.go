// Package yatta provides a growable byte buffer with LZ4 compression and
// byte-level differential diff/patch support, plus a virtual directory
// abstraction for packaging and delta-patching whole folders.
//
// The heavy lifting lives in internal packages; this package re-exports the
// types and constructors an application actually needs, the way a stable
// public surface sits in front of churn-prone internals.
package yatta

import (
	"github.com/Yattabyte/yatta/internal/buffer"
	"github.com/Yattabyte/yatta/internal/directory"
	"github.com/Yattabyte/yatta/internal/memrange"
)

// ZeroHash is the seed value every content hash in this module starts from.
const ZeroHash = memrange.ZeroHash

// MemoryRange is a non-owning, bounds-checked view over a byte slice.
type MemoryRange = memrange.Range

// NewMemoryRange wraps data as a MemoryRange.
func NewMemoryRange(data []byte) MemoryRange {
	return memrange.New(data)
}

// Buffer is a growable, owning byte container supporting LZ4 compression
// and byte-level differential diff/patch.
type Buffer = buffer.Buffer

// NewBuffer allocates a Buffer of the given size.
func NewBuffer(size uint64) *Buffer {
	return buffer.New(size)
}

// NewBufferFromBytes copies data into a new Buffer.
func NewBufferFromBytes(data []byte) *Buffer {
	return buffer.FromBytes(data)
}

// VirtualFile pairs a relative path with its in-memory contents.
type VirtualFile = directory.VirtualFile

// Directory is an ordered collection of VirtualFiles, loadable from disk or
// from a package buffer, and writable back out to disk, to a package
// buffer, or as a delta against another Directory.
type Directory = directory.Directory

// NewDirectory returns an empty Directory.
func NewDirectory() *Directory {
	return directory.New()
}

// NewDirectoryFromFolder builds a Directory by reading every file under
// path, skipping any whose relative path or extension appears in
// exclusions.
func NewDirectoryFromFolder(path string, exclusions []string) (*Directory, error) {
	return directory.NewFromFolder(path, exclusions)
}

// NewDirectoryFromPackage builds a Directory by expanding a package buffer
// produced by Directory.OutPackage.
func NewDirectoryFromPackage(packageBuffer *Buffer) (*Directory, error) {
	return directory.NewFromPackage(packageBuffer)
}
