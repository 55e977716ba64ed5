// Package buffer implements yatta's growable byte container: an owning
// analogue of memrange.Range that doubles its capacity on growth and layers
// compression and differential diff/patch on top of a plain byte slice.
package buffer

import (
	"encoding/binary"

	"github.com/Yattabyte/yatta/internal/differ"
	"github.com/Yattabyte/yatta/internal/lz4codec"
	"github.com/Yattabyte/yatta/internal/memrange"
)

// Buffer is a growable, owning byte container. The zero value is a valid,
// empty Buffer.
type Buffer struct {
	data []byte // len(data) is the logical size; cap(data) is the capacity
}

// New allocates a Buffer of the given size. Its capacity, like the C++
// original, is double the requested size.
func New(size uint64) *Buffer {
	b := &Buffer{}
	b.Resize(size)
	return b
}

// FromBytes wraps an existing byte slice as a Buffer's contents, copying it.
// It is the constructor used wherever the original took a raw
// MemoryRange/pointer-and-size pair (compress, diff, patch results).
func FromBytes(data []byte) *Buffer {
	b := New(uint64(len(data)))
	copy(b.data, data)
	return b
}

// Range returns a read-only memrange.Range view over this buffer's current
// contents.
func (b *Buffer) Range() memrange.Range {
	return memrange.New(b.data)
}

// Bytes returns the underlying slice directly, without copying.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Size returns the number of logical bytes currently in the buffer.
func (b *Buffer) Size() uint64 {
	return uint64(len(b.data))
}

// Empty reports whether the buffer has no data allocated.
func (b *Buffer) Empty() bool {
	return len(b.data) == 0 || cap(b.data) == 0
}

// Capacity returns the total number of bytes allocated.
func (b *Buffer) Capacity() uint64 {
	return uint64(cap(b.data))
}

// Resize changes the buffer's logical size, growing the backing allocation
// (to 2x the requested size) only when it isn't already large enough.
// Previously held pointers/slices into the buffer are invalidated when a
// reallocation occurs.
func (b *Buffer) Resize(size uint64) {
	switch {
	case b.data == nil:
		b.data = make([]byte, size, size*2)
	case size > uint64(cap(b.data)):
		newData := make([]byte, size, size*2)
		copy(newData, b.data)
		b.data = newData
	default:
		if size <= uint64(len(b.data)) {
			b.data = b.data[:size]
		} else {
			grown := b.data[:size]
			for i := len(b.data); i < int(size); i++ {
				grown[i] = 0
			}
			b.data = grown
		}
	}
}

// Reserve grows the backing allocation to at least capacity bytes without
// changing the logical size, unless capacity is smaller than the current
// size (in which case it is a no-op, matching resize's "never shrinks on
// reserve" behavior).
func (b *Buffer) Reserve(capacity uint64) {
	if capacity <= uint64(cap(b.data)) {
		return
	}
	newData := make([]byte, len(b.data), capacity)
	copy(newData, b.data)
	b.data = newData
}

// Shrink reallocates the buffer down to exactly its current size, dropping
// any spare capacity.
func (b *Buffer) Shrink() {
	if b.data == nil {
		return
	}
	newData := make([]byte, len(b.data))
	copy(newData, b.data)
	b.data = newData
}

// Clear releases the buffer's contents, resetting size and capacity to
// zero.
func (b *Buffer) Clear() {
	b.data = nil
}

// PushRaw appends size bytes onto the end of the buffer, growing it.
func (b *Buffer) PushRaw(src []byte, size uint64) {
	byteIndex := b.Size()
	b.Resize(byteIndex + size)
	copy(b.data[byteIndex:byteIndex+size], src[:size])
}

// PopRaw removes size bytes from the end of the buffer into dst.
func (b *Buffer) PopRaw(dst []byte, size uint64) {
	byteIndex := b.Size() - size
	copy(dst[:size], b.data[byteIndex:byteIndex+size])
	b.Resize(byteIndex)
}

// Push appends a fixed-size value onto the end of the buffer.
func Push[T any](b *Buffer, v T) error {
	byteIndex := b.Size()
	size := uint64(binary.Size(v))
	b.Resize(byteIndex + size)
	return memrange.InType(b.Range(), v, byteIndex)
}

// Pop removes a fixed-size value from the end of the buffer.
func Pop[T any](b *Buffer, v *T) error {
	size := uint64(binary.Size(*v))
	byteIndex := b.Size() - size
	if err := memrange.OutType(b.Range(), v, byteIndex); err != nil {
		return err
	}
	b.Resize(byteIndex)
	return nil
}

// PushString appends s onto the end of the buffer using the bidirectional
// string framing (see memrange.InString).
func (b *Buffer) PushString(s string) {
	byteIndex := b.Size()
	b.Resize(byteIndex + memrange.StringFramedSize(s))
	_ = b.Range().InString(s, byteIndex)
}

// PopString removes a string previously written with PushString from the
// end of the buffer.
func (b *Buffer) PopString() (string, error) {
	if b.Size() < 8 {
		return "", memrange.ErrOutOfBounds
	}
	tailLenIndex := b.Size() - 8
	n, err := readUint64(b.data[tailLenIndex:])
	if err != nil {
		return "", err
	}
	total := 8 + n + 8
	if total > b.Size() {
		return "", memrange.ErrOutOfBounds
	}
	byteIndex := b.Size() - total
	s, err := b.Range().OutString(byteIndex)
	if err != nil {
		return "", err
	}
	b.Resize(byteIndex)
	return s, nil
}

func readUint64(buf []byte) (uint64, error) {
	if len(buf) < 8 {
		return 0, memrange.ErrOutOfBounds
	}
	return binary.LittleEndian.Uint64(buf[:8]), nil
}

// Compress compresses this buffer's contents into a new Buffer, or returns
// ok=false on failure (empty source, or the codec declining to produce
// output).
func (b *Buffer) Compress() (*Buffer, bool) {
	out, ok := lz4codec.Compress(b.data)
	if !ok {
		return nil, false
	}
	return FromBytes(out), true
}

// Decompress reverses Compress.
func (b *Buffer) Decompress() (*Buffer, bool) {
	out, ok := lz4codec.Decompress(b.data)
	if !ok {
		return nil, false
	}
	return FromBytes(out), true
}

// Diff generates a patch instruction buffer that transforms this buffer's
// contents into target's, or ok=false on failure.
func (b *Buffer) Diff(target *Buffer) (*Buffer, bool) {
	out, ok := differ.Diff(b.data, target.data)
	if !ok {
		return nil, false
	}
	return FromBytes(out), true
}

// Patch applies a diff (produced by Diff) previously computed against this
// buffer's contents, returning the patched result.
func (b *Buffer) Patch(diff *Buffer) (*Buffer, bool) {
	out, ok := differ.Patch(b.data, diff.data)
	if !ok {
		return nil, false
	}
	return FromBytes(out), true
}

// Hash returns this buffer's content hash, delegating to memrange.Range.Hash.
func (b *Buffer) Hash() uint64 {
	return b.Range().Hash()
}
