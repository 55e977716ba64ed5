// Package memrange provides a bounds-checked, non-owning view over a
// contiguous byte span. Buffer uses a Range for its typed and framed-string
// reads and writes; the differ and Directory's package/delta parsers work on
// raw byte slices directly.
package memrange

import (
	"encoding/binary"

	"golang.org/x/xerrors"
)

// ZeroHash is the hash of an empty or null byte sequence: the seed value the
// hash recurrence starts from. Any two ranges whose content differs only in
// length 0 vs. missing data still hash to this constant.
const ZeroHash uint64 = 1234567890

// ErrNullRange is returned by any operation on a Range whose backing slice
// is nil.
var ErrNullRange = xerrors.New("memrange: null range")

// ErrOutOfBounds is returned when a read or write's computed byte span would
// exceed the range's length.
var ErrOutOfBounds = xerrors.New("memrange: index out of bounds")

// Range is a (pointer, length) pair referring to externally owned bytes. It
// never allocates or copies on construction; Bytes returns the same backing
// array it was built from.
type Range struct {
	data []byte
}

// New wraps data in a Range. A nil data is a valid "null" range: every
// bounds-checked operation on it fails with ErrNullRange.
func New(data []byte) Range {
	return Range{data: data}
}

// Empty reports whether this range has no data allocated (nil or zero
// length).
func (r Range) Empty() bool {
	return r.data == nil || len(r.data) == 0
}

// HasData reports whether this range's size is greater than zero.
func (r Range) HasData() bool {
	return r.data != nil && len(r.data) > 0
}

// Size returns the number of bytes in the range.
func (r Range) Size() uint64 {
	return uint64(len(r.data))
}

// Bytes returns the underlying slice. It does not copy.
func (r Range) Bytes() []byte {
	return r.data
}

// At returns the byte at the given index.
func (r Range) At(index uint64) (byte, error) {
	if index >= uint64(len(r.data)) {
		return 0, ErrOutOfBounds
	}
	return r.data[index], nil
}

// Set overwrites the byte at the given index.
func (r Range) Set(index uint64, v byte) error {
	if index >= uint64(len(r.data)) {
		return ErrOutOfBounds
	}
	r.data[index] = v
	return nil
}

// Subrange returns a view of length bytes starting at offset. A null range
// (nil backing slice) always fails, even for a zero-length subrange;
// offset+length exceeding the range's size also fails.
func (r Range) Subrange(offset, length uint64) (Range, error) {
	if r.data == nil {
		return Range{}, ErrNullRange
	}
	if offset+length > uint64(len(r.data)) {
		return Range{}, ErrOutOfBounds
	}
	return Range{data: r.data[offset : offset+length]}, nil
}

// InRaw copies size bytes from src into this range starting at byteIndex.
func (r Range) InRaw(src []byte, size, byteIndex uint64) error {
	if r.data == nil {
		return ErrNullRange
	}
	if src == nil {
		return xerrors.New("memrange: nil source")
	}
	if size+byteIndex > uint64(len(r.data)) {
		return ErrOutOfBounds
	}
	copy(r.data[byteIndex:byteIndex+size], src[:size])
	return nil
}

// OutRaw copies size bytes out of this range starting at byteIndex into dst.
func (r Range) OutRaw(dst []byte, size, byteIndex uint64) error {
	if r.data == nil {
		return ErrNullRange
	}
	if dst == nil {
		return xerrors.New("memrange: nil destination")
	}
	if size+byteIndex > uint64(len(r.data)) {
		return ErrOutOfBounds
	}
	copy(dst[:size], r.data[byteIndex:byteIndex+size])
	return nil
}

// InType writes a fixed-size value into the range at byteIndex, little
// endian. It is the Go analogue of the C++ template in_type<T>.
func InType[T any](r Range, v T, byteIndex uint64) error {
	size := uint64(binary.Size(v))
	if r.data == nil {
		return ErrNullRange
	}
	if size+byteIndex > uint64(len(r.data)) {
		return ErrOutOfBounds
	}
	buf := r.data[byteIndex : byteIndex+size]
	if err := binary.Write(sliceWriter{buf[:0:len(buf)]}, binary.LittleEndian, v); err != nil {
		return xerrors.Errorf("memrange: encode value: %w", err)
	}
	return nil
}

// OutType reads a fixed-size value out of the range at byteIndex, little
// endian. It is the Go analogue of the C++ template out_type<T>.
func OutType[T any](r Range, v *T, byteIndex uint64) error {
	size := uint64(binary.Size(*v))
	if r.data == nil {
		return ErrNullRange
	}
	if size+byteIndex > uint64(len(r.data)) {
		return ErrOutOfBounds
	}
	if err := binary.Read(bytesReader{r.data[byteIndex : byteIndex+size]}, binary.LittleEndian, v); err != nil {
		return xerrors.Errorf("memrange: decode value: %w", err)
	}
	return nil
}

// InString writes the bidirectional string framing used throughout yatta's
// wire formats: an 8-byte length, the raw bytes, then the 8-byte length
// again. Writing the length twice lets a reader that scans forward and one
// that scans backward from the end both recover the string.
func (r Range) InString(s string, byteIndex uint64) error {
	n := uint64(len(s))
	total := 8 + n + 8
	if r.data == nil {
		return ErrNullRange
	}
	if byteIndex+total > uint64(len(r.data)) {
		return ErrOutOfBounds
	}
	binary.LittleEndian.PutUint64(r.data[byteIndex:byteIndex+8], n)
	copy(r.data[byteIndex+8:byteIndex+8+n], s)
	binary.LittleEndian.PutUint64(r.data[byteIndex+8+n:byteIndex+8+n+8], n)
	return nil
}

// OutString reads back the bidirectional string framing InString wrote.
func (r Range) OutString(byteIndex uint64) (string, error) {
	if r.data == nil {
		return "", ErrNullRange
	}
	if byteIndex+8 > uint64(len(r.data)) {
		return "", ErrOutOfBounds
	}
	n := binary.LittleEndian.Uint64(r.data[byteIndex : byteIndex+8])
	total := 8 + n + 8
	if byteIndex+total > uint64(len(r.data)) {
		return "", ErrOutOfBounds
	}
	return string(r.data[byteIndex+8 : byteIndex+8+n]), nil
}

// StringFramedSize returns the on-wire size of s under the bidirectional
// string framing (8 + len + 8 bytes).
func StringFramedSize(s string) uint64 {
	return 8 + uint64(len(s)) + 8
}

// sliceWriter and bytesReader adapt a fixed byte slice to io.Writer/io.Reader
// without an extra heap allocation per call, for use with encoding/binary.
type sliceWriter struct{ buf []byte }

func (w sliceWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

type bytesReader struct{ buf []byte }

func (r bytesReader) Read(p []byte) (int, error) {
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}
