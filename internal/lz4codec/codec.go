// Package lz4codec implements yatta's compression container: a 16-byte
// title header plus an 8-byte uncompressed size, wrapping a single LZ4
// block (not an LZ4 frame/stream — yatta always compresses one whole byte
// range in one shot). This is the one compression codec the spec calls
// for; it is deliberately not a general-purpose compression library.
package lz4codec

import (
	"encoding/binary"

	"github.com/pierrec/lz4/v4"
)

const title = "yatta compress"

const headerSize = 16 + 8 // title + uncompressedSize

// Compress produces the wire-format bytes (header + LZ4 block) for data, or
// ok=false if data is empty or LZ4 fails to produce a non-empty block.
func Compress(data []byte) (out []byte, ok bool) {
	if len(data) == 0 {
		return nil, false
	}
	sourceSize := uint64(len(data))
	destinationSize := sourceSize * 2
	buf := make([]byte, headerSize+destinationSize)
	copy(buf[0:16], title)
	binary.LittleEndian.PutUint64(buf[16:24], sourceSize)

	var c lz4.Compressor
	n, err := c.CompressBlock(data, buf[headerSize:])
	if err != nil || n == 0 {
		return nil, false
	}
	return buf[:uint64(headerSize)+uint64(n)], true
}

// Decompress reverses Compress: it validates the title header and LZ4
// -decompresses the remainder into a buffer of the recorded
// uncompressedSize.
func Decompress(data []byte) (out []byte, ok bool) {
	if uint64(len(data)) < headerSize {
		return nil, false
	}
	var gotTitle [16]byte
	copy(gotTitle[:], data[0:16])
	var wantTitle [16]byte
	copy(wantTitle[:], title)
	if gotTitle != wantTitle {
		return nil, false
	}
	uncompressedSize := binary.LittleEndian.Uint64(data[16:24])
	dst := make([]byte, uncompressedSize)
	n, err := lz4.UncompressBlock(data[headerSize:], dst)
	if err != nil || n <= 0 {
		return nil, false
	}
	return dst, true
}
