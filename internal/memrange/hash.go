package memrange

import "encoding/binary"

// Hash derives a change-detection digest from this range's contents. It is
// not cryptographic: the 33-multiplier recurrence (h = h*33 + word) is part
// of yatta's public wire contract (package/delta formats never carry the
// hash itself, but two implementations comparing Hash() output must agree
// bit-for-bit), so it must never be swapped for a "better" hash function.
//
// Bytes are consumed 8 at a time as little-endian uint64 words; any
// trailing bytes that don't fill a whole word are folded in one at a time
// using the same recurrence. A nil or zero-length range hashes to ZeroHash.
func (r Range) Hash() uint64 {
	value := ZeroHash
	if r.data == nil {
		return value
	}
	n := len(r.data)
	words := n / 8
	for i := 0; i < words; i++ {
		word := binary.LittleEndian.Uint64(r.data[i*8 : i*8+8])
		value = (value<<5 + value) + word
	}
	for i := words * 8; i < n; i++ {
		value = (value<<5 + value) + uint64(r.data[i])
	}
	return value
}
