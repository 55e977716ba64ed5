package differ

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Yattabyte/yatta/internal/lz4codec"
)

// compressForTest builds a well-formed differential-header-wrapped, LZ4
// -compressed instruction stream out of raw (already-encoded) instruction
// bytes, for tests that need to inject a malformed instruction tag past the
// header/compression layers.
func compressForTest(instructionBytes []byte) ([]byte, bool) {
	compressed, ok := lz4codec.Compress(instructionBytes)
	if !ok {
		return nil, false
	}
	out := make([]byte, headerSize+len(compressed))
	copy(out[0:16], diffTitle)
	binary.LittleEndian.PutUint64(out[16:24], 0)
	copy(out[headerSize:], compressed)
	return out, true
}

func roundTrip(t *testing.T, source, target []byte) []byte {
	t.Helper()
	diff, ok := Diff(source, target)
	if !ok {
		t.Fatalf("Diff failed for source len %d, target len %d", len(source), len(target))
	}
	patched, ok := Patch(source, diff)
	if !ok {
		t.Fatalf("Patch failed")
	}
	if diff := cmp.Diff(target, patched); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	return diff
}

func TestDiffPatchIdentical(t *testing.T) {
	data := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog"), 200)
	roundTrip(t, data, data)
}

func TestDiffPatchEmptySource(t *testing.T) {
	target := bytes.Repeat([]byte("new file contents"), 300)
	roundTrip(t, nil, target)
}

func TestDiffPatchEmptyTarget(t *testing.T) {
	source := bytes.Repeat([]byte("deleted file contents"), 300)
	roundTrip(t, source, nil)
}

func TestDiffPatchBothEmptyFails(t *testing.T) {
	if _, ok := Diff(nil, nil); ok {
		t.Fatal("expected Diff to fail when both inputs are empty")
	}
}

func TestDiffPatchSmallEdit(t *testing.T) {
	source := bytes.Repeat([]byte("ABCDEFGH"), 2000)
	target := make([]byte, len(source))
	copy(target, source)
	target[5000] = 'X'
	target[5001] = 'Y'
	roundTrip(t, source, target)
}

func TestDiffPatchAppend(t *testing.T) {
	source := bytes.Repeat([]byte("fixed prefix data block "), 500)
	target := append(append([]byte{}, source...), bytes.Repeat([]byte("appended tail "), 50)...)
	roundTrip(t, source, target)
}

func TestRepeatPromotion(t *testing.T) {
	source := []byte("short source")
	target := append(bytes.Repeat([]byte{0x42}, 200), []byte("tail bytes that differ entirely from source")...)

	diff := roundTrip(t, source, target)

	if len(diff) == 0 {
		t.Fatal("expected non-empty diff")
	}

	// The run of 0x42 bytes beyond the first 12-byte window must reach the
	// instruction stream as a single (index, amount, value) Repeat record
	// rather than as literal Insert bytes.
	stream, ok := lz4codec.Decompress(diff[headerSize:])
	if !ok {
		t.Fatal("decompressing the instruction stream failed")
	}
	foundRepeat := false
	for byteIndex := uint64(0); byteIndex < uint64(len(stream)); {
		in, next, err := readInstruction(stream[byteIndex], stream, byteIndex+1)
		if err != nil {
			t.Fatalf("readInstruction: %v", err)
		}
		if in.Tag == tagRepeat && in.Value == 0x42 && in.Amount > minRepeat {
			foundRepeat = true
		}
		byteIndex = next
	}
	if !foundRepeat {
		t.Fatal("expected a Repeat instruction covering the run of 0x42 bytes")
	}
}

func TestDiffPatchBadTitleFails(t *testing.T) {
	diff, ok := Diff([]byte("source"), []byte("target!!"))
	if !ok {
		t.Fatal("Diff failed unexpectedly")
	}
	corrupt := append([]byte{}, diff...)
	corrupt[0] = 'x'
	if _, ok := Patch([]byte("source"), corrupt); ok {
		t.Fatal("expected Patch to fail on corrupted header title")
	}
}

func TestDiffPatchUnknownTagFails(t *testing.T) {
	in := insertInstruction(0, []byte("hello world"))
	buf := make([]byte, in.size())
	in.write(buf, 0)
	buf[0] = 'Z' // corrupt the tag byte

	compressed, _ := compressForTest(buf)
	if _, ok := Patch(nil, compressed); ok {
		t.Fatal("expected Patch to fail on an unrecognized instruction tag")
	}
}
