package buffer

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewAllocatesDoubleCapacity(t *testing.T) {
	b := New(100)
	if b.Size() != 100 {
		t.Fatalf("Size() = %d, want 100", b.Size())
	}
	if b.Capacity() != 200 {
		t.Fatalf("Capacity() = %d, want 200", b.Capacity())
	}
}

func TestResizeGrowsAndShrinksInPlace(t *testing.T) {
	b := New(10)
	b.Resize(5)
	if b.Size() != 5 {
		t.Fatalf("Size() = %d, want 5", b.Size())
	}
	if b.Capacity() != 20 {
		t.Fatalf("shrinking in place should not reallocate: Capacity() = %d, want 20", b.Capacity())
	}

	b.Resize(1000)
	if b.Size() != 1000 {
		t.Fatalf("Size() = %d, want 1000", b.Size())
	}
	if b.Capacity() != 2000 {
		t.Fatalf("Capacity() = %d, want 2000", b.Capacity())
	}
}

func TestReserveDoesNotChangeSize(t *testing.T) {
	b := New(10)
	b.Reserve(500)
	if b.Size() != 10 {
		t.Fatalf("Reserve must not change logical size, got %d", b.Size())
	}
	if b.Capacity() != 500 {
		t.Fatalf("Capacity() = %d, want 500", b.Capacity())
	}
}

func TestShrinkDropsSpareCapacity(t *testing.T) {
	b := New(10)
	b.Shrink()
	if b.Capacity() != 10 {
		t.Fatalf("Capacity() = %d, want 10 after Shrink", b.Capacity())
	}
}

func TestClear(t *testing.T) {
	b := New(10)
	b.Clear()
	if !b.Empty() {
		t.Fatal("buffer should be empty after Clear")
	}
}

func TestPushPopRaw(t *testing.T) {
	b := &Buffer{}
	b.PushRaw([]byte{1, 2, 3, 4}, 4)
	if b.Size() != 4 {
		t.Fatalf("Size() = %d, want 4", b.Size())
	}
	dst := make([]byte, 4)
	b.PopRaw(dst, 4)
	if b.Size() != 0 {
		t.Fatalf("Size() = %d, want 0 after popping everything", b.Size())
	}
	want := []byte{1, 2, 3, 4}
	if diff := cmp.Diff(want, dst); diff != "" {
		t.Fatalf("PopRaw mismatch (-want +got):\n%s", diff)
	}
}

func TestPushPopType(t *testing.T) {
	b := &Buffer{}
	if err := Push[uint64](b, 987654321); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	var got uint64
	if err := Pop[uint64](b, &got); err != nil {
		t.Fatalf("Pop failed: %v", err)
	}
	if got != 987654321 {
		t.Fatalf("Pop = %d, want 987654321", got)
	}
	if b.Size() != 0 {
		t.Fatalf("Size() = %d, want 0", b.Size())
	}
}

func TestPushPopStringStackDiscipline(t *testing.T) {
	b := &Buffer{}
	b.PushString("first")
	b.PushString("second")

	second, err := b.PopString()
	if err != nil || second != "second" {
		t.Fatalf("PopString() = %q, %v; want \"second\", nil", second, err)
	}
	first, err := b.PopString()
	if err != nil || first != "first" {
		t.Fatalf("PopString() = %q, %v; want \"first\", nil", first, err)
	}
	if b.Size() != 0 {
		t.Fatalf("buffer should be drained, Size() = %d", b.Size())
	}
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	b := FromBytes(bytes.Repeat([]byte("compressible data "), 1000))
	compressed, ok := b.Compress()
	if !ok {
		t.Fatal("Compress failed")
	}
	if compressed.Size() >= b.Size() {
		t.Fatalf("expected compression to shrink highly repetitive data: got %d from %d", compressed.Size(), b.Size())
	}
	decompressed, ok := compressed.Decompress()
	if !ok {
		t.Fatal("Decompress failed")
	}
	if diff := cmp.Diff(b.Bytes(), decompressed.Bytes()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCompressEmptyFails(t *testing.T) {
	b := &Buffer{}
	if _, ok := b.Compress(); ok {
		t.Fatal("expected Compress to fail on an empty buffer")
	}
}

func TestDiffPatchRoundTrip(t *testing.T) {
	source := FromBytes(bytes.Repeat([]byte("version one of the file "), 400))
	targetData := append(append([]byte{}, source.Bytes()[:4000]...), []byte("a brand new tail section")...)
	target := FromBytes(targetData)

	diff, ok := source.Diff(target)
	if !ok {
		t.Fatal("Diff failed")
	}
	patched, ok := source.Patch(diff)
	if !ok {
		t.Fatal("Patch failed")
	}
	if diff := cmp.Diff(target.Bytes(), patched.Bytes()); diff != "" {
		t.Fatalf("patched buffer mismatch (-want +got):\n%s", diff)
	}
}

func TestHashMatchesForEqualContent(t *testing.T) {
	a := FromBytes([]byte("identical contents"))
	b := FromBytes([]byte("identical contents"))
	if a.Hash() != b.Hash() {
		t.Fatal("buffers with identical contents should hash identically")
	}
}
