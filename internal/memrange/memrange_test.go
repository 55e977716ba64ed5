package memrange

import "testing"

func TestEmptyAndHasData(t *testing.T) {
	var null Range
	if !null.Empty() || null.HasData() {
		t.Fatal("null range should be empty and have no data")
	}

	r := New([]byte{1, 2, 3})
	if r.Empty() || !r.HasData() {
		t.Fatal("non-empty range should report HasData")
	}
}

func TestAtAndSet(t *testing.T) {
	r := New([]byte{1, 2, 3})
	v, err := r.At(1)
	if err != nil || v != 2 {
		t.Fatalf("At(1) = %v, %v; want 2, nil", v, err)
	}
	if _, err := r.At(3); err != ErrOutOfBounds {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
	if err := r.Set(0, 9); err != nil || r.Bytes()[0] != 9 {
		t.Fatalf("Set(0, 9) did not take effect")
	}
}

func TestSubrange(t *testing.T) {
	r := New([]byte{1, 2, 3, 4, 5})
	sub, err := r.Subrange(1, 3)
	if err != nil {
		t.Fatalf("Subrange failed: %v", err)
	}
	if sub.Size() != 3 || sub.Bytes()[0] != 2 {
		t.Fatalf("unexpected subrange contents: %v", sub.Bytes())
	}
	if _, err := r.Subrange(1, 10); err != ErrOutOfBounds {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}

	var null Range
	if _, err := null.Subrange(0, 0); err != ErrNullRange {
		t.Fatalf("expected ErrNullRange even for zero-length subrange, got %v", err)
	}
}

func TestInOutRaw(t *testing.T) {
	r := New(make([]byte, 8))
	if err := r.InRaw([]byte{1, 2, 3, 4}, 4, 2); err != nil {
		t.Fatalf("InRaw failed: %v", err)
	}
	dst := make([]byte, 4)
	if err := r.OutRaw(dst, 4, 2); err != nil {
		t.Fatalf("OutRaw failed: %v", err)
	}
	want := []byte{1, 2, 3, 4}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("OutRaw mismatch at %d: got %v want %v", i, dst, want)
		}
	}
}

func TestInOutType(t *testing.T) {
	r := New(make([]byte, 16))
	if err := InType(r, uint64(123456789), 4); err != nil {
		t.Fatalf("InType failed: %v", err)
	}
	var got uint64
	if err := OutType(r, &got, 4); err != nil {
		t.Fatalf("OutType failed: %v", err)
	}
	if got != 123456789 {
		t.Fatalf("OutType = %d, want 123456789", got)
	}
}

func TestStringFraming(t *testing.T) {
	s := "hello, yatta"
	size := StringFramedSize(s)
	r := New(make([]byte, size))
	if err := r.InString(s, 0); err != nil {
		t.Fatalf("InString failed: %v", err)
	}
	got, err := r.OutString(0)
	if err != nil {
		t.Fatalf("OutString failed: %v", err)
	}
	if got != s {
		t.Fatalf("OutString = %q, want %q", got, s)
	}
}

func TestHashIsStableAndSeeded(t *testing.T) {
	var null Range
	if null.Hash() != ZeroHash {
		t.Fatalf("null range hash = %d, want ZeroHash %d", null.Hash(), ZeroHash)
	}

	r1 := New([]byte("the quick brown fox"))
	r2 := New([]byte("the quick brown fox"))
	if r1.Hash() != r2.Hash() {
		t.Fatal("identical contents should hash identically")
	}

	r3 := New([]byte("the quick brown foX"))
	if r1.Hash() == r3.Hash() {
		t.Fatal("differing contents should (almost certainly) hash differently")
	}
}
