package directory

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/Yattabyte/yatta/internal/buffer"
)

func writeTestFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, contents := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(full, []byte(contents), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
}

func TestInFolderOutFolderRoundTrip(t *testing.T) {
	src := t.TempDir()
	writeTestFiles(t, src, map[string]string{
		"a.txt":        "hello",
		"sub/b.txt":    "world",
		"skip.ignored": "should be excluded",
	})

	d, err := NewFromFolder(src, []string{".ignored"})
	if err != nil {
		t.Fatalf("NewFromFolder: %v", err)
	}
	if d.FileCount() != 2 {
		t.Fatalf("FileCount() = %d, want 2", d.FileCount())
	}

	dst := t.TempDir()
	if err := d.OutFolder(dst); err != nil {
		t.Fatalf("OutFolder: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dst, "sub", "b.txt"))
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}
	if string(got) != "world" {
		t.Fatalf("got %q, want %q", got, "world")
	}
}

func TestPackageRoundTrip(t *testing.T) {
	src := t.TempDir()
	writeTestFiles(t, src, map[string]string{
		"one.txt": "first file contents",
		"two.txt": "second file contents, a bit longer this time",
	})

	d, err := NewFromFolder(src, nil)
	if err != nil {
		t.Fatalf("NewFromFolder: %v", err)
	}

	pkg, ok := d.OutPackage("testpack")
	if !ok {
		t.Fatal("OutPackage failed")
	}

	restored, err := NewFromPackage(pkg)
	if err != nil {
		t.Fatalf("NewFromPackage: %v", err)
	}
	if restored.FileCount() != d.FileCount() {
		t.Fatalf("FileCount() = %d, want %d", restored.FileCount(), d.FileCount())
	}
	if restored.Hash() != d.Hash() {
		t.Fatal("package round trip changed directory hash")
	}
}

func TestDeltaRoundTrip(t *testing.T) {
	oldDir := New()
	oldDir.files = []VirtualFile{
		{RelativePath: "keep.txt", Data: buffer.FromBytes([]byte("unchanged contents"))},
		{RelativePath: "change.txt", Data: buffer.FromBytes(bytes.Repeat([]byte("old version "), 50))},
		{RelativePath: "remove.txt", Data: buffer.FromBytes([]byte("going away"))},
	}

	newDir := New()
	newDir.files = []VirtualFile{
		{RelativePath: "keep.txt", Data: buffer.FromBytes([]byte("unchanged contents"))},
		{RelativePath: "change.txt", Data: buffer.FromBytes(bytes.Repeat([]byte("new version "), 60))},
		{RelativePath: "added.txt", Data: buffer.FromBytes([]byte("brand new file"))},
	}

	delta, ok := oldDir.OutDelta(newDir)
	if !ok {
		t.Fatal("OutDelta failed")
	}

	if err := oldDir.InDelta(delta); err != nil {
		t.Fatalf("InDelta: %v", err)
	}

	if oldDir.FileCount() != newDir.FileCount() {
		t.Fatalf("FileCount() = %d, want %d", oldDir.FileCount(), newDir.FileCount())
	}
	if oldDir.Hash() != newDir.Hash() {
		t.Fatal("patched directory hash does not match target directory hash")
	}
	if idx := findFile(oldDir.files, "remove.txt", 0); idx >= 0 {
		t.Fatal("remove.txt should have been deleted")
	}
}

func TestOutDeltaBothEmptyFails(t *testing.T) {
	a, b := New(), New()
	if _, ok := a.OutDelta(b); ok {
		t.Fatal("expected OutDelta to fail for two empty directories")
	}
}

func TestHashIgnoresInsertionOrder(t *testing.T) {
	a := New()
	a.files = []VirtualFile{
		{RelativePath: "x", Data: buffer.FromBytes([]byte("1"))},
		{RelativePath: "y", Data: buffer.FromBytes([]byte("2"))},
	}
	b := New()
	b.files = []VirtualFile{
		{RelativePath: "y", Data: buffer.FromBytes([]byte("2"))},
		{RelativePath: "x", Data: buffer.FromBytes([]byte("1"))},
	}
	if a.Hash() != b.Hash() {
		t.Fatal("hash should be order-independent (wrapping sum)")
	}
}
