package directory

import (
	"encoding/binary"

	"golang.org/x/xerrors"

	"github.com/Yattabyte/yatta/internal/buffer"
)

const packTitle = "yatta pack"

// InPackage expands a package buffer (produced by OutPackage) into this
// directory, appending its files after any files already present.
func (d *Directory) InPackage(packageBuffer *buffer.Buffer) error {
	if packageBuffer.Empty() {
		return xerrors.New("directory: package buffer is empty")
	}

	raw := packageBuffer.Bytes()
	if uint64(len(raw)) < 16 {
		return xerrors.New("directory: package buffer too small for header")
	}
	var gotTitle [16]byte
	copy(gotTitle[:], raw[0:16])
	var wantTitle [16]byte
	copy(wantTitle[:], packTitle)
	if gotTitle != wantTitle {
		return xerrors.New("directory: package header title mismatch")
	}

	byteIndex := uint64(16)
	_, n, err := readFramedString(raw, byteIndex)
	if err != nil {
		return xerrors.Errorf("directory: reading package name: %w", err)
	}
	byteIndex = n

	fileBuffer, ok := buffer.FromBytes(raw[byteIndex:]).Decompress()
	if !ok {
		return xerrors.New("directory: decompressing package contents failed")
	}

	files, err := inFiles(fileBuffer.Bytes())
	if err != nil {
		return xerrors.Errorf("directory: reading packaged files: %w", err)
	}
	d.files = append(d.files, files...)
	return nil
}

// OutPackage serializes this directory's files (LZ4-compressed) into a
// package buffer tagged with folderName. It fails if the directory holds no
// files.
func (d *Directory) OutPackage(folderName string) (*buffer.Buffer, bool) {
	if d.Empty() {
		return nil, false
	}

	fileBuffer := outFiles(d.files)
	compressed, ok := fileBuffer.Compress()
	if !ok {
		return nil, false
	}

	b := buffer.New(0)
	pushFixed16(b, packTitle)
	b.PushString(folderName)
	b.PushRaw(compressed.Bytes(), compressed.Size())
	return b, true
}

// inFiles decodes the file-count-prefixed, (path, size, data) sequence
// written by outFiles.
func inFiles(data []byte) ([]VirtualFile, error) {
	if uint64(len(data)) < 8 {
		return nil, xerrors.New("directory: file list too small for count")
	}
	fileCount := binary.LittleEndian.Uint64(data[0:8])
	byteIndex := uint64(8)

	files := make([]VirtualFile, 0, fileCount)
	for i := uint64(0); i < fileCount && byteIndex < uint64(len(data)); i++ {
		path, next, err := readFramedString(data, byteIndex)
		if err != nil {
			return nil, err
		}
		byteIndex = next

		if byteIndex+8 > uint64(len(data)) {
			return nil, xerrors.New("directory: truncated file size")
		}
		size := binary.LittleEndian.Uint64(data[byteIndex : byteIndex+8])
		byteIndex += 8

		if byteIndex+size > uint64(len(data)) {
			return nil, xerrors.New("directory: truncated file contents")
		}
		files = append(files, VirtualFile{
			RelativePath: path,
			Data:         buffer.FromBytes(data[byteIndex : byteIndex+size]),
		})
		byteIndex += size
	}
	return files, nil
}

// outFiles serializes files as: 8-byte count, then per file: framed path,
// 8-byte size, raw bytes.
func outFiles(files []VirtualFile) *buffer.Buffer {
	b := buffer.New(0)
	_ = buffer.Push[uint64](b, uint64(len(files)))
	for _, f := range files {
		b.PushString(f.RelativePath)
		_ = buffer.Push[uint64](b, f.Data.Size())
		b.PushRaw(f.Data.Bytes(), f.Data.Size())
	}
	return b
}

// readFramedString reads the bidirectional (length, bytes, length) string
// framing directly out of a raw byte slice (as opposed to
// memrange.OutString, which operates on a bounds-checked Range); it's used
// here because package/delta parsing walks a raw decompressed buffer, not a
// live Buffer.
func readFramedString(data []byte, byteIndex uint64) (string, uint64, error) {
	if byteIndex+8 > uint64(len(data)) {
		return "", 0, xerrors.New("directory: truncated string length")
	}
	n := binary.LittleEndian.Uint64(data[byteIndex : byteIndex+8])
	total := 8 + n + 8
	if byteIndex+total > uint64(len(data)) {
		return "", 0, xerrors.New("directory: truncated string payload")
	}
	s := string(data[byteIndex+8 : byteIndex+8+n])
	return s, byteIndex + total, nil
}

// pushFixed16 pushes a fixed 16-byte, NUL-padded title field, matching the
// original format's `char title[16]` header member (no length framing).
func pushFixed16(b *buffer.Buffer, title string) {
	var field [16]byte
	copy(field[:], title)
	b.PushRaw(field[:], 16)
}
