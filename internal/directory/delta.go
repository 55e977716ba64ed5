package directory

import (
	"encoding/binary"

	"golang.org/x/xerrors"

	"github.com/Yattabyte/yatta/internal/buffer"
)

const deltaTitle = "yatta delta"

const (
	flagUpdate = 'U'
	flagNew    = 'N'
	flagDelete = 'D'
)

// fileInstruction is a single per-file delta record: a patch (or delete
// marker) against a named file, bracketed by the file's hash before and
// after the change so the patcher can verify it landed on the file it
// expects to.
type fileInstruction struct {
	path             string
	flag             byte
	oldHash, newHash uint64
	payload          []byte
}

// getFileLists splits dstFiles against srcFiles into three buckets: files
// present in both (paired old/new), files only in dstFiles (added), and
// files only in srcFiles (removed). Matching is by relative path.
func getFileLists(srcFiles, dstFiles []VirtualFile) (common [][2]VirtualFile, added, removed []VirtualFile) {
	remaining := append([]VirtualFile(nil), srcFiles...)

	for _, nFile := range dstFiles {
		found := -1
		for i, oFile := range remaining {
			if nFile.RelativePath == oFile.RelativePath {
				found = i
				break
			}
		}
		if found >= 0 {
			common = append(common, [2]VirtualFile{remaining[found], nFile})
			remaining = append(remaining[:found], remaining[found+1:]...)
		} else {
			added = append(added, nFile)
		}
	}
	removed = remaining
	return common, added, removed
}

// genInstructions builds the instruction stream transforming srcFiles into
// dstFiles: 'U' for changed common files, 'N' for additions, 'D' for
// removals.
func genInstructions(srcFiles, dstFiles []VirtualFile) (*buffer.Buffer, uint64) {
	common, added, removed := getFileLists(srcFiles, dstFiles)

	instructionBuffer := buffer.New(0)
	var instCount uint64

	for _, pair := range common {
		oldFile, newFile := pair[0], pair[1]
		oldHash := oldFile.Data.Hash()
		newHash := newFile.Data.Hash()
		if oldHash == newHash {
			continue
		}
		diff, ok := oldFile.Data.Diff(newFile.Data)
		if !ok {
			continue
		}
		writeInstruction(instructionBuffer, oldFile.RelativePath, oldHash, newHash, diff.Bytes(), flagUpdate)
		instCount++
	}

	for _, nFile := range added {
		diff, ok := buffer.New(0).Diff(nFile.Data)
		if !ok {
			continue
		}
		writeInstruction(instructionBuffer, nFile.RelativePath, 0, nFile.Data.Hash(), diff.Bytes(), flagNew)
		instCount++
	}

	for _, oFile := range removed {
		writeInstruction(instructionBuffer, oFile.RelativePath, oFile.Data.Hash(), 0, nil, flagDelete)
		instCount++
	}

	return instructionBuffer, instCount
}

func writeInstruction(b *buffer.Buffer, path string, oldHash, newHash uint64, payload []byte, flag byte) {
	b.PushString(path)
	b.PushRaw([]byte{flag}, 1)
	_ = buffer.Push[uint64](b, oldHash)
	_ = buffer.Push[uint64](b, newHash)
	_ = buffer.Push[uint64](b, uint64(len(payload)))
	if len(payload) != 0 {
		b.PushRaw(payload, uint64(len(payload)))
	}
}

// inInstructions decodes up to expectedFileCount fileInstructions out of a
// decompressed instruction buffer, sorting them by their flag into diff
// (update), added, and removed lists.
func inInstructions(data []byte, expectedFileCount uint64) (diffFiles, addedFiles, removedFiles []fileInstruction, err error) {
	var byteIndex uint64
	var files uint64
	for files < expectedFileCount && byteIndex < uint64(len(data)) {
		path, next, ferr := readFramedString(data, byteIndex)
		if ferr != nil {
			return nil, nil, nil, ferr
		}
		byteIndex = next

		if byteIndex+1+8+8+8 > uint64(len(data)) {
			return nil, nil, nil, xerrors.New("directory: truncated delta instruction")
		}
		flag := data[byteIndex]
		byteIndex++
		oldHash := binary.LittleEndian.Uint64(data[byteIndex:])
		byteIndex += 8
		newHash := binary.LittleEndian.Uint64(data[byteIndex:])
		byteIndex += 8
		size := binary.LittleEndian.Uint64(data[byteIndex:])
		byteIndex += 8

		var payload []byte
		if size != 0 {
			if byteIndex+size > uint64(len(data)) {
				return nil, nil, nil, xerrors.New("directory: truncated delta payload")
			}
			payload = make([]byte, size)
			copy(payload, data[byteIndex:byteIndex+size])
			byteIndex += size
		}

		inst := fileInstruction{path: path, flag: flag, oldHash: oldHash, newHash: newHash, payload: payload}
		switch flag {
		case flagUpdate:
			diffFiles = append(diffFiles, inst)
		case flagNew:
			addedFiles = append(addedFiles, inst)
		case flagDelete:
			removedFiles = append(removedFiles, inst)
		}
		files++
	}
	return diffFiles, addedFiles, removedFiles, nil
}

func findFile(files []VirtualFile, path string, hash uint64) int {
	for i, f := range files {
		if f.RelativePath == path && f.Data.Hash() == hash {
			return i
		}
	}
	return -1
}

// applyInstructions patches, adds, and removes files in place against
// files, in that order (matching the original format's
// patch-then-add-then-remove ordering).
//
// A patch or add whose resulting hash doesn't match the instruction's
// newHash is silently dropped rather than applied or reported: this mirrors
// the original's behavior exactly (patch_file/add_file only swap the result
// in on a hash match), so a corrupt or stale delta degrades to a no-op per
// file instead of a hard failure.
func applyInstructions(diffFiles, addedFiles, removedFiles []fileInstruction, files []VirtualFile) []VirtualFile {
	for _, inst := range diffFiles {
		idx := findFile(files, inst.path, inst.oldHash)
		if idx < 0 {
			continue
		}
		patched, ok := files[idx].Data.Patch(buffer.FromBytes(inst.payload))
		if !ok || patched.Hash() != inst.newHash {
			continue
		}
		files[idx].Data = patched
	}

	for _, inst := range addedFiles {
		if idx := findFile(files, inst.path, inst.oldHash); idx >= 0 {
			files = append(files[:idx], files[idx+1:]...)
		}
		patched, ok := buffer.New(0).Patch(buffer.FromBytes(inst.payload))
		if !ok || patched.Hash() != inst.newHash {
			continue
		}
		files = append(files, VirtualFile{RelativePath: inst.path, Data: patched})
	}

	for _, inst := range removedFiles {
		kept := files[:0]
		for _, f := range files {
			if f.RelativePath == inst.path && f.Data.Hash() == inst.oldHash {
				continue
			}
			kept = append(kept, f)
		}
		files = kept
	}

	return files
}

// InDelta applies a delta buffer (produced by OutDelta) to this directory's
// files in place.
func (d *Directory) InDelta(deltaBuffer *buffer.Buffer) error {
	if deltaBuffer.Empty() {
		return xerrors.New("directory: delta buffer is empty")
	}

	raw := deltaBuffer.Bytes()
	if uint64(len(raw)) < 16+8 {
		return xerrors.New("directory: delta buffer too small for header")
	}
	var gotTitle [16]byte
	copy(gotTitle[:], raw[0:16])
	var wantTitle [16]byte
	copy(wantTitle[:], deltaTitle)
	if gotTitle != wantTitle {
		return xerrors.New("directory: delta header title mismatch")
	}
	fileCount := binary.LittleEndian.Uint64(raw[16:24])

	instructionBuffer, ok := buffer.FromBytes(raw[24:]).Decompress()
	if !ok {
		return xerrors.New("directory: decompressing delta instructions failed")
	}

	diffFiles, addedFiles, removedFiles, err := inInstructions(instructionBuffer.Bytes(), fileCount)
	if err != nil {
		return xerrors.Errorf("directory: reading delta instructions: %w", err)
	}

	d.files = applyInstructions(diffFiles, addedFiles, removedFiles, d.files)
	return nil
}

// OutDelta generates a delta buffer transforming this directory into
// target. It fails if both directories are empty, or if compression of the
// instruction stream fails.
func (d *Directory) OutDelta(target *Directory) (*buffer.Buffer, bool) {
	if d.FileCount() == 0 && target.FileCount() == 0 {
		return nil, false
	}

	instructionBuffer, instCount := genInstructions(d.files, target.files)
	compressed, ok := instructionBuffer.Compress()
	if !ok {
		return nil, false
	}

	out := buffer.New(0)
	pushFixed16(out, deltaTitle)
	_ = buffer.Push[uint64](out, instCount)
	out.PushRaw(compressed.Bytes(), compressed.Size())
	return out, true
}
