package main

import (
	"encoding/binary"
	"io"

	"github.com/orcaman/writerseeker"
	"golang.org/x/xerrors"
)

var (
	errContainerTooSmall  = xerrors.New("container: too small for header")
	errContainerBadMagic  = xerrors.New("container: magic mismatch")
	errContainerTruncated = xerrors.New("container: truncated payload")
)

// buildContainer frames payload behind a 4-byte magic and an 8-byte
// little-endian size field. The size is only known once payload has been
// written, so it's patched in afterward by seeking back to offset 4 -
// exactly the backpatch-a-header pattern an in-memory io.WriteSeeker
// exists for.
func buildContainer(magic string, payload []byte) []byte {
	ws := &writerseeker.WriterSeeker{}

	var m [4]byte
	copy(m[:], magic)
	ws.Write(m[:])

	var sizeField [8]byte
	ws.Write(sizeField[:])
	ws.Write(payload)

	ws.Seek(4, io.SeekStart)
	binary.LittleEndian.PutUint64(sizeField[:], uint64(len(payload)))
	ws.Write(sizeField[:])

	out, _ := io.ReadAll(ws.Reader())
	return out
}

// readContainer validates magic and strips the header added by
// buildContainer, returning the payload.
func readContainer(magic string, data []byte) ([]byte, error) {
	if len(data) < 12 {
		return nil, errContainerTooSmall
	}
	if string(data[0:4]) != magic {
		return nil, errContainerBadMagic
	}
	size := binary.LittleEndian.Uint64(data[4:12])
	if uint64(len(data)-12) < size {
		return nil, errContainerTruncated
	}
	return data[12 : 12+size], nil
}
