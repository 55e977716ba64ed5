package differ

import (
	"encoding/binary"

	"golang.org/x/xerrors"
)

// Instruction tags, written as a single byte on the wire.
const (
	tagCopy   = 'C'
	tagInsert = 'I'
	tagRepeat = 'R'
)

// ErrBadInstruction is returned by readInstruction when it encounters a tag
// byte that is none of 'C', 'I', or 'R'; Patch then reports ok=false. The
// original C++ patcher silently treats an
// unrecognized tag as end-of-stream; this implementation instead surfaces it
// as a hard failure, since a corrupt or truncated diff buffer is far more
// likely than a legitimate early stop, and a silent truncation would patch a
// target buffer half-written without any signal.
var ErrBadInstruction = xerrors.New("differ: unrecognized instruction tag")

// instruction is the tagged union of Copy, Insert, and Repeat records. Only
// the fields relevant to Tag are meaningful; this mirrors the wire format
// directly instead of modeling Copy/Insert/Repeat as distinct types behind
// an interface; the original's dynamic-dispatch hierarchy collapses to a
// switch on Tag.
type instruction struct {
	Tag   byte
	Index uint64

	// Copy
	BeginRead uint64
	EndRead   uint64

	// Insert
	Data []byte

	// Repeat
	Amount uint64
	Value  byte
}

func copyInstruction(index, beginRead, endRead uint64) instruction {
	return instruction{Tag: tagCopy, Index: index, BeginRead: beginRead, EndRead: endRead}
}

func insertInstruction(index uint64, data []byte) instruction {
	return instruction{Tag: tagInsert, Index: index, Data: data}
}

func repeatInstruction(index, amount uint64, value byte) instruction {
	return instruction{Tag: tagRepeat, Index: index, Amount: amount, Value: value}
}

// size returns the exact on-wire byte count for this instruction.
func (in instruction) size() uint64 {
	switch in.Tag {
	case tagCopy:
		return 1 + 8 + 8 + 8
	case tagInsert:
		return 1 + 8 + 8 + uint64(len(in.Data))
	case tagRepeat:
		return 1 + 8 + 8 + 1
	default:
		return 0
	}
}

// write appends this instruction's wire encoding into buf at byteIndex,
// little-endian and tightly packed.
func (in instruction) write(buf []byte, byteIndex uint64) {
	buf[byteIndex] = in.Tag
	byteIndex++
	binary.LittleEndian.PutUint64(buf[byteIndex:], in.Index)
	byteIndex += 8

	switch in.Tag {
	case tagCopy:
		binary.LittleEndian.PutUint64(buf[byteIndex:], in.BeginRead)
		byteIndex += 8
		binary.LittleEndian.PutUint64(buf[byteIndex:], in.EndRead)
	case tagInsert:
		length := uint64(len(in.Data))
		binary.LittleEndian.PutUint64(buf[byteIndex:], length)
		byteIndex += 8
		if length != 0 {
			copy(buf[byteIndex:byteIndex+length], in.Data)
		}
	case tagRepeat:
		binary.LittleEndian.PutUint64(buf[byteIndex:], in.Amount)
		byteIndex += 8
		buf[byteIndex] = in.Value
	}
}

// readInstruction decodes one instruction from buf starting at byteIndex
// (which must point just past the already-consumed tag byte), returning the
// decoded instruction and the index of the next tag byte.
func readInstruction(tag byte, buf []byte, byteIndex uint64) (instruction, uint64, error) {
	if byteIndex+8 > uint64(len(buf)) {
		return instruction{}, 0, xerrors.New("differ: truncated instruction")
	}
	index := binary.LittleEndian.Uint64(buf[byteIndex:])
	byteIndex += 8

	switch tag {
	case tagCopy:
		if byteIndex+16 > uint64(len(buf)) {
			return instruction{}, 0, xerrors.New("differ: truncated copy instruction")
		}
		beginRead := binary.LittleEndian.Uint64(buf[byteIndex:])
		byteIndex += 8
		endRead := binary.LittleEndian.Uint64(buf[byteIndex:])
		byteIndex += 8
		return copyInstruction(index, beginRead, endRead), byteIndex, nil
	case tagInsert:
		if byteIndex+8 > uint64(len(buf)) {
			return instruction{}, 0, xerrors.New("differ: truncated insert instruction")
		}
		length := binary.LittleEndian.Uint64(buf[byteIndex:])
		byteIndex += 8
		var data []byte
		if length != 0 {
			if byteIndex+length > uint64(len(buf)) {
				return instruction{}, 0, xerrors.New("differ: truncated insert payload")
			}
			data = make([]byte, length)
			copy(data, buf[byteIndex:byteIndex+length])
			byteIndex += length
		}
		return insertInstruction(index, data), byteIndex, nil
	case tagRepeat:
		if byteIndex+9 > uint64(len(buf)) {
			return instruction{}, 0, xerrors.New("differ: truncated repeat instruction")
		}
		amount := binary.LittleEndian.Uint64(buf[byteIndex:])
		byteIndex += 8
		value := buf[byteIndex]
		byteIndex++
		return repeatInstruction(index, amount, value), byteIndex, nil
	default:
		return instruction{}, 0, ErrBadInstruction
	}
}

// execute applies this instruction's effect onto target, reading from
// source for Copy instructions.
func (in instruction) execute(target, source []byte) {
	switch in.Tag {
	case tagCopy:
		copy(target[in.Index:], source[in.BeginRead:in.EndRead])
	case tagInsert:
		copy(target[in.Index:], in.Data)
	case tagRepeat:
		end := in.Index + in.Amount
		if end > uint64(len(target)) {
			end = uint64(len(target))
		}
		for i := in.Index; i < end; i++ {
			target[i] = in.Value
		}
	}
}
